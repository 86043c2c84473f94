//go:build linux

package dynlib

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibrary_OpenSymClose(t *testing.T) {
	lib, err := Open("libc.so.6")
	require.NoError(t, err)
	require.NotNil(t, lib)

	sym, err := lib.Sym("strlen")
	require.NoError(t, err)
	assert.NotNil(t, sym)

	require.NoError(t, lib.Close())
}

func TestLibrary_OpenMissingFile(t *testing.T) {
	_, err := Open("/no/such/library-definitely-not-here.so")
	assert.ErrorIs(t, err, ErrOpen)
}

func TestLibrary_SymAfterCloseFails(t *testing.T) {
	lib, err := Open("libc.so.6")
	require.NoError(t, err)
	require.NoError(t, lib.Close())

	_, err = lib.Sym("strlen")
	assert.ErrorIs(t, err, ErrClosed)

	// double close is a no-op
	assert.NoError(t, lib.Close())
}

func TestLibrary_MissingSymbol(t *testing.T) {
	lib, err := Open("libc.so.6")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })

	_, err = lib.Sym("definitely_not_a_real_symbol_xyz")
	assert.ErrorIs(t, err, ErrSymbol)
}
