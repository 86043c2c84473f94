//go:build linux

package tlsshim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuppressedHook_FiresOnRegistration(t *testing.T) {
	before := SuppressedCount()

	fired := make(chan struct{}, 1)
	SetSuppressedHook(func() { fired <- struct{}{} })
	t.Cleanup(func() { SetSuppressedHook(nil) })

	rc := goTlsShimThreadAtexit(nil, nil, nil)
	assert.EqualValues(t, 0, rc)
	assert.Equal(t, before+1, SuppressedCount())

	select {
	case <-fired:
	default:
		t.Fatal("hook was not invoked")
	}
}

func TestSetSuppressedHook_Nil(t *testing.T) {
	SetSuppressedHook(func() {})
	SetSuppressedHook(nil)
	// Should not panic when no hook is installed.
	_ = goTlsShimThreadAtexit(nil, nil, nil)
}
