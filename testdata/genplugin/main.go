// Command genplugin is a manual fixture demonstrating the three-entrypoint
// ABI Plugin[T] expects: load/update/unload, all exported with C linkage
// over a single *int32 counter. It is not built by `go test` - build it by
// hand when exercising pluginhost.Plugin against a real shared object:
//
//	go build -buildmode=c-shared -o genplugin.so ./testdata/genplugin
//
// This mirrors the reference's own generate_plugin_for_test helper, which
// shells out to rustc --crate-type cdylib to produce throwaway plugins for
// its tests.
package main

/*
#include <stdint.h>
*/
import "C"
import "unsafe"

//export load
func load(state unsafe.Pointer) {
	counter := (*int32)(state)
	*counter = 0
}

//export update
func update(state unsafe.Pointer, deltaSeconds C.double) {
	counter := (*int32)(state)
	*counter++
}

//export unload
func unload(state unsafe.Pointer) {
	counter := (*int32)(state)
	*counter = -1
}

func main() {}
