//go:build linux || darwin

package pluginhost

/*
#include <stddef.h>

typedef void (*plugin_call_fn)(void *state);
typedef void (*plugin_update_fn)(void *state, double delta_seconds);

static void call_plugin_fn(plugin_call_fn fn, void *state) {
	fn(state);
}

static void call_plugin_update_fn(plugin_update_fn fn, void *state, double delta_seconds) {
	fn(state, delta_seconds);
}
*/
import "C"
import "unsafe"

// callLoad and callUnload invoke an extern "C" void(*)(void *state) symbol.
func callLoad(fn, state unsafe.Pointer) {
	C.call_plugin_fn(C.plugin_call_fn(fn), state)
}

func callUnload(fn, state unsafe.Pointer) {
	C.call_plugin_fn(C.plugin_call_fn(fn), state)
}

// callUpdate invokes an extern "C" void(*)(void *state, double delta_seconds)
// symbol. deltaSeconds stands in for the reference's std::time::Duration
// argument - Go has no equivalent fixed C-ABI duration type, so the ABI
// here is a plain double of elapsed seconds.
func callUpdate(fn, state unsafe.Pointer, deltaSeconds float64) {
	C.call_plugin_update_fn(C.plugin_update_fn(fn), state, C.double(deltaSeconds))
}
