package pluginhost

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// reloadsTotal counts successful generation swaps, by plugin name.
	reloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pluginhost_reloads_total",
		Help: "Total successful plugin reloads, by plugin name.",
	}, []string{"plugin"})

	// activeVersion reports the currently loaded generation number.
	activeVersion = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pluginhost_active_version",
		Help: "Currently loaded generation number, by plugin name.",
	}, []string{"plugin"})

	// updatesSinceReload reports CallUpdate count since the last reload.
	updatesSinceReload = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pluginhost_updates_since_reload",
		Help: "CallUpdate invocations since the plugin's last reload, by plugin name.",
	}, []string{"plugin"})

	// multipleGenerationsMappedTotal counts /proc/self/maps checks that
	// found more than one generation of a plugin still resident.
	multipleGenerationsMappedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pluginhost_multiple_generations_mapped_total",
		Help: "Times more than one generation of a plugin was found mapped after an update.",
	}, []string{"plugin"})
)

// onMultipleMapped, if set via SetMultipleMappedHook, is invoked whenever
// reportMappedGenerations finds more than one generation of a plugin still
// resident in this process's address space - a signal that something
// registered by an "unloaded" plugin is still holding pages open.
var onMultipleMapped atomic.Pointer[func(module string, mappings []string)]

// SetMultipleMappedHook installs fn to run whenever more than one
// generation of a plugin is found mapped after an update. hostloop wires
// this to a structured warning log on top of the Prometheus counter this
// package already maintains. Pass nil to clear it.
func SetMultipleMappedHook(fn func(module string, mappings []string)) {
	if fn == nil {
		onMultipleMapped.Store(nil)
		return
	}
	onMultipleMapped.Store(&fn)
}

// recordReload updates the reload-count and active-version gauges after a
// successful Check-driven generation swap.
func recordReload(name string, version uint64) {
	reloadsTotal.WithLabelValues(name).Inc()
	activeVersion.WithLabelValues(name).Set(float64(version))
}

// recordUpdate updates the updates-since-reload gauge after a CallUpdate.
func recordUpdate(name string, updatesSince uint64) {
	updatesSinceReload.WithLabelValues(name).Set(float64(updatesSince))
}

// recordMultipleMapped increments the multiple-generations-mapped counter.
func recordMultipleMapped(name string) {
	multipleGenerationsMappedTotal.WithLabelValues(name).Inc()
}
