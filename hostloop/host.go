package hostloop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joeycumines/corehost/executorpool"
	"github.com/joeycumines/corehost/pluginhost"
	"github.com/joeycumines/corehost/tlsshim"
	"github.com/joeycumines/corehost/transport"
)

// rttHistogram is the one Prometheus histogram shared by every Peer a Host
// constructs, in microseconds, exposed via /metrics.
var rttHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "corehost_transport_rtt_microseconds",
	Help:    "Round-trip time samples from acked transport packets.",
	Buckets: prometheus.ExponentialBuckets(500, 2, 12),
})

// WorldState is the shared state every loaded plugin's load/update/unload
// export receives a pointer to. A real deployment typically replaces this
// with its own game/simulation state struct; corehost ships a minimal one
// so the host binary runs standalone.
type WorldState struct {
	Tick uint64
}

// Host owns the executor pool, every configured plugin, an optional
// transport peer, and the diagnostic HTTP surface, and drives them all from
// one fixed-tick loop.
type Host struct {
	cfg   Config
	log   *Logger
	pool  *executorpool.Pool
	peer  *transport.Peer
	world WorldState

	mu      sync.Mutex
	plugins []*pluginhost.Plugin[WorldState]

	httpSrv *http.Server
}

// New constructs a Host from cfg, starting the executor pool and opening
// (but not yet loading - that happens on the first tick) every configured
// plugin. log may be nil to discard all logging.
func New(cfg Config, log *Logger) (*Host, error) {
	h := &Host{
		cfg:  cfg,
		log:  log,
		pool: executorpool.New(cfg.Cores, AsExecutorLogger(log)),
	}

	tlsshim.SetSuppressedHook(func() {
		h.logWarn("tlsshim: swallowed a TLS destructor registration (suppressed_total=%d)", tlsshim.SuppressedCount())
	})
	pluginhost.SetMultipleMappedHook(func(module string, mappings []string) {
		h.logWarn("pluginhost: multiple generations of %s still mapped: %v", module, mappings)
	})

	for _, pc := range cfg.Plugins {
		p, err := pluginhost.OpenTyped[WorldState](pc.Path, pc.Name, pc.CheckInterval)
		if err != nil {
			_ = h.Close(context.Background())
			return nil, fmt.Errorf("hostloop: opening plugin %s: %w", pc.Name, err)
		}
		h.plugins = append(h.plugins, p)
	}

	if cfg.Transport.Bind != "" {
		var (
			peer *transport.Peer
			err  error
		)
		if cfg.Transport.Dest != "" {
			peer, err = transport.BindDest(cfg.Transport.Bind, cfg.Transport.Dest, transport.WithRTTHistogram(rttHistogram))
		} else {
			peer, err = transport.BindOnly(cfg.Transport.Bind, transport.WithRTTHistogram(rttHistogram))
		}
		if err != nil {
			_ = h.Close(context.Background())
			return nil, fmt.Errorf("hostloop: binding transport: %w", err)
		}
		h.peer = peer
	}

	return h, nil
}

func (h *Host) logWarn(format string, args ...any) {
	if h.log == nil {
		return
	}
	h.log.Warning().Logf(format, args...)
}

// Run drives the fixed-tick Check/CallUpdate loop until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	interval := time.Duration(h.cfg.TickMillis) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			delta := now.Sub(lastTick).Seconds()
			lastTick = now
			if err := h.tick(delta); err != nil {
				return err
			}
		}
	}
}

// recoverablePluginErr reports whether err is one of the plugin error kinds
// the host loop tolerates without stopping: metadata-io and error-on-open
// are logged and leave the handle in its prior state, and update-not-loaded
// is expected on every tick before a plugin's first successful load. Every
// other plugin error is fatal to the host.
func recoverablePluginErr(err error) bool {
	return errors.Is(err, pluginhost.ErrMetadataIO) ||
		errors.Is(err, pluginhost.ErrOnOpen) ||
		errors.Is(err, pluginhost.ErrUpdateNotLoaded)
}

// tick advances the world and drives one Check/CallUpdate pass over every
// plugin. It returns the first fatal plugin error encountered, stopping the
// loop; recoverable errors are logged and the tick continues.
func (h *Host) tick(deltaSeconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.world.Tick++
	for _, p := range h.plugins {
		check, err := p.Check(&h.world)
		if err != nil {
			if !recoverablePluginErr(err) {
				return fmt.Errorf("hostloop: plugin %s: fatal check error: %w", p.Name(), err)
			}
			h.logWarn("plugin %s: check failed: %v", p.Name(), err)
			continue
		}
		if check == pluginhost.FoundNewVersion {
			h.logWarn("plugin %s: loaded version %d", p.Name(), p.Version())
		}
		if _, err := p.CallUpdate(&h.world, deltaSeconds); err != nil {
			if !recoverablePluginErr(err) {
				return fmt.Errorf("hostloop: plugin %s: fatal update error: %w", p.Name(), err)
			}
			h.logWarn("plugin %s: update failed: %v", p.Name(), err)
		}
	}
	return nil
}

// Plugins returns a snapshot of every configured plugin, loaded or not, for
// the diagnostic HTTP surface.
func (h *Host) Plugins() []*pluginhost.Plugin[WorldState] {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*pluginhost.Plugin[WorldState], len(h.plugins))
	copy(out, h.plugins)
	return out
}

// PeerStats returns the transport peer's bookkeeping snapshot, for the
// diagnostic HTTP surface. ok is false if this Host has no transport peer
// configured.
func (h *Host) PeerStats() (stats transport.Stats, ok bool) {
	if h.peer == nil {
		return transport.Stats{}, false
	}
	return h.peer.Stats(), true
}

// Close stops the executor pool, closes every plugin, and closes the
// transport peer, if any.
func (h *Host) Close(ctx context.Context) error {
	var firstErr error
	h.mu.Lock()
	for _, p := range h.plugins {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.mu.Unlock()

	if h.peer != nil {
		if err := h.peer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if h.pool != nil {
		if err := h.pool.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if h.httpSrv != nil {
		if err := h.httpSrv.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
