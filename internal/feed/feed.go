// Package feed connects to a beat-link bridge publishing DJ-link device
// updates over socket.io, decodes each payload into an event, and hands it
// to a caller-supplied sink. The actual Pro DJ Link packet parsing lives in
// the bridge; this package is only the boundary adapter to it.
package feed

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/ctxlog"
	"github.com/vk/beatgridgo/internal/event"
)

// Config holds the connection settings for the bridge.
type Config struct {
	URL                string
	Namespace          string
	ConnectTimeout     time.Duration
	InsecureSkipVerify bool
}

// Sink receives each decoded event. It must not block for long; the
// dispatcher behind it queues per device.
type Sink func(ctx context.Context, evt event.Event)

// eventKinds maps the bridge's socket.io event names to catalog kinds.
var eventKinds = map[string]catalog.Kind{
	"device-update": catalog.KindDeviceUpdate,
	"beat":          catalog.KindBeat,
	"mixer-status":  catalog.KindMixerStatus,
	"cdj-status":    catalog.KindCDJStatus,
	"beat-position": catalog.KindBeatPosition,
}

// Feed is a live connection to the bridge.
type Feed struct {
	io *socket.Socket
}

// Connect dials the bridge, subscribes to every known event name, and
// starts delivering decoded events to sink. It blocks until the initial
// connection succeeds or the configured timeout elapses.
func Connect(ctx context.Context, cfg Config, sink Sink) (*Feed, error) {
	logger := ctxlog.FromContext(ctx).With("url", cfg.URL, "namespace", cfg.Namespace)
	logger.Debug("Feed connecting.")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed URL: %w", err)
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	var isConnected atomic.Bool
	connected := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		if isConnected.CompareAndSwap(false, true) {
			logger.Info("Feed connected.", "sid", io.Id())
			connected <- nil
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if connErr, ok := errs[0].(error); ok {
				select {
				case connected <- connErr:
				default:
				}
				return
			}
		}
		select {
		case connected <- fmt.Errorf("feed connection failed"):
		default:
		}
	})

	for name, kind := range eventKinds {
		name, kind := name, kind
		io.On(types.EventName(name), func(data ...any) {
			if len(data) == 0 {
				return
			}
			evt, err := decode(kind, data[0])
			if err != nil {
				logger.Warn("Discarding undecodable feed payload.", "event", name, "error", err)
				return
			}
			sink(ctx, evt)
		})
	}

	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("feed connection: %w", err)
		}
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out waiting for initial feed connection")
	case <-ctx.Done():
		io.Disconnect()
		return nil, ctx.Err()
	}

	return &Feed{io: io}, nil
}

// decode turns a raw socket.io payload into an event. The socket client
// hands payloads over as decoded JSON values, so they round-trip through
// encoding/json to reach the event decoder.
func decode(kind catalog.Kind, payload any) (event.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return event.Event{}, err
	}
	return event.FromJSON(kind, raw)
}

// Close disconnects from the bridge.
func (f *Feed) Close() {
	f.io.Disconnect()
}
