package app

import (
	"context"

	"github.com/vk/beatgridgo/internal/ctxlog"
	"github.com/vk/beatgridgo/internal/dispatch"
	"github.com/vk/beatgridgo/internal/feed"
)

// Startup loads the show's shared definitions, compiles its triggers, and
// returns a dispatcher wired to the result. Callers own the dispatcher and
// must Close it.
func (a *App) Startup(ctx context.Context) *dispatch.Dispatcher {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.loadShared(ctx)
	a.compileTriggers(ctx)
	a.logger.Info("Show ready.", "triggers", len(a.triggers), "shared_blocks", len(a.document.Shared))
	return dispatch.New(a.catalog, a.triggers, a.globals)
}

// Run executes the main application lifecycle: load shared definitions,
// compile triggers, start the status server and the feed, then block until
// the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	dispatcher := a.Startup(ctx)
	defer dispatcher.Close()

	if a.config.StatusPort > 0 {
		a.startStatusServer(ctx)
		defer a.closeStatusServer(ctx)
	}

	if len(a.triggers) == 0 {
		a.logger.Warn("No triggers compiled; nothing to dispatch.")
	}

	if a.config.FeedURL == "" {
		a.logger.Warn("No feed URL configured; waiting for shutdown without a feed.")
		<-ctx.Done()
		return nil
	}

	f, err := feed.Connect(ctx, feed.Config{
		URL:                a.config.FeedURL,
		Namespace:          a.config.FeedNamespace,
		InsecureSkipVerify: a.config.FeedInsecure,
	}, dispatcher.Dispatch)
	if err != nil {
		return err
	}
	defer f.Close()

	a.logger.Info("🎚️ Listening for DJ-link events.")
	<-ctx.Done()
	a.logger.Info("Shutting down.")
	return nil
}
