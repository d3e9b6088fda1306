package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/beatgridgo/internal/catalog"
	"github.com/vk/beatgridgo/internal/ctxlog"
	"github.com/vk/beatgridgo/internal/expr"
	"github.com/vk/beatgridgo/internal/show"
	"github.com/vk/beatgridgo/internal/state"
	"github.com/vk/beatgridgo/internal/trigger"
	"github.com/vk/beatgridgo/internal/workspace"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle: the binding catalog, the shared workspace and its compiler,
// the loaded show, and the compiled triggers.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	catalog  *catalog.Catalog
	compiler *expr.Compiler
	globals  *state.Bag
	document *show.Document
	triggers []*trigger.Trigger

	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger, catalog and
// shared workspace. A structurally broken show file is a fatal startup
// error and panics; individual snippet compile failures are reported later,
// during Run, without taking the process down.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	doc, err := show.Load(ctx, cfg.ShowPath)
	if err != nil {
		panic(fmt.Errorf("failed to load show: %w", err))
	}
	logger.Debug("Show configuration loaded.")

	cat := catalog.Default()
	ws := workspace.New()

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		catalog:  cat,
		compiler: expr.NewCompiler(ws),
		globals:  state.NewBag(),
		document: doc,
	}
}

// Catalog returns the application's binding catalog. Primarily for testing.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Compiler returns the application's expression compiler. Primarily for testing.
func (a *App) Compiler() *expr.Compiler {
	return a.compiler
}

// Triggers returns the compiled triggers. Populated by Startup.
func (a *App) Triggers() []*trigger.Trigger {
	return a.triggers
}

// Globals returns the shared global state bag.
func (a *App) Globals() *state.Bag {
	return a.globals
}

// loadShared runs every shared block of the show through the
// shared-definitions loader. A failing block is reported and skipped;
// definitions it installed before failing stay in effect, and later blocks
// still load.
func (a *App) loadShared(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, block := range a.document.Shared {
		title := fmt.Sprintf("Shared Functions %s", block.Name)
		if err := a.compiler.LoadSharedDefinitions(block.Definitions, title); err != nil {
			logger.Error("Failed to load shared definitions.", "block", block.Name, "error", err)
			continue
		}
		logger.Debug("Shared definitions loaded.", "block", block.Name)
	}
}

// compileTriggers compiles every trigger in the show. A trigger whose
// snippets fail to compile is reported and left out; the rest of the show
// keeps running.
func (a *App) compileTriggers(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	for _, block := range a.document.Triggers {
		t, err := trigger.New(block, a.compiler, a.catalog)
		if err != nil {
			logger.Error("Failed to compile trigger; it will be inactive.", "trigger", block.Name, "error", err)
			continue
		}
		a.triggers = append(a.triggers, t)
		logger.Debug("Trigger compiled.", "trigger", block.Name, "on", block.On)
	}
}
