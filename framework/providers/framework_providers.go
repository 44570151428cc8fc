// Package providers holds the framework's core service providers.
package providers

import (
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/http/middleware"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the configuration from .env files and the
// process environment.
//
// Bound abstracts:
//   - "config"        → *config.Config (singleton)
//   - "configuration" → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", container.Func(func() (*config.Config, error) {
		return config.Load(envFiles...), nil
	}))
	app.Alias("config", "configuration")
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider binds the zap loggers.
//
// Bound abstracts:
//   - "log"         → *zap.Logger (singleton, built from "config")
//   - "log.request" → *zap.Logger (scoped, tagged with the request id)
//
// Boot hands "log" to the container so resolutions are traced at debug level.
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) {
	app.Singleton("log", container.Func1(logging.New, "config"))
	app.Scoped("log.request", container.Func2(logging.ForRequest, "log", middleware.RequestIDKey))
}

func (p *LogServiceProvider) Boot(app *container.Container) error {
	log, err := container.Resolve[*zap.Logger](app, "log")
	if err != nil {
		return err
	}
	app.SetLogger(log)
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider binds the HTTP router with request logging and a
// container scope per request.
//
// Bound abstracts:
//   - "router" → *routing.Router (singleton)
type RoutingServiceProvider struct {
	container.BaseProvider
}

// The router's Scope middleware opens scopes on app at request time, never
// while the router itself is being built.
func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", container.Func1(func(log *zap.Logger) (*routing.Router, error) {
		return routing.New(
			middleware.RequestLogger(log),
			middleware.Scope(app, log),
		), nil
	}, "log"))
}

// ── ViewServiceProvider ───────────────────────────────────────────────────────

// ViewServiceProvider binds the template engine.
//
// Bound abstracts:
//   - "view" → *gohttp.ViewEngine (singleton)
type ViewServiceProvider struct {
	container.BaseProvider
	FS  fs.FS  // templates, default: os.DirFS("views")
	Ext string // file extension, default: ".html"
}

func (p *ViewServiceProvider) Register(app *container.Container) {
	fsys := p.FS
	if fsys == nil {
		fsys = os.DirFS("views")
	}
	ext := p.Ext
	if ext == "" {
		ext = ".html"
	}
	app.Singleton("view", container.Func(func() (*gohttp.ViewEngine, error) {
		return gohttp.NewViewEngine(fsys, ext), nil
	}))
}
