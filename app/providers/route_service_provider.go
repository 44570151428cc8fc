package providers

import (
	"github.com/km-arc/go-ioc/app/http/controllers"
	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/routing"
)

// RouteServiceProvider mounts the application routes on the router at boot.
type RouteServiceProvider struct {
	container.BaseProvider
}

func (p *RouteServiceProvider) Register(*container.Container) {}

func (p *RouteServiceProvider) Boot(app *container.Container) error {
	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		return err
	}
	userCtl, err := container.Resolve[*controllers.UserController](app, "controllers.users")
	if err != nil {
		return err
	}
	mailCtl, err := container.Resolve[*controllers.MailController](app, "controllers.mail")
	if err != nil {
		return err
	}
	Routes(router, userCtl, mailCtl)
	return nil
}

// Routes maps the application's URLs to controller actions.
func Routes(r *routing.Router, userCtl *controllers.UserController, mailCtl *controllers.MailController) {
	r.Get("/", userCtl.Page)
	r.Post("/users", userCtl.Submit)

	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Resource("/users", userCtl)
		api.Get("/mail/outbox", mailCtl.Outbox)
	})
}
