// Package app assembles the demo application from the framework and the
// application providers.
package app

import (
	"github.com/km-arc/go-ioc/app/providers"
	"github.com/km-arc/go-ioc/app/views"
	frameworkapp "github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/container"
	frameworkproviders "github.com/km-arc/go-ioc/framework/providers"
)

// New creates the application with every provider registered. Boot happens
// on the first Handler or Run call.
func New(envFiles ...string) (*frameworkapp.Application, error) {
	application, err := frameworkapp.New(envFiles...)
	if err != nil {
		return nil, err
	}
	for _, p := range []container.ServiceProvider{
		&frameworkproviders.ViewServiceProvider{FS: views.FS},
		&providers.MailServiceProvider{},
		&providers.AppServiceProvider{},
		&providers.RouteServiceProvider{},
	} {
		if err := application.Register(p); err != nil {
			return nil, err
		}
	}
	return application, nil
}
