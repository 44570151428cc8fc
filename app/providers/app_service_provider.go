// Package providers binds the demo application into the container.
package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/app/http/controllers"
	"github.com/km-arc/go-ioc/app/mail"
	"github.com/km-arc/go-ioc/app/users"
	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
)

// ── AppServiceProvider ────────────────────────────────────────────────────────

// AppServiceProvider binds the user service and the controllers.
//
//	"users.repository"  → *users.Repository         singleton, seeded from USERS_SEED_FILE
//	"users.service"     → *users.Service            transient
//	"controllers.users" → *controllers.UserController singleton
//	"controllers.mail"  → *controllers.MailController singleton
//
// The service takes "log.request", a scoped binding, so it can only be
// resolved inside a request scope.
type AppServiceProvider struct {
	container.BaseProvider
}

func (p *AppServiceProvider) Register(app *container.Container) {
	app.Singleton("users.repository", container.Func2(newRepository, "config", "log"))
	app.Bind("users.service", container.Func3(users.NewService, "users.repository", "mail.mailer", "log.request"))
	app.Singleton("controllers.users", container.Func2(controllers.NewUserController, "view", "config"))
	app.Singleton("controllers.mail", container.Func1(controllers.NewMailController, "mail.outbox"))
}

// Boot builds the repository eagerly so a broken seed file fails at startup.
func (p *AppServiceProvider) Boot(app *container.Container) error {
	_, err := app.Make("users.repository")
	return err
}

func newRepository(cfg *config.Config, log *zap.Logger) (*users.Repository, error) {
	repo := users.NewRepository()
	if cfg.Users.SeedFile == "" {
		return repo, nil
	}
	if err := repo.LoadSeed(cfg.Users.SeedFile); err != nil {
		return nil, err
	}
	log.Info("users seeded", zap.String("file", cfg.Users.SeedFile), zap.Int("count", repo.Len()))
	return repo, nil
}

// ── MailServiceProvider ───────────────────────────────────────────────────────

// MailServiceProvider is deferred: it registers only when "mail.outbox" or
// "mail.mailer" is first needed.
//
//	"mail.outbox" → *mail.Outbox  singleton
//	"mail.mailer" → mail.Mailer   transient, driver from MAIL_DRIVER
type MailServiceProvider struct {
	container.BaseProvider
}

func (p *MailServiceProvider) Register(app *container.Container) {
	app.Singleton("mail.outbox", container.Func(func() (*mail.Outbox, error) {
		return mail.NewOutbox(), nil
	}))
	app.Bind("mail.mailer", container.Func3(mail.New, "config", "mail.outbox", "log"))
}

func (p *MailServiceProvider) IsDeferred() bool { return true }

func (p *MailServiceProvider) Provides() []string {
	return []string{"mail.outbox", "mail.mailer"}
}
