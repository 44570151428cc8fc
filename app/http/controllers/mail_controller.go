package controllers

import (
	"net/http"

	"github.com/km-arc/go-ioc/app/mail"
	"github.com/km-arc/go-ioc/framework/app"
)

// MailController exposes the notifications sent by the log mail driver.
type MailController struct {
	app.Controller
	outbox *mail.Outbox
}

// NewMailController reads from outbox.
func NewMailController(outbox *mail.Outbox) (*MailController, error) {
	return &MailController{outbox: outbox}, nil
}

// Outbox handles GET /api/v1/mail/outbox.
func (c *MailController) Outbox(w http.ResponseWriter, r *http.Request) {
	c.Response(w).Success(c.outbox.All())
}
