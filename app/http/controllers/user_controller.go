// Package controllers holds the HTTP handlers of the demo application.
package controllers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/app/users"
	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/http/validation"
)

var errNoScope = errors.New("controllers: request has no container scope")

// userRules validate both the JSON API and the HTML form.
var userRules = validation.Rules{
	"name":  "required|string|min:2|max:100",
	"email": "required|email",
}

type userInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// trimmed drops surrounding whitespace, which Service.Create would drop anyway,
// so the length rules see the stored value.
func (in userInput) trimmed() userInput {
	return userInput{Name: strings.TrimSpace(in.Name), Email: strings.TrimSpace(in.Email)}
}

func (in userInput) validate() *validation.Validator {
	return validation.Make(map[string]string{"name": in.Name, "email": in.Email}, userRules)
}

func emailTaken() *validation.Errors {
	return &validation.Errors{Bag: map[string][]string{
		"email": {"The email has already been taken."},
	}}
}

// UserController serves the users API and the HTML page.
//
//	GET  /api/v1/users      → Index
//	POST /api/v1/users      → Store
//	GET  /api/v1/users/{id} → Show
//	GET  /                  → Page
//	POST /users             → Submit
type UserController struct {
	app.Controller
	views   *gohttp.ViewEngine
	appName string
}

// NewUserController renders pages with views and titles them with the app name.
func NewUserController(views *gohttp.ViewEngine, cfg *config.Config) (*UserController, error) {
	return &UserController{views: views, appName: cfg.App.Name}, nil
}

// service resolves the transient user service from the request scope, so
// each request gets its own mailer and request logger.
func (c *UserController) service(r *http.Request) (*users.Service, error) {
	scope, ok := container.ScopeFrom(r.Context())
	if !ok {
		return nil, errNoScope
	}
	return container.Resolve[*users.Service](scope, "users.service")
}

// serverError logs err with the request logger and answers 500.
func (c *UserController) serverError(w http.ResponseWriter, r *http.Request, err error) {
	log := zap.NewNop()
	if scope, ok := container.ScopeFrom(r.Context()); ok {
		if l, lerr := container.Resolve[*zap.Logger](scope, "log.request"); lerr == nil {
			log = l
		}
	}
	log.Error("handling request", zap.String("path", r.URL.Path), zap.Error(err))
	if c.Request(r).IsJSON() {
		c.Response(w).ServerError()
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// ── JSON API ─────────────────────────────────────────────────────────────────

// Index lists every user as JSON.
func (c *UserController) Index(w http.ResponseWriter, r *http.Request) {
	res := c.Response(w)
	svc, err := c.service(r)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	res.Success(svc.List())
}

// Store validates and creates a user, answering 201 with the user.
func (c *UserController) Store(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)

	var in userInput
	if err := req.Bind(&in); err != nil {
		res.Error(http.StatusBadRequest, "Malformed request body.")
		return
	}
	in = in.trimmed()
	if v := in.validate(); v.Fails() {
		res.ValidationError(v.Errors())
		return
	}

	svc, err := c.service(r)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	u, err := svc.Create(r.Context(), in.Name, in.Email)
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		res.ValidationError(emailTaken())
	case err != nil:
		c.serverError(w, r, err)
	default:
		res.Created(u)
	}
}

// Show returns one user, or 404.
func (c *UserController) Show(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)
	svc, err := c.service(r)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	u, err := svc.Find(req.RouteParam("id"))
	if errors.Is(err, users.ErrNotFound) {
		res.NotFound("User not found.")
		return
	}
	res.Success(u)
}

// ── HTML ─────────────────────────────────────────────────────────────────────

type pageData struct {
	AppName string
	Users   []users.User
	Old     userInput
	Errors  *validation.Errors
}

// Page renders the user list and the create form.
func (c *UserController) Page(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, userInput{}, &validation.Errors{})
}

// Submit handles the create form and redirects back to the page.
func (c *UserController) Submit(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)

	var in userInput
	if err := req.Bind(&in); err != nil {
		c.render(w, r, http.StatusBadRequest, in, &validation.Errors{})
		return
	}
	in = in.trimmed()
	if v := in.validate(); v.Fails() {
		c.render(w, r, http.StatusUnprocessableEntity, in, v.Errors())
		return
	}
	svc, err := c.service(r)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	if _, err := svc.Create(r.Context(), in.Name, in.Email); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			c.render(w, r, http.StatusUnprocessableEntity, in, emailTaken())
			return
		}
		c.serverError(w, r, err)
		return
	}
	res.RedirectTo("/")
}

func (c *UserController) render(w http.ResponseWriter, r *http.Request, status int, old userInput, errs *validation.Errors) {
	svc, err := c.service(r)
	if err != nil {
		c.serverError(w, r, err)
		return
	}
	data := pageData{AppName: c.appName, Users: svc.List(), Old: old, Errors: errs}
	if err := c.views.ViewStatus(w, status, "layout", "users/index", data); err != nil {
		c.serverError(w, r, err)
	}
}
