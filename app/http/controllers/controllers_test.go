package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/app/http/controllers"
	"github.com/km-arc/go-ioc/app/mail"
	"github.com/km-arc/go-ioc/app/users"
	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
)

// scopedRequest returns a request whose context carries a scope that can
// resolve "users.service".
func scopedRequest(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	svc, err := users.NewService(users.NewRepository(), mail.NullMailer{}, zap.NewNop())
	require.NoError(t, err)

	c := container.New()
	c.Instance("users.service", svc)
	scope := c.NewScope()
	t.Cleanup(func() { _ = scope.Close() })
	return req.WithContext(container.WithScope(req.Context(), scope))
}

func TestUserController_WithoutScopeIsServerError(t *testing.T) {
	ctl, err := controllers.NewUserController(gohttp.NewViewEngine(fstest.MapFS{}, ".html"), &config.Config{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Accept", "application/json")
	rr := httptest.NewRecorder()
	ctl.Index(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestMailController_EmptyOutbox(t *testing.T) {
	ctl, err := controllers.NewMailController(mail.NewOutbox())
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	ctl.Outbox(rr, httptest.NewRequest(http.MethodGet, "/api/v1/mail/outbox", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[]}`, rr.Body.String())
}

func TestUserController_FailedRenderSendsOnlyTheError(t *testing.T) {
	views := gohttp.NewViewEngine(fstest.MapFS{
		"layout.html":      {Data: []byte(`{{define "layout"}}<main>{{template "content" .}}</main>{{end}}`)},
		"users/index.html": {Data: []byte(`{{define "content"}}{{.Missing}}{{end}}`)},
	}, ".html")
	ctl, err := controllers.NewUserController(views, &config.Config{})
	require.NoError(t, err)

	form := url.Values{"name": {"A"}, "email": {"bad"}}
	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	ctl.Submit(rr, scopedRequest(t, req))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "<main>")
}
