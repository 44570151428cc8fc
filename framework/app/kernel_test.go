package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/container"
)

func newApp(t *testing.T) *app.Application {
	t.Helper()
	t.Setenv("APP_ENV", "testing")
	a, err := app.New("testdata/none.env")
	require.NoError(t, err)
	return a
}

func TestNew_RegistersCoreBindings(t *testing.T) {
	a := newApp(t)

	for _, abstract := range []string{"container", "config", "configuration", "log", "log.request", "router"} {
		assert.True(t, a.Bound(abstract), abstract)
	}
}

func TestApplication_Environment(t *testing.T) {
	a := newApp(t)

	assert.Equal(t, "testing", a.Environment())
	assert.True(t, a.IsTesting())
	assert.False(t, a.IsProduction())
	assert.False(t, a.IsLocal())
}

func TestApplication_Handler(t *testing.T) {
	a := newApp(t)
	router, err := a.Router()
	require.NoError(t, err)
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, ok := container.ScopeFrom(r.Context())
		assert.True(t, ok, "requests run inside a container scope")
		w.WriteHeader(http.StatusNoContent)
	})

	h, err := a.Handler()
	require.NoError(t, err)
	assert.True(t, a.Providers.Booted())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestApplication_RunStopsWithContext(t *testing.T) {
	a := newApp(t)
	t.Setenv("APP_PORT", "0")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestController_Helpers(t *testing.T) {
	var c app.Controller
	rr := httptest.NewRecorder()
	c.Response(rr).Success("ok")
	assert.Equal(t, http.StatusOK, rr.Code)

	req := c.Request(httptest.NewRequest(http.MethodGet, "/?q=1", nil))
	assert.Equal(t, "1", req.Input("q"))
}
