package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackgods/medical-appointment-scheduling/internal/config"
)

func TestNewServer(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	srv := newServer(config.Config{HTTPPort: "8081"}, handler)

	assert.Equal(t, ":8081", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestVersionDefault(t *testing.T) {
	assert.Equal(t, "dev", version)
}
