package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func TestHealth_Check(t *testing.T) {
	handler := NewHealthHandler(stubPinger{}, "1.2.3", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok", "version": "1.2.3"}`, rec.Body.String())
}

func TestHealth_Ready(t *testing.T) {
	handler := NewHealthHandler(stubPinger{}, "1.2.3", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ready", "version": "1.2.3"}`, rec.Body.String())
}

func TestHealth_NotReadyWhenStoreDown(t *testing.T) {
	handler := NewHealthHandler(stubPinger{err: errors.New("connection refused")}, "1.2.3", testLogger())

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status": "unavailable", "version": "1.2.3"}`, rec.Body.String())
}
