package web

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_RequestIDInjector(t *testing.T) {
	testCases := []struct {
		name        string
		withChiID   bool
		expectValue string
	}{
		{name: "Uses chi request id", withChiID: true, expectValue: "chi-id"},
		{name: "Generates id when missing", withChiID: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var seen string
			handler := RequestIDInjector(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetReqID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.withChiID {
				req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "chi-id"))
			}
			rr := httptest.NewRecorder()
			// when
			handler.ServeHTTP(rr, req)
			// then
			require.NotEmpty(t, seen)
			if tc.expectValue != "" {
				assert.Equal(t, tc.expectValue, seen)
			}
			assert.Equal(t, seen, rr.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func Test_Recoverer(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := Recoverer(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()
	// when
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
	assert.Contains(t, buf.String(), "Panic recovered")
}

func Test_StructuredLogger(t *testing.T) {
	// given
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	handler := StructuredLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	// when
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/", nil))
	// then
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/products/"`)
}
