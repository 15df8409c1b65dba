package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestSeeder_Run(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/parts", r.URL.Path)
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		mu.Lock()
		bodies = append(bodies, string(data))
		id := len(bodies)
		mu.Unlock()

		var e jx.Encoder
		e.Obj(func(e *jx.Encoder) {
			e.Field("id", func(e *jx.Encoder) { e.Int(id) })
		})
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(e.Bytes())
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "parts.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"description": "Wire", "price": 5.99, "quantity": 5},
		{"description": "Brake Fluid", "price": 4.90, "quantity": 20}
	]`), 0o600))

	s := &seeder{baseURL: srv.URL, client: srv.Client(), limiter: rate.NewLimiter(rate.Inf, 1)}
	require.NoError(t, s.run(context.Background(), path))

	require.Len(t, bodies, 2)
	assert.JSONEq(t, `{"description":"Wire","price":5.99,"quantity":5}`, bodies[0])
	assert.JSONEq(t, `{"description":"Brake Fluid","price":4.9,"quantity":20}`, bodies[1])
}

func TestSeeder_RejectedPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Missing required fields"}`)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "parts.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"description": "Wire", "price": 5.99, "quantity": 5}]`), 0o600))

	s := &seeder{baseURL: srv.URL, client: srv.Client(), limiter: rate.NewLimiter(rate.Inf, 1)}
	err := s.run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 400")
	assert.Contains(t, err.Error(), "Missing required fields")
}
