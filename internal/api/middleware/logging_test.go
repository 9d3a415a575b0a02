package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestLoggerUsesRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := chi.NewRouter()
	r.Use(Logger(logger))
	r.Get("/participants/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	req := httptest.NewRequest(http.MethodGet, "/participants/alice", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	line := buf.String()
	if !strings.Contains(line, `"route":"/participants/{id}"`) {
		t.Fatalf("log line missing route pattern: %s", line)
	}
	if strings.Contains(line, "/participants/alice") {
		t.Fatalf("log line leaked the raw path: %s", line)
	}
	if !strings.Contains(line, `"status":200`) {
		t.Fatalf("log line missing status: %s", line)
	}
	if !strings.Contains(line, `"bytes":2`) {
		t.Fatalf("log line missing bytes written: %s", line)
	}
}
