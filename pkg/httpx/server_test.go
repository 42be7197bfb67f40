package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/unrolled/secure"

	"github.com/ghuser/contractflow/pkg/httpx"
)

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// TestSecurityHeaders verifies unrolled/secure sets the expected headers.
func TestSecurityHeaders(t *testing.T) {
	sm := secure.New(secure.Options{
		STSSeconds:            63072000,
		STSIncludeSubdomains:  true,
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		IsDevelopment:         false,
	})
	h := sm.Handler(http.HandlerFunc(okHandler))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	checks := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'",
	}
	for header, expected := range checks {
		if got := rr.Header().Get(header); got != expected {
			t.Errorf("%s: got %q, want %q", header, got, expected)
		}
	}
	// unrolled/secure only emits HSTS on TLS requests.
	if got := rr.Header().Get("Strict-Transport-Security"); got != "" {
		t.Errorf("expected no HSTS over plain HTTP, got %q", got)
	}
}

// TestRouteBodyLimit checks the default cap and the per path override used
// for document uploads.
func TestRouteBodyLimit(t *testing.T) {
	limits := map[string]int64{"/api/upload-document": 100}

	tests := []struct {
		name     string
		path     string
		size     int
		wantCode int
	}{
		{"default within cap", "/api/contracts", 10, http.StatusOK},
		{"default over cap", "/api/contracts", 11, http.StatusRequestEntityTooLarge},
		{"upload within override", "/api/upload-document", 100, http.StatusOK},
		{"upload over override", "/api/upload-document", 101, http.StatusRequestEntityTooLarge},
	}

	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	h := httpx.RouteBodyLimit(10, limits)(inner)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := strings.NewReader(strings.Repeat("x", tt.size))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, tt.path, body))
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
		})
	}
}

// TestCORSMiddleware_AnyOrigin verifies the default "*" configuration answers
// preflights from arbitrary origins, as the back-office UI expects.
func TestCORSMiddleware_AnyOrigin(t *testing.T) {
	h := httpx.CORSMiddleware("*")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodOptions, "/api/contracts", http.NoBody)
	req.Header.Set("Origin", "https://crm.example.it")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want %q", got, "*")
	}
}
