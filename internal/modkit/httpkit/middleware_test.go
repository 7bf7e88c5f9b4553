package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func wrap(h http.Handler, stack []func(http.Handler) http.Handler) http.Handler {
	for i := len(stack) - 1; i >= 0; i-- {
		h = stack[i](h)
	}
	return h
}

func TestCommonStack(t *testing.T) {
	hits := 0
	final := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	})
	h := wrap(final, CommonStack(StackOptions{CORSOrigins: []string{"https://app.example.com"}, MaxInFlight: 2}))

	cases := []struct {
		name, method, path string
		origin             string
		code               int
		hits               int
	}{
		{name: "heartbeat short circuits", method: http.MethodGet, path: "/health", code: http.StatusOK},
		{name: "reaches handler", method: http.MethodGet, path: "/api/v1/meta/modules", code: http.StatusNoContent, hits: 1},
		{name: "preflight", method: http.MethodOptions, path: "/api/v1/transfers", origin: "https://app.example.com", code: http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hits = 0
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.code || hits != tc.hits {
				t.Fatalf("code=%d hits=%d, want %d %d", rr.Code, hits, tc.code, tc.hits)
			}
			if tc.origin != "" {
				if rr.Header().Get("Access-Control-Allow-Origin") != tc.origin || rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
					t.Fatalf("cors headers = %v", rr.Header())
				}
			}
		})
	}
}

func TestAuth_NilPortPassesThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	Auth(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("code = %d", rr.Code)
	}
}
