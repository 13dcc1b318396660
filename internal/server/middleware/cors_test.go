package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		config         CORSConfig
		origin         string
		method         string
		expectedOrigin string
		expectedStatus int
		handlerCalled  bool
	}{
		{
			name:           "allow all origins",
			config:         DefaultCORSConfig(),
			origin:         "https://example.com",
			method:         "GET",
			expectedOrigin: "*",
			expectedStatus: http.StatusOK,
			handlerCalled:  true,
		},
		{
			name: "specific allowed origin",
			config: CORSConfig{
				AllowedOrigins: []string{"https://example.com"},
				AllowedMethods: []string{"GET"},
			},
			origin:         "https://example.com",
			method:         "GET",
			expectedOrigin: "https://example.com",
			expectedStatus: http.StatusOK,
			handlerCalled:  true,
		},
		{
			name: "disallowed origin",
			config: CORSConfig{
				AllowedOrigins: []string{"https://example.com"},
				AllowedMethods: []string{"GET"},
			},
			origin:         "https://evil.com",
			method:         "GET",
			expectedOrigin: "",
			expectedStatus: http.StatusOK,
			handlerCalled:  true,
		},
		{
			name:           "preflight request",
			config:         DefaultCORSConfig(),
			origin:         "https://example.com",
			method:         "OPTIONS",
			expectedOrigin: "*",
			expectedStatus: http.StatusNoContent,
			handlerCalled:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := CORS(tt.config)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/v1/candidates/752.01", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if called != tt.handlerCalled {
				t.Errorf("handler called = %v, want %v", called, tt.handlerCalled)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.expectedOrigin {
				t.Errorf("expected origin %q, got %q", tt.expectedOrigin, got)
			}
			if w.Header().Get("Access-Control-Expose-Headers") != RequestIDHeader {
				t.Error("request id header not exposed")
			}
		})
	}
}

func TestIsOriginAllowed(t *testing.T) {
	tests := []struct {
		origin  string
		allowed []string
		want    bool
	}{
		{"https://example.com", []string{"https://example.com"}, true},
		{"https://example.com", []string{"*"}, true},
		{"https://other.com", []string{"https://example.com"}, false},
		{"https://example.com", nil, false},
	}
	for _, tt := range tests {
		if got := isOriginAllowed(tt.origin, tt.allowed); got != tt.want {
			t.Errorf("isOriginAllowed(%q, %v) = %v, want %v", tt.origin, tt.allowed, got, tt.want)
		}
	}
}
