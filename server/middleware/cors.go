package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/kbukum/edlflash/errors"
)

// CORSConfig controls which front ends may call the bridge from a browser
// context. Origins may end in ":*" to allow any port of a host, as dev
// servers of the desktop GUI pick their port at runtime.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials" mapstructure:"allow_credentials"`
	MaxAge           int      `yaml:"max_age" mapstructure:"max_age" validate:"gte=0"`
}

// DefaultOrigins are the origins of the desktop GUI's webview and its dev
// server.
var DefaultOrigins = []string{
	"tauri://localhost",
	"http://tauri.localhost",
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// CORS returns middleware that sets CORS headers for allowed origins and
// answers preflight requests itself. A request carrying any other Origin is
// answered 403 FORBIDDEN and never reaches next: simple requests such as a
// text/plain POST skip the preflight, so hiding the response is not enough.
// Requests without an Origin header (CLI clients, curl) pass through.
func CORS(cfg *CORSConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Add("Vary", "Origin")

			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !setCORSHeaders(h, origin, cfg) {
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(errors.Forbidden("origin not allowed").
					WithDetail("origin", origin).ToResponse())
				return
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				if cfg.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setCORSHeaders writes CORS response headers and reports whether origin is
// allowed.
func setCORSHeaders(h http.Header, origin string, cfg *CORSConfig) bool {
	if !matchOrigin(origin, cfg.AllowedOrigins) {
		return false
	}
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Expose-Headers", RequestIDHeader)
	if len(cfg.AllowedMethods) > 0 {
		h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
	}
	if len(cfg.AllowedHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
	}
	if cfg.AllowCredentials {
		h.Set("Access-Control-Allow-Credentials", "true")
	}
	return true
}

// matchOrigin reports whether origin is in allowed. "*" matches everything
// and "scheme://host:*" matches that host on any port.
func matchOrigin(origin string, allowed []string) bool {
	for _, a := range allowed {
		switch {
		case a == "*", a == origin:
			return true
		case strings.HasSuffix(a, ":*"):
			prefix := strings.TrimSuffix(a, "*")
			port := strings.TrimPrefix(origin, prefix)
			if port != origin && port != "" && isDigits(port) {
				return true
			}
		}
	}
	return false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
