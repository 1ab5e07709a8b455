// Package security sets response hardening headers and flags probing
// requests before they reach the ledger API.
package security

import (
	"fmt"
	"net/http"
)

// HeadersConfig holds the hardening headers applied to every response.
type HeadersConfig struct {
	CSP               string
	HSTSMaxAge        int // seconds, sent only over TLS
	FrameOptions      string
	ContentTypeOpts   string
	ReferrerPolicy    string
	PermissionsPolicy string
}

// DefaultHeadersConfig allows the chart page to load HTMX and Chart.js from
// unpkg and jsdelivr and nothing else.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'self'; " +
			"script-src 'self' https://unpkg.com https://cdn.jsdelivr.net; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data:; " +
			"connect-src 'self'; " +
			"object-src 'none'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'self'",
		HSTSMaxAge:        31536000,
		FrameOptions:      "DENY",
		ContentTypeOpts:   "nosniff",
		ReferrerPolicy:    "strict-origin-when-cross-origin",
		PermissionsPolicy: "geolocation=(), microphone=(), camera=(), payment=()",
	}
}

// Headers returns middleware that applies cfg before calling next.
func Headers(cfg HeadersConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", cfg.ContentTypeOpts)
			h.Set("X-Frame-Options", cfg.FrameOptions)
			h.Set("Referrer-Policy", cfg.ReferrerPolicy)
			if cfg.CSP != "" {
				h.Set("Content-Security-Policy", cfg.CSP)
			}
			if cfg.PermissionsPolicy != "" {
				h.Set("Permissions-Policy", cfg.PermissionsPolicy)
			}
			if r.TLS != nil && cfg.HSTSMaxAge > 0 {
				h.Set("Strict-Transport-Security", fmt.Sprintf("max-age=%d; includeSubDomains", cfg.HSTSMaxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
