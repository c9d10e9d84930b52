// Package auth verifies bearer tokens on the admin surface.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Config controls token verification. When Enabled is false the middleware
// passes every request through, which is how local development runs.
type Config struct {
	Enabled bool
	Secret  string
}

// Middleware verifies HS256 bearer tokens.
type Middleware struct {
	cfg    Config
	logger *zap.Logger
}

// NewMiddleware creates the auth middleware.
func NewMiddleware(cfg Config, logger *zap.Logger) *Middleware {
	return &Middleware{cfg: cfg, logger: logger}
}

// Require wraps a handler so it only runs with a valid bearer token.
func (m *Middleware) Require(next http.Handler) http.Handler {
	if !m.cfg.Enabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err == nil {
			err = m.verify(token)
		}
		if err != nil {
			m.logger.Debug("rejected request",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			w.Header().Set("WWW-Authenticate", `Bearer realm="gridreport"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) verify(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(m.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return fmt.Errorf("invalid token")
	}
	return nil
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("Authorization header is not a bearer token")
	}
	return strings.TrimPrefix(header, prefix), nil
}
