// Package middleware provides HTTP middleware for the service layer.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/supabase/client"
)

// AuthUser is the authenticated identity attached to the request.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	// Role is the staff role from the profiles row, resolved by the
	// profile loader; the raw Supabase role claim is "authenticated".
	Role string `json:"role"`
}

type authUserKey struct{}
type authTokenKey struct{}

// AuthConfig configures Supabase JWT verification.
type AuthConfig struct {
	// SupabaseURL is the project URL, used for the GoTrue fallback.
	SupabaseURL string
	// AnonKey authenticates the fallback request.
	AnonKey string
	// JWTSecret verifies tokens locally when set; preferred because it
	// avoids a network round trip per request.
	JWTSecret string
}

// Auth validates Supabase access tokens. Requests without an
// Authorization header pass through unauthenticated; handlers that need
// an identity use RequireAuth.
type Auth struct {
	config AuthConfig
	logger *logging.Logger
	client *http.Client
}

// NewAuth creates the auth middleware.
func NewAuth(config AuthConfig, logger *logging.Logger) *Auth {
	return &Auth{
		config: config,
		logger: logger,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Handler returns the middleware handler.
func (a *Auth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeAuthError(w, errors.Unauthorized("invalid authorization header format"))
			return
		}
		token := parts[1]

		user, err := a.validateToken(r.Context(), token)
		if err != nil {
			a.logger.WithContext(r.Context()).WithError(err).Warn("token validation failed")
			writeAuthError(w, errors.InvalidToken(err))
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey{}, user)
		ctx = context.WithValue(ctx, authTokenKey{}, token)
		ctx = context.WithValue(ctx, logging.UserIDKey, user.ID)
		// Row operations downstream run under the caller's row-level
		// security policies, not the configured key.
		ctx = client.WithAccessToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests that carry no authenticated identity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if UserFromContext(r.Context()) == nil {
			writeAuthError(w, errors.Unauthorized("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) validateToken(ctx context.Context, token string) (*AuthUser, error) {
	if a.config.JWTSecret != "" {
		if user, err := a.validateLocal(token); err == nil {
			return user, nil
		}
	}
	return a.validateRemote(ctx, token)
}

// validateLocal verifies the HMAC signature with the project JWT secret.
func (a *Auth) validateLocal(token string) (*AuthUser, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.config.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("jwt invalid")
	}

	user := &AuthUser{}
	if sub, ok := claims["sub"].(string); ok {
		user.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if user.ID == "" {
		return nil, fmt.Errorf("jwt missing sub claim")
	}
	return user, nil
}

// validateRemote asks GoTrue who the token belongs to.
func (a *Auth) validateRemote(ctx context.Context, token string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.SupabaseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", a.config.AnonKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validate token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token rejected: %s", strings.TrimSpace(string(body)))
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

// UserFromContext returns the authenticated user, or nil.
func UserFromContext(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(authUserKey{}).(*AuthUser)
	return user
}

// TokenFromContext returns the raw bearer token for row-level security
// pass-through, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(authTokenKey{}).(string)
	return token
}

// WithUser attaches an identity to the context. Used by the profile
// loader to upgrade the identity with its staff role, and by tests.
func WithUser(ctx context.Context, user *AuthUser) context.Context {
	ctx = context.WithValue(ctx, authUserKey{}, user)
	if user != nil && user.Role != "" {
		ctx = context.WithValue(ctx, logging.RoleKey, user.Role)
	}
	return ctx
}

func writeAuthError(w http.ResponseWriter, serr *errors.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]any{"error": serr.Message, "code": serr.Code})
}
