// Package auth resolves the calling user from a bearer token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"ms-booking/internal/config"
	"ms-booking/internal/logger"
	"ms-booking/internal/utils"

	"github.com/coreos/go-oidc/v3/oidc"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Verifier checks a raw token and returns the user id it carries.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (string, error)
}

type HS256Verifier struct {
	Secret []byte
}

func (v HS256Verifier) Verify(_ context.Context, rawToken string) (string, error) {
	return ParseHS256(rawToken, v.Secret)
}

type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier discovers the issuer's keys. Audience is not checked.
func NewOIDCVerifier(ctx context.Context, issuer string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc provider %s: %w", issuer, err)
	}
	return &OIDCVerifier{verifier: provider.Verifier(&oidc.Config{SkipClientIDCheck: true})}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var claims struct {
		Sub string `json:"sub"`
	}
	if err := idToken.Claims(&claims); err != nil || claims.Sub == "" {
		return "", fmt.Errorf("%w: subject claim not found", ErrInvalidToken)
	}
	return claims.Sub, nil
}

// NewVerifier builds the verifier for cfg.Mode. It returns nil when auth is
// off.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (Verifier, error) {
	switch cfg.Mode {
	case "", "none":
		return nil, nil
	case "hs256":
		if cfg.JWTSecret == "" {
			return nil, errors.New("JWT_SECRET is required for AUTH_MODE=hs256")
		}
		return HS256Verifier{Secret: []byte(cfg.JWTSecret)}, nil
	case "oidc":
		if cfg.OIDCIssuer == "" {
			return nil, errors.New("OIDC_ISSUER is required for AUTH_MODE=oidc")
		}
		v, err := NewOIDCVerifier(ctx, cfg.OIDCIssuer)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown AUTH_MODE %q", cfg.Mode)
	}
}

// Middleware puts the token subject in the request context. A nil verifier
// lets every request through untouched.
func Middleware(v Verifier, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse(err.Error(), "UNAUTHORIZED"))
				return
			}
			userID, err := v.Verify(r.Context(), rawToken)
			if err != nil {
				log.LogSecurity("TOKEN_REJECTED", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
				utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("invalid token", "UNAUTHORIZED"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the authenticated user, or "" when auth is off.
func UserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}
