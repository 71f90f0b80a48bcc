package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tripndrop/internal/domain"
	"tripndrop/internal/logx"
)

type actorKey struct{}

// Claims is the bearer token payload: sub is the caller id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth verifies an HS256 bearer token and stores the caller as domain.Actor
// in the request context. Requests without a valid token get 401.
func Auth(secret []byte, logger logx.Logger) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFn := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, logger, "missing bearer token")
				return
			}

			claims := &Claims{}
			if _, err := parser.ParseWithClaims(raw, claims, keyFn); err != nil {
				logger.Debug("token rejected", logx.Err(err))
				unauthorized(w, logger, "invalid or expired token")
				return
			}

			actor, err := claims.actor()
			if err != nil {
				unauthorized(w, logger, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole rejects callers whose role is not role with 403.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok || actor.Role != role {
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(domain.Actor)
	return a, ok
}

// ActorKey returns the caller id for rate limiting, or "" for anonymous requests.
func ActorKey(r *http.Request) string {
	if a, ok := ActorFromContext(r.Context()); ok {
		return "actor:" + a.ID
	}
	return ""
}

// SignToken issues an HS256 token for actor valid for ttl.
func SignToken(secret []byte, actor domain.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *Claims) actor() (domain.Actor, error) {
	id := strings.TrimSpace(c.Subject)
	if id == "" {
		return domain.Actor{}, errors.New("token has no subject")
	}
	role := domain.Role(strings.ToLower(strings.TrimSpace(c.Role)))
	if !role.Valid() {
		return domain.Actor{}, errors.New("token has unknown role")
	}
	return domain.Actor{ID: id, Role: role}, nil
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, logger logx.Logger, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="tripndrop"`)
	if err := writeJSONError(w, http.StatusUnauthorized, msg); err != nil {
		logger.Debug("auth response write failed", logx.Err(err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := io.WriteString(w, `{"error":"`+msg+`"}`)
	return err
}
