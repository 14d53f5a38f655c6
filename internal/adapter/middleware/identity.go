package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	userDomain "loanflow-backend/internal/domain/user"

	"github.com/labstack/echo/v4"
)

// TokenParser resolves a bearer token to the principal it was issued for.
type TokenParser interface {
	Parse(raw string) (userDomain.Principal, error)
}

type principalKey struct{}

const serviceKey = "service_caller"

// WithPrincipal stores p on ctx.
func WithPrincipal(ctx context.Context, p userDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal set by Identity, or the zero value.
func PrincipalFrom(ctx context.Context) userDomain.Principal {
	p, _ := ctx.Value(principalKey{}).(userDomain.Principal)
	return p
}

// Identity requires "Authorization: Bearer <token>" and puts the caller's
// principal on the request context.
func Identity(tp TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(echo.HeaderAuthorization)
			scheme, tok, ok := strings.Cut(raw, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			}
			p, err := tp.Parse(strings.TrimSpace(tok))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), p)))
			return next(c)
		}
	}
}

// ServiceToken admits only trusted internal callers presenting
// X-Service-Token. An empty configured token closes the route.
func ServiceToken(name, token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got := c.Request().Header.Get("X-Service-Token")
			if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "service token required"})
			}
			c.Set(serviceKey, name)
			return next(c)
		}
	}
}

// caller names who is making the request for idempotency keys.
func caller(c echo.Context) string {
	if p := PrincipalFrom(c.Request().Context()); p.UserID != "" {
		return p.UserID
	}
	if s, ok := c.Get(serviceKey).(string); ok && s != "" {
		return "svc-" + s
	}
	return ""
}
