package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"go-gin-shop-api/internal/core/auth"
	"go-gin-shop-api/internal/domain"
	resp "go-gin-shop-api/internal/transport/http/response"
)

const KeyUser = "user"

const (
	MsgNoToken      = "No token provided."
	MsgTokenExpired = "Token has expired."
	MsgInvalidToken = "Invalid token."

	KindCheckToken   = "check the token"
	KindUserNotFound = "user not provided"
)

var authRejections = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "auth_rejections_total", Help: "Requests rejected by the authentication gate"},
	[]string{"reason"},
)

func init() { prometheus.MustRegister(authRejections) }

// TokenVerifier is satisfied by *auth.JWTer.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type userCtxKey struct{}

// Authenticate admits requests whose Authorization header carries a valid
// token for an existing user, and attaches that user to the request.
func Authenticate(v TokenVerifier, users domain.UserRepository, l *zap.Logger) gin.HandlerFunc {
	reject := func(c *gin.Context, reason, msg, kind string) {
		authRejections.WithLabelValues(reason).Inc()
		resp.Abort(c, http.StatusUnauthorized, msg, kind)
	}

	return func(c *gin.Context) {
		token := tokenFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			reject(c, "missing", MsgNoToken, "Unauthorized")
			return
		}

		claims, err := v.Verify(token)
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			reject(c, "expired", MsgTokenExpired, "Unauthorized")
			return
		case err != nil:
			reject(c, "invalid", MsgInvalidToken, KindCheckToken)
			return
		}

		u, err := users.FindByID(c.Request.Context(), claims.UserID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			reject(c, "unknown_user", MsgInvalidToken, KindUserNotFound)
			return
		case err != nil:
			l.Error("auth user lookup", zap.String("user_id", claims.UserID), zap.Error(err))
			reject(c, "lookup_error", MsgInvalidToken, KindCheckToken)
			return
		}

		c.Set(KeyUser, u)
		c.Request = c.Request.WithContext(WithUser(c.Request.Context(), u))
		c.Next()
	}
}

// tokenFromHeader accepts the raw token or "Bearer <token>".
func tokenFromHeader(h string) string {
	f := strings.Fields(h)
	switch {
	case len(f) == 0:
		return ""
	case strings.EqualFold(f[0], "bearer"):
		if len(f) == 2 {
			return f[1]
		}
		if len(f) == 1 {
			return ""
		}
	}
	return strings.TrimSpace(h)
}

func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*domain.User)
	return u, ok && u != nil
}

func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(KeyUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}
