package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lifecheck/lifecheck/services"
	"github.com/lifecheck/lifecheck/utils"
)

// ContextPrincipalKey is the gin context key the resolved principal is
// stored under. Handlers read it through CurrentPrincipal only.
const ContextPrincipalKey = "principal"

// Authenticate validates a bearer token and attaches the resolved principal
// to the request context. It never rejects: every failure path leaves the
// request anonymous and continues the chain, so public routes work untouched
// and protected routes enforce access through RequireAuth. Each rejection
// reason is logged distinctly from a request that never carried a token.
func Authenticate(tokens *utils.TokenService, directory *services.UserDirectory) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" {
			// legitimately anonymous; nothing to log at audit level
			ctx.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Sugar.Warnw("token rejected", "reason", "bad authorization scheme", "ip", ctx.ClientIP())
			ctx.Next()
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			utils.Sugar.Warnw("token rejected", "reason", "empty bearer token", "ip", ctx.ClientIP())
			ctx.Next()
			return
		}

		subject, err := tokens.Validate(tokenStr)
		if err != nil {
			utils.Sugar.Warnw("token rejected", "reason", err.Error(), "ip", ctx.ClientIP())
			ctx.Next()
			return
		}

		principal, err := directory.ResolvePrincipal(ctx.Request.Context(), subject)
		if err != nil {
			utils.Sugar.Warnw("token rejected", "reason", "subject not resolvable", "subject", subject, "ip", ctx.ClientIP())
			ctx.Next()
			return
		}

		ctx.Set(ContextPrincipalKey, principal)
		ctx.Next()
	}
}

// RequireAuth rejects requests that reached the handler without a principal.
func RequireAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, ok := CurrentPrincipal(ctx); !ok {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentPrincipal returns the principal attached by Authenticate, if any.
func CurrentPrincipal(ctx *gin.Context) (services.Principal, bool) {
	value, exists := ctx.Get(ContextPrincipalKey)
	if !exists {
		return services.Principal{}, false
	}
	principal, ok := value.(services.Principal)
	return principal, ok
}
