package petstoreserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/Apurer/pet-adoption-api/internal/domains/users/domain"
	apierrors "github.com/Apurer/pet-adoption-api/internal/shared/errors"
	"github.com/Apurer/pet-adoption-api/internal/shared/auth"
)

const (
	principalKey = "petstoreserver.principal"
	tokenKey     = "petstoreserver.token"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*userdomain.User, error)
}

// Authenticate resolves an optional bearer token. A present but invalid
// token is rejected; anonymous requests pass through.
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" || authenticator == nil {
			c.Next()
			return
		}
		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("invalid or expired token"))
			c.Abort()
			return
		}
		c.Set(principalKey, auth.Principal{UserID: user.ID, Username: user.Username, Staff: user.Staff})
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !principalFrom(c).Authenticated() {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("authentication credentials were not provided"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) auth.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(auth.Principal); ok {
			return p
		}
	}
	return auth.Principal{}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return strings.TrimSpace(token)
	}
	return ""
}
