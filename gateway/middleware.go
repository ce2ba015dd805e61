package gateway

import (
	"github.com/gin-gonic/gin"

	"github.com/example/charcoalshop/pkg/apperr"
	"github.com/example/charcoalshop/pkg/auth"
)

const identityKey = "identity"

func (g *Gateway) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.Authenticate(&g.config.Auth, c.GetHeader("Authorization"))
		if err != nil {
			g.abort(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// requireAdmin must run after requireAuth.
func (g *Gateway) requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identity(c)
		if !ok || !id.IsAdmin() {
			g.abort(c, apperr.Authorization("admin access required"))
			return
		}
		c.Next()
	}
}

func identity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func currentUserID(c *gin.Context) string {
	id, _ := identity(c)
	return id.UserID
}
