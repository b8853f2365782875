package jwt

import (
	"strings"

	"FPKProgress/pkg/actor"
	"FPKProgress/pkg/back"
	"FPKProgress/pkg/util/myjwt"
	"FPKProgress/pkg/xerr"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := myjwt.ParseToken(tokenString)
		if err != nil {
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("uuid", claims.Uuid)
		c.Set("username", claims.Username)
		c.Set(actorKey, actor.New(claims.Uuid, claims.OrgId, claims.Role))
		c.Next()
	}
}

// ActorFrom 取出 Auth 中间件写入的调用方身份
func ActorFrom(c *gin.Context) (actor.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return actor.Actor{}, false
	}
	a, ok := v.(actor.Actor)
	if !ok || a.UserID == "" {
		return actor.Actor{}, false
	}
	return a, true
}
