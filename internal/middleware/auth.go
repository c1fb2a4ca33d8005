package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timesheet-api/internal/constants"
	apierrors "github.com/yukikurage/timesheet-api/internal/errors"
)

// RequireAuth admits requests whose session carries a user id and puts
// that id in the context as a uint64. A session holding anything else is
// cleared and treated as logged out.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		switch userID := session.Get(constants.ContextKeyUserID).(type) {
		case uint64:
			if userID == 0 {
				break
			}
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		case nil:
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		session.Clear()
		session.Options(sessions.Options{Path: "/", MaxAge: -1})
		_ = session.Save()

		apierrors.Unauthorized(c, "Session expired")
		c.Abort()
	}
}

// GetUserID returns the user id stored by RequireAuth.
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, ok := c.Get(constants.ContextKeyUserID)
	if !ok {
		return 0, false
	}
	id, ok := userID.(uint64)
	return id, ok
}
