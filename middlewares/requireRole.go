package middlewares

import (
	"fmt"

	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only when the authenticated user
// currently holds role. The role is re-read from the users table rather than
// taken from the session, so a demotion takes effect immediately. privilege
// completes the 403 message, e.g. "create devotions".
func RequireRole(db *goqu.Database, role models.Role, privilege string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get("currentUser")
		current, isUser := value.(models.AuthUser)
		if !ok || !isUser {
			apperrors.Respond(c, apperrors.Unauthenticated("Authentication required"))
			return
		}

		var user models.AuthUser
		found, err := db.From("users").
			Select("id", "name", "email", "role").
			Where(goqu.C("id").Eq(current.ID)).
			ScanStructContext(c.Request.Context(), &user)
		if err != nil {
			apperrors.Respond(c, apperrors.Internal("Failed to verify admin status", err))
			return
		}

		if !found {
			apperrors.Respond(c, apperrors.NotFound("User not found"))
			return
		}

		if user.Role != role {
			apperrors.Respond(c, apperrors.Forbidden(
				fmt.Sprintf("Admin access required. Only admin users can %s.", privilege),
			))
			return
		}

		current.Role = user.Role
		c.Set("currentUser", current)
		c.Set("admin", current.IsAdmin())

		c.Next()
	}
}
