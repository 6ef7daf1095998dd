package middlewares

import (
	"strings"
	"time"

	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

var sessionColumns = []any{
	goqu.I("sessions.id"),
	goqu.I("sessions.token"),
	goqu.I("sessions.user_id"),
	goqu.I("sessions.expires_at"),
	goqu.I("sessions.ip_address"),
	goqu.I("sessions.user_agent"),
	goqu.I("sessions.created_at"),
	goqu.I("sessions.updated_at"),
	goqu.I("users.name").As("user_name"),
	goqu.I("users.email").As("user_email"),
	goqu.I("users.role").As("user_role"),
}

// sessionToken reads the session cookie first and falls back to the
// Authorization header.
func sessionToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// CheckAuth resolves the request's session token to a user. On success the
// context carries "currentUser" (models.AuthUser), "session" (models.Session)
// and "admin" (bool).
func CheckAuth(db *goqu.Database, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c, cookieName)
		if token == "" {
			apperrors.Respond(c, apperrors.Unauthenticated("No token provided"))
			return
		}

		var row models.SessionWithUser
		found, err := db.From("sessions").
			Join(goqu.T("users"), goqu.On(goqu.I("users.id").Eq(goqu.I("sessions.user_id")))).
			Select(sessionColumns...).
			Where(goqu.I("sessions.token").Eq(token)).
			ScanStructContext(c.Request.Context(), &row)
		if err != nil {
			apperrors.Respond(c, apperrors.Internal("Authentication failed", err))
			return
		}

		if !found {
			apperrors.Respond(c, apperrors.Unauthenticated("Invalid or expired token"))
			return
		}

		if row.Expired(time.Now()) {
			apperrors.Respond(c, apperrors.Unauthenticated("Session expired"))
			return
		}

		user := row.AuthUser()
		c.Set("currentUser", user)
		c.Set("session", row.Session)
		c.Set("admin", user.IsAdmin())
		c.Set("userID", user.ID)

		c.Next()
	}
}
