package controllers

import (
	"net/http"
	"time"

	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StorePushToken registers a device for push notifications. A token already
// known is moved to the caller.
func (ctl *Controller) StorePushToken(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req models.PushTokenRequest
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	now := time.Now().UTC()
	token := models.PushToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     req.Token,
		Platform:  req.Platform,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = ctl.DB.Insert("push_tokens").
		Rows(token).
		OnConflict(goqu.DoUpdate("token", goqu.Record{
			"user_id":    goqu.I("excluded.user_id"),
			"platform":   goqu.I("excluded.platform"),
			"updated_at": goqu.I("excluded.updated_at"),
		})).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to store push token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token stored successfully"})
}
