package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/models"
	"github.com/DevotionLoop/services"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Controller holds the dependencies shared by every handler.
type Controller struct {
	DB       *goqu.Database
	Roles    *services.UserRoleService
	Notifier *services.Notifier
	Session  SessionConfig
}

func NewController(db *goqu.Database, notifier *services.Notifier, session SessionConfig) *Controller {
	return &Controller{
		DB:       db,
		Roles:    services.NewUserRoleService(db),
		Notifier: notifier,
		Session:  session,
	}
}

// currentUser returns the user CheckAuth attached to the request.
func currentUser(c *gin.Context) (models.AuthUser, error) {
	value, ok := c.Get("currentUser")
	if !ok {
		return models.AuthUser{}, apperrors.Unauthenticated("Authentication required")
	}

	user, ok := value.(models.AuthUser)
	if !ok || user.ID == "" {
		return models.AuthUser{}, apperrors.Unauthenticated("Authentication required")
	}
	return user, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperrors.Validation("Invalid request body").With("details", err.Error())
	}
	return nil
}

var devotionDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseDevotionDate accepts RFC 3339 timestamps, zone-less timestamps and
// plain dates. Zone-less values are read as UTC.
func parseDevotionDate(value string) (time.Time, error) {
	for _, layout := range devotionDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func ownerJoin(table string) exp.JoinCondition {
	return goqu.On(goqu.I("users.id").Eq(goqu.I(table + ".user_id")))
}
