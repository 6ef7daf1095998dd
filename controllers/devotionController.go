package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/filters"
	"github.com/DevotionLoop/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var devotionSearchColumns = []string{
	"devotions.title",
	"devotions.verse_reference",
	"devotions.content",
	"users.name",
}

func (ctl *Controller) devotionQuery() *goqu.SelectDataset {
	return ctl.DB.From("devotions").
		Join(goqu.T("users"), ownerJoin("devotions")).
		Select(
			goqu.T("devotions").All(),
			goqu.I("users.name").As("user_name"),
			goqu.I("users.email").As("user_email"),
		)
}

func (ctl *Controller) listDevotions(c *gin.Context, f *filters.Filter) ([]models.Devotion, error) {
	var rows []models.DevotionRow
	err := f.Apply(ctl.devotionQuery()).
		Order(goqu.I("devotions.devotion_date").Desc()).
		ScanStructsContext(c.Request.Context(), &rows)
	if err != nil {
		return nil, err
	}

	devotions := make([]models.Devotion, 0, len(rows))
	for _, row := range rows {
		devotions = append(devotions, row.WithUser())
	}
	return devotions, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// CreateDevotion stores a devotion authored by the authenticated admin.
func (ctl *Controller) CreateDevotion(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req models.DevotionCreate
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	if req.Title == "" || req.Content == "" || req.DevotionDate == "" || req.ReadTime == 0 {
		apperrors.Respond(c, apperrors.Validation("Missing required fields"))
		return
	}

	devotionDate, err := parseDevotionDate(req.DevotionDate)
	if err != nil {
		apperrors.Respond(c, apperrors.Validation("Invalid date format"))
		return
	}

	author := strings.TrimSpace(user.Name)
	if author == "" {
		author = "Anonymous"
	}

	devotion := models.Devotion{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Content:        req.Content,
		VerseReference: optional(req.VerseReference),
		ScriptureText:  optional(req.ScriptureText),
		DevotionDate:   devotionDate,
		CreatedAt:      time.Now().UTC(),
		ImageURL:       req.ImageURL,
		ReadTime:       req.ReadTime,
		Author:         author,
		UserID:         user.ID,
	}

	_, err = ctl.DB.Insert("devotions").
		Rows(devotion).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create devotion", err))
		return
	}

	zap.L().Info("Devotion created", zap.String("devotion_id", devotion.ID), zap.String("user_id", user.ID))
	c.JSON(http.StatusCreated, devotion)
}

// GetDevotions lists devotions, newest devotion date first, optionally
// filtered by a case-insensitive search over title, verse, content and author.
func (ctl *Controller) GetDevotions(c *gin.Context) {
	f := filters.New().Search(c.Query("search"), devotionSearchColumns...)

	devotions, err := ctl.listDevotions(c, f)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch devotions", err))
		return
	}

	c.JSON(http.StatusOK, devotions)
}

// GetDevotionsByDate returns the devotions whose date equals the given instant.
func (ctl *Controller) GetDevotionsByDate(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		apperrors.Respond(c, apperrors.Validation("Missing or invalid date"))
		return
	}

	date, err := parseDevotionDate(raw)
	if err != nil {
		apperrors.Respond(c, apperrors.Validation("Invalid date format"))
		return
	}

	devotions, err := ctl.listDevotions(c, filters.New().Where(filters.Eq("devotions.devotion_date", date)))
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch devotions by date", err))
		return
	}

	c.JSON(http.StatusOK, devotions)
}

func (ctl *Controller) GetDevotionByID(c *gin.Context) {
	var row models.DevotionRow
	found, err := ctl.devotionQuery().
		Where(goqu.I("devotions.id").Eq(c.Param("id"))).
		ScanStructContext(c.Request.Context(), &row)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch devotion", err))
		return
	}

	if !found {
		apperrors.Respond(c, apperrors.NotFound("Devotion not found"))
		return
	}

	c.JSON(http.StatusOK, row.WithUser())
}
