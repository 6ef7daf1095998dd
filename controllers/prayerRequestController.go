package controllers

import (
	"context"
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

const defaultPageSize = 20

var prayerRequestSearchColumns = []string{
	"prayer_requests.title",
	"prayer_requests.description",
	"users.name",
}

func (ctl *Controller) prayerRequestQuery() *goqu.SelectDataset {
	return ctl.DB.From("prayer_requests").
		Join(goqu.T("users"), ownerJoin("prayer_requests")).
		Select(
			goqu.T("prayer_requests").All(),
			goqu.I("users.name").As("user_name"),
			goqu.I("users.email").As("user_email"),
		)
}

// prayersFor loads the prayers of the given requests, newest first, grouped
// by prayer request id.
func (ctl *Controller) prayersFor(ctx context.Context, ids []string) (map[string][]models.Prayer, error) {
	grouped := make(map[string][]models.Prayer, len(ids))
	if len(ids) == 0 {
		return grouped, nil
	}

	var rows []models.PrayerRow
	err := ctl.DB.From("prayers").
		Join(goqu.T("users"), ownerJoin("prayers")).
		Select(goqu.T("prayers").All(), goqu.I("users.name").As("user_name")).
		Where(goqu.I("prayers.prayer_request_id").In(ids)).
		Order(goqu.I("prayers.created_at").Desc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		grouped[row.PrayerRequestID] = append(grouped[row.PrayerRequestID], row.WithUser())
	}
	return grouped, nil
}

// withPrayers attaches prayers to each request. prayerCount is recomputed
// from the loaded rows rather than read from the stored counter.
func (ctl *Controller) withPrayers(ctx context.Context, rows []models.PrayerRequestRow) ([]models.PrayerRequestDetail, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	prayers, err := ctl.prayersFor(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]models.PrayerRequestDetail, 0, len(rows))
	for _, row := range rows {
		list := prayers[row.ID]
		if list == nil {
			list = []models.Prayer{}
		}

		pr := row.WithUser()
		pr.PrayerCount = len(list)
		details = append(details, models.PrayerRequestDetail{PrayerRequest: pr, Prayers: list})
	}
	return details, nil
}

func (ctl *Controller) prayerRequestDetail(ctx context.Context, id string) (models.PrayerRequestDetail, bool, error) {
	var row models.PrayerRequestRow
	found, err := ctl.prayerRequestQuery().
		Where(goqu.I("prayer_requests.id").Eq(id)).
		ScanStructContext(ctx, &row)
	if err != nil || !found {
		return models.PrayerRequestDetail{}, found, err
	}

	details, err := ctl.withPrayers(ctx, []models.PrayerRequestRow{row})
	if err != nil {
		return models.PrayerRequestDetail{}, false, err
	}
	return details[0], true, nil
}

// findPrayerRequest loads the bare prayer request row.
func (ctl *Controller) findPrayerRequest(ctx context.Context, id string) (models.PrayerRequest, error) {
	var pr models.PrayerRequest
	found, err := ctl.DB.From("prayer_requests").
		Where(goqu.C("id").Eq(id)).
		ScanStructContext(ctx, &pr)
	if err != nil {
		return models.PrayerRequest{}, apperrors.Internal("Failed to fetch prayer request", err)
	}
	if !found {
		return models.PrayerRequest{}, apperrors.NotFound("Prayer request not found")
	}
	return pr, nil
}

// ownedPrayerRequest loads a prayer request and checks that user owns it.
func (ctl *Controller) ownedPrayerRequest(c *gin.Context, user models.AuthUser, action string) (models.PrayerRequest, error) {
	pr, err := ctl.findPrayerRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		return models.PrayerRequest{}, err
	}

	if pr.UserID != user.ID {
		return models.PrayerRequest{}, apperrors.Forbidden("Not authorized to " + action + " this prayer request")
	}
	return pr, nil
}

func (ctl *Controller) listPrayerRequests(c *gin.Context, f *filters.Filter) {
	page, err := filters.ParsePage(c.Query("limit"), c.Query("offset"), defaultPageSize)
	if err != nil {
		apperrors.Respond(c, apperrors.Validation("Invalid pagination parameters"))
		return
	}

	ctx := c.Request.Context()

	var rows []models.PrayerRequestRow
	err = page.Apply(f.Apply(ctl.prayerRequestQuery())).
		Order(goqu.I("prayer_requests.created_at").Desc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch prayer requests", err))
		return
	}

	details, err := ctl.withPrayers(ctx, rows)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch prayer requests", err))
		return
	}

	c.JSON(http.StatusOK, details)
}

func (ctl *Controller) CreatePrayerRequest(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req models.PrayerRequestCreate
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if title == "" || description == "" {
		apperrors.Respond(c, apperrors.Validation("Missing required fields"))
		return
	}

	now := time.Now().UTC()
	pr := models.PrayerRequest{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		IsAnonymous: req.IsAnonymous,
		Status:      models.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      user.ID,
	}

	_, err = ctl.DB.Insert("prayer_requests").
		Rows(pr).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create prayer request", err))
		return
	}

	pr.User = &models.UserSummary{ID: user.ID, Name: user.Name, Email: user.Email}
	c.JSON(http.StatusCreated, models.PrayerRequestDetail{PrayerRequest: pr, Prayers: []models.Prayer{}})
}

// GetPrayerRequests lists prayer requests. Without a status filter only
// active requests are returned.
func (ctl *Controller) GetPrayerRequests(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		status = string(models.StatusActive)
	}

	f := filters.New().
		Search(c.Query("search"), prayerRequestSearchColumns...).
		Where(filters.Eq("prayer_requests.status", status))

	ctl.listPrayerRequests(c, f)
}

func (ctl *Controller) GetMyPrayerRequests(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	f := filters.New().Where(filters.Eq("prayer_requests.user_id", user.ID))
	if status := c.Query("status"); status != "" {
		f.Where(filters.Eq("prayer_requests.status", status))
	}

	ctl.listPrayerRequests(c, f)
}

func (ctl *Controller) GetPrayerRequestByID(c *gin.Context) {
	detail, found, err := ctl.prayerRequestDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch prayer request", err))
		return
	}

	if !found {
		apperrors.Respond(c, apperrors.NotFound("Prayer request not found"))
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdatePrayerRequest lets the owner change title, description and status.
// Blank fields and unknown statuses are ignored.
func (ctl *Controller) UpdatePrayerRequest(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req models.PrayerRequestUpdate
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	pr, err := ctl.ownedPrayerRequest(c, user, "update")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	record := goqu.Record{"updated_at": time.Now().UTC()}
	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != "" {
			record["title"] = title
		}
	}
	if req.Description != nil {
		if description := strings.TrimSpace(*req.Description); description != "" {
			record["description"] = description
		}
	}
	if req.Status != nil && models.PrayerRequestStatus(*req.Status).Valid() {
		record["status"] = *req.Status
	}

	ctx := c.Request.Context()
	_, err = ctl.DB.Update("prayer_requests").
		Set(record).
		Where(goqu.C("id").Eq(pr.ID)).
		Executor().
		ExecContext(ctx)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to update prayer request", err))
		return
	}

	detail, found, err := ctl.prayerRequestDetail(ctx, pr.ID)
	if err != nil || !found {
		apperrors.Respond(c, apperrors.Internal("Failed to update prayer request", err))
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (ctl *Controller) DeletePrayerRequest(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	pr, err := ctl.ownedPrayerRequest(c, user, "delete")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	_, err = ctl.DB.Delete("prayer_requests").
		Where(goqu.C("id").Eq(pr.ID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to delete prayer request", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prayer request deleted successfully"})
}

// PrayForRequest records that the authenticated user prayed for an active
// request. The prayer row and the counter increment commit together; the
// unique (user_id, prayer_request_id) constraint rejects concurrent duplicates.
func (ctl *Controller) PrayForRequest(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	ctx := c.Request.Context()

	pr, err := ctl.findPrayerRequest(ctx, c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if pr.Status != models.StatusActive {
		apperrors.Respond(c, apperrors.Validation("Cannot pray for inactive prayer requests"))
		return
	}

	alreadyPrayed := apperrors.Validation("You have already prayed for this request")

	existing, err := ctl.DB.From("prayers").
		Where(goqu.Ex{"user_id": user.ID, "prayer_request_id": pr.ID}).
		CountContext(ctx)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to add prayer", err))
		return
	}
	if existing > 0 {
		apperrors.Respond(c, alreadyPrayed)
		return
	}

	now := time.Now().UTC()
	prayer := models.Prayer{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		PrayerRequestID: pr.ID,
		CreatedAt:       now,
	}

	tx, err := ctl.DB.BeginTx(ctx, nil)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to add prayer", err))
		return
	}

	err = tx.Wrap(func() error {
		if _, err := tx.Insert("prayers").Rows(prayer).Executor().ExecContext(ctx); err != nil {
			return err
		}

		_, err := tx.Update("prayer_requests").
			Set(goqu.Record{
				"prayer_count": goqu.L(`"prayer_count" + 1`),
				"updated_at":   now,
			}).
			Where(goqu.C("id").Eq(pr.ID)).
			Executor().
			ExecContext(ctx)
		return err
	})
	if isUniqueViolation(err) {
		apperrors.Respond(c, alreadyPrayed)
		return
	}
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to add prayer", err))
		return
	}

	detail, found, err := ctl.prayerRequestDetail(ctx, pr.ID)
	if err != nil || !found {
		apperrors.Respond(c, apperrors.Internal("Failed to add prayer", err))
		return
	}

	zap.L().Info("Prayer added", zap.String("prayer_request_id", pr.ID), zap.String("user_id", user.ID))

	go ctl.Notifier.NotifyPrayerReceived(pr.UserID, pr.ID, pr.Title, user.ID, user.Name)

	c.JSON(http.StatusOK, gin.H{
		"message":       "Prayer added successfully",
		"prayerRequest": detail,
	})
}
