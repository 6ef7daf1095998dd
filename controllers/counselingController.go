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

func (ctl *Controller) CreateCounselingRequest(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var req models.CounselingRequestCreate
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	if req.Subject == "" || req.Message == "" {
		apperrors.Respond(c, apperrors.Validation("Missing required fields"))
		return
	}

	if req.Urgency == "" {
		req.Urgency = models.UrgencyNormal
	}

	now := time.Now().UTC()
	cr := models.CounselingRequest{
		ID:          uuid.NewString(),
		Subject:     req.Subject,
		Message:     req.Message,
		Urgency:     req.Urgency,
		IsAnonymous: req.IsAnonymous,
		Status:      models.CounselingPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      user.ID,
	}

	_, err = ctl.DB.Insert("counseling_requests").
		Rows(cr).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create counseling request", err))
		return
	}

	c.JSON(http.StatusCreated, cr)
}

func (ctl *Controller) GetMyCounselingRequests(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	requests := []models.CounselingRequest{}
	err = ctl.DB.From("counseling_requests").
		Where(goqu.C("user_id").Eq(user.ID)).
		Order(goqu.C("created_at").Desc()).
		ScanStructsContext(c.Request.Context(), &requests)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch counseling requests", err))
		return
	}

	c.JSON(http.StatusOK, requests)
}

// GetAllCounselingRequests is the admin view and includes who asked.
func (ctl *Controller) GetAllCounselingRequests(c *gin.Context) {
	var rows []models.CounselingRequestRow
	err := ctl.DB.From("counseling_requests").
		Join(goqu.T("users"), ownerJoin("counseling_requests")).
		Select(
			goqu.T("counseling_requests").All(),
			goqu.I("users.name").As("user_name"),
			goqu.I("users.email").As("user_email"),
		).
		Order(goqu.I("counseling_requests.created_at").Desc()).
		ScanStructsContext(c.Request.Context(), &rows)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch counseling requests", err))
		return
	}

	requests := make([]models.CounselingRequest, 0, len(rows))
	for _, row := range rows {
		requests = append(requests, row.WithUser())
	}

	c.JSON(http.StatusOK, requests)
}

// UpdateCounselingStatus sets the status and optional response of a request.
// Status is stored as given. An empty response clears it.
func (ctl *Controller) UpdateCounselingStatus(c *gin.Context) {
	var req models.CounselingStatusUpdate
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	if req.Status == "" {
		apperrors.Respond(c, apperrors.Validation("Missing required fields"))
		return
	}

	var response any
	if req.Response != nil && *req.Response != "" {
		response = *req.Response
	}

	var cr models.CounselingRequest
	found, err := ctl.DB.Update("counseling_requests").
		Set(goqu.Record{
			"status":     req.Status,
			"response":   response,
			"updated_at": time.Now().UTC(),
		}).
		Where(goqu.C("id").Eq(c.Param("id"))).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &cr)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to update counseling request", err))
		return
	}

	if !found {
		apperrors.Respond(c, apperrors.NotFound("Counseling request not found"))
		return
	}

	if cr.Response != nil {
		go ctl.Notifier.NotifyCounselingResponse(cr.UserID, cr.ID, cr.Subject, cr.Status, *cr.Response)
	}

	c.JSON(http.StatusOK, cr)
}
