package controllers

import (
	"fmt"
	"net/http"

	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/filters"
	"github.com/DevotionLoop/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const userSearchLimit = 50

// userWithCountsQuery selects users with the number of devotions, prayer
// requests and prayers each one owns. Admins sort first because 'admin'
// orders before 'user'.
func (ctl *Controller) userWithCountsQuery() *goqu.SelectDataset {
	return ctl.DB.From("users").
		Select(
			"id", "name", "email", "role", "email_verified", "created_at", "updated_at",
			goqu.L(`(SELECT COUNT(*) FROM "devotions" WHERE "devotions"."user_id" = "users"."id")`).As("devotion_count"),
			goqu.L(`(SELECT COUNT(*) FROM "prayer_requests" WHERE "prayer_requests"."user_id" = "users"."id")`).As("prayer_request_count"),
			goqu.L(`(SELECT COUNT(*) FROM "prayers" WHERE "prayers"."user_id" = "users"."id")`).As("prayer_count"),
		).
		Order(goqu.C("role").Asc(), goqu.C("created_at").Desc())
}

func (ctl *Controller) scanUsersWithCounts(c *gin.Context, ds *goqu.SelectDataset) ([]models.UserWithCounts, error) {
	users := []models.UserWithCounts{}
	if err := ds.ScanStructsContext(c.Request.Context(), &users); err != nil {
		return nil, err
	}

	for i := range users {
		users[i].FillCounts()
	}
	return users, nil
}

func (ctl *Controller) GetAllUsers(c *gin.Context) {
	users, err := ctl.scanUsersWithCounts(c, ctl.userWithCountsQuery())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch users", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"total":   len(users),
	})
}

func (ctl *Controller) SearchUsers(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		apperrors.Respond(c, apperrors.Validation("Search query is required"))
		return
	}

	ds := filters.New().
		Search(query, "name", "email").
		Apply(ctl.userWithCountsQuery()).
		Limit(userSearchLimit)

	users, err := ctl.scanUsersWithCounts(c, ds)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to search users", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
		"query":   query,
		"total":   len(users),
	})
}

func (ctl *Controller) PromoteToAdmin(c *gin.Context) {
	user, err := ctl.Roles.Promote(c.Request.Context(), c.Param("userId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	zap.L().Info("User promoted to admin", zap.String("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("User %s (%s) has been promoted to admin", user.Name, user.Email),
		"user":    user,
	})
}

func (ctl *Controller) DemoteFromAdmin(c *gin.Context) {
	actor, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	user, err := ctl.Roles.Demote(c.Request.Context(), actor.ID, c.Param("userId"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	zap.L().Info("User demoted from admin", zap.String("user_id", user.ID), zap.String("by", actor.ID))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("User %s (%s) has been demoted from admin", user.Name, user.Email),
		"user":    user,
	})
}

// GetAdminStats runs its counts concurrently, so they are not a consistent
// snapshot of the database.
func (ctl *Controller) GetAdminStats(c *gin.Context) {
	var (
		stats       models.AdminStats
		totalUsers  int64
		totalAdmins int64
		devotions   int64
		prayerReqs  int64
		recentUsers = []models.RecentUser{}
	)
	g, ctx := errgroup.WithContext(c.Request.Context())

	g.Go(func() (err error) {
		totalUsers, err = ctl.DB.From("users").CountContext(ctx)
		return err
	})
	g.Go(func() (err error) {
		totalAdmins, err = ctl.DB.From("users").Where(goqu.C("role").Eq(string(models.RoleAdmin))).CountContext(ctx)
		return err
	})
	g.Go(func() (err error) {
		devotions, err = ctl.DB.From("devotions").CountContext(ctx)
		return err
	})
	g.Go(func() (err error) {
		prayerReqs, err = ctl.DB.From("prayer_requests").CountContext(ctx)
		return err
	})
	g.Go(func() error {
		return ctl.DB.From("users").
			Select("id", "name", "email", "role", "created_at").
			Order(goqu.C("created_at").Desc()).
			Limit(5).
			ScanStructsContext(ctx, &recentUsers)
	})

	if err := g.Wait(); err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch statistics", err))
		return
	}

	stats.Users = models.UserStats{Total: totalUsers, Admins: totalAdmins, Regular: totalUsers - totalAdmins}
	stats.Content = models.ContentStats{Devotions: devotions, PrayerRequests: prayerReqs}
	stats.RecentUsers = recentUsers

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   stats,
	})
}
