package initializers

import (
	"net/http"
	"strings"
	"time"

	"github.com/DevotionLoop/controllers"
	"github.com/DevotionLoop/middlewares"
	"github.com/DevotionLoop/models"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const authBodyLimit = 1 << 20

func corsConfig(origin string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Cookie"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// Browsers reject a literal * together with credentials, so reflect the
	// caller's origin instead.
	if origin == "" || origin == "*" {
		cfg.AllowOriginFunc = func(string) bool { return true }
		return cfg
	}

	for _, o := range strings.Split(origin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	return cfg
}

func recovery(c *gin.Context, recovered any) {
	zap.L().Error("Recovered from panic",
		zap.Any("panic", recovered),
		zap.String("request_id", c.GetString("requestID")),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// NewRouter wires every route of the API onto a fresh engine.
func NewRouter(cfg Config, ctl *controllers.Controller) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.CustomRecovery(recovery),
		middlewares.RequestID(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodOptions
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("user_id", v))
				}

				return fields
			},
		}),
		cors.New(corsConfig(cfg.CORSOrigin)),
	)

	router.HandleMethodNotAllowed = true

	auth := middlewares.CheckAuth(ctl.DB, cfg.SessionCookieName)
	admin := func(privilege string) gin.HandlerFunc {
		return middlewares.RequireRole(ctl.DB, models.RoleAdmin, privilege)
	}

	router.GET("/", controllers.Root)

	api := router.Group("/api")
	{
		api.GET("/health", controllers.Health)

		credentials := api.Group("",
			middlewares.RateLimitMiddleware(2, 2, middlewares.ClientIPKey),
			middlewares.BodySizeLimiter(authBodyLimit),
		)
		credentials.POST("/signup", ctl.Signup)
		credentials.POST("/login", ctl.Login)

		api.POST("/logout", auth, ctl.Logout)
		api.GET("/me", auth, ctl.GetCurrentUser)
		api.POST("/users/push-token", auth, ctl.StorePushToken)
	}

	devotions := api.Group("/devotions")
	{
		devotions.POST("", auth, admin("create devotions"), ctl.CreateDevotion)
		devotions.GET("", ctl.GetDevotions)
		devotions.GET("/date", ctl.GetDevotionsByDate)
		devotions.GET("/:id", ctl.GetDevotionByID)
	}

	prayerRequests := api.Group("/prayer-requests")
	{
		prayerRequests.GET("", ctl.GetPrayerRequests)
		prayerRequests.GET("/user/my-requests", auth, ctl.GetMyPrayerRequests)
		prayerRequests.POST("", auth, ctl.CreatePrayerRequest)
		prayerRequests.POST("/:id/pray", auth, ctl.PrayForRequest)
		prayerRequests.GET("/:id", ctl.GetPrayerRequestByID)
		prayerRequests.PUT("/:id", auth, ctl.UpdatePrayerRequest)
		prayerRequests.DELETE("/:id", auth, ctl.DeletePrayerRequest)
	}

	counseling := api.Group("/counseling", auth)
	{
		counseling.POST("", ctl.CreateCounselingRequest)
		counseling.GET("", ctl.GetMyCounselingRequests)
		counseling.GET("/admin", admin("manage counseling requests"), ctl.GetAllCounselingRequests)
		counseling.PUT("/:id", admin("manage counseling requests"), ctl.UpdateCounselingStatus)
	}

	adminGroup := api.Group("/admin",
		auth,
		admin("manage other users"),
		middlewares.RateLimitMiddleware(5, 5, middlewares.ClientIPKey),
	)
	{
		adminGroup.GET("/users", ctl.GetAllUsers)
		adminGroup.GET("/users/search", ctl.SearchUsers)
		adminGroup.GET("/stats", ctl.GetAdminStats)
		adminGroup.POST("/users/:userId/promote", ctl.PromoteToAdmin)
		adminGroup.POST("/users/:userId/demote", ctl.DemoteFromAdmin)
	}

	return router
}
