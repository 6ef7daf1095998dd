package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DevotionLoop/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/gin-gonic/gin"
)

// SetupTestDB creates a controller backed by a mock database. Notifications
// are disabled so handlers never touch the mock from a goroutine.
func SetupTestDB(t *testing.T) (*Controller, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	ctl := NewController(goqu.New("postgres", db), nil, SessionConfig{
		CookieName: "test_session",
		TTL:        time.Hour,
	})

	cleanup := func() {
		db.Close()
	}

	return ctl, mock, cleanup
}

// SetupTestContext creates a test Gin context with a response recorder and an
// empty GET request.
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

// SetAuthenticatedUser does what CheckAuth does for a valid session.
func SetAuthenticatedUser(c *gin.Context, user models.AuthUser) {
	c.Set("currentUser", user)
	c.Set("userID", user.ID)
	c.Set("admin", user.IsAdmin())
}

func jsonBody(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}
