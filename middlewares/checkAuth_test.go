package middlewares

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DevotionLoop/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "devetionmobile_session"

var sessionRowColumns = []string{
	"id", "token", "user_id", "expires_at", "ip_address", "user_agent",
	"created_at", "updated_at", "user_name", "user_email", "user_role",
}

// Setup test database
func setupTestDB(t *testing.T) (*goqu.Database, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return goqu.New("postgres", db), mock
}

// Setup test Gin context
func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func sessionRows(expiresAt time.Time, role models.Role) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(sessionRowColumns).
		AddRow("s1", "tok-123", "u1", expiresAt, nil, nil, now, now, "Test User", "test@example.com", string(role))
}

func TestCheckAuth(t *testing.T) {
	tests := []struct {
		name              string
		cookie            string
		authHeader        string
		mock              func(mock sqlmock.Sqlmock)
		expectedStatus    int
		expectedError     string
		expectCurrentUser bool
		expectAdmin       bool
	}{
		{
			name:           "no token at all",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "No token provided",
		},
		{
			name:           "non-bearer authorization header",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "No token provided",
		},
		{
			name:       "unknown token",
			authHeader: "Bearer nope",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT .* FROM "sessions" INNER JOIN "users"`).
					WillReturnRows(sqlmock.NewRows(sessionRowColumns))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid or expired token",
		},
		{
			name:       "expired session",
			authHeader: "Bearer tok-123",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(sessionRows(time.Now().Add(-time.Hour), models.RoleUser))
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Session expired",
		},
		{
			name:       "valid bearer token",
			authHeader: "Bearer tok-123",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(sessionRows(time.Now().Add(time.Hour), models.RoleUser))
			},
			expectedStatus:    http.StatusOK,
			expectCurrentUser: true,
		},
		{
			name:   "valid cookie for an admin",
			cookie: "tok-123",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`"sessions"."token" = 'tok-123'`).
					WillReturnRows(sessionRows(time.Now().Add(time.Hour), models.RoleAdmin))
			},
			expectedStatus:    http.StatusOK,
			expectCurrentUser: true,
			expectAdmin:       true,
		},
		{
			name:       "cookie takes precedence over header",
			cookie:     "tok-123",
			authHeader: "Bearer other-token",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`'tok-123'`).
					WillReturnRows(sessionRows(time.Now().Add(time.Hour), models.RoleUser))
			},
			expectedStatus:    http.StatusOK,
			expectCurrentUser: true,
		},
		{
			name:       "database failure",
			authHeader: "Bearer tok-123",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Authentication failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupTestDB(t)
			if tt.mock != nil {
				tt.mock(mock)
			}

			c, w := setupTestContext()
			if tt.authHeader != "" {
				c.Request.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				c.Request.AddCookie(&http.Cookie{Name: testCookie, Value: tt.cookie})
			}

			CheckAuth(db, testCookie)(c)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				assert.True(t, c.IsAborted())
				assert.Contains(t, w.Body.String(), tt.expectedError)
			}

			user, exists := c.Get("currentUser")
			assert.Equal(t, tt.expectCurrentUser, exists)
			if tt.expectCurrentUser {
				authUser, ok := user.(models.AuthUser)
				require.True(t, ok)
				assert.Equal(t, "u1", authUser.ID)
				assert.Equal(t, tt.expectAdmin, c.GetBool("admin"))

				session, ok := c.Get("session")
				require.True(t, ok)
				assert.Equal(t, "s1", session.(models.Session).ID)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
