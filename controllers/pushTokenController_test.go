package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePushToken(t *testing.T) {
	tests := []struct {
		name           string
		body           map[string]interface{}
		expectUpsert   bool
		expectedStatus int
	}{
		{
			name:           "stores ios token",
			body:           map[string]interface{}{"pushToken": "ExponentPushToken[abcdefghijk]", "platform": "ios"},
			expectUpsert:   true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "token too short",
			body:           map[string]interface{}{"pushToken": "short", "platform": "android"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "token too long",
			body:           map[string]interface{}{"pushToken": strings.Repeat("a", 501), "platform": "android"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unsupported platform",
			body:           map[string]interface{}{"pushToken": "fcm-token-1234567890", "platform": "windows"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl, mock, cleanup := SetupTestDB(t)
			defer cleanup()

			c, w := SetupTestContext()
			c.Request = httptest.NewRequest("POST", "/api/users/push-token", jsonBody(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")
			SetAuthenticatedUser(c, MockUser())

			if tt.expectUpsert {
				mock.ExpectExec(`INSERT INTO "push_tokens" .* ON CONFLICT \(token\) DO UPDATE SET`).
					WillReturnResult(sqlmock.NewResult(1, 1))
			}

			ctl.StorePushToken(c)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			if tt.expectUpsert {
				assert.Equal(t, "Push token stored successfully", response["message"])
			} else {
				assert.Equal(t, "Invalid request body", response["error"])
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
