package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "email", "role", "email_verified", "created_at", "updated_at"}

func setupRoleService(t *testing.T) (*UserRoleService, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewUserRoleService(goqu.New("postgres", db)), mock
}

func userRow(id string, role models.Role) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(userRowColumns).
		AddRow(id, "Grace Hopper", "grace@example.com", string(role), true, now, now)
}

func TestPromote(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(mock sqlmock.Sqlmock)
		expectedErr error
		message     string
	}{
		{
			name: "promotes a regular user",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(userRow("u2", models.RoleUser))
				mock.ExpectQuery(`UPDATE "users" SET`).WillReturnRows(userRow("u2", models.RoleAdmin))
			},
		},
		{
			name: "unknown user",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(userRowColumns))
			},
			expectedErr: apperrors.ErrNotFound,
			message:     "User not found",
		},
		{
			name: "already an admin",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(userRow("u2", models.RoleAdmin))
			},
			expectedErr: apperrors.ErrValidation,
			message:     "User is already an admin",
		},
		{
			name: "update fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT").WillReturnRows(userRow("u2", models.RoleUser))
				mock.ExpectQuery("UPDATE").WillReturnError(errors.New("connection reset"))
			},
			expectedErr: apperrors.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := setupRoleService(t)
			tt.setup(mock)

			user, err := svc.Promote(context.Background(), "u2")
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				if tt.message != "" {
					var appErr *apperrors.AppError
					require.ErrorAs(t, err, &appErr)
					assert.Equal(t, tt.message, appErr.Message)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.RoleAdmin, user.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDemote(t *testing.T) {
	tests := []struct {
		name        string
		actorID     string
		targetRole  models.Role
		expectWrite bool
		expectedErr error
		message     string
	}{
		{
			name:        "demotes another admin",
			actorID:     "u1",
			targetRole:  models.RoleAdmin,
			expectWrite: true,
		},
		{
			name:        "target is not an admin",
			actorID:     "u1",
			targetRole:  models.RoleUser,
			expectedErr: apperrors.ErrValidation,
			message:     "User is not an admin",
		},
		{
			name:        "admin cannot demote themself",
			actorID:     "u2",
			targetRole:  models.RoleAdmin,
			expectedErr: apperrors.ErrValidation,
			message:     "You cannot demote yourself from admin. Another admin must do this.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := setupRoleService(t)
			mock.ExpectQuery("SELECT").WillReturnRows(userRow("u2", tt.targetRole))
			if tt.expectWrite {
				mock.ExpectQuery(`UPDATE "users" SET`).WillReturnRows(userRow("u2", models.RoleUser))
			}

			user, err := svc.Demote(context.Background(), tt.actorID, "u2")
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				var appErr *apperrors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.message, appErr.Message)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.RoleUser, user.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPromoteByEmail(t *testing.T) {
	tests := []struct {
		name          string
		role          models.Role
		accounts      int
		expectWrite   bool
		expectChanged bool
		expectedErr   error
	}{
		{name: "promotes a user with credentials", role: models.RoleUser, accounts: 1, expectWrite: true, expectChanged: true},
		{name: "already admin is a no-op", role: models.RoleAdmin, accounts: 1},
		{name: "user without accounts is rejected", role: models.RoleUser, accounts: 0, expectedErr: apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := setupRoleService(t)
			mock.ExpectQuery(`SELECT .* FROM "users"`).WillReturnRows(userRow("u2", tt.role))
			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "accounts"`).
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.accounts))
			if tt.expectWrite {
				mock.ExpectQuery("UPDATE").WillReturnRows(userRow("u2", models.RoleAdmin))
			}

			user, changed, err := svc.PromoteByEmail(context.Background(), "grace@example.com")
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectChanged, changed)
				assert.Equal(t, models.RoleAdmin, user.Role)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
