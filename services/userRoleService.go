package services

import (
	"context"
	"fmt"
	"time"

	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/models"

	"github.com/doug-martin/goqu/v9"
)

var userColumns = []any{"id", "name", "email", "role", "email_verified", "created_at", "updated_at"}

// UserRoleService changes user roles. It is shared by the admin API and the
// make-admin command.
type UserRoleService struct {
	db *goqu.Database
}

func NewUserRoleService(db *goqu.Database) *UserRoleService {
	return &UserRoleService{db: db}
}

func (s *UserRoleService) findUser(ctx context.Context, where goqu.Ex) (models.User, error) {
	var user models.User
	found, err := s.db.From("users").
		Select(userColumns...).
		Where(where).
		ScanStructContext(ctx, &user)
	if err != nil {
		return models.User{}, apperrors.Internal("Failed to load user", err)
	}
	if !found {
		return models.User{}, apperrors.NotFound("User not found")
	}
	return user, nil
}

func (s *UserRoleService) setRole(ctx context.Context, userID string, role models.Role) (models.User, error) {
	var user models.User
	_, err := s.db.Update("users").
		Set(goqu.Record{"role": string(role), "updated_at": time.Now().UTC()}).
		Where(goqu.C("id").Eq(userID)).
		Returning(userColumns...).
		Executor().
		ScanStructContext(ctx, &user)
	return user, err
}

// Promote grants the admin role to userID.
func (s *UserRoleService) Promote(ctx context.Context, userID string) (models.User, error) {
	target, err := s.findUser(ctx, goqu.Ex{"id": userID})
	if err != nil {
		return models.User{}, err
	}

	if target.Role == models.RoleAdmin {
		return models.User{}, apperrors.Validation("User is already an admin").With("user", summary(target))
	}

	user, err := s.setRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return models.User{}, apperrors.Internal("Failed to promote user to admin", err)
	}
	return user, nil
}

// Demote returns userID to the regular role. Admins cannot demote themselves.
func (s *UserRoleService) Demote(ctx context.Context, actorID, userID string) (models.User, error) {
	target, err := s.findUser(ctx, goqu.Ex{"id": userID})
	if err != nil {
		return models.User{}, err
	}

	if target.Role != models.RoleAdmin {
		return models.User{}, apperrors.Validation("User is not an admin").With("user", summary(target))
	}

	if target.ID == actorID {
		return models.User{}, apperrors.Validation("You cannot demote yourself from admin. Another admin must do this.")
	}

	user, err := s.setRole(ctx, userID, models.RoleUser)
	if err != nil {
		return models.User{}, apperrors.Internal("Failed to demote user from admin", err)
	}
	return user, nil
}

// PromoteByEmail promotes the user registered under email. The user must have
// at least one authentication account. It reports whether the role changed.
func (s *UserRoleService) PromoteByEmail(ctx context.Context, email string) (models.User, bool, error) {
	user, err := s.findUser(ctx, goqu.Ex{"email": email})
	if err != nil {
		return models.User{}, false, err
	}

	var accounts int64
	if _, err := s.db.From("accounts").
		Select(goqu.COUNT("*")).
		Where(goqu.C("user_id").Eq(user.ID)).
		ScanValContext(ctx, &accounts); err != nil {
		return models.User{}, false, apperrors.Internal("Failed to load accounts", err)
	}
	if accounts == 0 {
		return models.User{}, false, apperrors.Validation(fmt.Sprintf("User %s has no authentication. Sign up through the app first.", email))
	}

	if user.Role == models.RoleAdmin {
		return user, false, nil
	}

	updated, err := s.setRole(ctx, user.ID, models.RoleAdmin)
	if err != nil {
		return models.User{}, false, apperrors.Internal("Failed to promote user to admin", err)
	}
	return updated, true, nil
}

func summary(u models.User) map[string]any {
	return map[string]any{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role}
}
