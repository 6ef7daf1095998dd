package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/DevotionLoop/apperrors"
	"github.com/DevotionLoop/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength  = 8
	sessionTokenLength = 48
)

var errInvalidCredentials = apperrors.Unauthenticated("Invalid email or password")

// newSession builds a session for userID bound to the caller's address and
// user agent.
func (ctl *Controller) newSession(c *gin.Context, userID string) (models.Session, error) {
	token, err := gonanoid.New(sessionTokenLength)
	if err != nil {
		return models.Session{}, err
	}

	now := time.Now().UTC()
	ip := c.ClientIP()
	ua := c.Request.UserAgent()

	return models.Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(ctl.Session.TTL),
		IPAddress: optional(ip),
		UserAgent: optional(ua),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (ctl *Controller) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ctl.Session.CookieName, token, maxAge, "/", "", ctl.Session.Secure, true)
}

func (ctl *Controller) respondWithSession(c *gin.Context, status int, user models.User, session models.Session) {
	ctl.setSessionCookie(c, session.Token, int(ctl.Session.TTL.Seconds()))
	c.JSON(status, gin.H{
		"user":      user,
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
	})
}

// Signup registers an email/password user and signs them in. The user, its
// credential account and the first session are created in one transaction.
func (ctl *Controller) Signup(c *gin.Context) {
	var req models.UserSignup
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Password == "" {
		apperrors.Respond(c, apperrors.Validation("Missing required fields"))
		return
	}

	if len(req.Password) < minPasswordLength {
		apperrors.Respond(c, apperrors.Validation("Password must be at least 8 characters"))
		return
	}

	ctx := c.Request.Context()
	emailTaken := apperrors.Validation("Email is already registered")

	taken, err := ctl.DB.From("users").Where(goqu.C("email").Eq(email)).CountContext(ctx)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create account", err))
		return
	}
	if taken > 0 {
		apperrors.Respond(c, emailTaken)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create account", err))
		return
	}
	password := string(hash)

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	account := models.Account{
		ID:         uuid.NewString(),
		AccountID:  user.ID,
		ProviderID: models.CredentialProvider,
		UserID:     user.ID,
		Password:   &password,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	session, err := ctl.newSession(c, user.ID)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create session", err))
		return
	}

	tx, err := ctl.DB.BeginTx(ctx, nil)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create account", err))
		return
	}

	err = tx.Wrap(func() error {
		inserts := []*goqu.InsertDataset{
			tx.Insert("users").Rows(user),
			tx.Insert("accounts").Rows(account),
			tx.Insert("sessions").Rows(session),
		}
		for _, insert := range inserts {
			if _, err := insert.Executor().ExecContext(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		apperrors.Respond(c, emailTaken)
		return
	}
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create account", err))
		return
	}

	zap.L().Info("User signed up", zap.String("user_id", user.ID))

	go ctl.Notifier.NotifyWelcome(user.Email, user.Name)

	ctl.respondWithSession(c, http.StatusCreated, user, session)
}

// credentialHash returns the password hash of the user's credential account.
func (ctl *Controller) credentialHash(ctx context.Context, userID string) (string, bool, error) {
	var account models.Account
	found, err := ctl.DB.From("accounts").
		Where(goqu.Ex{"user_id": userID, "provider_id": models.CredentialProvider}).
		ScanStructContext(ctx, &account)
	if err != nil || !found || account.Password == nil {
		return "", false, err
	}
	return *account.Password, true, nil
}

func (ctl *Controller) Login(c *gin.Context) {
	var req models.UserLogin
	if err := bindJSON(c, &req); err != nil {
		apperrors.Respond(c, err)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		apperrors.Respond(c, apperrors.Validation("Missing required fields"))
		return
	}

	ctx := c.Request.Context()

	var user models.User
	found, err := ctl.DB.From("users").
		Where(goqu.C("email").Eq(email)).
		ScanStructContext(ctx, &user)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to log in", err))
		return
	}
	if !found {
		apperrors.Respond(c, errInvalidCredentials)
		return
	}

	hash, ok, err := ctl.credentialHash(ctx, user.ID)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to log in", err))
		return
	}
	if !ok || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		apperrors.Respond(c, errInvalidCredentials)
		return
	}

	session, err := ctl.newSession(c, user.ID)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create session", err))
		return
	}

	if _, err := ctl.DB.Insert("sessions").Rows(session).Executor().ExecContext(ctx); err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to create session", err))
		return
	}

	ctl.respondWithSession(c, http.StatusOK, user, session)
}

// Logout deletes the session the request was authenticated with.
func (ctl *Controller) Logout(c *gin.Context) {
	value, ok := c.Get("session")
	session, isSession := value.(models.Session)
	if !ok || !isSession {
		apperrors.Respond(c, apperrors.Unauthenticated("Authentication required"))
		return
	}

	_, err := ctl.DB.Delete("sessions").
		Where(goqu.C("id").Eq(session.ID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to log out", err))
		return
	}

	ctl.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// GetCurrentUser returns the authenticated user's profile.
func (ctl *Controller) GetCurrentUser(c *gin.Context) {
	current, err := currentUser(c)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var user models.User
	found, err := ctl.DB.From("users").
		Where(goqu.C("id").Eq(current.ID)).
		ScanStructContext(c.Request.Context(), &user)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal("Failed to fetch user profile", err))
		return
	}

	if !found {
		apperrors.Respond(c, apperrors.NotFound("User not found"))
		return
	}

	c.JSON(http.StatusOK, user)
}
