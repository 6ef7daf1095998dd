package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// With no push or email backend configured the notifier must return without
// touching the database.
func TestNotifierDisabledIssuesNoQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gdb := goqu.New("postgres", db)
	n := NewNotifier(gdb, NewPushNotificationService(gdb), NewEmailService("", "noreply@example.com"))

	n.NotifyPrayerReceived("owner", "pr1", "Healing", "actor", "Ruth")
	n.NotifyCounselingResponse("u1", "cr1", "Grief", "responded", "We are praying with you.")
	n.NotifyWelcome("new@example.com", "New User")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.NotifyPrayerReceived("owner", "pr1", "t", "actor", "a")
		n.NotifyCounselingResponse("u1", "cr1", "s", "st", "r")
		n.NotifyWelcome("e", "n")
	})
}

func TestEmailServiceDisabled(t *testing.T) {
	svc := NewEmailService("", "noreply@example.com")
	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.SendWelcomeEmail("a@example.com", "A"), ErrEmailDisabled)
	assert.ErrorIs(t, svc.SendCounselingResponseEmail("a@example.com", "A", "s", "st", "r"), ErrEmailDisabled)
}
