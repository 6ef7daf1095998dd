package services

import (
	"errors"
	"fmt"
	"html"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

var ErrEmailDisabled = errors.New("email service not initialized")

type EmailService struct {
	client *resend.Client
	from   string
}

// NewEmailService returns a Resend-backed sender. Without an API key the
// service is returned disabled.
func NewEmailService(apiKey, from string) *EmailService {
	if apiKey == "" {
		zap.L().Warn("RESEND_API_KEY not set, email service will not be available")
		return &EmailService{from: from}
	}

	return &EmailService{client: resend.NewClient(apiKey), from: from}
}

func (s *EmailService) Enabled() bool {
	return s != nil && s.client != nil
}

const emailLayout = `
<!DOCTYPE html>
<html>
<head>
    <style>
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            border-bottom: 2px solid #8a6fb0;
        }
        .header h1 {
            color: #8a6fb0;
            margin: 0;
        }
        .content {
            padding: 30px 0;
        }
        .response {
            background-color: #f5f5f5;
            border-left: 4px solid #8a6fb0;
            padding: 16px;
            margin: 20px 0;
            white-space: pre-wrap;
        }
        .footer {
            text-align: center;
            padding: 20px 0;
            border-top: 1px solid #ddd;
            font-size: 12px;
            color: #666;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>%s</h1>
    </div>

    <div class="content">
%s
    </div>

    <div class="footer">
        <p>You are receiving this email because you have an account with Devotion.</p>
    </div>
</body>
</html>
`

func (s *EmailService) send(to, subject, heading, content string) error {
	if !s.Enabled() {
		return ErrEmailDisabled
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    fmt.Sprintf(emailLayout, heading, content),
	}

	sent, err := s.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email, %w", err)
	}

	zap.L().Info("Sent email", zap.String("subject", subject), zap.String("email_id", sent.Id))
	return nil
}

// SendWelcomeEmail greets a newly registered user.
func (s *EmailService) SendWelcomeEmail(toEmail, name string) error {
	content := fmt.Sprintf(`
        <h2>Welcome, %s!</h2>
        <p>Thank you for joining. A new devotion is waiting for you every day,
        and you can share prayer requests and pray for others in the community.</p>
        <p>Blessings,<br>The Devotion Team</p>`, html.EscapeString(name))

	return s.send(toEmail, "Welcome to Devotion!", "Welcome to Devotion", content)
}

// SendCounselingResponseEmail tells the requester that their counseling
// request was answered.
func (s *EmailService) SendCounselingResponseEmail(toEmail, name, subject, status, response string) error {
	content := fmt.Sprintf(`
        <h2>Hi %s,</h2>
        <p>Your counseling request <strong>%s</strong> has been updated to <strong>%s</strong>.</p>
        <div class="response">%s</div>
        <p>Blessings,<br>The Devotion Team</p>`,
		html.EscapeString(name),
		html.EscapeString(subject),
		html.EscapeString(status),
		html.EscapeString(response),
	)

	return s.send(toEmail, "Response to your counseling request", "Counseling Update", content)
}
