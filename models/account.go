package models

import "time"

// CredentialProvider is the provider_id of email/password accounts.
const CredentialProvider = "credential"

type Account struct {
	ID         string    `json:"id" db:"id"`
	AccountID  string    `json:"accountId" db:"account_id"`
	ProviderID string    `json:"providerId" db:"provider_id"`
	UserID     string    `json:"userId" db:"user_id"`
	Password   *string   `json:"-" db:"password"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}
