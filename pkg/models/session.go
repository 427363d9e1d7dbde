package models

import "time"

// Session is the locally persisted login of the current user. Token fields
// are only set by providers that issue bearer tokens.
type Session struct {
	Email        string    `yaml:"email"`
	Provider     string    `yaml:"provider"`
	AccessToken  string    `yaml:"access_token,omitempty"`
	TokenType    string    `yaml:"token_type,omitempty"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	Expiry       time.Time `yaml:"expiry,omitempty"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// UserRecord is a locally registered account.
type UserRecord struct {
	Email        string    `yaml:"email"`
	PasswordHash string    `yaml:"password_hash"`
	CreatedAt    time.Time `yaml:"created_at"`
}
