package model

import "time"

// User represents an account record as stored in the `users` table.  An
// account authenticates with a password, with an external OAuth provider,
// or with both once a provider has been linked to a password account.
// Handlers define their own response types so that PasswordHash never
// leaves the service layer.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name ("first last" for OAuth accounts).
//	Email        – unique email address.
//	PasswordHash – bcrypt hash; nil for OAuth-only accounts.
//	Provider     – linked identity provider ("google", "github") or nil.
//	ProviderID   – subject id at the provider; unique together with Provider.
//	Avatar       – profile picture URL supplied by the provider.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Name         string    // users.name
	Email        string    // users.email
	PasswordHash *string   // users.password_hash (nullable)
	Provider     *string   // users.provider (nullable)
	ProviderID   *string   // users.provider_id (nullable)
	Avatar       *string   // users.avatar (nullable)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// HasPassword reports whether the account can log in with a password.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// IsLinked reports whether an OAuth provider is attached to the account.
func (u User) IsLinked() bool {
	return u.Provider != nil && *u.Provider != ""
}
