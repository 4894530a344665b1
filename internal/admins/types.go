package admins

import "time"

// Admin is a stored admin account. PasswordHash and the reset token fields
// never leave the service layer.
type Admin struct {
	ID                  string
	Email               string
	DisplayName         string
	PasswordHash        string
	ResetTokenHash      string
	ResetTokenExpiresAt time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Profile is the public projection of an admin returned by the API.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile returns the public projection of the account.
func (a Admin) Profile() Profile {
	return Profile{ID: a.ID, Name: a.DisplayName, Email: a.Email}
}
