package auth

import "strings"

// Config drives authentication behavior.
type Config struct {
	// AdminEmails may call catalog write routes. Empty disables the check.
	AdminEmails []string
}

// User is the identity resolved by the external identity service.
type User struct {
	ID            string `json:"id"`
	Fullname      string `json:"fullname"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	IsActive      bool   `json:"isActive"`
}

// Credentials are the request headers forwarded to the identity service.
type Credentials struct {
	Authorization string
	RefreshToken  string
	Service       string
}

// Empty reports whether no bearer credential was supplied.
func (c Credentials) Empty() bool {
	return strings.TrimSpace(c.Authorization) == ""
}
