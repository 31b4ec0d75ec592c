package models

// User is an account able to sign in. PasswordHash holds a bcrypt hash and
// is never re-hashed once stored.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
}
