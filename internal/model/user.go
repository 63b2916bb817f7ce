package model

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// Identity is what a verified session token tells us about the caller.
type Identity struct {
	UserID int64
	Email  string
}
