package domain

import (
	"errors"
	"time"
)

type Role string

const (
	RoleCashier Role = "cashier"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleRank = map[Role]int{
	RoleCashier: 1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min in admin > manager > cashier.
func (r Role) AtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	return have >= roleRank[min]
}

// User is a staff account able to operate the till
type User struct {
	V            int       `json:"v"`
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) Upgrade() error {
	if err := upgradeVersion(&u.V); err != nil {
		return err
	}
	if !u.Role.Valid() {
		return errors.New("user with unknown role " + string(u.Role))
	}
	return nil
}

// RefreshToken represents a refresh token issued at login
type RefreshToken struct {
	V         int       `json:"v"`
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	Revoked   bool      `json:"revoked"`
}

func (t *RefreshToken) Upgrade() error {
	return upgradeVersion(&t.V)
}
