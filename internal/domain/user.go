package domain

import "time"

// User is the persisted account record. PasswordHash never leaves the service layer.
type User struct {
	ID           int64
	Name         string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserView is the public projection of a User.
type UserView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
}

// View projects the record into its public shape.
func (u *User) View() *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:       u.ID,
		Name:     u.Name,
		LastName: u.LastName,
		Email:    u.Email,
	}
}
