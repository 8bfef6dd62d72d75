package models

import "time"

// RoleUser is the only role assigned today; ADMIN is reserved.
const RoleUser = "USER"

type User struct {
	ID            int64
	Username      string
	Email         string
	DisplayName   string
	PasswordHash  string
	Role          string
	MonthlyBudget float64
	CreatedAt     time.Time
}

// Profile is the external projection of a User. It never carries the
// password hash.
type Profile struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"displayName"`
	Role          string    `json:"role"`
	MonthlyBudget float64   `json:"monthlyBudget"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Role:          u.Role,
		MonthlyBudget: u.MonthlyBudget,
		CreatedAt:     u.CreatedAt,
	}
}
