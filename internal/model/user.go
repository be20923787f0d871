package model

import "time"

// Role distinguishes the two kinds of users. Only coaches publish
// availability slots and only students book them.
type Role string

const (
	RoleCoach   Role = "coach"
	RoleStudent Role = "student"
)

// User represents a row in the `users` table. Users are immutable after
// creation; the service ships with a seeded set and exposes no update path.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Name      – display name.
//  Email     – unique email address.
//  Phone     – contact phone number (users.phone_number).
//  Role      – either "coach" or "student".
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone_number"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
