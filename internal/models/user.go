package models

import "time"

type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Token     string
	Confirmed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
