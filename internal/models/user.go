package models

import "github.com/Tonooka01/sistema-analise/pkg/database"

type User struct {
	ID           int64         `db:"id" json:"id"`
	Username     string        `db:"username" json:"username"`
	PasswordHash string        `db:"password_hash" json:"-"`
	IsActive     *bool         `db:"is_active" json:"is_active"`
	LastSeen     database.Text `db:"last_seen" json:"last_seen"`
}

// Active treats a missing flag as active, matching rows created before the column existed.
func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// UserStatus is a row of the admin user panel.
type UserStatus struct {
	ID       int64         `json:"id"`
	Username string        `json:"username"`
	IsActive bool          `json:"is_active"`
	LastSeen database.Text `json:"last_seen"`
	IsOnline bool          `json:"is_online"`
}

type AccessLog struct {
	ID        int64         `db:"id" json:"id"`
	Username  database.Text `db:"username" json:"username"`
	Path      database.Text `db:"path" json:"path"`
	Method    database.Text `db:"method" json:"method"`
	IPAddress database.Text `db:"ip_address" json:"ip_address"`
	Timestamp database.Text `db:"timestamp" json:"timestamp"`
}
