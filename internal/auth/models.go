package auth

import "time"

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null"`
}

type User struct {
	UserID         string    `gorm:"primaryKey" json:"user_id"`
	Email          string    `gorm:"uniqueIndex;not null" json:"email"`
	Password       string    `json:"password" gorm:"-"`
	FullName       string    `json:"full_name" gorm:"-"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	Session        Session   `gorm:"foreignKey:UserID" json:"session"`
}

// Profile is the application-level user record, distinct from the credential
// row. Created lazily on first successful authentication.
type Profile struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `gorm:"default:'user'" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (Session) TableName() string { return "accounts.sessions" }
func (User) TableName() string    { return "accounts.users" }
func (Profile) TableName() string { return "accounts.profiles" }
