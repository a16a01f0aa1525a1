package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type User struct {
	ID                uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name              string    `json:"name" gorm:"type:varchar(255)"`
	Email             string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_users_email"`
	PasswordHash      string    `json:"-" gorm:"type:varchar(255)"`
	ExternalSubject   *string   `json:"-" gorm:"type:varchar(255);uniqueIndex:idx_users_external_subject"`
	CompanyName       string    `json:"company_name" gorm:"type:varchar(255)"`
	Phone             string    `json:"phone" gorm:"type:varchar(50)"`
	PrimaryCategory   string    `json:"primary_category" gorm:"type:varchar(100)"`
	SecondaryCategory string    `json:"secondary_category" gorm:"type:varchar(100)"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Admin grants admin access to the user registered under Email.
type Admin struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_admins_email"`
	CreatedAt time.Time `json:"created_at"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a *Admin) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
