package models

import "time"

// AccountModel represents the database model for Account
type AccountModel struct {
	ID           string     `gorm:"type:uuid;primaryKey"`
	FirstName    string     `gorm:"type:varchar(100);not null"`
	LastName     string     `gorm:"type:varchar(100);not null"`
	Name         string     `gorm:"type:varchar(255);not null"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone        string     `gorm:"type:varchar(32);not null"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	IsAdmin      bool       `gorm:"not null"`
	ResetToken   *string    `gorm:"type:varchar(64)"`
	ResetExpires *time.Time `gorm:"type:timestamptz"`
	CreatedAt    time.Time  `gorm:"not null"`
	UpdatedAt    time.Time  `gorm:"not null"`
}

func (AccountModel) TableName() string {
	return "accounts"
}

// MessageModel represents the database model for a contact message
type MessageModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Subject   string    `gorm:"type:varchar(255);not null"`
	Body      string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (MessageModel) TableName() string {
	return "messages"
}
