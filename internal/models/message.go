package models

import "time"

// MessageModel is a contact form submission. Created is assigned by the store.
type MessageModel struct {
	ID      uint      `json:"id"      gorm:"primaryKey;autoIncrement"`
	Name    string    `json:"name"    gorm:"not null"`
	Email   string    `json:"email"   gorm:"not null"`
	Message string    `json:"message" gorm:"type:text;not null"`
	Created time.Time `json:"created" gorm:"not null"`
}

func (MessageModel) TableName() string { return "messages" }

type InsertMessage struct {
	Name    string `json:"name"    binding:"required"`
	Email   string `json:"email"   binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

func (in *InsertMessage) Validate() error {
	return validateStruct("message", in)
}
