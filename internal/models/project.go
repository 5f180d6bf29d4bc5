package models

import "strings"

// ProjectModel is a portfolio project entry.
type ProjectModel struct {
	ID          uint        `json:"id"          gorm:"primaryKey;autoIncrement"`
	Title       string      `json:"title"       gorm:"not null"`
	Description string      `json:"description" gorm:"type:text;not null"`
	Content     string      `json:"content"     gorm:"type:longtext;not null"`
	Image       string      `json:"image"       gorm:"not null"`
	Tags        StringArray `json:"tags"        gorm:"type:longtext"`
	Link        *string     `json:"link"`
	Github      *string     `json:"github"`
	CategoryID  *uint       `json:"categoryId"  gorm:"index"`
}

func (ProjectModel) TableName() string { return "projects" }

// InsertProject is the create payload for a project. Tags must be present but may be empty.
type InsertProject struct {
	Title       string   `json:"title"       binding:"required"`
	Description string   `json:"description" binding:"required"`
	Content     string   `json:"content"     binding:"required"`
	Image       string   `json:"image"       binding:"required"`
	Tags        []string `json:"tags"        binding:"required"`
	Link        *string  `json:"link"`
	Github      *string  `json:"github"`
	CategoryID  *uint    `json:"categoryId"  binding:"omitempty,gt=0"`
}

func (in *InsertProject) Validate() error {
	return validateStruct("project", in)
}

// Model materialises the payload into a record with the given id.
func (in *InsertProject) Model(id uint) ProjectModel {
	return ProjectModel{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		Image:       in.Image,
		Tags:        NewStringArray(in.Tags),
		Link:        optionalString(in.Link),
		Github:      optionalString(in.Github),
		CategoryID:  in.CategoryID,
	}
}

// optionalString maps blank optional fields to NULL.
func optionalString(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
