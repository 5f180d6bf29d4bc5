package models

// CategoryType partitions categories between the project and blog listings.
type CategoryType string

const (
	CategoryTypeProject CategoryType = "project"
	CategoryTypeBlog    CategoryType = "blog"
)

func (t CategoryType) Valid() bool {
	return t == CategoryTypeProject || t == CategoryTypeBlog
}

// CategoryModel groups projects or blog posts for display.
type CategoryModel struct {
	ID   uint         `json:"id"   gorm:"primaryKey;autoIncrement"`
	Name string       `json:"name" gorm:"not null"`
	Type CategoryType `json:"type" gorm:"type:varchar(16);index;not null"`
}

func (CategoryModel) TableName() string { return "categories" }

// InsertCategory is the create payload for a category.
type InsertCategory struct {
	Name string       `json:"name" binding:"required"`
	Type CategoryType `json:"type" binding:"required,oneof=project blog"`
}

func (in *InsertCategory) Validate() error {
	return validateStruct("category", in)
}
