package models

// BlogPostModel is a published blog article.
type BlogPostModel struct {
	ID          uint        `json:"id"          gorm:"primaryKey;autoIncrement"`
	Title       string      `json:"title"       gorm:"not null"`
	Content     string      `json:"content"     gorm:"type:longtext;not null"`
	Summary     string      `json:"summary"     gorm:"type:text;not null"`
	PublishDate Date        `json:"publishDate" gorm:"type:date;not null"`
	Tags        StringArray `json:"tags"        gorm:"type:longtext"`
	CategoryID  *uint       `json:"categoryId"  gorm:"index"`
}

func (BlogPostModel) TableName() string { return "blog_posts" }

// InsertBlogPost is the create payload for a blog post.
type InsertBlogPost struct {
	Title       string   `json:"title"       binding:"required"`
	Content     string   `json:"content"     binding:"required"`
	Summary     string   `json:"summary"     binding:"required"`
	PublishDate string   `json:"publishDate" binding:"required,datetime=2006-01-02"`
	Tags        []string `json:"tags"        binding:"required"`
	CategoryID  *uint    `json:"categoryId"  binding:"omitempty,gt=0"`
}

func (in *InsertBlogPost) Validate() error {
	return validateStruct("blog post", in)
}

// Model materialises the payload into a record with the given id.
// Validate must have succeeded first.
func (in *InsertBlogPost) Model(id uint) (BlogPostModel, error) {
	date, err := ParseDate(in.PublishDate)
	if err != nil {
		return BlogPostModel{}, NewValidationError("blog post", err.Error(), FieldError{Field: "publishDate", Rule: "datetime"})
	}
	return BlogPostModel{
		ID:          id,
		Title:       in.Title,
		Content:     in.Content,
		Summary:     in.Summary,
		PublishDate: date,
		Tags:        NewStringArray(in.Tags),
		CategoryID:  in.CategoryID,
	}, nil
}
