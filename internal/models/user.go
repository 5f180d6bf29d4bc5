package models

// UserModel is an account allowed to sign in to the admin area.
// Password always holds a bcrypt hash.
type UserModel struct {
	ID       uint   `json:"id"       gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;not null"`
	Password string `json:"-"        gorm:"not null"`
	IsAdmin  bool   `json:"isAdmin"  gorm:"not null;default:false"`
}

func (UserModel) TableName() string { return "users" }

// InsertUser carries an already hashed password.
type InsertUser struct {
	Username     string `json:"username" binding:"required,min=3"`
	PasswordHash string `json:"-"        binding:"required"`
	IsAdmin      bool   `json:"isAdmin"`
}

func (in *InsertUser) Validate() error {
	return validateStruct("user", in)
}
