package user

import "github.com/mx-space/portfolio/internal/models"

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string            `json:"token"`
	User  *models.UserModel `json:"user"`
}
