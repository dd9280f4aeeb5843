package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Mil05h/calories-ai/middlewares"
	"github.com/Mil05h/calories-ai/services"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) GetProfile(c *gin.Context) {
	user, err := uc.users.GetProfile(c.GetString(middlewares.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) UpdateProfile(c *gin.Context) {
	var input struct {
		DisplayName string `json:"display_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid-argument"})
		return
	}

	user, err := uc.users.UpdateDisplayName(c.GetString(middlewares.ContextUserID), input.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) UploadAvatar(c *gin.Context) {
	var input struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid-argument"})
		return
	}

	user, err := uc.users.UpdateAvatar(c.Request.Context(), c.GetString(middlewares.ContextUserID), input.ImageBase64)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": user.AvatarURL})
}
