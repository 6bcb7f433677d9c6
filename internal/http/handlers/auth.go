package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/notebook-buddy/backend/internal/http/response"
	"github.com/notebook-buddy/backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Provider string `json:"provider"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	user, err := ah.authService.CreateUser(c.Request.Context(), services.CreateUserParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Provider: req.Provider,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, user)
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondValidationError(c, err)
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	expiresIn := int(ah.authService.AccessTTL().Seconds())
	response.RespondOK(c, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"is_demo":      user.IsDemo,
		"access_token": token,
		"expires_in":   expiresIn,
	})
}

// CreateDemoUser provisions a throwaway account. The plaintext password is
// returned here and nowhere else.
func (ah *AuthHandler) CreateDemoUser(c *gin.Context) {
	user, creds, token, err := ah.authService.CreateDemoUser(c.Request.Context())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"id":           user.ID,
		"email":        creds.Email,
		"password":     creds.Password,
		"is_demo":      true,
		"access_token": token,
	})
}
