// internal/handlers/auth.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vatsal2312/TinyAstro/internal/services"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/wallet
func (h *AuthHandler) WalletToken(c *gin.Context) {
	var req services.WalletTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	tokenResponse, err := h.authService.IssueWalletToken(&req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, tokenResponse)
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.OperatorLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	tokenResponse, err := h.authService.Login(&req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, tokenResponse)
}

// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	address, _ := utils.GetAddressFromContext(c)
	role, _ := utils.GetRoleFromContext(c)

	utils.SuccessResponse(c, gin.H{
		"address": address,
		"role":    role,
	})
}
