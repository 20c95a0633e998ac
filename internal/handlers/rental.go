// internal/handlers/rental.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/services"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

type RentalHandler struct {
	rentalService *services.RentalService
}

func NewRentalHandler(rentalService *services.RentalService) *RentalHandler {
	return &RentalHandler{
		rentalService: rentalService,
	}
}

type rentRequest struct {
	TokenID      int64  `json:"token_id" validate:"required,min=1"`
	Recipient    string `json:"recipient" validate:"required,eth_address"`
	Slot         int    `json:"slot" validate:"required,min=1,max=2"`
	DurationDays int64  `json:"duration_days" validate:"required,min=1"`
}

// POST /rentals
func (h *RentalHandler) Rent(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req rentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.rentalService.Rent(address, req.TokenID, req.Recipient, models.PassSlot(req.Slot), req.DurationDays)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// GET /rentals/status/:address
func (h *RentalHandler) Status(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		utils.BadRequestResponse(c, "address is required", nil)
		return
	}

	status, err := h.rentalService.Status(address)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, status)
}
