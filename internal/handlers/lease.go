// internal/handlers/lease.go
package handlers

import (
	"math/big"

	"github.com/gin-gonic/gin"

	"github.com/vatsal2312/TinyAstro/internal/services"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

type LeaseHandler struct {
	leaseService *services.LeaseService
}

func NewLeaseHandler(leaseService *services.LeaseService) *LeaseHandler {
	return &LeaseHandler{
		leaseService: leaseService,
	}
}

type leaseTermsRequest struct {
	TokenID      int64  `json:"token_id" validate:"required,min=1"`
	DurationDays int64  `json:"duration_days" validate:"required,min=1"`
	Price        string `json:"price" validate:"required"`
	Lessee       string `json:"lessee,omitempty" validate:"omitempty,eth_address"`
}

type signLeaseRequest struct {
	TokenID int64  `json:"token_id" validate:"required,min=1"`
	Payment string `json:"payment" validate:"required"`
}

// parseAmount reads a non-negative integer amount from its decimal string
// form. Amounts ride as strings because they can exceed int64.
func parseAmount(c *gin.Context, raw string) (*big.Int, bool) {
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok || amount.Sign() < 0 {
		utils.BadRequestResponse(c, "invalid amount", nil)
		return nil, false
	}
	return amount, true
}

// POST /leases
func (h *LeaseHandler) Create(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req leaseTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	price, ok := parseAmount(c, req.Price)
	if !ok {
		return
	}

	lease, err := h.leaseService.Create(address, req.TokenID, req.DurationDays, price, req.Lessee)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, lease)
}

// PUT /leases/:tokenId
func (h *LeaseHandler) Update(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	var req leaseTermsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}
	req.TokenID = tokenID

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	price, ok := parseAmount(c, req.Price)
	if !ok {
		return
	}

	lease, err := h.leaseService.Update(address, tokenID, req.DurationDays, price, req.Lessee)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, lease)
}

// DELETE /leases/:tokenId
func (h *LeaseHandler) Cancel(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	if err := h.leaseService.Cancel(address, tokenID); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"token_id": tokenID, "cancelled": true})
}

// POST /leases/sign
func (h *LeaseHandler) Sign(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req signLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	payment, ok := parseAmount(c, req.Payment)
	if !ok {
		return
	}

	lease, err := h.leaseService.Sign(address, req.TokenID, payment)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, lease)
}

// GET /leases
func (h *LeaseHandler) ListOpen(c *gin.Context) {
	leases, err := h.leaseService.ListOpen()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"leases": leases})
}

// GET /leases/:tokenId
func (h *LeaseHandler) Status(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	status, err := h.leaseService.Status(tokenID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, status)
}
