// internal/handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vatsal2312/TinyAstro/internal/services"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

type AdminHandler struct {
	adminService      *services.AdminService
	leaseService      *services.LeaseService
	paymentService    *services.PaymentService
	collectionService *services.CollectionService
}

func NewAdminHandler(adminService *services.AdminService, leaseService *services.LeaseService, paymentService *services.PaymentService, collectionService *services.CollectionService) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		leaseService:      leaseService,
		paymentService:    paymentService,
		collectionService: collectionService,
	}
}

type setEmissionRateRequest struct {
	RarityClass  int   `json:"rarity_class" validate:"min=0"`
	TokensPerDay int64 `json:"tokens_per_day" validate:"min=0"`
}

type setRaritiesRequest struct {
	TokenIDs      []int64 `json:"token_ids" validate:"required,min=1,dive,min=1"`
	RarityClasses []int   `json:"rarity_classes" validate:"required,min=1,dive,min=0"`
}

type durationRequest struct {
	Days int64 `json:"days" validate:"required,min=1"`
}

type setOwnerRequest struct {
	TokenID int64  `json:"token_id" validate:"required,min=1"`
	Owner   string `json:"owner" validate:"required,eth_address"`
}

type earningFractionRequest struct {
	Bps int64 `json:"bps" validate:"min=0,max=10000"`
}

type pauseRequest struct {
	Paused *bool `json:"paused" validate:"required"`
}

type withdrawFeesRequest struct {
	To string `json:"to" validate:"required,eth_address"`
}

type creditRequest struct {
	Address string `json:"address" validate:"required,eth_address"`
	Amount  string `json:"amount" validate:"required"`
}

// PUT /admin/emission-rates
func (h *AdminHandler) SetEmissionRate(c *gin.Context) {
	var req setEmissionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.adminService.SetEmissionRate(req.RarityClass, req.TokensPerDay); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"rarity_class": req.RarityClass, "tokens_per_day": req.TokensPerDay})
}

// GET /admin/emission-rates
func (h *AdminHandler) ListEmissionRates(c *gin.Context) {
	rates, err := h.adminService.ListEmissionRates()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"emission_rates": rates})
}

// PUT /admin/rarities
func (h *AdminHandler) SetRarities(c *gin.Context) {
	var req setRaritiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.adminService.SetRarities(req.TokenIDs, req.RarityClasses); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"updated": len(req.TokenIDs)})
}

// PUT /admin/owners
func (h *AdminHandler) SetOwner(c *gin.Context) {
	var req setOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.collectionService.SetOwner(req.TokenID, req.Owner); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"token_id": req.TokenID, "owner": utils.NormalizeAddress(req.Owner)})
}

// POST /admin/rental-durations
func (h *AdminHandler) AddRentalDuration(c *gin.Context) {
	var req durationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.adminService.AddRentalDuration(req.Days); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"days": req.Days})
}

// DELETE /admin/rental-durations/:days
func (h *AdminHandler) RemoveRentalDuration(c *gin.Context) {
	days, err := strconv.ParseInt(c.Param("days"), 10, 64)
	if err != nil || days <= 0 {
		utils.BadRequestResponse(c, "invalid duration", nil)
		return
	}

	if err := h.adminService.RemoveRentalDuration(days); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"days": days, "removed": true})
}

// GET /admin/rental-durations
func (h *AdminHandler) ListRentalDurations(c *gin.Context) {
	durations, err := h.adminService.ListRentalDurations()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"durations": durations})
}

// PUT /admin/earning-fraction
func (h *AdminHandler) SetEarningFraction(c *gin.Context) {
	var req earningFractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if err := h.adminService.SetEarningFraction(req.Bps); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"earning_fraction_bps": req.Bps})
}

// PUT /admin/max-lease-duration
func (h *AdminHandler) SetMaxLeaseDuration(c *gin.Context) {
	var req durationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.adminService.SetMaxLeaseDuration(req.Days); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"max_lease_duration_days": req.Days})
}

// PUT /admin/staking-pause
func (h *AdminHandler) SetStakingPaused(c *gin.Context) {
	var req pauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if req.Paused == nil {
		utils.BadRequestResponse(c, "paused is required", nil)
		return
	}

	if err := h.adminService.SetStakingPaused(*req.Paused); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"staking_paused": *req.Paused})
}

// POST /admin/withdraw-fees
func (h *AdminHandler) WithdrawFees(c *gin.Context) {
	var req withdrawFeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	amount, err := h.leaseService.WithdrawFees(req.To)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"to": req.To, "amount": amount.String()})
}

// POST /admin/credit
func (h *AdminHandler) Credit(c *gin.Context) {
	var req creditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	if err := h.paymentService.Credit(req.Address, amount); err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"address": req.Address, "amount": amount.String()})
}

// GET /admin/platform-state
func (h *AdminHandler) GetPlatformState(c *gin.Context) {
	state, err := h.adminService.GetPlatformState()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, state)
}

// GET /admin/events
func (h *AdminHandler) ListEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	eventType := c.Query("event_type")

	var tokenID *int64
	if raw := c.Query("token_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			utils.BadRequestResponse(c, "invalid token id", nil)
			return
		}
		tokenID = &id
	}

	events, total, err := h.adminService.ListEvents(eventType, tokenID, params)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(events, total, params))
}

// GET /admin/dashboard
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats()
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}
