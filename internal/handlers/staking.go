// internal/handlers/staking.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vatsal2312/TinyAstro/internal/services"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

type StakingHandler struct {
	stakingService *services.StakingService
	rewardService  *services.RewardService
}

func NewStakingHandler(stakingService *services.StakingService, rewardService *services.RewardService) *StakingHandler {
	return &StakingHandler{
		stakingService: stakingService,
		rewardService:  rewardService,
	}
}

type stakeRequest struct {
	TokenID int64 `json:"token_id" validate:"required,min=1"`
}

type unstakeRequest struct {
	TokenIDs []int64 `json:"token_ids" validate:"required,min=1,dive,min=1"`
}

// POST /staking/stake
func (h *StakingHandler) Stake(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req stakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.stakingService.Stake(address, req.TokenID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, result)
}

// POST /staking/unstake
func (h *StakingHandler) Unstake(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req unstakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "invalid input", err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	result, err := h.stakingService.Unstake(address, req.TokenIDs)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /staking/claim
func (h *StakingHandler) Claim(c *gin.Context) {
	address, exists := utils.GetAddressFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	result, err := h.stakingService.Claim(address)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /staking/status/:address
func (h *StakingHandler) Status(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		utils.BadRequestResponse(c, "address is required", nil)
		return
	}

	status, err := h.stakingService.Status(address)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, status)
}

// GET /staking/rewards/:address
func (h *StakingHandler) RewardBalance(c *gin.Context) {
	address := c.Param("address")
	if address == "" {
		utils.BadRequestResponse(c, "address is required", nil)
		return
	}

	balance, err := h.rewardService.BalanceOf(utils.NormalizeAddress(address))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address": utils.NormalizeAddress(address),
		"balance": balance.String(),
	})
}

// parseTokenID reads the :tokenId path segment shared by the token-scoped
// read endpoints.
func parseTokenID(c *gin.Context) (int64, bool) {
	tokenID, err := strconv.ParseInt(c.Param("tokenId"), 10, 64)
	if err != nil || tokenID <= 0 {
		utils.BadRequestResponse(c, "invalid token id", nil)
		return 0, false
	}
	return tokenID, true
}
