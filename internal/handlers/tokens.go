// internal/handlers/tokens.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/vatsal2312/TinyAstro/internal/services"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// TokenHandler serves the collection reads and the composed mobility
// gate: a token is locked while staked, listed, or under an active
// lease.
type TokenHandler struct {
	collectionService *services.CollectionService
	stakingService    *services.StakingService
	leaseService      *services.LeaseService
}

func NewTokenHandler(collectionService *services.CollectionService, stakingService *services.StakingService, leaseService *services.LeaseService) *TokenHandler {
	return &TokenHandler{
		collectionService: collectionService,
		stakingService:    stakingService,
		leaseService:      leaseService,
	}
}

// GET /tokens
func (h *TokenHandler) List(c *gin.Context) {
	assets, err := h.collectionService.ListAssets(c.Query("owner"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"tokens": assets})
}

// GET /tokens/:tokenId
func (h *TokenHandler) Get(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	asset, err := h.collectionService.GetAsset(tokenID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, asset)
}

// GET /tokens/:tokenId/locked
func (h *TokenHandler) Locked(c *gin.Context) {
	tokenID, ok := parseTokenID(c)
	if !ok {
		return
	}

	if _, err := h.collectionService.GetAsset(tokenID); err != nil {
		writeServiceError(c, err)
		return
	}

	staked, err := h.stakingService.IsTokenStaked(tokenID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	leased, err := h.leaseService.IsTokenLeased(tokenID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"token_id": tokenID,
		"locked":   staked || leased,
		"staked":   staked,
		"leased":   leased,
	})
}
