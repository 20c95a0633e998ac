// internal/services/collection_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// AssetRegistry is the slice of the NFT contract the ledgers consume:
// current ownership and holder balances. The queries take the caller's
// transaction handle so ownership checks see the same snapshot as the
// mutation they guard.
type AssetRegistry interface {
	OwnerOf(db *gorm.DB, tokenID int64) (string, error)
	BalanceOf(db *gorm.DB, owner string) (int64, error)
}

// CollectionService is the database-backed registry mirror of the fixed
// 100-token collection.
type CollectionService struct {
	db *gorm.DB
}

func NewCollectionService(db *gorm.DB) *CollectionService {
	return &CollectionService{db: db}
}

func (s *CollectionService) OwnerOf(db *gorm.DB, tokenID int64) (string, error) {
	var asset models.Asset
	if err := db.First(&asset, "token_id = ?", tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrAssetNotFound
		}
		return "", fmt.Errorf("database error: %w", err)
	}
	return asset.Owner, nil
}

func (s *CollectionService) BalanceOf(db *gorm.DB, owner string) (int64, error) {
	var count int64
	err := db.Model(&models.Asset{}).
		Where("owner = ?", utils.NormalizeAddress(owner)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}

func (s *CollectionService) GetAsset(tokenID int64) (*models.Asset, error) {
	var asset models.Asset
	if err := s.db.First(&asset, "token_id = ?", tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &asset, nil
}

func (s *CollectionService) ListAssets(owner string) ([]models.Asset, error) {
	query := s.db.Model(&models.Asset{}).Order("token_id asc")
	if owner != "" {
		query = query.Where("owner = ?", utils.NormalizeAddress(owner))
	}

	var assets []models.Asset
	if err := query.Find(&assets).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}
	return assets, nil
}

// SetOwner updates the mirror after an on-chain transfer is observed.
func (s *CollectionService) SetOwner(tokenID int64, owner string) error {
	result := s.db.Model(&models.Asset{}).
		Where("token_id = ?", tokenID).
		Update("owner", utils.NormalizeAddress(owner))
	if result.Error != nil {
		return fmt.Errorf("failed to update owner: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotFound
	}
	return nil
}
