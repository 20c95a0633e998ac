// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vatsal2312/TinyAstro/internal/config"
	"github.com/vatsal2312/TinyAstro/internal/models"
	"github.com/vatsal2312/TinyAstro/internal/utils"
)

// AuthService issues the two kinds of tokens the API accepts: wallet
// tokens for collection holders and operator tokens for the admin
// surface.
type AuthService struct {
	db     *gorm.DB
	config *config.Config
}

type WalletTokenRequest struct {
	Address string `json:"address" validate:"required,eth_address"`
}

type OperatorLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
	Role      string `json:"role"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	return &AuthService{db: db, config: cfg}
}

// IssueWalletToken returns a wallet-scoped token for the given address.
// Ownership of staked or leased assets is checked per operation, not at
// login, so any well-formed address may authenticate.
func (s *AuthService) IssueWalletToken(req *WalletTokenRequest) (*TokenResponse, error) {
	address := utils.NormalizeAddress(req.Address)

	token, err := utils.GenerateJWT(address, "", string(models.RoleWallet), s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &TokenResponse{
		Token:     token,
		ExpiresIn: s.config.JWT.AccessTokenTTL * 3600,
		Role:      string(models.RoleWallet),
	}, nil
}

// Login authenticates an operator account and returns an admin token.
func (s *AuthService) Login(req *OperatorLoginRequest) (*TokenResponse, error) {
	var operator models.Operator
	err := s.db.First(&operator, "username = ?", req.Username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := operator.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	operator.LastLoginAt = &now
	if err := s.db.Model(&operator).Update("last_login_at", &now).Error; err != nil {
		return nil, fmt.Errorf("failed to update login time: %w", err)
	}

	token, err := utils.GenerateJWT("", operator.Username, string(operator.Role), s.config.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &TokenResponse{
		Token:     token,
		ExpiresIn: s.config.JWT.AccessTokenTTL * 3600,
		Role:      string(operator.Role),
	}, nil
}

// EnsureOperator creates the bootstrap admin account if no operator
// exists yet. Called once at startup.
func (s *AuthService) EnsureOperator(username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	var count int64
	if err := s.db.Model(&models.Operator{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count operators: %w", err)
	}
	if count > 0 {
		return nil
	}

	operator := models.Operator{
		Username: username,
		Role:     models.RoleAdmin,
	}
	if err := operator.SetPassword(password); err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.Create(&operator).Error; err != nil {
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}
