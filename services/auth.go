package services

import (
	"crypto/sha256"
	"errors"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/config"
	"timesheet/middleware"
	"timesheet/models"
)

// AuthService handles registration, login and refresh-token rotation.
// Token signing itself lives in the middleware package; this service owns
// the user/organisation records and the stored refresh-token hash.
type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
	log zerolog.Logger
}

func NewAuthService(db *gorm.DB, cfg *config.Config, log zerolog.Logger) *AuthService {
	return &AuthService{db: db, cfg: cfg, log: log}
}

type RegisterInput struct {
	OrganisationName string
	Name             string
	Email            string
	Password         string
}

type AuthResult struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Register creates a new organisation with default settings and its first
// user, who is always the ADMIN, in one transaction.
func (s *AuthService) Register(in RegisterInput) (*AuthResult, error) {
	if in.OrganisationName == "" || in.Name == "" || in.Email == "" {
		return nil, apperr.Validation("organisation name, name and email are required")
	}
	if len(in.Password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	var user models.User
	conflict := apperr.Conflict("email address is already registered")
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict
		}

		org := models.Organisation{Name: in.OrganisationName}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		settings := models.DefaultSettings(org.ID)
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}

		user = models.User{
			OrganisationID: org.ID,
			Name:           in.Name,
			Email:          in.Email,
			PasswordHash:   string(hash),
			Role:           models.RoleAdmin,
			Status:         models.UserActive,
		}
		return translateDuplicate(tx.Create(&user).Error, conflict)
	})
	if err != nil {
		return nil, err
	}

	return s.issueTokens(&user)
}

// Login verifies credentials. Inactive users and unknown emails produce
// the same error so accounts cannot be enumerated.
func (s *AuthService) Login(email, password string) (*AuthResult, error) {
	invalid := apperr.Unauthorized("invalid email or password")

	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, invalid
	}

	return s.issueTokens(&user)
}

// Refresh validates a refresh token against its stored hash and issues a
// fresh access token.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := middleware.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", apperr.Unauthorized("invalid or expired refresh token")
	}

	var user models.User
	err = s.db.First(&user, claims.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Unauthorized("refresh token revoked")
	}
	if err != nil {
		return "", err
	}
	if user.RefreshTokenHash == "" || !user.IsActive() {
		return "", apperr.Unauthorized("refresh token revoked")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.RefreshTokenHash), refreshDigest(refreshToken)) != nil {
		return "", apperr.Unauthorized("refresh token mismatch")
	}

	return middleware.GenerateAccessToken(&user, s.cfg.JWTExpiration)
}

// Logout clears the stored refresh-token hash, invalidating all refresh
// attempts for the user.
func (s *AuthService) Logout(userID uint) error {
	return s.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token_hash", "").Error
}

// refreshDigest reduces the token to a fixed-size digest before bcrypt:
// bcrypt caps its input at 72 bytes and a signed token is longer.
func refreshDigest(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

func (s *AuthService) issueTokens(user *models.User) (*AuthResult, error) {
	accessToken, err := middleware.GenerateAccessToken(user, s.cfg.JWTExpiration)
	if err != nil {
		return nil, err
	}
	refreshToken, err := middleware.GenerateRefreshToken(user, s.cfg.RefreshExpiration)
	if err != nil {
		return nil, err
	}

	// The refresh token is stored hashed so a database leak cannot mint
	// sessions.
	hash, err := bcrypt.GenerateFromPassword(refreshDigest(refreshToken), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("refresh_token_hash", string(hash)).Error; err != nil {
		return nil, err
	}

	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken, User: user}, nil
}
