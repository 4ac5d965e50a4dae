package services

import (
	"errors"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/demodeck-hq/demodeck_api/dto"
	"github.com/demodeck-hq/demodeck_api/model"
	"github.com/demodeck-hq/demodeck_api/shared"
)

type AuthService struct {
	context.DefaultService

	sqlSvc *PostgresService
	jwtSvc *JWTService
}

const AUTH_SVC = "auth_svc"

func (svc AuthService) Id() string {
	return AUTH_SVC
}

func (svc *AuthService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	return nil
}

func (svc *AuthService) Register(req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if _, err := svc.sqlSvc.Users().GetUserByEmail(req.Email); err == nil {
		return nil, shared.NewConflictError(nil, "Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to hash password")
	}

	user, err := svc.sqlSvc.Users().CreateUser(&model.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, svc.sqlSvc.HandleError(err)
	}

	return &dto.RegisterResponse{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, nil
}

func (svc *AuthService) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := svc.sqlSvc.Users().GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewUnauthorizedError(nil, "Invalid credentials")
		}
		return nil, svc.sqlSvc.HandleError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.NewUnauthorizedError(nil, "Invalid credentials")
	}

	pair, err := svc.jwtSvc.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to issue token")
	}

	return &dto.LoginResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
		UserID:      user.ID,
	}, nil
}

// RequiredAuth rejects requests without a valid bearer token and stores
// the user id in locals for downstream handlers.
func (svc *AuthService) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		userID, err := svc.jwtSvc.VerifyJWTToken(token)
		if err != nil {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if userID == "" {
			return shared.ResponseJSON(c, fiber.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, userID)
		return c.Next()
	}
}

// OptionalAuth populates the user id when a valid token is present but
// lets anonymous requests through.
func (svc *AuthService) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return c.Next()
		}

		if userID, err := svc.jwtSvc.VerifyJWTToken(token); err == nil && userID != "" {
			c.Locals(shared.UserID, userID)
		}
		return c.Next()
	}
}
