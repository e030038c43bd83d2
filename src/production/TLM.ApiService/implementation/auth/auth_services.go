package auth

import (
	"context"
	"errors"
	"fmt"

	jwt "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/jwt"
	api_models "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models/api"
	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned on unknown email or password mismatch;
// the two cases are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when signup hits an already registered email
var ErrEmailTaken = errors.New("email already registered")

// AuthService aggregates signup and login operations
type AuthService struct {
	userRepo   interfaces.UserRepository
	jwtService *jwt.Service
	minLength  int
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo interfaces.UserRepository, jwtService *jwt.Service, passwordMinLength int) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		minLength:  passwordMinLength,
	}
}

// Register creates a new account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, req api_models.SignupRequest) (*tlmmodels.User, error) {
	if len(req.Password) < s.minLength {
		return nil, fmt.Errorf("password must be at least %d characters", s.minLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &tlmmodels.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}

	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if interfaces.IsDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return created, nil
}

// Login authenticates a user and issues a login-lifetime token
func (s *AuthService) Login(ctx context.Context, req api_models.LoginRequest) (*api_models.IssuedToken, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if interfaces.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.jwtService.GenerateLoginToken(user.Email, user.Name)
}
