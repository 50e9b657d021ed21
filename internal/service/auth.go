package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/N-Srikar/Athena/internal/errs"
	"github.com/N-Srikar/Athena/internal/model"
	"github.com/N-Srikar/Athena/pkg/auth"
)

const tokenTTL = 24 * time.Hour

func (s *Service) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "bcrypt")
	}
	return s.repo.CreateUser(ctx, model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleMember,
	})
}

func (s *Service) Login(ctx context.Context, req model.AuthRequest) (model.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.AuthResponse{}, errs.ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return model.AuthResponse{}, errs.ErrInvalidCredentials
	}

	expirationTime := s.now().Add(tokenTTL)
	claims := &auth.Claims{
		Profile: struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		}{
			Username: user.Email,
			Role:     string(user.Role),
		},
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(auth.JWTKey)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		AccessToken: tokenString,
		ExpiresIn:   int(expirationTime.Unix()),
	}, nil
}

// CreateLibrarian provisions a librarian account with a generated password,
// returned once in the response so an admin can pass it on.
func (s *Service) CreateLibrarian(ctx context.Context, req model.CreateLibrarianRequest) (model.CreateLibrarianResponse, error) {
	password := generatePassword()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.CreateLibrarianResponse{}, errors.Wrap(err, "bcrypt")
	}
	librarian, err := s.repo.CreateUser(ctx, model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         model.RoleLibrarian,
	})
	if err != nil {
		return model.CreateLibrarianResponse{}, err
	}
	return model.CreateLibrarianResponse{
		Librarian: librarian,
		Password:  password,
	}, nil
}

func (s *Service) UpdateLibrarian(ctx context.Context, id int, req model.UpdateLibrarianRequest) (model.User, error) {
	return s.repo.UpdateUser(ctx, id, req.Name, req.Email)
}

func (s *Service) RemoveLibrarian(ctx context.Context, id int) error {
	return s.repo.DeleteUser(ctx, id, model.RoleLibrarian)
}

func (s *Service) ListLibrarians(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsersByRole(ctx, model.RoleLibrarian)
}

func generatePassword() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
