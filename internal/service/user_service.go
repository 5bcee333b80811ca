package service

import (
	"context"
	"errors"

	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/repository"
)

type UserService interface {
	GetUserInfo(ctx context.Context, userID int64) (*models.User, error)
	Remove(ctx context.Context, userID int64) error
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{u: u}
}

func (s *userService) GetUserInfo(ctx context.Context, userID int64) (*models.User, error) {
	if userID == 0 {
		return nil, ErrNotAuthenticated
	}

	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (s *userService) Remove(ctx context.Context, userID int64) error {
	if userID == 0 {
		return ErrNotAuthenticated
	}
	return s.u.Remove(ctx, userID)
}
