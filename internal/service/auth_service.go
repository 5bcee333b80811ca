package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2v2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	config "github.com/agenciakit/captionflow/configs"
	"github.com/agenciakit/captionflow/internal/models"
	"github.com/agenciakit/captionflow/internal/repository"
	"github.com/agenciakit/captionflow/internal/transfer"
	"github.com/agenciakit/captionflow/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService interface {
	Register(ctx context.Context, req *transfer.RegisterRequest) (int64, error)
	Login(ctx context.Context, req *transfer.LoginRequest) (int64, error)
	LoginCallback(ctx context.Context, code string) (int64, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
	}
}

func (s *authService) Register(ctx context.Context, req *transfer.RegisterRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	_, isExist, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return 0, err
	}
	if isExist {
		return 0, errors.New("an account with this email already exists")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return 0, err
	}

	return s.u.Create(ctx, &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
	})
}

func (s *authService) Login(ctx context.Context, req *transfer.LoginRequest) (int64, error) {
	if err := req.Validate(); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	user, isExist, err := s.u.GetByEmail(ctx, req.Email)
	if err != nil {
		return 0, err
	}
	if !isExist || user.PasswordHash == "" {
		return 0, ErrInvalidCredentials
	}

	if !utils.ComparePassword(user.PasswordHash, req.Password) {
		return 0, ErrInvalidCredentials
	}

	return user.ID, nil
}

func (s *authService) LoginCallback(ctx context.Context, code string) (int64, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return 0, err
	}

	oauth2Config := &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.GoogleRedirectURI,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}

	if oauth2Config.ClientID == "" || oauth2Config.ClientSecret == "" || oauth2Config.RedirectURL == "" {
		err := errors.New("OAuth2 configuration is incomplete")
		slog.Info(err.Error())
		return 0, err
	}

	token, err := oauth2Config.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	client := oauth2Config.Client(ctx, token)

	userInfo, err := s.fetchUserInfo(ctx, client)
	if err != nil {
		return 0, err
	}

	user, isExist, err := s.u.GetByEmail(ctx, userInfo.Email)
	if err != nil {
		return 0, err
	}

	if isExist {
		if user.GoogleID == "" {
			user.GoogleID = userInfo.ID
			user.ProfilePicture = userInfo.Picture
			if err := s.u.Update(ctx, user); err != nil {
				return 0, err
			}
		}
		return user.ID, nil
	}

	return s.u.Create(ctx, &models.User{
		GoogleID:       userInfo.ID,
		Email:          userInfo.Email,
		Name:           userInfo.Name,
		ProfilePicture: userInfo.Picture,
	})
}

func (s *authService) fetchUserInfo(ctx context.Context, client *http.Client) (*transfer.GoogleUserInfo, error) {
	svc, err := oauth2v2.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &transfer.GoogleUserInfo{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
