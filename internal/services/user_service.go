package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"taskboard/internal/models"
	"taskboard/internal/repositories"
)

// AvatarStore persists uploaded avatar images and returns their public URL.
type AvatarStore interface {
	Save(r io.Reader) (string, error)
	Remove(url string) error
}

type UserService interface {
	Signup(ctx context.Context, in models.SignupInput) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (string, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdateProfile(ctx context.Context, id int64, in models.UpdateProfileInput) (*models.User, error)
	ChangePassword(ctx context.Context, id int64, in models.ChangePasswordInput) error
	UploadAvatar(ctx context.Context, id int64, r io.Reader) (*models.User, error)
}

type userService struct {
	repo    repositories.UserRepository
	auth    AuthService
	email   EmailService
	avatars AvatarStore
	logger  *slog.Logger
}

// NewUserService wires the user flows. email and avatars may be nil.
func NewUserService(repo repositories.UserRepository, auth AuthService, email EmailService, avatars AvatarStore, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{repo: repo, auth: auth, email: email, avatars: avatars, logger: logger.With("component", "user")}
}

func (s *userService) Signup(ctx context.Context, in models.SignupInput) (*models.User, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	hash, err := s.auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         models.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: user with this email already exists", models.ErrConflict)
		}
		return nil, err
	}
	s.logger.Info("user signed up", "user_id", user.ID)

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// не валим регистрацию из-за почты
			s.logger.Warn("welcome email failed", "user_id", user.ID, "err", err)
		}
	}
	return user, nil
}

// Login never tells apart unknown email and wrong password.
func (s *userService) Login(ctx context.Context, req models.LoginRequest) (string, error) {
	user, err := s.repo.GetByEmail(ctx, models.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
		}
		return "", err
	}
	if !s.auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login rejected", "user_id", user.ID)
		return "", fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
	}
	return s.auth.IssueToken(user)
}

func (s *userService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, in models.UpdateProfileInput) (*models.User, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.TelegramChatID != nil {
		if *in.TelegramChatID == 0 {
			user.TelegramChatID = nil
		} else {
			user.TelegramChatID = in.TelegramChatID
		}
	}
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("%w: email already in use", models.ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, id int64, in models.ChangePasswordInput) error {
	if len(in.NewPassword) < 6 {
		return &models.ValidationError{Field: "new_password", Message: "must be at least 6 characters"}
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.auth.CheckPassword(user.PasswordHash, in.CurrentPassword) {
		return &models.ValidationError{Field: "current_password", Message: "is incorrect"}
	}
	hash, err := s.auth.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

func (s *userService) UploadAvatar(ctx context.Context, id int64, r io.Reader) (*models.User, error) {
	if s.avatars == nil {
		return nil, errors.New("avatar storage is not configured")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.avatars.Save(r)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateAvatar(ctx, id, url); err != nil {
		_ = s.avatars.Remove(url)
		return nil, err
	}
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		if err := s.avatars.Remove(*user.AvatarURL); err != nil {
			s.logger.Warn("old avatar not removed", "user_id", id, "err", err)
		}
	}
	user.AvatarURL = &url
	return user, nil
}
