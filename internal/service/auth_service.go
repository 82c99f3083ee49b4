package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/auth"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/mail"
	"github.com/vedran77/skillshare/internal/repository"
)

var (
	ErrEmailTaken        = domain.ErrEmailTaken
	ErrInvalidCreds      = errors.New("invalid email or password")
	ErrInvalidResetToken = auth.ErrInvalidResetToken
)

type AuthService struct {
	userRepo  repository.UserRepository
	tokens    *auth.Tokens
	reset     *auth.ResetTokens
	mailer    mail.Mailer
	publicURL string
	log       logging.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.Tokens,
	reset *auth.ResetTokens,
	mailer mail.Mailer,
	publicURL string,
	log logging.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		reset:     reset,
		mailer:    mailer,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.With("component", "auth"),
	}
}

type RegisterInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Bio            string `json:"bio"`
	SkillsOffering string `json:"skills_offering"`
	SkillsSeeking  string `json:"skills_seeking"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := normalizeEmail(input.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		PasswordHash:   hash,
		Bio:            input.Bio,
		SkillsOffering: input.SkillsOffering,
		SkillsSeeking:  input.SkillsSeeking,
		Role:           domain.RoleMember,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return &AuthResponse{User: user, AccessToken: token}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCreds
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCreds
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	return &AuthResponse{User: user, AccessToken: token}, nil
}

// RequestPasswordReset mails a reset link when the address belongs to a
// user. Unknown addresses are ignored so callers cannot probe for accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.log.Debug(ctx, "password reset for unknown email")
		return nil
	}

	token, err := s.reset.Issue(user.Email)
	if err != nil {
		return fmt.Errorf("issuing reset token: %w", err)
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Password Reset Request",
		Body: fmt.Sprintf(
			"To reset your password, visit the following link:\n%s/reset-password/%s\n\n"+
				"If you did not make this request, simply ignore this email and no changes will be made.\n",
			s.publicURL, token),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("sending reset mail: %w", err)
	}

	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, err := s.reset.Verify(token)
	if err != nil {
		return ErrInvalidResetToken
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}
