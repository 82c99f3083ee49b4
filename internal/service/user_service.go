package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vedran77/skillshare/internal/domain"
	"github.com/vedran77/skillshare/internal/logging"
	"github.com/vedran77/skillshare/internal/repository"
	"github.com/vedran77/skillshare/internal/storage"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAvatarsDisabled     = errors.New("avatar storage is not configured")
	ErrUnsupportedImage    = errors.New("unsupported image type")
	ErrInvalidAvatarKey    = errors.New("avatar key does not belong to this user")
	ErrInvalidRole         = errors.New("invalid role")
	ErrCannotChangeOwnRole = errors.New("admins cannot change their own role")
)

// AvatarStorage presigns direct uploads and downloads of profile images.
type AvatarStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

type UserService struct {
	userRepo repository.UserRepository
	avatars  AvatarStorage
	log      logging.Logger
}

// NewUserService builds the service. avatars may be nil when object
// storage is not configured.
func NewUserService(userRepo repository.UserRepository, avatars AvatarStorage, log logging.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		avatars:  avatars,
		log:      log.With("component", "users"),
	}
}

type Profile struct {
	*domain.User
	AvatarURL string `json:"avatar_url,omitempty"`
}

// UpdateProfileInput is a partial update: nil fields keep their stored value.
type UpdateProfileInput struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Bio            *string `json:"bio"`
	SkillsOffering *string `json:"skills_offering"`
	SkillsSeeking  *string `json:"skills_seeking"`
}

type AvatarUploadInput struct {
	Filename string `json:"filename"`
}

type AvatarUpload struct {
	Key         string `json:"key"`
	UploadURL   string `json:"upload_url"`
	ContentType string `json:"content_type"`
}

type SetAvatarInput struct {
	Key string `json:"key"`
}

func (s *UserService) GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, user), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*Profile, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, ErrEmailTaken
			}
		}
		user.Email = email
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}
	if input.SkillsOffering != nil {
		user.SkillsOffering = *input.SkillsOffering
	}
	if input.SkillsSeeking != nil {
		user.SkillsSeeking = *input.SkillsSeeking
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return s.profile(ctx, user), nil
}

func (s *UserService) AvatarUploadURL(ctx context.Context, id uuid.UUID, filename string) (*AvatarUpload, error) {
	if s.avatars == nil {
		return nil, ErrAvatarsDisabled
	}

	contentType, ok := storage.AvatarContentType(filename)
	if !ok {
		return nil, ErrUnsupportedImage
	}

	if _, err := s.getUser(ctx, id); err != nil {
		return nil, err
	}

	key := storage.NewAvatarKey(id, filename)
	url, err := s.avatars.PresignUpload(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("presigning avatar upload: %w", err)
	}

	return &AvatarUpload{Key: key, UploadURL: url, ContentType: contentType}, nil
}

func (s *UserService) SetAvatar(ctx context.Context, id uuid.UUID, key string) (*Profile, error) {
	if s.avatars == nil {
		return nil, ErrAvatarsDisabled
	}
	if !storage.OwnsAvatarKey(id, key) {
		return nil, ErrInvalidAvatarKey
	}
	if _, ok := storage.AvatarContentType(key); !ok {
		return nil, ErrUnsupportedImage
	}

	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateProfileImage(ctx, id, &key); err != nil {
		return nil, fmt.Errorf("updating profile image: %w", err)
	}
	user.ProfileImage = &key

	return s.profile(ctx, user), nil
}

// IsAdmin reads the role from the store on every call, so promotions and
// demotions apply to tokens that are already issued.
func (s *UserService) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

func (s *UserService) getUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) profile(ctx context.Context, user *domain.User) *Profile {
	p := &Profile{User: user}
	if s.avatars == nil || user.ProfileImage == nil {
		return p
	}

	url, err := s.avatars.PresignDownload(ctx, *user.ProfileImage)
	if err != nil {
		s.log.Warn(ctx, "presigning avatar download", "user_id", user.ID, "error", err)
		return p
	}
	p.AvatarURL = url
	return p
}
