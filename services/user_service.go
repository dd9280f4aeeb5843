package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/Mil05h/calories-ai/apperr"
	"github.com/Mil05h/calories-ai/models"
)

// AvatarUploader stores an image and returns its public URL. Satisfied by
// utils.Uploader.
type AvatarUploader interface {
	UploadDataURI(ctx context.Context, dataURI, prefix string) (string, error)
}

type UserService struct {
	db       *gorm.DB
	uploader AvatarUploader
}

func NewUserService(db *gorm.DB, uploader AvatarUploader) *UserService {
	return &UserService{db: db, uploader: uploader}
}

func (s *UserService) GetProfile(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return &user, nil
}

func (s *UserService) UpdateDisplayName(userID, displayName string) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	user.DisplayName = displayName
	if err := s.db.Save(user).Error; err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to update profile", err)
	}
	return user, nil
}

// UpdateAvatar uploads a data-URI image to the object store and records
// the resulting URL on the profile.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, dataURI string) (*models.User, error) {
	if s.uploader == nil {
		return nil, apperr.New(apperr.PersistenceFailed, "object storage not configured")
	}

	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	url, err := s.uploader.UploadDataURI(ctx, dataURI, "avatars/"+userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "avatar upload failed", err)
	}

	user.AvatarURL = url
	if err := s.db.Save(user).Error; err != nil {
		return nil, apperr.Wrap(apperr.PersistenceFailed, "failed to update profile", err)
	}
	return user, nil
}
