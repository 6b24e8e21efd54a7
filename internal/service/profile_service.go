package service

import (
	"fmt"
	"log"

	"safeprofile/internal/model"
	"safeprofile/internal/repository"
	"safeprofile/internal/util"
)

type ProfileService interface {
	CreateProfile(raw model.RawFields) (*model.ProfileRecord, []model.ValidationError, error)
	GetProfile(profileID string) (*model.ProfileRecord, error)
	UpdateProfile(profileID string, raw model.RawFields) (*model.ProfileRecord, []model.ValidationError, error)
	DeleteProfile(profileID string) (bool, error)
	ListProfiles() ([]*model.ProfileRecord, error)
	AttachImage(profileID string, data []byte, imageType, originalName string) (*model.ProfileRecord, error)
}

type profileService struct {
	store      repository.ProfileStore
	imageStore *util.ImageStore
	audit      *AuditPublisher
}

func NewProfileService(store repository.ProfileStore, imageStore *util.ImageStore, audit *AuditPublisher) ProfileService {
	return &profileService{
		store:      store,
		imageStore: imageStore,
		audit:      audit,
	}
}

// CreateProfile normalizes, validates and stores a new record. Validation
// failures come back in the middle return with nothing persisted.
func (s *profileService) CreateProfile(raw model.RawFields) (*model.ProfileRecord, []model.ValidationError, error) {
	rec, err := model.Normalize(raw)
	if err != nil {
		return nil, []model.ValidationError{{Field: "record", Message: err.Error()}}, nil
	}

	if verrs := rec.Validate(); len(verrs) > 0 {
		return nil, verrs, nil
	}

	if err := s.store.Save(rec); err != nil {
		return nil, nil, err
	}

	s.audit.Publish(AuditProfileCreated, rec.ProfileID, "")
	return rec, nil, nil
}

func (s *profileService) GetProfile(profileID string) (*model.ProfileRecord, error) {
	return s.store.Load(profileID)
}

// UpdateProfile replaces the editable fields of an existing record. The id
// and the stored image paths survive the update; everything else is rebuilt
// from the incoming fields.
func (s *profileService) UpdateProfile(profileID string, raw model.RawFields) (*model.ProfileRecord, []model.ValidationError, error) {
	existing, err := s.store.Load(profileID)
	if err != nil {
		return nil, nil, err
	}

	rec, err := model.Normalize(raw)
	if err != nil {
		return nil, []model.ValidationError{{Field: "record", Message: err.Error()}}, nil
	}
	rec.ProfileID = existing.ProfileID
	rec.ProfileImage = existing.ProfileImage
	rec.AdditionalImages = existing.AdditionalImages

	if verrs := rec.Validate(); len(verrs) > 0 {
		return nil, verrs, nil
	}

	if err := s.store.Save(rec); err != nil {
		return nil, nil, err
	}

	s.audit.Publish(AuditProfileUpdated, rec.ProfileID, "")
	return rec, nil, nil
}

func (s *profileService) DeleteProfile(profileID string) (bool, error) {
	deleted, err := s.store.Delete(profileID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.audit.Publish(AuditProfileDeleted, profileID, "")
	}
	return deleted, nil
}

func (s *profileService) ListProfiles() ([]*model.ProfileRecord, error) {
	return s.store.ListAll()
}

// AttachImage stores the upload on disk and records its path on the profile.
// A profile image replaces the previous path; additional images accumulate.
func (s *profileService) AttachImage(profileID string, data []byte, imageType, originalName string) (*model.ProfileRecord, error) {
	if s.imageStore == nil {
		return nil, fmt.Errorf("image storage not configured")
	}

	rec, err := s.store.Load(profileID)
	if err != nil {
		return nil, err
	}

	path, err := s.imageStore.SaveImage(data, profileID, imageType, originalName)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	switch imageType {
	case util.ImageTypeProfile:
		rec.ProfileImage = path
	default:
		rec.AdditionalImages = append(rec.AdditionalImages, path)
	}

	if err := s.store.Save(rec); err != nil {
		return nil, err
	}

	log.Printf("Image attached to profile %s: %s", profileID, path)
	s.audit.Publish(AuditProfileUpdated, profileID, "image attached")
	return rec, nil
}
