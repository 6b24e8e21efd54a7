package service

import (
	"errors"

	"safeprofile/internal/document"
	"safeprofile/internal/repository"
)

// ErrNoMissingEpisode is returned when a poster is requested for a profile
// without last-seen data. The one-page profile has no such precondition.
var ErrNoMissingEpisode = errors.New("profile has no missing episode details")

type DocumentService interface {
	GenerateProfileDocument(profileID string) ([]byte, string, error)
	GeneratePosterDocument(profileID string) ([]byte, string, error)
}

type documentService struct {
	store    repository.ProfileStore
	resolver document.CoordinateResolver
	audit    *AuditPublisher
}

func NewDocumentService(store repository.ProfileStore, resolver document.CoordinateResolver, audit *AuditPublisher) DocumentService {
	return &documentService{
		store:    store,
		resolver: resolver,
		audit:    audit,
	}
}

// GenerateProfileDocument renders the one-page profile for a stored record and
// returns the bytes with a download filename.
func (s *documentService) GenerateProfileDocument(profileID string) ([]byte, string, error) {
	rec, err := s.store.Load(profileID)
	if err != nil {
		return nil, "", err
	}

	data, err := document.CreateProfilePDF(rec)
	if err != nil {
		return nil, "", err
	}

	s.audit.Publish(AuditDocumentGenerated, profileID, document.KindOnePageProfile)
	return data, document.Filename(rec.Name, document.KindOnePageProfile), nil
}

// GeneratePosterDocument renders the missing person poster. It refuses when
// the record has no missing-episode data to print.
func (s *documentService) GeneratePosterDocument(profileID string) ([]byte, string, error) {
	rec, err := s.store.Load(profileID)
	if err != nil {
		return nil, "", err
	}

	if !rec.HasMissingEpisode() {
		return nil, "", ErrNoMissingEpisode
	}

	data, err := document.CreateMissingPersonPoster(rec, s.resolver)
	if err != nil {
		return nil, "", err
	}

	s.audit.Publish(AuditDocumentGenerated, profileID, document.KindMissingPersonPoster)
	return data, document.Filename(rec.Name, document.KindMissingPersonPoster), nil
}
