package service

import (
	"os"
	"testing"

	"safeprofile/internal/model"
	"safeprofile/internal/repository"
	"safeprofile/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (ProfileService, repository.ProfileStore) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&repository.ProfileRow{}))

	key, err := util.GenerateKey()
	require.NoError(t, err)
	cipher, err := util.NewCipher(key)
	require.NoError(t, err)

	store := repository.NewProfileStore(db, cipher, nil)
	imageStore, err := util.NewImageStore(t.TempDir())
	require.NoError(t, err)

	return NewProfileService(store, imageStore, NewAuditPublisher(nil)), store
}

func validFields(name string) model.RawFields {
	return model.RawFields{Name: name, GDPRConsent: true}
}

func TestCreateProfile(t *testing.T) {
	svc, store := newTestService(t)

	rec, verrs, err := svc.CreateProfile(validFields("John Smith"))
	require.NoError(t, err)
	require.Empty(t, verrs)

	got, err := store.Load(rec.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, "John Smith", got.Name)
}

func TestCreateProfileValidationFailure(t *testing.T) {
	svc, store := newTestService(t)

	rec, verrs, err := svc.CreateProfile(model.RawFields{GDPRConsent: true})
	require.NoError(t, err)
	assert.Nil(t, rec)
	require.Len(t, verrs, 1)
	assert.Equal(t, "name", verrs[0].Field)

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateProfileWithoutConsent(t *testing.T) {
	svc, _ := newTestService(t)

	_, verrs, err := svc.CreateProfile(model.RawFields{Name: "John Smith"})
	require.NoError(t, err)
	require.NotEmpty(t, verrs)
	assert.Equal(t, "gdpr_consent", verrs[0].Field)
}

func TestUpdateProfilePreservesIdentityAndImages(t *testing.T) {
	svc, _ := newTestService(t)

	rec, verrs, err := svc.CreateProfile(validFields("John Smith"))
	require.NoError(t, err)
	require.Empty(t, verrs)

	withImage, err := svc.AttachImage(rec.ProfileID, []byte("fake image bytes"), util.ImageTypeProfile, "photo.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, withImage.ProfileImage)

	fields := validFields("John A. Smith")
	fields.MedicalInfo = "Takes insulin daily."
	updated, verrs, err := svc.UpdateProfile(rec.ProfileID, fields)
	require.NoError(t, err)
	require.Empty(t, verrs)

	assert.Equal(t, rec.ProfileID, updated.ProfileID)
	assert.Equal(t, "John A. Smith", updated.Name)
	assert.Equal(t, withImage.ProfileImage, updated.ProfileImage)
}

func TestUpdateProfileNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, _, err := svc.UpdateProfile("no-such-id", validFields("John Smith"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteProfile(t *testing.T) {
	svc, _ := newTestService(t)

	rec, _, err := svc.CreateProfile(validFields("John Smith"))
	require.NoError(t, err)

	deleted, err := svc.DeleteProfile(rec.ProfileID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteProfile(rec.ProfileID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestAttachImageWritesFile(t *testing.T) {
	svc, _ := newTestService(t)

	rec, _, err := svc.CreateProfile(validFields("John Smith"))
	require.NoError(t, err)

	updated, err := svc.AttachImage(rec.ProfileID, []byte("fake image bytes"), util.ImageTypeAdditional, "walk.png")
	require.NoError(t, err)
	require.Len(t, updated.AdditionalImages, 1)

	data, err := os.ReadFile(updated.AdditionalImages[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), data)
}

func TestGeneratePosterRequiresMissingEpisode(t *testing.T) {
	svc, store := newTestService(t)

	rec, _, err := svc.CreateProfile(validFields("John Smith"))
	require.NoError(t, err)

	docs := NewDocumentService(store, nil, NewAuditPublisher(nil))
	_, _, err = docs.GeneratePosterDocument(rec.ProfileID)
	assert.ErrorIs(t, err, ErrNoMissingEpisode)

	fields := validFields("John Smith")
	fields.LastSeenDate = "2026-03-01"
	fields.LastSeenTime = "14:30"
	fields.LastSeenLocation = "High Street, Oxford"
	withEpisode, verrs, err := svc.UpdateProfile(rec.ProfileID, fields)
	require.NoError(t, err)
	require.Empty(t, verrs)
	require.True(t, withEpisode.HasMissingEpisode())

	data, filename, err := docs.GeneratePosterDocument(rec.ProfileID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, filename, "missing_person_poster")
}

func TestGenerateProfileDocument(t *testing.T) {
	svc, store := newTestService(t)

	rec, _, err := svc.CreateProfile(validFields("John Smith"))
	require.NoError(t, err)

	docs := NewDocumentService(store, nil, NewAuditPublisher(nil))
	data, filename, err := docs.GenerateProfileDocument(rec.ProfileID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.Contains(t, filename, "one_page_profile")
	assert.Contains(t, filename, "John_Smith")

	_, _, err = docs.GenerateProfileDocument("no-such-id")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
