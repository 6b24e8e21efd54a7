package document

import (
	"strings"
	"testing"
	"time"

	"safeprofile/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedResolver struct {
	lat, lng float64
	ok       bool
}

func (r fixedResolver) Resolve(string) (float64, float64, bool) {
	return r.lat, r.lng, r.ok
}

func missingRecord() *model.ProfileRecord {
	rec := model.NewProfileRecord()
	rec.Name = "John Smith"
	rec.GDPRConsent = true
	rec.LastSeenDate = model.NewDate(2026, time.March, 1)
	rec.LastSeenTime = model.NewClock(14, 30)
	rec.LastSeenLocation = "High Street, Oxford"
	return rec
}

func TestCreateProfilePDF(t *testing.T) {
	rec := model.NewProfileRecord()
	rec.Name = "John Smith"
	rec.DOB = model.NewDate(1990, time.June, 15)
	rec.MedicalInfo = "Takes insulin daily."

	data, err := CreateProfilePDF(rec)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	// Single page document
	assert.Contains(t, string(data), "/Count 1")
}

func TestCreateProfilePDFSkipsMissingPhoto(t *testing.T) {
	rec := model.NewProfileRecord()
	rec.Name = "John Smith"
	rec.ProfileImage = "/nonexistent/photo.jpg"

	data, err := CreateProfilePDF(rec)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestPosterWithoutCoordinatesHasTwoPages(t *testing.T) {
	data, err := CreateMissingPersonPoster(missingRecord(), fixedResolver{ok: false})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Contains(t, string(data), "/Count 2")
}

func TestPosterWithCoordinatesHasMapPage(t *testing.T) {
	data, err := CreateMissingPersonPoster(missingRecord(), fixedResolver{lat: 51.7520, lng: -1.2577, ok: true})
	require.NoError(t, err)
	assert.Contains(t, string(data), "/Count 3")
}

func TestPosterWithNilResolver(t *testing.T) {
	data, err := CreateMissingPersonPoster(missingRecord(), nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/Count 2")
}

func TestFilename(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "John_Smith_"+today+"_one_page_profile.pdf", Filename("John Smith", KindOnePageProfile))
	assert.Equal(t, "profile_"+today+"_missing_person_poster.pdf", Filename("", KindMissingPersonPoster))
}
