package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *ProfileRecord {
	rec := NewProfileRecord()
	rec.Name = "John Smith"
	rec.GDPRConsent = true
	return rec
}

func TestNewProfileRecordDefaults(t *testing.T) {
	rec := NewProfileRecord()
	assert.NotEmpty(t, rec.ProfileID)
	assert.Equal(t, HeightDefaultCm, rec.HeightCm)
	assert.Equal(t, WeightDefaultKg, rec.WeightKg)
	assert.Equal(t, "Average", rec.Build)
}

func TestValidateRequiresNameAndConsent(t *testing.T) {
	rec := NewProfileRecord()
	errs := rec.Validate()
	require.Len(t, errs, 2)

	fields := []string{errs[0].Field, errs[1].Field}
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "gdpr_consent")
}

func TestValidateRejectsOutOfRangeHeight(t *testing.T) {
	rec := validRecord()
	rec.HeightCm = 300

	errs := rec.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "height_cm", errs[0].Field)
}

func TestValidateRejectsBadEmail(t *testing.T) {
	rec := validRecord()
	rec.EmergencyContactEmail = "not-an-email"

	errs := rec.Validate()
	require.Len(t, errs, 1)
	assert.Equal(t, "emergency_contact_email", errs[0].Field)
}

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	rec := validRecord()
	rec.EmergencyContactEmail = "jane@example.com"
	assert.Empty(t, rec.Validate())
}

func TestNormalizeCollapsesOtherChoices(t *testing.T) {
	rec, err := Normalize(RawFields{
		Name:       "John Smith",
		Build:      "Other",
		BuildOther: "Wiry",
		HairColor:  "Brown",
		EyeColor:   "Other",
		// No free text: the literal option survives
		GDPRConsent: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Wiry", rec.Build)
	assert.Equal(t, "Brown", rec.HairColor)
	assert.Equal(t, "Other", rec.EyeColor)
}

func TestNormalizeKeepsDefaultsForZeroValues(t *testing.T) {
	rec, err := Normalize(RawFields{Name: "John Smith", GDPRConsent: true})
	require.NoError(t, err)
	assert.Equal(t, HeightDefaultCm, rec.HeightCm)
	assert.Equal(t, WeightDefaultKg, rec.WeightKg)
}

func TestNormalizeParsesDates(t *testing.T) {
	rec, err := Normalize(RawFields{
		Name:         "John Smith",
		DOB:          "1990-06-15",
		LastSeenDate: "2026-03-01",
		LastSeenTime: "14:30",
		GDPRConsent:  true,
	})
	require.NoError(t, err)
	require.NotNil(t, rec.DOB)
	assert.Equal(t, "1990-06-15", rec.DOB.Format("2006-01-02"))
	assert.Equal(t, "01 March 2026 at 14:30", rec.LastSeenDateTime())
}

func TestNormalizeRejectsBadDate(t *testing.T) {
	_, err := Normalize(RawFields{Name: "John Smith", DOB: "15/06/1990", GDPRConsent: true})
	assert.Error(t, err)
}

func TestClassifyRoundTrip(t *testing.T) {
	c := Classify("brown", HairColorOptions)
	assert.False(t, c.IsCustom())
	assert.Equal(t, "Brown", c.Value())

	c = Classify("Salt and pepper", HairColorOptions)
	assert.True(t, c.IsCustom())
	assert.Equal(t, "Salt and pepper", c.Value())
}

func TestEmergencyContactLine(t *testing.T) {
	rec := validRecord()
	assert.Equal(t, "", rec.EmergencyContact())

	rec.EmergencyContactName = "Jane Smith"
	rec.EmergencyContactRelationship = "Mother"
	rec.EmergencyContactMobile = "07700 900123"
	rec.EmergencyContactEmail = "jane@example.com"
	assert.Equal(t,
		"Jane Smith (Mother) - Mobile: 07700 900123 - Email: jane@example.com",
		rec.EmergencyContact())
}

func TestDerivedDisplayValues(t *testing.T) {
	rec := validRecord()
	rec.HeightCm = 182
	rec.WeightKg = 70
	rec.HairColor = "Brown"
	rec.HairStyle = "short"

	assert.Equal(t, "182 cm (6' 0\")", rec.Height())
	assert.Equal(t, "70 kg (154 lbs)", rec.Weight())
	assert.Equal(t, "Brown short", rec.Hair())

	_, ok := rec.Age()
	assert.False(t, ok)

	rec.DOB = NewDate(1990, time.June, 15)
	age, ok := rec.Age()
	require.True(t, ok)
	assert.Greater(t, age, 30)
}

func TestShortForm(t *testing.T) {
	assert.Equal(t, "", ShortForm("", 15))
	assert.Equal(t, "Takes insulin daily.", ShortForm("Takes insulin daily. Full history in GP records.", 15))
	assert.Equal(t, "no punctuation here", ShortForm("no punctuation here", 15))

	long := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen"
	got := ShortForm(long, 15)
	assert.Equal(t, "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen...", got)
}

func TestShortGettersPreferStoredShortForm(t *testing.T) {
	rec := validRecord()
	rec.MedicalInfo = "A very long explanation. With extra detail."
	rec.MedicalInfoShort = "Diabetic"
	assert.Equal(t, "Diabetic", rec.ShortMedicalInfo())

	rec.MedicalInfoShort = ""
	assert.Equal(t, "A very long explanation.", rec.ShortMedicalInfo())
}

func TestHasMissingEpisode(t *testing.T) {
	rec := validRecord()
	assert.False(t, rec.HasMissingEpisode())

	rec.LastSeenDate = NewDate(2026, time.March, 1)
	assert.False(t, rec.HasMissingEpisode())

	rec.LastSeenLocation = "High Street, Oxford"
	assert.True(t, rec.HasMissingEpisode())
}

func TestRecordJSONRoundTrip(t *testing.T) {
	rec := validRecord()
	rec.DOB = NewDate(1990, time.June, 15)
	rec.LastSeenDate = NewDate(2026, time.March, 1)
	rec.LastSeenTime = NewClock(14, 30)
	rec.LastSeenLocation = "High Street, Oxford"
	rec.AdditionalImages = []string{"/tmp/a.jpg"}
	rec.CreatedAt = time.Now()

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	// Row timestamps belong to the store, not the payload
	assert.NotContains(t, string(data), "created_at")
	assert.Contains(t, string(data), `"dob":"1990-06-15"`)
	assert.Contains(t, string(data), `"last_seen_time":"14:30"`)

	var back ProfileRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec.ProfileID, back.ProfileID)
	assert.Equal(t, rec.Name, back.Name)
	assert.Equal(t, rec.LastSeenLocation, back.LastSeenLocation)
	assert.Equal(t, rec.AdditionalImages, back.AdditionalImages)
	assert.Equal(t, "01 March 2026 at 14:30", back.LastSeenDateTime())
	assert.True(t, back.CreatedAt.IsZero())
}
