package repository

import (
	"errors"
	"testing"
	"time"

	"safeprofile/internal/model"
	"safeprofile/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) (ProfileStore, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ProfileRow{}))

	key, err := util.GenerateKey()
	require.NoError(t, err)
	cipher, err := util.NewCipher(key)
	require.NoError(t, err)

	return NewProfileStore(db, cipher, nil), db
}

func consentedRecord(name string) *model.ProfileRecord {
	rec := model.NewProfileRecord()
	rec.Name = name
	rec.GDPRConsent = true
	return rec
}

func TestSaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)

	rec := consentedRecord("John Smith")
	rec.DOB = model.NewDate(1990, time.June, 15)
	rec.MedicalInfo = "Takes insulin daily."
	require.NoError(t, store.Save(rec))

	got, err := store.Load(rec.ProfileID)
	require.NoError(t, err)
	assert.Equal(t, rec.ProfileID, got.ProfileID)
	assert.Equal(t, "John Smith", got.Name)
	assert.Equal(t, "Takes insulin daily.", got.MedicalInfo)
	require.NotNil(t, got.DOB)
	assert.Equal(t, "1990-06-15", got.DOB.Format("2006-01-02"))

	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestLoadNotFound(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveWithoutConsentStoresNothing(t *testing.T) {
	store, db := newTestStore(t)

	rec := consentedRecord("John Smith")
	rec.GDPRConsent = false
	assert.ErrorIs(t, store.Save(rec), ErrConsentRequired)

	var count int64
	require.NoError(t, db.Model(&ProfileRow{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSaveUpsertsAndKeepsCreatedDate(t *testing.T) {
	store, _ := newTestStore(t)

	rec := consentedRecord("John Smith")
	require.NoError(t, store.Save(rec))
	first, err := store.Load(rec.ProfileID)
	require.NoError(t, err)

	rec.MedicalInfo = "Updated information."
	require.NoError(t, store.Save(rec))
	second, err := store.Load(rec.ProfileID)
	require.NoError(t, err)

	assert.Equal(t, "Updated information.", second.MedicalInfo)
	assert.Equal(t, first.CreatedAt.Unix(), second.CreatedAt.Unix())
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDelete(t *testing.T) {
	store, _ := newTestStore(t)

	rec := consentedRecord("John Smith")
	require.NoError(t, store.Save(rec))

	deleted, err := store.Delete(rec.ProfileID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = store.Load(rec.ProfileID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent id is not an error
	deleted, err = store.Delete(rec.ProfileID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestLoadCorruptRow(t *testing.T) {
	store, db := newTestStore(t)

	row := ProfileRow{
		ProfileID:     "corrupt-id",
		EncryptedData: []byte("not an encrypted payload"),
		CreatedDate:   time.Now().UTC(),
		LastUpdated:   time.Now().UTC(),
	}
	require.NoError(t, db.Create(&row).Error)

	_, err := store.Load("corrupt-id")
	var corrupt *CorruptRecordError
	require.True(t, errors.As(err, &corrupt))
	assert.Equal(t, "corrupt-id", corrupt.ProfileID)
}

func TestListAllSkipsCorruptRows(t *testing.T) {
	store, db := newTestStore(t)

	require.NoError(t, store.Save(consentedRecord("Alice")))
	require.NoError(t, store.Save(consentedRecord("Bob")))
	require.NoError(t, db.Create(&ProfileRow{
		ProfileID:     "corrupt-id",
		EncryptedData: []byte("garbage"),
		CreatedDate:   time.Now().UTC(),
		LastUpdated:   time.Now().UTC(),
	}).Error)

	records, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestListIDsIncludesCorruptRows(t *testing.T) {
	store, db := newTestStore(t)

	rec := consentedRecord("Alice")
	require.NoError(t, store.Save(rec))
	require.NoError(t, db.Create(&ProfileRow{
		ProfileID:     "corrupt-id",
		EncryptedData: []byte("garbage"),
		CreatedDate:   time.Now().UTC(),
		LastUpdated:   time.Now().UTC(),
	}).Error)

	ids, err := store.ListIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{rec.ProfileID, "corrupt-id"}, ids)
}

func TestStoredPayloadIsOpaque(t *testing.T) {
	store, db := newTestStore(t)

	rec := consentedRecord("John Smith")
	rec.NHSNumber = "943 476 5919"
	require.NoError(t, store.Save(rec))

	var row ProfileRow
	require.NoError(t, db.First(&row, "profile_id = ?", rec.ProfileID).Error)
	assert.NotContains(t, string(row.EncryptedData), "John Smith")
	assert.NotContains(t, string(row.EncryptedData), "943 476 5919")
}
