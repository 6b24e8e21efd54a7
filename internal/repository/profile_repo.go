package repository

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"safeprofile/internal/model"
	"safeprofile/internal/util"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	profileCachePrefix     = "profile:"
	profileCacheExpiration = 10 * time.Minute
)

// ProfileRow is the persisted shape: an opaque encrypted payload plus
// plaintext timestamps. Nothing personal lives outside encrypted_data.
type ProfileRow struct {
	ProfileID     string    `gorm:"type:uuid;primaryKey;column:profile_id"`
	EncryptedData []byte    `gorm:"column:encrypted_data;not null"`
	CreatedDate   time.Time `gorm:"column:created_date"`
	LastUpdated   time.Time `gorm:"column:last_updated"`
}

func (ProfileRow) TableName() string {
	return "profiles"
}

// ProfileStore persists encrypted profile records.
type ProfileStore interface {
	Save(rec *model.ProfileRecord) error
	Load(profileID string) (*model.ProfileRecord, error)
	Delete(profileID string) (bool, error)
	ListAll() ([]*model.ProfileRecord, error)
	ListIDs() ([]string, error)
}

type profileStore struct {
	db     *gorm.DB
	cipher *util.Cipher
	redis  *util.RedisClient
}

// NewProfileStore builds the gorm-backed store. redisClient may be nil; the
// store then runs without the row cache.
func NewProfileStore(db *gorm.DB, cipher *util.Cipher, redisClient *util.RedisClient) ProfileStore {
	return &profileStore{db: db, cipher: cipher, redis: redisClient}
}

// Save encrypts the record and upserts it. Consent is enforced here as well as
// at validation, so no code path can store a record without it.
func (s *profileStore) Save(rec *model.ProfileRecord) error {
	if !rec.GDPRConsent {
		return ErrConsentRequired
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	encrypted, err := s.cipher.Encrypt(payload)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	now := time.Now().UTC()
	row := ProfileRow{
		ProfileID:     rec.ProfileID,
		EncryptedData: encrypted,
		CreatedDate:   now,
		LastUpdated:   now,
	}

	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "profile_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"encrypted_data", "last_updated"}),
	}).Create(&row).Error
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	s.invalidateCache(rec.ProfileID)
	log.Printf("Profile %s saved", rec.ProfileID)
	return nil
}

// Load fetches and decrypts one record. A row that exists but cannot be
// decrypted or decoded comes back as CorruptRecordError, distinct from
// ErrNotFound.
func (s *profileStore) Load(profileID string) (*model.ProfileRecord, error) {
	if row, ok := s.cachedRow(profileID); ok {
		return s.decode(row)
	}

	var row ProfileRow
	err := s.db.Where("profile_id = ?", profileID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	rec, err := s.decode(&row)
	if err != nil {
		return nil, err
	}

	s.cacheRow(&row)
	return rec, nil
}

// Delete removes a profile row. Deleting an absent id is not an error; the
// bool reports whether a row was actually removed.
func (s *profileStore) Delete(profileID string) (bool, error) {
	res := s.db.Where("profile_id = ?", profileID).Delete(&ProfileRow{})
	if res.Error != nil {
		return false, &PersistenceError{Op: "delete", Err: res.Error}
	}

	s.invalidateCache(profileID)
	if res.RowsAffected == 0 {
		return false, nil
	}
	log.Printf("Profile %s deleted", profileID)
	return true, nil
}

// ListAll returns every readable record. Corrupt rows are skipped and logged
// rather than failing the listing; one orphaned row must not hide the rest.
func (s *profileStore) ListAll() ([]*model.ProfileRecord, error) {
	var rows []ProfileRow
	if err := s.db.Order("created_date").Find(&rows).Error; err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}

	records := make([]*model.ProfileRecord, 0, len(rows))
	skipped := 0
	for i := range rows {
		rec, err := s.decode(&rows[i])
		if err != nil {
			skipped++
			log.Printf("Skipping unreadable profile %s: %v", rows[i].ProfileID, err)
			continue
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		log.Printf("Listing skipped %d unreadable profile(s)", skipped)
	}
	return records, nil
}

// ListIDs returns every stored profile id, readable or not. Used by the
// retention sweep, which must not treat a corrupt row as deletable.
func (s *profileStore) ListIDs() ([]string, error) {
	var ids []string
	if err := s.db.Model(&ProfileRow{}).Pluck("profile_id", &ids).Error; err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return ids, nil
}

func (s *profileStore) decode(row *ProfileRow) (*model.ProfileRecord, error) {
	payload, err := s.cipher.Decrypt(row.EncryptedData)
	if err != nil {
		return nil, &CorruptRecordError{ProfileID: row.ProfileID, Err: err}
	}

	var rec model.ProfileRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, &CorruptRecordError{ProfileID: row.ProfileID, Err: err}
	}

	rec.ProfileID = row.ProfileID
	rec.CreatedAt = row.CreatedDate
	rec.UpdatedAt = row.LastUpdated
	return &rec, nil
}

func (s *profileStore) cachedRow(profileID string) (*ProfileRow, bool) {
	if s.redis == nil {
		return nil, false
	}
	val, err := s.redis.Get(profileCachePrefix + profileID)
	if err != nil {
		return nil, false
	}
	var row ProfileRow
	if err := json.Unmarshal([]byte(val), &row); err != nil {
		return nil, false
	}
	return &row, true
}

func (s *profileStore) cacheRow(row *ProfileRow) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(row)
	if err != nil {
		return
	}
	if err := s.redis.Set(profileCachePrefix+row.ProfileID, string(data), profileCacheExpiration); err != nil {
		log.Printf("Failed to cache profile %s: %v", row.ProfileID, err)
	}
}

func (s *profileStore) invalidateCache(profileID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(profileCachePrefix + profileID); err != nil {
		log.Printf("Failed to invalidate cache for profile %s: %v", profileID, err)
	}
}
