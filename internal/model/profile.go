package model

import (
	"strings"
	"time"

	"safeprofile/internal/util"

	"github.com/google/uuid"
)

// Option lists for the descriptor fields that offer an "Other" escape.
var (
	BuildOptions     = []string{"Slim", "Average", "Athletic", "Heavy", "Other"}
	HairColorOptions = []string{"Black", "Brown", "Blonde", "Red", "Grey", "White", "Other"}
	EyeColorOptions  = []string{"Brown", "Blue", "Green", "Hazel", "Grey", "Other"}
)

const (
	HeightMinCm     = 30
	HeightMaxCm     = 250
	HeightDefaultCm = 170

	WeightMinKg     = 1
	WeightMaxKg     = 250
	WeightDefaultKg = 70

	// Upper bound for auto-derived short-form text on the poster.
	ShortFormMaxWords = 15
)

// ProfileRecord is the single persisted entity. The JSON field names are the
// wire contract of the encrypted payload; renaming one breaks every stored
// row. Derived values (age, display height/weight, the combined contact line,
// the last-seen datetime) are methods, never serialized, so they cannot go
// stale after partial edits.
type ProfileRecord struct {
	ProfileID string `json:"profile_id"`

	// Basic information
	Name      string `json:"name" validate:"required"`
	DOB       *Date  `json:"dob,omitempty"`
	NHSNumber string `json:"nhs_number"`

	// Structured emergency contact
	EmergencyContactName         string `json:"emergency_contact_name"`
	EmergencyContactRelationship string `json:"emergency_contact_relationship"`
	EmergencyContactMobile       string `json:"emergency_contact_mobile"`
	EmergencyContactEmail        string `json:"emergency_contact_email" validate:"omitempty,email"`

	// Physical description
	HeightCm               int    `json:"height_cm" validate:"gte=30,lte=250"`
	WeightKg               int    `json:"weight_kg" validate:"gte=1,lte=250"`
	Build                  string `json:"build"`
	HairColor              string `json:"hair_color"`
	HairStyle              string `json:"hair_style"`
	EyeColor               string `json:"eye_color"`
	DistinguishingFeatures string `json:"distinguishing_features"`

	// One-page profile sections
	ImportantToMe string `json:"important_to_me"`
	HowToSupport  string `json:"how_to_support"`
	Communication string `json:"communication"`

	// Herbert/Philomena protocol sections
	MedicalInfo    string `json:"medical_info"`
	PlacesMightGo  string `json:"places_might_go"`
	TravelRoutines string `json:"travel_routines"`

	// Poster short forms; blank means derive from the long field at render time
	MedicalInfoShort   string `json:"medical_info_short"`
	CommunicationShort string `json:"communication_short"`
	PlacesMightGoShort string `json:"places_might_go_short"`

	// Missing-episode fields, nullable as a group
	LastSeenDate     *Date  `json:"last_seen_date,omitempty"`
	LastSeenTime     *Clock `json:"last_seen_time,omitempty"`
	LastSeenLocation string `json:"last_seen_location"`
	LastSeenWearing  string `json:"last_seen_wearing"`
	ReferenceNumber  string `json:"reference_number"`

	// Images, referenced by filesystem path
	ProfileImage     string   `json:"profile_image"`
	AdditionalImages []string `json:"additional_images"`

	GDPRConsent bool `json:"gdpr_consent"`

	// Row-level timestamps, owned by the store and set from the plaintext
	// columns on load. Not part of the encrypted payload.
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// NewProfileRecord returns a record with a fresh id and the documented
// physical-attribute defaults.
func NewProfileRecord() *ProfileRecord {
	return &ProfileRecord{
		ProfileID: uuid.New().String(),
		HeightCm:  HeightDefaultCm,
		WeightKg:  WeightDefaultKg,
		Build:     "Average",
		HairColor: "Brown",
		EyeColor:  "Brown",
	}
}

// Age returns the age in whole years derived from the date of birth.
// ok is false when no date of birth is recorded.
func (r *ProfileRecord) Age() (int, bool) {
	if r.DOB == nil {
		return 0, false
	}
	return util.CalculateAge(r.DOB.Time, time.Now()), true
}

// Height returns the display height with imperial conversion.
func (r *ProfileRecord) Height() string {
	return util.FormatHeight(r.HeightCm)
}

// Weight returns the display weight with imperial conversion.
func (r *ProfileRecord) Weight() string {
	return util.FormatWeight(r.WeightKg)
}

// Hair combines colour and style into one description.
func (r *ProfileRecord) Hair() string {
	if r.HairStyle == "" {
		return r.HairColor
	}
	return r.HairColor + " " + r.HairStyle
}

// Eyes returns the eye colour description.
func (r *ProfileRecord) Eyes() string {
	return r.EyeColor
}

// EmergencyContact renders the legacy single-line contact string from the
// structured fields.
func (r *ProfileRecord) EmergencyContact() string {
	var b strings.Builder
	if r.EmergencyContactName != "" {
		b.WriteString(r.EmergencyContactName)
		if r.EmergencyContactRelationship != "" {
			b.WriteString(" (" + r.EmergencyContactRelationship + ")")
		}
	}
	if r.EmergencyContactMobile != "" {
		b.WriteString(" - Mobile: " + r.EmergencyContactMobile)
	}
	if r.EmergencyContactEmail != "" {
		b.WriteString(" - Email: " + r.EmergencyContactEmail)
	}
	return strings.TrimSpace(b.String())
}

// LastSeenDateTime renders "02 January 2006 at 15:04" from the last-seen date
// and time, or "" when either is missing.
func (r *ProfileRecord) LastSeenDateTime() string {
	if r.LastSeenDate == nil || r.LastSeenTime == nil {
		return ""
	}
	return r.LastSeenDate.Format("02 January 2006") + " at " + r.LastSeenTime.Format("15:04")
}

// ShortMedicalInfo prefers the stored short form, deriving one from the long
// field when blank. Same for the other Short* getters.
func (r *ProfileRecord) ShortMedicalInfo() string {
	if r.MedicalInfoShort != "" {
		return r.MedicalInfoShort
	}
	return ShortForm(r.MedicalInfo, ShortFormMaxWords)
}

func (r *ProfileRecord) ShortCommunication() string {
	if r.CommunicationShort != "" {
		return r.CommunicationShort
	}
	return ShortForm(r.Communication, ShortFormMaxWords)
}

func (r *ProfileRecord) ShortPlacesMightGo() string {
	if r.PlacesMightGoShort != "" {
		return r.PlacesMightGoShort
	}
	return ShortForm(r.PlacesMightGo, ShortFormMaxWords)
}

// HasMissingEpisode reports whether the record carries the minimum
// missing-episode data the poster needs.
func (r *ProfileRecord) HasMissingEpisode() bool {
	return r.LastSeenDate != nil && r.LastSeenLocation != ""
}

// ShortForm reduces free text to its first sentence, or to the first maxWords
// words when the first sentence is still too long.
func ShortForm(text string, maxWords int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		sentence := strings.TrimSpace(text[:i+1])
		if len(strings.Fields(sentence)) <= maxWords {
			return sentence
		}
	}
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
