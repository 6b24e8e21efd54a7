package model

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError describes one rejected field. Recoverable: report to the
// caller, change no state.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the record against the schema rules. A non-empty result
// means the record must not be persisted.
func (r *ProfileRecord) Validate() []ValidationError {
	var errs []ValidationError

	if err := validate.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, ValidationError{
					Field:   jsonFieldName(fe.Field()),
					Message: messageForTag(fe),
				})
			}
		} else {
			errs = append(errs, ValidationError{Field: "record", Message: err.Error()})
		}
	}

	if !r.GDPRConsent {
		errs = append(errs, ValidationError{
			Field:   "gdpr_consent",
			Message: "you must consent to data storage",
		})
	}

	return errs
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// jsonFieldName maps the struct field name reported by the validator to the
// wire name used everywhere else.
func jsonFieldName(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "HeightCm":
		return "height_cm"
	case "WeightKg":
		return "weight_kg"
	case "EmergencyContactEmail":
		return "emergency_contact_email"
	default:
		return strings.ToLower(structField)
	}
}

// RawFields carries untrusted form input into normalization. Descriptor
// fields arrive as an option token plus an optional "Other" override.
type RawFields struct {
	Name      string
	DOB       string
	NHSNumber string

	EmergencyContactName         string
	EmergencyContactRelationship string
	EmergencyContactMobile       string
	EmergencyContactEmail        string

	HeightCm               int
	WeightKg               int
	Build                  string
	BuildOther             string
	HairColor              string
	HairColorOther         string
	HairStyle              string
	EyeColor               string
	EyeColorOther          string
	DistinguishingFeatures string

	ImportantToMe string
	HowToSupport  string
	Communication string

	MedicalInfo    string
	PlacesMightGo  string
	TravelRoutines string

	MedicalInfoShort   string
	CommunicationShort string
	PlacesMightGoShort string

	LastSeenDate     string
	LastSeenTime     string
	LastSeenLocation string
	LastSeenWearing  string
	ReferenceNumber  string

	GDPRConsent bool
}

// Normalize builds a ProfileRecord from raw form fields: trims text, collapses
// the "Other" descriptor escapes, parses dates, and applies defaults for the
// numeric fields. It does not validate; out-of-range values survive here and
// are rejected by Validate so the caller sees the real error instead of a
// silent clamp.
func Normalize(raw RawFields) (*ProfileRecord, error) {
	rec := NewProfileRecord()

	rec.Name = strings.TrimSpace(raw.Name)
	rec.NHSNumber = strings.TrimSpace(raw.NHSNumber)

	rec.EmergencyContactName = strings.TrimSpace(raw.EmergencyContactName)
	rec.EmergencyContactRelationship = strings.TrimSpace(raw.EmergencyContactRelationship)
	rec.EmergencyContactMobile = strings.TrimSpace(raw.EmergencyContactMobile)
	rec.EmergencyContactEmail = strings.TrimSpace(raw.EmergencyContactEmail)

	if raw.HeightCm != 0 {
		rec.HeightCm = raw.HeightCm
	}
	if raw.WeightKg != 0 {
		rec.WeightKg = raw.WeightKg
	}
	if raw.Build != "" {
		rec.Build = CollapseChoice(raw.Build, raw.BuildOther)
	}
	if raw.HairColor != "" {
		rec.HairColor = CollapseChoice(raw.HairColor, raw.HairColorOther)
	}
	if raw.EyeColor != "" {
		rec.EyeColor = CollapseChoice(raw.EyeColor, raw.EyeColorOther)
	}
	rec.HairStyle = strings.TrimSpace(raw.HairStyle)
	rec.DistinguishingFeatures = strings.TrimSpace(raw.DistinguishingFeatures)

	rec.ImportantToMe = strings.TrimSpace(raw.ImportantToMe)
	rec.HowToSupport = strings.TrimSpace(raw.HowToSupport)
	rec.Communication = strings.TrimSpace(raw.Communication)
	rec.MedicalInfo = strings.TrimSpace(raw.MedicalInfo)
	rec.PlacesMightGo = strings.TrimSpace(raw.PlacesMightGo)
	rec.TravelRoutines = strings.TrimSpace(raw.TravelRoutines)
	rec.MedicalInfoShort = strings.TrimSpace(raw.MedicalInfoShort)
	rec.CommunicationShort = strings.TrimSpace(raw.CommunicationShort)
	rec.PlacesMightGoShort = strings.TrimSpace(raw.PlacesMightGoShort)

	rec.LastSeenLocation = strings.TrimSpace(raw.LastSeenLocation)
	rec.LastSeenWearing = strings.TrimSpace(raw.LastSeenWearing)
	rec.ReferenceNumber = strings.TrimSpace(raw.ReferenceNumber)

	rec.GDPRConsent = raw.GDPRConsent

	if raw.DOB != "" {
		dob, err := ParseDate(raw.DOB)
		if err != nil {
			return nil, err
		}
		rec.DOB = dob
	}
	if raw.LastSeenDate != "" {
		d, err := ParseDate(raw.LastSeenDate)
		if err != nil {
			return nil, err
		}
		rec.LastSeenDate = d
	}
	if raw.LastSeenTime != "" {
		c, err := ParseClock(raw.LastSeenTime)
		if err != nil {
			return nil, err
		}
		rec.LastSeenTime = c
	}

	return rec, nil
}
