package app

import (
	"errors"
	"io"
	"net/http"

	"safeprofile/internal/model"
	"safeprofile/internal/repository"
	"safeprofile/internal/service"
	"safeprofile/internal/util"

	"github.com/gin-gonic/gin"
)

const maxImageUploadBytes = 10 << 20

type ProfileHandler struct {
	profileService service.ProfileService
}

func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRequest is the JSON body for create and update. Descriptor fields
// arrive as an option plus an optional "Other" override; both are collapsed
// server-side.
type ProfileRequest struct {
	Name      string `json:"name"`
	DOB       string `json:"dob"`
	NHSNumber string `json:"nhs_number"`

	EmergencyContactName         string `json:"emergency_contact_name"`
	EmergencyContactRelationship string `json:"emergency_contact_relationship"`
	EmergencyContactMobile       string `json:"emergency_contact_mobile"`
	EmergencyContactEmail        string `json:"emergency_contact_email"`

	HeightCm               int    `json:"height_cm"`
	WeightKg               int    `json:"weight_kg"`
	Build                  string `json:"build"`
	BuildOther             string `json:"build_other"`
	HairColor              string `json:"hair_color"`
	HairColorOther         string `json:"hair_color_other"`
	HairStyle              string `json:"hair_style"`
	EyeColor               string `json:"eye_color"`
	EyeColorOther          string `json:"eye_color_other"`
	DistinguishingFeatures string `json:"distinguishing_features"`

	ImportantToMe string `json:"important_to_me"`
	HowToSupport  string `json:"how_to_support"`
	Communication string `json:"communication"`

	MedicalInfo    string `json:"medical_info"`
	PlacesMightGo  string `json:"places_might_go"`
	TravelRoutines string `json:"travel_routines"`

	MedicalInfoShort   string `json:"medical_info_short"`
	CommunicationShort string `json:"communication_short"`
	PlacesMightGoShort string `json:"places_might_go_short"`

	LastSeenDate     string `json:"last_seen_date"`
	LastSeenTime     string `json:"last_seen_time"`
	LastSeenLocation string `json:"last_seen_location"`
	LastSeenWearing  string `json:"last_seen_wearing"`
	ReferenceNumber  string `json:"reference_number"`

	GDPRConsent bool `json:"gdpr_consent"`
}

func (r ProfileRequest) rawFields() model.RawFields {
	return model.RawFields{
		Name:      r.Name,
		DOB:       r.DOB,
		NHSNumber: r.NHSNumber,

		EmergencyContactName:         r.EmergencyContactName,
		EmergencyContactRelationship: r.EmergencyContactRelationship,
		EmergencyContactMobile:       r.EmergencyContactMobile,
		EmergencyContactEmail:        r.EmergencyContactEmail,

		HeightCm:               r.HeightCm,
		WeightKg:               r.WeightKg,
		Build:                  r.Build,
		BuildOther:             r.BuildOther,
		HairColor:              r.HairColor,
		HairColorOther:         r.HairColorOther,
		HairStyle:              r.HairStyle,
		EyeColor:               r.EyeColor,
		EyeColorOther:          r.EyeColorOther,
		DistinguishingFeatures: r.DistinguishingFeatures,

		ImportantToMe: r.ImportantToMe,
		HowToSupport:  r.HowToSupport,
		Communication: r.Communication,

		MedicalInfo:    r.MedicalInfo,
		PlacesMightGo:  r.PlacesMightGo,
		TravelRoutines: r.TravelRoutines,

		MedicalInfoShort:   r.MedicalInfoShort,
		CommunicationShort: r.CommunicationShort,
		PlacesMightGoShort: r.PlacesMightGoShort,

		LastSeenDate:     r.LastSeenDate,
		LastSeenTime:     r.LastSeenTime,
		LastSeenLocation: r.LastSeenLocation,
		LastSeenWearing:  r.LastSeenWearing,
		ReferenceNumber:  r.ReferenceNumber,

		GDPRConsent: r.GDPRConsent,
	}
}

// profileView renders a record for API responses, including the derived
// display values that are never stored.
func profileView(rec *model.ProfileRecord) gin.H {
	age, hasAge := rec.Age()
	view := gin.H{
		"profile_id":              rec.ProfileID,
		"name":                    rec.Name,
		"dob":                     rec.DOB,
		"nhs_number":              rec.NHSNumber,
		"emergency_contact":       rec.EmergencyContact(),
		"height_cm":               rec.HeightCm,
		"weight_kg":               rec.WeightKg,
		"height":                  rec.Height(),
		"weight":                  rec.Weight(),
		"build":                   rec.Build,
		"hair":                    rec.Hair(),
		"eye_color":               rec.Eyes(),
		"distinguishing_features": rec.DistinguishingFeatures,
		"important_to_me":         rec.ImportantToMe,
		"how_to_support":          rec.HowToSupport,
		"communication":           rec.Communication,
		"medical_info":            rec.MedicalInfo,
		"places_might_go":         rec.PlacesMightGo,
		"travel_routines":         rec.TravelRoutines,
		"last_seen_date":          rec.LastSeenDate,
		"last_seen_time":          rec.LastSeenTime,
		"last_seen_location":      rec.LastSeenLocation,
		"last_seen_wearing":       rec.LastSeenWearing,
		"reference_number":        rec.ReferenceNumber,
		"profile_image":           rec.ProfileImage,
		"additional_images":       rec.AdditionalImages,
		"has_missing_episode":     rec.HasMissingEpisode(),
		"created_at":              rec.CreatedAt,
		"updated_at":              rec.UpdatedAt,
	}
	if hasAge {
		view["age"] = age
	}
	return view
}

func profileSummary(rec *model.ProfileRecord) gin.H {
	return gin.H{
		"profile_id":          rec.ProfileID,
		"name":                rec.Name,
		"has_missing_episode": rec.HasMissingEpisode(),
		"created_at":          rec.CreatedAt,
		"updated_at":          rec.UpdatedAt,
	}
}

// respondStoreError maps store failures onto HTTP statuses.
func respondStoreError(c *gin.Context, err error) {
	var corrupt *repository.CorruptRecordError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		util.NotFound(c, "Profile not found")
	case errors.Is(err, repository.ErrConsentRequired):
		util.BadRequest(c, "Consent is required to store profile data")
	case errors.As(err, &corrupt):
		util.InternalError(c, "Profile data could not be read")
	default:
		util.InternalError(c, "Something went wrong")
	}
}

// CreateProfile handles profile creation
// POST /api/v1/profiles
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	rec, verrs, err := h.profileService.CreateProfile(req.rawFields())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if len(verrs) > 0 {
		util.ErrorResponse(c, http.StatusBadRequest, "Profile validation failed", verrs)
		return
	}

	util.SuccessResponse(c, http.StatusCreated, "Profile created successfully", gin.H{"profile": profileView(rec)})
}

// GetProfile handles getting a profile by ID
// GET /api/v1/profiles/:id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	rec, err := h.profileService.GetProfile(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", gin.H{"profile": profileView(rec)})
}

// ListProfiles handles listing all stored profiles
// GET /api/v1/profiles
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	recs, err := h.profileService.ListProfiles()
	if err != nil {
		respondStoreError(c, err)
		return
	}

	summaries := make([]gin.H, 0, len(recs))
	for _, rec := range recs {
		summaries = append(summaries, profileSummary(rec))
	}

	util.SuccessResponse(c, http.StatusOK, "Profiles retrieved successfully", gin.H{
		"profiles": summaries,
		"count":    len(summaries),
	})
}

// UpdateProfile handles profile update
// PUT /api/v1/profiles/:id
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.BadRequest(c, err.Error())
		return
	}

	rec, verrs, err := h.profileService.UpdateProfile(c.Param("id"), req.rawFields())
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if len(verrs) > 0 {
		util.ErrorResponse(c, http.StatusBadRequest, "Profile validation failed", verrs)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile updated successfully", gin.H{"profile": profileView(rec)})
}

// DeleteProfile handles profile deletion
// DELETE /api/v1/profiles/:id
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	deleted, err := h.profileService.DeleteProfile(c.Param("id"))
	if err != nil {
		respondStoreError(c, err)
		return
	}
	if !deleted {
		util.NotFound(c, "Profile not found")
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Profile deleted successfully", nil)
}

// UploadImage handles image attachment via multipart form
// POST /api/v1/profiles/:id/images
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.BadRequest(c, "An image file is required")
		return
	}
	if fileHeader.Size > maxImageUploadBytes {
		util.BadRequest(c, "Image exceeds the 10MB limit")
		return
	}

	imageType := c.PostForm("type")
	if imageType == "" {
		imageType = util.ImageTypeProfile
	}
	if imageType != util.ImageTypeProfile && imageType != util.ImageTypeAdditional {
		util.BadRequest(c, "Image type must be 'profile' or 'additional'")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.InternalError(c, "Failed to read uploaded image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageUploadBytes+1))
	if err != nil {
		util.InternalError(c, "Failed to read uploaded image")
		return
	}

	rec, err := h.profileService.AttachImage(c.Param("id"), data, imageType, fileHeader.Filename)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	util.SuccessResponse(c, http.StatusOK, "Image uploaded successfully", gin.H{"profile": profileView(rec)})
}
