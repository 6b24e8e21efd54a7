package document

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"time"

	"safeprofile/internal/model"
	"safeprofile/internal/util"

	"github.com/jung-kurt/gofpdf"
)

// Document kinds, used in download filenames.
const (
	KindOnePageProfile      = "one_page_profile"
	KindMissingPersonPoster = "missing_person_poster"
)

// GenerationError reports a failure in base document assembly. Enrichment
// failures (photo, map page, QR) never produce one; they are logged and
// skipped.
type GenerationError struct {
	Kind string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate %s document: %v", e.Kind, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// CoordinateResolver yields coordinates for a free-text location, ok=false
// when unresolved.
type CoordinateResolver interface {
	Resolve(text string) (lat, lng float64, ok bool)
}

// Filename builds the download filename for a document kind,
// {sanitized_name}_{date}_{kind}.pdf.
func Filename(name, kind string) string {
	safe := util.SanitizeFilename(name)
	if safe == "" {
		safe = "profile"
	}
	return fmt.Sprintf("%s_%s_%s.pdf", safe, time.Now().Format("2006-01-02"), kind)
}

// CreateProfilePDF renders the one-page profile. Section order is fixed;
// missing optional fields render as empty cells so the table shape is stable
// regardless of data completeness.
func CreateProfilePDF(rec *model.ProfileRecord) ([]byte, error) {
	log.Printf("Creating profile PDF for %s", rec.ProfileID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "One-Page Profile: "+rec.Name, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if embedImage(pdf, rec.ProfileImage, 20, pdf.GetY(), 50, 50) {
		pdf.SetY(pdf.GetY() + 55)
	}

	dob := ""
	if rec.DOB != nil {
		dob = rec.DOB.Format("02 January 2006")
	}
	infoTable(pdf, [][2]string{
		{"Name", rec.Name},
		{"Date of Birth", dob},
		{"NHS Number", rec.NHSNumber},
		{"Emergency Contact", rec.EmergencyContact()},
	}, 45, 125)
	pdf.Ln(6)

	sectionHeading(pdf, "Important Information to Keep Me Safe")

	sectionHeading(pdf, "Physical Description:")
	infoTable(pdf, [][2]string{
		{"Height", rec.Height()},
		{"Weight", rec.Weight()},
		{"Build", rec.Build},
		{"Hair Color/Style", rec.Hair()},
		{"Eye Color", rec.Eyes()},
		{"Distinguishing Features", rec.DistinguishingFeatures},
	}, 55, 115)
	pdf.Ln(4)

	textSection(pdf, "What's Important To Me:", rec.ImportantToMe)
	textSection(pdf, "How Best To Support Me:", rec.HowToSupport)
	textSection(pdf, "How I Communicate:", rec.Communication)
	textSection(pdf, "Medical Information:", rec.MedicalInfo)
	textSection(pdf, "Places I Might Go:", rec.PlacesMightGo)
	textSection(pdf, "Travel Patterns and Routines:", rec.TravelRoutines)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "CONFIDENTIAL - Data Protection: This document contains personal data subject to GDPR. Handle according to data protection policies.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &GenerationError{Kind: KindOnePageProfile, Err: err}
	}
	log.Printf("Profile PDF created for %s (%d bytes)", rec.ProfileID, buf.Len())
	return buf.Bytes(), nil
}

// CreateMissingPersonPoster renders the multi-page poster. Page 2 (map and
// QR) appears only when the resolver yields coordinates for the last-seen
// text; its absence or any enrichment failure never fails generation.
func CreateMissingPersonPoster(rec *model.ProfileRecord, resolver CoordinateResolver) ([]byte, error) {
	log.Printf("Creating missing person poster for %s", rec.ProfileID)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Helvetica", "B", 24)
		pdf.CellFormat(0, 15, "MISSING PERSON", "", 1, "C", false, 0, "")
		pdf.SetFont("Helvetica", "B", 16)
		pdf.CellFormat(0, 10, "URGENT: Please help find "+rec.Name, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	})

	// Page 1: photo, description, last seen
	pdf.AddPage()
	embedImage(pdf, rec.ProfileImage, 75, 45, 60, 60)
	pdf.SetY(110)

	age := ""
	if years, ok := rec.Age(); ok {
		age = fmt.Sprintf("%d", years)
	}
	posterBlock(pdf, "DESCRIPTION:", [][2]string{
		{"Name", rec.Name},
		{"Age", age},
		{"Height", rec.Height()},
		{"Build", rec.Build},
		{"Hair", rec.Hair()},
		{"Eyes", rec.Eyes()},
		{"Distinguishing features", rec.DistinguishingFeatures},
	})

	pdf.Ln(10)
	posterBlock(pdf, "LAST SEEN:", [][2]string{
		{"Date and time", orUnknown(rec.LastSeenDateTime())},
		{"Location", orUnknown(rec.LastSeenLocation)},
		{"Wearing", orUnknown(rec.LastSeenWearing)},
	})

	// Page 2 (conditional): map link and QR code
	if resolver != nil && rec.LastSeenLocation != "" {
		if lat, lng, ok := resolver.Resolve(rec.LastSeenLocation); ok {
			addMapPage(pdf, rec.LastSeenLocation, lat, lng)
		} else {
			log.Printf("No coordinates for %q, omitting map page", rec.LastSeenLocation)
		}
	}

	// Page 3: short-form safety info and contact footer
	pdf.AddPage()
	posterBlock(pdf, "IMPORTANT INFORMATION:", [][2]string{
		{"Medical needs", orUnknown(rec.ShortMedicalInfo())},
		{"Communication", orUnknown(rec.ShortCommunication())},
		{"Places they might go", orUnknown(rec.ShortPlacesMightGo())},
	})

	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "IF YOU HAVE ANY INFORMATION PLEASE CONTACT:", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, "Police: 101 or 999 in an emergency", "", 1, "C", false, 0, "")
	ref := rec.ReferenceNumber
	if ref == "" {
		ref = "Please quote name"
	}
	pdf.CellFormat(0, 8, "Reference: "+ref, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &GenerationError{Kind: KindMissingPersonPoster, Err: err}
	}
	log.Printf("Missing person poster created for %s (%d bytes)", rec.ProfileID, buf.Len())
	return buf.Bytes(), nil
}

// addMapPage writes the coordinates, the web-map deep link and, when the QR
// encoder cooperates, a QR code for the same URL.
func addMapPage(pdf *gofpdf.Fpdf, locationText string, lat, lng float64) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "LOCATION MAP", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 8, "Last seen at: "+locationText, "", "L", false)
	pdf.MultiCell(0, 8, fmt.Sprintf("Coordinates: %.6f, %.6f", lat, lng), "", "L", false)
	pdf.Ln(10)
	pdf.MultiCell(0, 8, "For an interactive map, scan the QR code or visit the URL below:", "", "L", false)

	mapURL := fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", lat, lng)
	pdf.MultiCell(0, 8, mapURL, "", "L", false)

	if !embedQRCode(pdf, mapURL, 85, pdf.GetY()+10, 40) {
		pdf.MultiCell(0, 8, "QR code generation not available. Please use the URL above.", "", "L", false)
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func sectionHeading(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func textSection(pdf *gofpdf.Fpdf, title, body string) {
	sectionHeading(pdf, title)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, body, "", "L", false)
	pdf.Ln(4)
}

func infoTable(pdf *gofpdf.Fpdf, rows [][2]string, labelW, valueW float64) {
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.SetFillColor(220, 220, 220)
		pdf.CellFormat(labelW, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.CellFormat(valueW, 8, row[1], "1", 1, "L", false, 0, "")
	}
}

func posterBlock(pdf *gofpdf.Fpdf, title string, lines [][2]string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	for _, line := range lines {
		pdf.MultiCell(0, 8, line[0]+": "+line[1], "", "L", false)
	}
}

// embedImage places an image from disk; a stale path or an unreadable file is
// logged and skipped, never a generation failure.
func embedImage(pdf *gofpdf.Fpdf, path string, x, y, w, h float64) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("Skipping photo, path not readable: %s", path)
		return false
	}

	opts := gofpdf.ImageOptions{ReadDpi: true}
	info := pdf.RegisterImageOptions(path, opts)
	if info == nil || pdf.Err() {
		log.Printf("Skipping photo, could not embed %s: %v", path, pdf.Error())
		pdf.ClearError()
		return false
	}

	pdf.ImageOptions(path, x, y, w, h, false, opts, 0, "")
	if pdf.Err() {
		log.Printf("Skipping photo, could not place %s: %v", path, pdf.Error())
		pdf.ClearError()
		return false
	}
	return true
}
