package document

import (
	"bytes"
	"log"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// embedQRCode renders content as a QR code and places it as a square of side
// size at (x, y). Encoder or embed failures are logged and reported false so
// callers can fall back to plain text.
func embedQRCode(pdf *gofpdf.Fpdf, content string, x, y, size float64) bool {
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		log.Printf("QR code generation failed: %v", err)
		return false
	}

	name := "qr-" + uuid.New().String()
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if info == nil || pdf.Err() {
		log.Printf("QR code embed failed: %v", pdf.Error())
		pdf.ClearError()
		return false
	}

	pdf.ImageOptions(name, x, y, size, size, false, opts, 0, "")
	if pdf.Err() {
		log.Printf("QR code placement failed: %v", pdf.Error())
		pdf.ClearError()
		return false
	}
	return true
}
