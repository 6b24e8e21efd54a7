package util

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
)

// FormatHeight renders centimeters with the imperial conversion,
// e.g. 170 -> `170 cm (5' 7")`. Inches roll over to the next foot.
func FormatHeight(heightCm int) string {
	feet := int(float64(heightCm) / 30.48)
	inches := int(math.Round(math.Mod(float64(heightCm), 30.48) / 2.54))
	if inches == 12 {
		feet++
		inches = 0
	}
	return fmt.Sprintf("%d cm (%d' %d\")", heightCm, feet, inches)
}

// FormatWeight renders kilograms with the imperial conversion,
// e.g. 70 -> "70 kg (154 lbs)".
func FormatWeight(weightKg int) string {
	pounds := int(math.Round(float64(weightKg) * 2.2046))
	return fmt.Sprintf("%d kg (%d lbs)", weightKg, pounds)
}

// CalculateAge returns whole years between dob and now.
func CalculateAge(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// SanitizeFilename maps every character that is not alphanumeric, '-' or '_'
// to '_', spaces first. Idempotent and total.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
