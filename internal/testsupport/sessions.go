package testsupport

import (
	"veriscan/internal/fields"
	"veriscan/internal/session"
)

// ExtractedFields returns a realistic full extraction for session tests.
func ExtractedFields() []fields.Field {
	return []fields.Field{
		fields.New(fields.KindFullName, "Ananya Sharma", 0.98),
		fields.New(fields.KindUID, "246109002", 0.95),
		fields.New(fields.KindAge, "29", 0.99),
		fields.New(fields.KindGender, "Female", 0.96),
		fields.New(fields.KindAddress, "123, MG Road, Bengaluru, Karnataka - 560001", 0.85),
		fields.New(fields.KindEmail, "ananya.sharma@example.com", 0.92),
		fields.New(fields.KindPhone, "+91-9876543210", 0.97),
	}
}

// NewSession builds a session over ExtractedFields with a fixed metadata set.
func NewSession(id string) *session.Session {
	return session.New(id, ExtractedFields(), session.Metadata{
		Model:            "tesseract",
		ProcessingMillis: 1205,
	}, "uploads/scan_ananya_sharma.jpg")
}
