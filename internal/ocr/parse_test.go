package ocr

import (
	"testing"

	"veriscan/internal/fields"
)

func TestParseLabeledTextMapsAliases(t *testing.T) {
	text := "GOVERNMENT OF TESTLAND\n" +
		"Name: Ananya Sharma\n" +
		"UID: 1234 5678 9012\n" +
		"Age: 29\n" +
		"Sex: Female\n" +
		"Address: 42 Lakeview Road, Pune\n" +
		"Email Address: ananya@example.com\n" +
		"Mobile: +91 98765 43210\n"

	candidates := ParseLabeledText(text, 0.91)
	want := map[fields.Kind]string{
		fields.KindFullName: "Ananya Sharma",
		fields.KindUID:      "1234 5678 9012",
		fields.KindAge:      "29",
		fields.KindGender:   "Female",
		fields.KindAddress:  "42 Lakeview Road, Pune",
		fields.KindEmail:    "ananya@example.com",
		fields.KindPhone:    "+91 98765 43210",
	}
	if len(candidates) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(candidates))
	}
	for kind, value := range want {
		got, ok := candidates[kind]
		if !ok {
			t.Fatalf("missing candidate for %s", kind)
		}
		if got.Value != value {
			t.Errorf("%s: expected %q, got %q", kind, value, got.Value)
		}
		if got.Confidence != 0.91 {
			t.Errorf("%s: expected confidence 0.91, got %v", kind, got.Confidence)
		}
	}
}

func TestParseLabeledTextLaterOccurrenceWins(t *testing.T) {
	text := "Name: Smudged Header\nName: Ananya Sharma\n"
	candidates := ParseLabeledText(text, 0.5)
	if got := candidates[fields.KindFullName].Value; got != "Ananya Sharma" {
		t.Fatalf("expected later occurrence to win, got %q", got)
	}
}

func TestParseLabeledTextIgnoresNoise(t *testing.T) {
	text := "|||###\nunlabeled line\nssn: 000-00-0000\nEmail:\n"
	candidates := ParseLabeledText(text, 0.5)
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates from noise, got %v", candidates)
	}
}

func TestParseLabeledTextCaseInsensitiveLabels(t *testing.T) {
	candidates := ParseLabeledText("FULL NAME: Ravi Kumar", 0.8)
	if got := candidates[fields.KindFullName].Value; got != "Ravi Kumar" {
		t.Fatalf("expected case-insensitive label match, got %q", got)
	}
}
