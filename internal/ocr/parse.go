package ocr

import (
	"strings"

	"veriscan/internal/fields"
)

// labelAliases maps the labels printed on supported document layouts to
// field kinds. Matching is case-insensitive on the text before the first
// colon of each recognized line.
var labelAliases = map[string]fields.Kind{
	"name":          fields.KindFullName,
	"full name":     fields.KindFullName,
	"uid":           fields.KindUID,
	"id":            fields.KindUID,
	"uid number":    fields.KindUID,
	"age":           fields.KindAge,
	"gender":        fields.KindGender,
	"sex":           fields.KindGender,
	"address":       fields.KindAddress,
	"email":         fields.KindEmail,
	"email address": fields.KindEmail,
	"phone":         fields.KindPhone,
	"phone number":  fields.KindPhone,
	"mobile":        fields.KindPhone,
}

// ParseLabeledText maps "Label: value" lines of recognized text onto field
// kinds. Later occurrences of the same label win, matching how multi-page
// scans repeat headers before the authoritative block. Unrecognized lines
// are ignored; OCR noise must not fail extraction.
func ParseLabeledText(text string, confidence float64) map[fields.Kind]Candidate {
	candidates := make(map[fields.Kind]Candidate)
	for _, line := range strings.Split(text, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		kind, known := labelAliases[strings.ToLower(strings.TrimSpace(label))]
		if !known {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		candidates[kind] = Candidate{Value: value, Confidence: confidence}
	}
	return candidates
}
