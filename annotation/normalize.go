package annotation

import (
	"strconv"
	"strings"

	"github.com/dianapaula19/intoxicated-speech-detection/models"
)

// DefaultIntoxicatedValue is the alc category that maps to label 1.
const DefaultIntoxicatedValue = "a"

// Fixed projects labels onto the summary schema. age defaults to 0 when absent; bak is
// required and must be numeric.
func Fixed(labels []Label) (models.SummaryRecord, error) {
	idx := Index(labels)
	text := func(name string) *string {
		v, ok := idx[name]
		if !ok {
			return nil
		}
		return &v
	}

	rec := models.SummaryRecord{
		SPN: text("spn"),
		ALC: text("alc"),
		Sex: text("sex"),
		ACC: text("acc"),
		DRH: text("drh"),
		AAK: text("aak"),
		GES: text("ges"),
		CES: text("ces"),
		WEA: text("wea"),
	}

	if raw, ok := idx["age"]; ok {
		age, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return models.SummaryRecord{}, &FieldError{Field: "age", Value: raw, Err: ErrInvalidFieldType}
		}
		rec.Age = age
	}

	raw, ok := idx["bak"]
	if !ok {
		return models.SummaryRecord{}, &FieldError{Field: "bak", Err: ErrRequiredFieldMissing}
	}
	bak, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return models.SummaryRecord{}, &FieldError{Field: "bak", Value: raw, Err: ErrInvalidFieldType}
	}
	rec.BAK = bak

	return rec, nil
}

// Normalizer builds open-schema metadata.
type Normalizer struct {
	// IntoxicatedValue is the alc value mapped to label 1.
	IntoxicatedValue string
}

// NewNormalizer returns a Normalizer using the corpus sentinel "a".
func NewNormalizer() Normalizer {
	return Normalizer{IntoxicatedValue: DefaultIntoxicatedValue}
}

// Open keeps every label, coercing values with Coerce. labeled reports whether an alc
// label was present; only then is the derived label set. It is set before the raw labels
// are copied, so an annotation field named "label" overrides its value.
func (n Normalizer) Open(labels []Label) (meta models.Metadata, labeled bool) {
	meta = make(models.Metadata, len(labels)+1)

	for _, l := range labels {
		if l.Name != "alc" {
			continue
		}
		labeled = true
		if l.Value == n.IntoxicatedValue {
			meta[models.LabelField] = models.NumberValue(1)
		} else {
			meta[models.LabelField] = models.NumberValue(0)
		}
	}

	for _, l := range labels {
		meta[l.Name] = Coerce(l.Value)
	}

	return meta, labeled
}

// Coerce returns a numeric value when raw parses as a decimal float, otherwise the text
// itself. Underscores between digits are accepted ("1_000"); hex floats ("0x1p4") are not.
func Coerce(raw string) models.Value {
	if f, ok := parseDecimal(strings.TrimSpace(raw)); ok {
		return models.NumberValue(f)
	}
	return models.TextValue(raw)
}

func parseDecimal(s string) (float64, bool) {
	unsigned := strings.TrimLeft(s, "+-")
	if len(s)-len(unsigned) > 1 {
		return 0, false
	}
	if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return 0, false
	}

	if strings.Contains(s, "_") {
		for i := 0; i < len(s); i++ {
			if s[i] != '_' {
				continue
			}
			if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
				return 0, false
			}
		}
		s = strings.ReplaceAll(s, "_", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
