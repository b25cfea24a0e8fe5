package dataset

import "github.com/dianapaula19/intoxicated-speech-detection/models"

// Deduplicate keeps the first record of every spn in input order. Records without
// an spn share a single key, so only the first of them survives.
func Deduplicate(records []models.SummaryRecord) []models.SummaryRecord {
	seen := make(map[string]bool, len(records))
	seenNull := false

	out := make([]models.SummaryRecord, 0, len(records))
	for _, r := range records {
		if r.SPN == nil {
			if seenNull {
				continue
			}
			seenNull = true
		} else {
			if seen[*r.SPN] {
				continue
			}
			seen[*r.SPN] = true
		}
		out = append(out, r)
	}
	return out
}
