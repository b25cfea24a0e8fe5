package models

import (
	"time"
)

// SummaryFields is the fixed schema of the summary table, in column order.
var SummaryFields = []string{"spn", "alc", "sex", "age", "acc", "drh", "aak", "bak", "ges", "ces", "wea"}

// SummaryRecord is the fixed-schema projection of one annotation. Nil text fields
// were absent from the annotation.
type SummaryRecord struct {
	SPN *string `json:"spn"`
	ALC *string `json:"alc"`
	Sex *string `json:"sex"`
	Age int     `json:"age"`
	ACC *string `json:"acc"`
	DRH *string `json:"drh"`
	AAK *string `json:"aak"`
	BAK float64 `json:"bak"`
	GES *string `json:"ges"`
	CES *string `json:"ces"`
	WEA *string `json:"wea"`
}

// Text returns the text column named field. ok is false for numeric or unknown columns.
func (r SummaryRecord) Text(field string) (value *string, ok bool) {
	switch field {
	case "spn":
		return r.SPN, true
	case "alc":
		return r.ALC, true
	case "sex":
		return r.Sex, true
	case "acc":
		return r.ACC, true
	case "drh":
		return r.DRH, true
	case "aak":
		return r.AAK, true
	case "ges":
		return r.GES, true
	case "ces":
		return r.CES, true
	case "wea":
		return r.WEA, true
	}
	return nil, false
}

// Bundle is one persisted training item: the canonical MFCC matrix of a recording
// together with its open-schema metadata.
type Bundle struct {
	Identity   string      `json:"identity"`
	MFCC       [][]float64 `json:"mfcc"`
	Metadata   Metadata    `json:"metadata"`
	SampleRate int         `json:"sampleRate"`
	Duration   float64     `json:"duration"`
	RawFrames  int         `json:"rawFrames"`
}

// Shape returns the matrix dimensions as (coefficients, frames).
func (b *Bundle) Shape() (int, int) {
	if len(b.MFCC) == 0 {
		return 0, 0
	}
	return len(b.MFCC), len(b.MFCC[0])
}

// Run identifies one execution of a job in the catalog.
type Run struct {
	ID        string    `json:"id"`
	Job       string    `json:"job"`
	Root      string    `json:"root"`
	StartedAt time.Time `json:"startedAt"`
}
