package models

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// LabelField is the derived binary label key in open-schema metadata.
const LabelField = "label"

// ValueKind tags a Value as numeric or text.
type ValueKind int

const (
	Text ValueKind = iota
	Numeric
)

// Value is a best-effort typed annotation value.
type Value struct {
	Kind ValueKind
	Num  float64
	Text string
}

func NumberValue(v float64) Value { return Value{Kind: Numeric, Num: v} }

func TextValue(s string) Value { return Value{Kind: Text, Text: s} }

func (v Value) IsNumeric() bool { return v.Kind == Numeric }

func (v Value) String() string {
	if v.Kind == Numeric {
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	}
	return v.Text
}

// MarshalJSON emits numbers as JSON numbers and everything else as strings.
// Non-finite numbers have no JSON form and are written as text.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.Kind == Numeric {
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.Num)
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case float64:
		*v = NumberValue(t)
	case string:
		*v = TextValue(t)
	default:
		return fmt.Errorf("unsupported metadata value %s", string(data))
	}
	return nil
}

// Metadata is the open-schema projection of an annotation.
type Metadata map[string]Value

// Labeled reports whether the metadata carries a label key.
func (m Metadata) Labeled() bool {
	_, ok := m[LabelField]
	return ok
}

// Label returns the derived binary label, 0 when absent or not numeric.
func (m Metadata) Label() int {
	v, ok := m[LabelField]
	if !ok || !v.IsNumeric() {
		return 0
	}
	return int(v.Num)
}

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
