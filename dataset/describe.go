package dataset

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/dianapaula19/intoxicated-speech-detection/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnStats describes one column of the summary table. Numeric columns fill the
// moments and quantiles, categorical columns fill Unique, Top and Freq.
type ColumnStats struct {
	Name    string
	Numeric bool
	Count   int

	Unique int
	Top    string
	Freq   int

	Mean, Std, Min, Q25, Q50, Q75, Max float64
}

// Report is the descriptive statistics of a summary table, in column order.
type Report struct {
	Rows    int
	Columns []ColumnStats
}

// Describe computes per-column statistics of records.
func Describe(records []models.SummaryRecord) Report {
	report := Report{Rows: len(records)}
	for _, field := range models.SummaryFields {
		switch field {
		case "age":
			values := make([]float64, len(records))
			for i, r := range records {
				values[i] = float64(r.Age)
			}
			report.Columns = append(report.Columns, describeNumeric(field, values))
		case "bak":
			values := make([]float64, len(records))
			for i, r := range records {
				values[i] = r.BAK
			}
			report.Columns = append(report.Columns, describeNumeric(field, values))
		default:
			values := make([]*string, len(records))
			for i, r := range records {
				values[i], _ = r.Text(field)
			}
			report.Columns = append(report.Columns, describeCategorical(field, values))
		}
	}
	return report
}

func describeNumeric(name string, values []float64) ColumnStats {
	col := ColumnStats{Name: name, Numeric: true, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		col.Mean, col.Std, col.Min, col.Q25, col.Q50, col.Q75, col.Max = nan, nan, nan, nan, nan, nan, nan
		return col
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	col.Mean = stat.Mean(sorted, nil)
	col.Std = math.NaN()
	if len(sorted) > 1 {
		col.Std = stat.StdDev(sorted, nil)
	}
	col.Min = floats.Min(sorted)
	col.Max = floats.Max(sorted)
	col.Q25 = linearQuantile(sorted, 0.25)
	col.Q50 = linearQuantile(sorted, 0.50)
	col.Q75 = linearQuantile(sorted, 0.75)
	return col
}

// linearQuantile interpolates between the closest ranks at p*(n-1). sorted must be ascending.
func linearQuantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func describeCategorical(name string, values []*string) ColumnStats {
	col := ColumnStats{Name: name}
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v == nil {
			continue
		}
		col.Count++
		if counts[*v] == 0 {
			order = append(order, *v)
		}
		counts[*v]++
	}
	col.Unique = len(order)
	for _, v := range order {
		if counts[v] > col.Freq {
			col.Top, col.Freq = v, counts[v]
		}
	}
	return col
}

// Column returns the statistics of the named column.
func (r Report) Column(name string) (ColumnStats, bool) {
	for _, c := range r.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnStats{}, false
}

// WriteTo prints the report as a table with one row per statistic and one column per field.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', tabwriter.AlignRight)

	header := "\t"
	for _, c := range r.Columns {
		header += c.Name + "\t"
	}
	fmt.Fprintln(tw, header)

	rows := []struct {
		name string
		cell func(ColumnStats) string
	}{
		{"count", func(c ColumnStats) string { return strconv.Itoa(c.Count) }},
		{"unique", categorical(func(c ColumnStats) string { return strconv.Itoa(c.Unique) })},
		{"top", categorical(func(c ColumnStats) string { return c.Top })},
		{"freq", categorical(func(c ColumnStats) string { return strconv.Itoa(c.Freq) })},
		{"mean", numeric(func(c ColumnStats) float64 { return c.Mean })},
		{"std", numeric(func(c ColumnStats) float64 { return c.Std })},
		{"min", numeric(func(c ColumnStats) float64 { return c.Min })},
		{"25%", numeric(func(c ColumnStats) float64 { return c.Q25 })},
		{"50%", numeric(func(c ColumnStats) float64 { return c.Q50 })},
		{"75%", numeric(func(c ColumnStats) float64 { return c.Q75 })},
		{"max", numeric(func(c ColumnStats) float64 { return c.Max })},
	}
	for _, row := range rows {
		line := row.name + "\t"
		for _, c := range r.Columns {
			line += row.cell(c) + "\t"
		}
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return 0, err
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func categorical(cell func(ColumnStats) string) func(ColumnStats) string {
	return func(c ColumnStats) string {
		if c.Numeric || c.Count == 0 {
			return "NaN"
		}
		return cell(c)
	}
}

func numeric(cell func(ColumnStats) float64) func(ColumnStats) string {
	return func(c ColumnStats) string {
		if !c.Numeric {
			return "NaN"
		}
		v := cell(c)
		if math.IsNaN(v) {
			return "NaN"
		}
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
}
