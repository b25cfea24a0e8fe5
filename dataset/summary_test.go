package dataset

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dianapaula19/intoxicated-speech-detection/annotation"
	"github.com/dianapaula19/intoxicated-speech-detection/db"
	"github.com/dianapaula19/intoxicated-speech-detection/models"
)

func TestSummaryJobKeepsFirstDuplicate(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeAnnotation(t, root, "a/5000_h_00_annot.json", map[string]string{"spn": "S1", "alc": "a", "sex": "M", "age": "30", "bak": "0.5"})
	writeAnnotation(t, root, "b/5001_h_00_annot.json", map[string]string{"spn": "S1", "alc": "na", "sex": "M", "age": "30", "bak": "0"})
	writeAnnotation(t, root, "b/6000_h_00_annot.json", map[string]string{"spn": "S2", "alc": "na", "sex": "F", "bak": "1"})
	writeFile(t, filepath.Join(root, "b", "6000_h_00.wav"), []byte("not an annotation"))

	cfg := testConfig(t, root)
	var report bytes.Buffer
	result, err := NewSummaryJob(cfg, testLogger(), nil, &report).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Files != 3 || result.Rows != 2 || result.Duplicates != 1 {
		t.Fatalf("result = %+v", result)
	}

	data, err := os.ReadFile(cfg.Output.SummaryCSV)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := "spn,alc,sex,age,acc,drh,aak,bak,ges,ces,wea\n" +
		"S1,a,M,30,,,,0.5,,,\n" +
		"S2,na,F,0,,,,1.0,,,\n"
	if string(data) != want {
		t.Fatalf("csv =\n%s\nwant\n%s", data, want)
	}

	if !strings.Contains(report.String(), "spn") || !strings.Contains(report.String(), "count") {
		t.Fatalf("report missing header:\n%s", report.String())
	}
	spn, _ := result.Report.Column("spn")
	if spn.Count != 2 || spn.Unique != 2 {
		t.Fatalf("spn stats = %+v", spn)
	}
}

func TestSummaryJobMissingBakIsFatal(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeAnnotation(t, root, "5000_h_00_annot.json", map[string]string{"spn": "S1", "alc": "a"})

	cfg := testConfig(t, root)
	_, err := NewSummaryJob(cfg, testLogger(), nil, nil).Run(context.Background())
	if !errors.Is(err, annotation.ErrRequiredFieldMissing) {
		t.Fatalf("err = %v, want ErrRequiredFieldMissing", err)
	}
	if _, statErr := os.Stat(cfg.Output.SummaryCSV); !os.IsNotExist(statErr) {
		t.Fatal("csv should not be written after a fatal error")
	}
}

func TestSummaryJobMalformedAnnotationIsFatal(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "5000_h_00_annot.json"), []byte(`{"levels": []}`))

	_, err := NewSummaryJob(testConfig(t, root), testLogger(), nil, nil).Run(context.Background())
	if !errors.Is(err, annotation.ErrMalformedAnnotation) {
		t.Fatalf("err = %v, want ErrMalformedAnnotation", err)
	}
}

func TestSummaryJobStopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeAnnotation(t, root, "5000_h_00_annot.json", map[string]string{"spn": "S1", "bak": "0"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewSummaryJob(testConfig(t, root), testLogger(), nil, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestSummaryJobStoresCatalog(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeAnnotation(t, root, "5000_h_00_annot.json", map[string]string{"spn": "S1", "alc": "a", "bak": "0.35"})

	catalog, err := db.NewSQLiteClient(filepath.Join(t.TempDir(), "catalog.sqlite3"))
	if err != nil {
		t.Fatalf("NewSQLiteClient: %v", err)
	}
	defer catalog.Close()

	result, err := NewSummaryJob(testConfig(t, root), testLogger(), catalog, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rows, err := catalog.GetSummary(result.RunID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if len(rows) != 1 || *rows[0].SPN != "S1" || rows[0].BAK != 0.35 {
		t.Fatalf("catalog rows = %+v", rows)
	}
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()
	records := []models.SummaryRecord{
		{SPN: strPtr("S1"), BAK: 1},
		{SPN: nil, BAK: 2},
		{SPN: strPtr("S2"), BAK: 3},
		{SPN: strPtr("S1"), BAK: 4},
		{SPN: nil, BAK: 5},
	}
	got := Deduplicate(records)
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3", len(got))
	}
	for i, bak := range []float64{1, 2, 3} {
		if got[i].BAK != bak {
			t.Fatalf("record %d bak = %v, want %v", i, got[i].BAK, bak)
		}
	}
	if records[3].BAK != 4 {
		t.Fatal("input slice was modified")
	}
}
