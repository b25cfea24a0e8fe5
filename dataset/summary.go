package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dianapaula19/intoxicated-speech-detection/annotation"
	"github.com/dianapaula19/intoxicated-speech-detection/config"
	"github.com/dianapaula19/intoxicated-speech-detection/corpus"
	"github.com/dianapaula19/intoxicated-speech-detection/db"
	"github.com/dianapaula19/intoxicated-speech-detection/models"
	"github.com/google/uuid"
)

// SummaryResult reports what a summary run produced.
type SummaryResult struct {
	RunID      string
	Files      int
	Rows       int
	Duplicates int
	CSVPath    string
	Report     Report
}

// SummaryJob builds the deduplicated annotation table of a corpus.
type SummaryJob struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog db.DBClient
	report  io.Writer
}

// NewSummaryJob prepares a summary job. catalog may be nil; the describe report goes to report.
func NewSummaryJob(cfg *config.Config, logger *slog.Logger, catalog db.DBClient, report io.Writer) *SummaryJob {
	if report == nil {
		report = io.Discard
	}
	return &SummaryJob{cfg: cfg, logger: logger, catalog: catalog, report: report}
}

// Run reads every annotation under the corpus root. Any unreadable or invalid annotation
// aborts the run before anything is written.
func (j *SummaryJob) Run(ctx context.Context) (result *SummaryResult, err error) {
	result = &SummaryResult{RunID: uuid.NewString(), CSVPath: j.cfg.Output.SummaryCSV}

	if j.catalog != nil {
		run := models.Run{ID: result.RunID, Job: "summary", Root: j.cfg.Corpus.Root, StartedAt: time.Now()}
		if err := j.catalog.RegisterRun(run); err != nil {
			return nil, err
		}
	}

	walker := corpus.Walker{
		Root:      j.cfg.Corpus.Root,
		Suffix:    j.cfg.Corpus.AnnotationSuffix,
		Delimiter: j.cfg.Corpus.IdentityDelimiter,
		Logger:    j.logger,
	}
	items, err := walker.Collect()
	if err != nil {
		return nil, err
	}
	j.logger.InfoContext(ctx, "annotations discovered",
		slog.String("run", result.RunID), slog.Int("files", len(items)))

	bar := newProgress(j.cfg.Progress, "Annotations: ", len(items))
	defer func() { bar.Finish(err != nil) }()

	records := make([]models.SummaryRecord, 0, len(items))
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		j.logger.DebugContext(ctx, "processing annotation",
			slog.String("file", item.Path), slog.Int("index", i+1), slog.Int("total", len(items)))

		labels, err := annotation.ReadLabels(item.Path)
		if err != nil {
			return nil, err
		}
		record, err := annotation.Fixed(labels)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", item.Path, err)
		}
		records = append(records, record)
		bar.Increment()
	}
	result.Files = len(records)

	unique := Deduplicate(records)
	result.Rows = len(unique)
	result.Duplicates = len(records) - len(unique)

	result.Report = Describe(unique)
	if _, err := result.Report.WriteTo(j.report); err != nil {
		return nil, fmt.Errorf("error writing report: %w", err)
	}

	if err := WriteSummaryCSV(j.cfg.Output.SummaryCSV, unique); err != nil {
		return nil, err
	}
	if j.catalog != nil {
		if err := j.catalog.StoreSummary(result.RunID, unique); err != nil {
			return nil, err
		}
	}

	j.logger.InfoContext(ctx, "summary written",
		slog.String("csv", result.CSVPath),
		slog.Int("rows", result.Rows),
		slog.Int("duplicates", result.Duplicates))

	return result, nil
}
