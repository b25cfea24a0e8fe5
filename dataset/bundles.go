package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/dianapaula19/intoxicated-speech-detection/annotation"
	"github.com/dianapaula19/intoxicated-speech-detection/config"
	"github.com/dianapaula19/intoxicated-speech-detection/corpus"
	"github.com/dianapaula19/intoxicated-speech-detection/db"
	"github.com/dianapaula19/intoxicated-speech-detection/features"
	"github.com/dianapaula19/intoxicated-speech-detection/models"
	"github.com/dianapaula19/intoxicated-speech-detection/wav"
	"github.com/google/uuid"
)

// Skip records a recording that produced no bundle.
type Skip struct {
	Identity string
	Path     string
	Reason   error
}

// BundleResult reports what a bundle run produced.
type BundleResult struct {
	RunID      string
	Recordings int
	Written    int
	Skipped    []Skip
	// Collisions lists identities seen more than once; the last recording wins.
	Collisions []string
}

// BundleJob turns every labeled recording of a corpus into a feature bundle.
type BundleJob struct {
	cfg        *config.Config
	logger     *slog.Logger
	catalog    db.DBClient
	extractor  *features.Extractor
	normalizer annotation.Normalizer
	writer     BundleWriter
}

// NewBundleJob prepares a bundle job. catalog may be nil.
func NewBundleJob(cfg *config.Config, logger *slog.Logger, catalog db.DBClient) (*BundleJob, error) {
	extractor, err := features.NewExtractor(cfg.Features)
	if err != nil {
		return nil, err
	}
	return &BundleJob{
		cfg:        cfg,
		logger:     logger,
		catalog:    catalog,
		extractor:  extractor,
		normalizer: annotation.Normalizer{IntoxicatedValue: cfg.Corpus.IntoxicatedValue},
		writer:     BundleWriter{Dir: cfg.Output.BundleDir, Format: cfg.Output.Format},
	}, nil
}

// Run processes recordings in discovery order. Unlabeled recordings and recordings whose
// features have no variance are skipped; every other failure aborts the run.
func (j *BundleJob) Run(ctx context.Context) (result *BundleResult, err error) {
	result = &BundleResult{RunID: uuid.NewString()}
	startedAt := time.Now()

	if j.catalog != nil {
		run := models.Run{ID: result.RunID, Job: "bundles", Root: j.cfg.Corpus.Root, StartedAt: startedAt}
		if err := j.catalog.RegisterRun(run); err != nil {
			return nil, err
		}
	}

	walker := corpus.Walker{
		Root:      j.cfg.Corpus.Root,
		Suffix:    j.cfg.Corpus.AudioSuffix,
		Delimiter: j.cfg.Corpus.IdentityDelimiter,
		Logger:    j.logger,
	}
	items, err := walker.Collect()
	if err != nil {
		return nil, err
	}
	result.Recordings = len(items)
	j.logger.InfoContext(ctx, "recordings discovered",
		slog.String("run", result.RunID), slog.Int("files", len(items)))

	bar := newProgress(j.cfg.Progress, "Recordings: ", len(items))
	defer func() { bar.Finish(err != nil) }()

	written := make(map[string]string, len(items))
	var writtenIDs []string
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		j.logger.DebugContext(ctx, "processing recording",
			slog.String("file", item.Path), slog.Int("index", i+1), slog.Int("total", len(items)))

		bundle, err := j.build(item)
		if err != nil {
			if errors.Is(err, ErrUnlabeledRecording) || errors.Is(err, features.ErrDegenerateSignal) {
				j.logger.WarnContext(ctx, "skipping recording",
					slog.String("id", item.ID), slog.String("file", item.Path), slog.String("reason", err.Error()))
				result.Skipped = append(result.Skipped, Skip{Identity: item.ID, Path: item.Path, Reason: err})
				bar.Increment()
				continue
			}
			return nil, err
		}

		if previous, ok := written[item.ID]; ok {
			j.logger.WarnContext(ctx, "identity collision, overwriting bundle",
				slog.String("id", item.ID), slog.String("previous", previous), slog.String("file", item.Path))
			result.Collisions = append(result.Collisions, item.ID)
		}

		path, err := j.writer.Write(bundle)
		if err != nil {
			return nil, err
		}
		if j.catalog != nil {
			if err := j.catalog.StoreBundle(result.RunID, bundle); err != nil {
				return nil, err
			}
		}
		written[item.ID] = item.Path
		writtenIDs = append(writtenIDs, item.ID)
		result.Written++
		j.logger.DebugContext(ctx, "bundle written", slog.String("id", item.ID), slog.String("path", path))
		bar.Increment()
	}

	manifest := RunManifest{
		RunID:      result.RunID,
		Root:       j.cfg.Corpus.Root,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Written:    writtenIDs,
		Collisions: result.Collisions,
	}
	for _, skip := range result.Skipped {
		manifest.Skipped = append(manifest.Skipped, ManifestSkip{Identity: skip.Identity, Path: skip.Path, Reason: skip.Reason.Error()})
	}
	if err := AppendManifest(ManifestPath(j.cfg.Output.BundleDir, j.cfg.Corpus.IdentityDelimiter), manifest); err != nil {
		return nil, err
	}

	j.logger.InfoContext(ctx, "bundles written",
		slog.String("dir", j.cfg.Output.BundleDir),
		slog.Int("written", result.Written),
		slog.Int("skipped", len(result.Skipped)))

	return result, nil
}

// build extracts features for item and attaches its metadata. The annotation sits next to
// the recording under the annotation suffix.
func (j *BundleJob) build(item corpus.Item) (*models.Bundle, error) {
	sample, err := wav.LoadAudioSample(item.Path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", item.Path, err)
	}

	feats, err := j.extractor.Extract(sample.Samples, sample.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", item.Path, err)
	}

	annotationPath := corpus.Sibling(item.Path, j.cfg.Corpus.AudioSuffix, j.cfg.Corpus.AnnotationSuffix)
	if _, err := os.Stat(annotationPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: annotation %s does not exist", ErrUnlabeledRecording, annotationPath)
		}
		return nil, fmt.Errorf("stat annotation %s: %w", annotationPath, err)
	}

	labels, err := annotation.ReadLabels(annotationPath)
	if err != nil {
		return nil, err
	}
	metadata, labeled := j.normalizer.Open(labels)
	if !labeled {
		return nil, fmt.Errorf("%w: %s has no alc entry", ErrUnlabeledRecording, annotationPath)
	}

	return &models.Bundle{
		Identity:   item.ID,
		MFCC:       feats.Rows(),
		Metadata:   metadata,
		SampleRate: sample.SampleRate,
		Duration:   sample.Duration,
		RawFrames:  feats.RawFrames,
	}, nil
}
