package db

import (
	"bytes"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dianapaula19/intoxicated-speech-detection/models"
	"github.com/dianapaula19/intoxicated-speech-detection/utils"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration
)

type SQLiteClient struct {
	db *sql.DB
}

func NewSQLiteClient(dataSourceName string) (*SQLiteClient, error) {
	// Extract the file path before query parameters
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	// Add busy timeout param to DSN (milliseconds)
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000"
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating tables: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// createTables creates the required tables if they don't exist
func createTables(db *sql.DB) error {
	createRunsTable := `
    CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        job TEXT NOT NULL,
        root TEXT NOT NULL,
        started_at DATETIME NOT NULL
    );
    `

	createSummariesTable := `
    CREATE TABLE IF NOT EXISTS summaries (
        run_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        spn TEXT,
        alc TEXT,
        sex TEXT,
        age INTEGER NOT NULL,
        acc TEXT,
        drh TEXT,
        aak TEXT,
        bak REAL NOT NULL,
        ges TEXT,
        ces TEXT,
        wea TEXT,
        PRIMARY KEY (run_id, position)
    );
    `

	createBundlesTable := `
    CREATE TABLE IF NOT EXISTS bundles (
        identity TEXT PRIMARY KEY,
        run_id TEXT NOT NULL,
        label INTEGER,
        coefficients INTEGER NOT NULL,
        frames INTEGER NOT NULL,
        sample_rate INTEGER NOT NULL,
        duration REAL NOT NULL,
        raw_frames INTEGER NOT NULL,
        metadata TEXT NOT NULL,
        mfcc BLOB NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_bundles_run ON bundles(run_id);
    `

	if _, err := db.Exec(createRunsTable); err != nil {
		return fmt.Errorf("error creating runs table: %w", err)
	}

	if _, err := db.Exec(createSummariesTable); err != nil {
		return fmt.Errorf("error creating summaries table: %w", err)
	}

	if _, err := db.Exec(createBundlesTable); err != nil {
		return fmt.Errorf("error creating bundles table: %w", err)
	}

	return nil
}

func (db *SQLiteClient) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

func (db *SQLiteClient) RegisterRun(run models.Run) error {
	_, err := db.db.Exec("INSERT INTO runs (id, job, root, started_at) VALUES (?, ?, ?, ?)",
		run.ID, run.Job, run.Root, run.StartedAt)
	if err != nil {
		return fmt.Errorf("error registering run: %w", err)
	}
	return nil
}

// StoreSummary writes the deduplicated table of a run in a single transaction.
func (db *SQLiteClient) StoreSummary(runID string, records []models.SummaryRecord) error {
	tx, err := db.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO summaries
        (run_id, position, spn, alc, sex, age, acc, drh, aak, bak, ges, ces, wea)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.Exec(runID, i, r.SPN, r.ALC, r.Sex, r.Age, r.ACC, r.DRH, r.AAK, r.BAK, r.GES, r.CES, r.WEA); err != nil {
			tx.Rollback()
			return fmt.Errorf("error executing statement: %w", err)
		}
	}

	return tx.Commit()
}

// GetSummary returns the rows stored for runID in table order.
func (db *SQLiteClient) GetSummary(runID string) ([]models.SummaryRecord, error) {
	rows, err := db.db.Query(`
		SELECT spn, alc, sex, age, acc, drh, aak, bak, ges, ces, wea
		FROM summaries
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("error querying summaries: %w", err)
	}
	defer rows.Close()

	var records []models.SummaryRecord
	for rows.Next() {
		var r models.SummaryRecord
		if err := rows.Scan(&r.SPN, &r.ALC, &r.Sex, &r.Age, &r.ACC, &r.DRH, &r.AAK, &r.BAK, &r.GES, &r.CES, &r.WEA); err != nil {
			return nil, fmt.Errorf("error scanning summary: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// StoreBundle inserts or replaces the bundle keyed by its identity.
func (db *SQLiteClient) StoreBundle(runID string, bundle *models.Bundle) error {
	metadataJSON, err := json.Marshal(bundle.Metadata)
	if err != nil {
		return fmt.Errorf("error marshaling metadata: %w", err)
	}

	blob, err := encodeMatrix(bundle.MFCC)
	if err != nil {
		return fmt.Errorf("error encoding mfcc: %w", err)
	}

	var label *int
	if bundle.Metadata.Labeled() {
		l := bundle.Metadata.Label()
		label = &l
	}

	coefficients, frames := bundle.Shape()
	_, err = db.db.Exec(`
		INSERT OR REPLACE INTO bundles (
			identity, run_id, label, coefficients, frames,
			sample_rate, duration, raw_frames, metadata, mfcc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bundle.Identity,
		runID,
		label,
		coefficients,
		frames,
		bundle.SampleRate,
		bundle.Duration,
		bundle.RawFrames,
		string(metadataJSON),
		blob,
	)
	if err != nil {
		return fmt.Errorf("error storing bundle: %w", err)
	}
	return nil
}

func (db *SQLiteClient) GetBundle(identity string) (*models.Bundle, bool, error) {
	row := db.db.QueryRow(`
		SELECT identity, coefficients, frames, sample_rate, duration, raw_frames, metadata, mfcc
		FROM bundles WHERE identity = ?`, identity)

	var (
		b                    models.Bundle
		coefficients, frames int
		metadataJSON         string
		blob                 []byte
	)
	err := row.Scan(&b.Identity, &coefficients, &frames, &b.SampleRate, &b.Duration, &b.RawFrames, &metadataJSON, &blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to retrieve bundle: %w", err)
	}

	if err := json.Unmarshal([]byte(metadataJSON), &b.Metadata); err != nil {
		return nil, false, fmt.Errorf("error unmarshaling metadata: %w", err)
	}

	b.MFCC, err = decodeMatrix(blob, coefficients, frames)
	if err != nil {
		return nil, false, fmt.Errorf("error decoding mfcc: %w", err)
	}

	return &b, true, nil
}

func (db *SQLiteClient) TotalBundles() (int, error) {
	var count int
	err := db.db.QueryRow("SELECT COUNT(*) FROM bundles").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting bundles: %w", err)
	}
	return count, nil
}

// encodeMatrix packs rows as little-endian float64 values, row after row.
func encodeMatrix(rows [][]float64) ([]byte, error) {
	var buf bytes.Buffer
	for _, row := range rows {
		if err := binary.Write(&buf, binary.LittleEndian, row); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func decodeMatrix(blob []byte, rows, cols int) ([][]float64, error) {
	if len(blob) != rows*cols*8 {
		return nil, fmt.Errorf("blob holds %d bytes, expected %d", len(blob), rows*cols*8)
	}
	out := make([][]float64, rows)
	reader := bytes.NewReader(blob)
	for i := range out {
		out[i] = make([]float64, cols)
		if err := binary.Read(reader, binary.LittleEndian, out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}
