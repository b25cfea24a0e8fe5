package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dianapaula19/intoxicated-speech-detection/models"
)

// ErrUnknownDriver reports a catalog driver other than sqlite or mongo.
var ErrUnknownDriver = errors.New("unknown catalog driver")

// DBClient is the catalog of runs, summary rows and feature bundles.
type DBClient interface {
	Close() error
	RegisterRun(run models.Run) error
	StoreSummary(runID string, records []models.SummaryRecord) error
	StoreBundle(runID string, bundle *models.Bundle) error
	GetBundle(identity string) (*models.Bundle, bool, error)
	TotalBundles() (int, error)
}

// NewDBClient opens the catalog selected by driver. database is only used by mongo.
func NewDBClient(driver, dsn, database string) (DBClient, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "sqlite3":
		return NewSQLiteClient(dsn)
	case "mongo", "mongodb":
		return NewMongoClient(dsn, database)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
