package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dianapaula19/intoxicated-speech-detection/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoTimeout = 10 * time.Second

type MongoClient struct {
	client   *mongo.Client
	database string
}

// NewMongoClient connects to uri and pings the server before returning.
func NewMongoClient(uri, database string) (*MongoClient, error) {
	if database == "" {
		database = "intoxicated_speech"
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	return &MongoClient{client: client, database: database}, nil
}

func (db *MongoClient) collection(name string) *mongo.Collection {
	return db.client.Database(db.database).Collection(name)
}

func (db *MongoClient) Close() error {
	if db.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}

func (db *MongoClient) RegisterRun(run models.Run) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	_, err := db.collection("runs").InsertOne(ctx, bson.M{
		"_id":       run.ID,
		"job":       run.Job,
		"root":      run.Root,
		"startedAt": run.StartedAt,
	})
	if err != nil {
		return fmt.Errorf("error registering run: %w", err)
	}
	return nil
}

func (db *MongoClient) StoreSummary(runID string, records []models.SummaryRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = summaryDocument(runID, i, r)
	}

	if _, err := db.collection("summaries").InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("error storing summary: %w", err)
	}
	return nil
}

func (db *MongoClient) StoreBundle(runID string, bundle *models.Bundle) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	doc, err := bundleDocument(runID, bundle)
	if err != nil {
		return err
	}

	_, err = db.collection("bundles").ReplaceOne(ctx,
		bson.M{"_id": bundle.Identity}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error storing bundle: %w", err)
	}
	return nil
}

func (db *MongoClient) GetBundle(identity string) (*models.Bundle, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	var doc bson.M
	err := db.collection("bundles").FindOne(ctx, bson.M{"_id": identity}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to retrieve bundle: %w", err)
	}

	bundle, err := bundleFromDocument(doc)
	if err != nil {
		return nil, false, err
	}
	return bundle, true, nil
}

func (db *MongoClient) TotalBundles() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoTimeout)
	defer cancel()

	count, err := db.collection("bundles").CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting bundles: %w", err)
	}
	return int(count), nil
}

func summaryDocument(runID string, position int, r models.SummaryRecord) bson.M {
	doc := bson.M{
		"runId":    runID,
		"position": position,
		"age":      r.Age,
		"bak":      r.BAK,
	}
	for _, field := range models.SummaryFields {
		if value, ok := r.Text(field); ok {
			if value == nil {
				doc[field] = nil
			} else {
				doc[field] = *value
			}
		}
	}
	return doc
}

func bundleDocument(runID string, bundle *models.Bundle) (bson.M, error) {
	metadata := bson.M{}
	for key, value := range bundle.Metadata {
		if value.IsNumeric() {
			metadata[key] = value.Num
		} else {
			metadata[key] = value.Text
		}
	}

	coefficients, frames := bundle.Shape()
	flat := make([]float64, 0, coefficients*frames)
	for _, row := range bundle.MFCC {
		if len(row) != frames {
			return nil, fmt.Errorf("bundle %s has ragged mfcc rows", bundle.Identity)
		}
		flat = append(flat, row...)
	}

	return bson.M{
		"_id":          bundle.Identity,
		"runId":        runID,
		"coefficients": coefficients,
		"frames":       frames,
		"sampleRate":   bundle.SampleRate,
		"duration":     bundle.Duration,
		"rawFrames":    bundle.RawFrames,
		"metadata":     metadata,
		"mfcc":         flat,
	}, nil
}

func bundleFromDocument(doc bson.M) (*models.Bundle, error) {
	identity, _ := doc["_id"].(string)
	coefficients, err := intField(doc, "coefficients")
	if err != nil {
		return nil, err
	}
	frames, err := intField(doc, "frames")
	if err != nil {
		return nil, err
	}
	sampleRate, err := intField(doc, "sampleRate")
	if err != nil {
		return nil, err
	}
	rawFrames, err := intField(doc, "rawFrames")
	if err != nil {
		return nil, err
	}

	bundle := &models.Bundle{
		Identity:   identity,
		SampleRate: sampleRate,
		RawFrames:  rawFrames,
		Metadata:   models.Metadata{},
	}
	bundle.Duration, _ = doc["duration"].(float64)

	if metadata, ok := doc["metadata"].(bson.M); ok {
		for key, raw := range metadata {
			switch v := raw.(type) {
			case float64:
				bundle.Metadata[key] = models.NumberValue(v)
			case string:
				bundle.Metadata[key] = models.TextValue(v)
			default:
				return nil, fmt.Errorf("bundle %s: unsupported metadata value for %q", identity, key)
			}
		}
	}

	flat, err := floatSlice(doc["mfcc"])
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", identity, err)
	}
	if len(flat) != coefficients*frames {
		return nil, fmt.Errorf("bundle %s: mfcc holds %d values, expected %d", identity, len(flat), coefficients*frames)
	}
	bundle.MFCC = make([][]float64, coefficients)
	for i := range bundle.MFCC {
		bundle.MFCC[i] = flat[i*frames : (i+1)*frames]
	}
	return bundle, nil
}

func intField(doc bson.M, key string) (int, error) {
	switch v := doc[key].(type) {
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case int:
		return v, nil
	case float64:
		return int(v), nil
	}
	return 0, fmt.Errorf("field %q is missing or not an integer", key)
}

func floatSlice(raw interface{}) ([]float64, error) {
	switch v := raw.(type) {
	case []float64:
		return v, nil
	case bson.A:
		out := make([]float64, len(v))
		for i, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("mfcc element %d is not a double", i)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, errors.New("mfcc is missing or not an array")
}
