// Package artifact persists and loads the trained outputs served by the API:
// the regressor state and the frozen feature schema it was fitted on.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"shampoo-demand-api/pkg/features"
	"shampoo-demand-api/pkg/predictor"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// 既定のファイル名
const (
	DefaultModelFile  = "model.json"
	DefaultSchemaFile = "columns.json"
)

// Kind of artifact, used in load errors.
const (
	KindModel  = "model"
	KindSchema = "schema"
)

// ArtifactLoadError 成果物が無い・壊れている・互いに整合しない。プロセスは起動してはならない
type ArtifactLoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

// Metrics 学習時の評価指標
type Metrics struct {
	Train predictor.Evaluation `json:"train"`
	Test  predictor.Evaluation `json:"test"`
}

// SchemaFile columns.json の内容
type SchemaFile struct {
	Version     string                     `json:"version"`
	Fingerprint string                     `json:"fingerprint"`
	Columns     []string                   `json:"columns"`
	Domains     map[features.Axis][]string `json:"domains"`
}

// ModelFile model.json の内容
type ModelFile struct {
	Version           string              `json:"version"`
	TrainedAt         time.Time           `json:"trained_at"`
	SchemaFingerprint string              `json:"schema_fingerprint"`
	TrainingRows      int                 `json:"training_rows"`
	Metrics           Metrics             `json:"metrics"`
	Regressor         *predictor.Envelope `json:"regressor"`
}

// Bundle 学習済みモデルとスキーマの組
type Bundle struct {
	Version      string
	TrainedAt    time.Time
	TrainingRows int
	Metrics      Metrics
	Schema       *features.Schema
	Regressor    predictor.Regressor
}

// NewBundle stamps a freshly trained regressor with a new version ID.
func NewBundle(schema *features.Schema, reg predictor.Regressor, rows int, metrics Metrics) *Bundle {
	return &Bundle{
		Version:      uuid.New().String(),
		TrainedAt:    time.Now().UTC(),
		TrainingRows: rows,
		Metrics:      metrics,
		Schema:       schema,
		Regressor:    reg,
	}
}

// Save writes columns.json and model.json into dir.
func Save(dir string, b *Bundle) (modelPath, schemaPath string, err error) {
	if b.Regressor.NumFeatures() != b.Schema.Len() {
		return "", "", fmt.Errorf("regressor has %d features, schema has %d columns", b.Regressor.NumFeatures(), b.Schema.Len())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create artifact dir: %w", err)
	}

	env, err := predictor.Encode(b.Regressor)
	if err != nil {
		return "", "", err
	}
	fingerprint := b.Schema.Fingerprint()

	schemaPath = filepath.Join(dir, DefaultSchemaFile)
	if err := writeJSON(schemaPath, SchemaFile{
		Version:     b.Version,
		Fingerprint: fingerprint,
		Columns:     b.Schema.Columns(),
		Domains:     b.Schema.Registry().Snapshot(),
	}); err != nil {
		return "", "", err
	}

	modelPath = filepath.Join(dir, DefaultModelFile)
	if err := writeJSON(modelPath, ModelFile{
		Version:           b.Version,
		TrainedAt:         b.TrainedAt,
		SchemaFingerprint: fingerprint,
		TrainingRows:      b.TrainingRows,
		Metrics:           b.Metrics,
		Regressor:         env,
	}); err != nil {
		return "", "", err
	}
	return modelPath, schemaPath, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}

// LoadSchema reads columns.json and rebuilds the schema verbatim.
func LoadSchema(path string) (*features.Schema, *SchemaFile, error) {
	var sf SchemaFile
	if err := readJSON(path, &sf); err != nil {
		return nil, nil, &ArtifactLoadError{Artifact: KindSchema, Path: path, Err: err}
	}
	schema, err := features.LoadSchema(sf.Columns, sf.Domains)
	if err != nil {
		return nil, nil, &ArtifactLoadError{Artifact: KindSchema, Path: path, Err: err}
	}
	if sf.Fingerprint != "" && sf.Fingerprint != schema.Fingerprint() {
		return nil, nil, &ArtifactLoadError{Artifact: KindSchema, Path: path, Err: errors.New("fingerprint does not match columns")}
	}
	return schema, &sf, nil
}

// Load reads both artifacts and checks that the model was fitted on exactly this schema.
func Load(modelPath, schemaPath string) (*Bundle, error) {
	schema, _, err := LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}

	var mf ModelFile
	if err := readJSON(modelPath, &mf); err != nil {
		return nil, &ArtifactLoadError{Artifact: KindModel, Path: modelPath, Err: err}
	}
	if mf.Regressor == nil {
		return nil, &ArtifactLoadError{Artifact: KindModel, Path: modelPath, Err: errors.New("regressor state is missing")}
	}
	reg, err := predictor.Decode(mf.Regressor)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: KindModel, Path: modelPath, Err: err}
	}
	if reg.NumFeatures() != schema.Len() {
		return nil, &ArtifactLoadError{
			Artifact: KindModel,
			Path:     modelPath,
			Err:      fmt.Errorf("model expects %d features, schema has %d columns", reg.NumFeatures(), schema.Len()),
		}
	}
	if mf.SchemaFingerprint != schema.Fingerprint() {
		return nil, &ArtifactLoadError{
			Artifact: KindModel,
			Path:     modelPath,
			Err:      errors.New("model was fitted on a different schema (fingerprint mismatch)"),
		}
	}

	return &Bundle{
		Version:      mf.Version,
		TrainedAt:    mf.TrainedAt,
		TrainingRows: mf.TrainingRows,
		Metrics:      mf.Metrics,
		Schema:       schema,
		Regressor:    reg,
	}, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("file is empty")
	}
	return json.Unmarshal(data, v)
}
