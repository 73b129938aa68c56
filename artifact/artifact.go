// Package artifact persists a fitted feature transformer and regressor as a
// single versioned file.
//
// # File Format
//
// The file starts with an 8-byte magic string followed by one gob value
// holding the header and the gzip-compressed payload. The header carries the
// format and schema versions, the feature width and a SHA-256 checksum of the
// uncompressed payload. Load rejects any file whose checks fail, so a caller
// either gets a complete model or an error.
package artifact

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/realslimshanky/Pricy/features"
	"github.com/realslimshanky/Pricy/models"
	"github.com/realslimshanky/Pricy/tree"
)

const (
	// Magic identifies model files.
	Magic = "PRICYMDL"
	// FormatVersion is bumped when the container layout changes.
	FormatVersion = 1
)

// SchemaVersion identifies the input columns the model was trained on.
var SchemaVersion = schemaFingerprint()

var (
	// ErrCorrupt is returned when a file is truncated, tampered with or not a model file.
	ErrCorrupt = errors.New("artifact: corrupt model file")
	// ErrIncompatible is returned when a valid file was written for another format or schema.
	ErrIncompatible = errors.New("artifact: incompatible model file")
)

// Header describes a stored model.
type Header struct {
	FormatVersion int
	SchemaVersion string
	FeatureWidth  int
	TrainedAt     time.Time
	Rows          int
	TreeDepth     int
	TreeLeaves    int
	Checksum      string
	SizeBytes     int64
}

// Meta is the training information recorded alongside the model.
type Meta struct {
	TrainedAt time.Time
	Rows      int
}

type storedFile struct {
	Header         Header
	CompressedData []byte
}

type payload struct {
	Transformer []byte
	Regressor   []byte
}

func schemaFingerprint() string {
	cols := make([]string, 0, len(models.NumericColumns)+len(models.CategoricalColumns)+1)
	cols = append(cols, models.NumericColumns...)
	cols = append(cols, models.CategoricalColumns...)
	cols = append(cols, models.TextColumn)
	sum := sha256.Sum256([]byte(strings.Join(cols, ",")))
	return hex.EncodeToString(sum[:8])
}

// Save writes the fitted transformer and regressor to path. The file is
// written to a temporary sibling first and renamed into place.
func Save(path string, tr *features.Transformer, reg *tree.DecisionTreeRegressor, meta Meta) (*Header, error) {
	if tr.Width() != reg.NumFeatures() {
		return nil, fmt.Errorf("%w: transformer width %d, regressor expects %d",
			ErrIncompatible, tr.Width(), reg.NumFeatures())
	}
	trBytes, err := tr.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode transformer: %w", err)
	}
	regBytes, err := reg.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encode regressor: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload{Transformer: trBytes, Regressor: regBytes}); err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	rawData := buf.Bytes()
	hash := sha256.Sum256(rawData)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return nil, fmt.Errorf("compress model: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	trainedAt := meta.TrainedAt
	if trainedAt.IsZero() {
		trainedAt = time.Now().UTC()
	}
	header := Header{
		FormatVersion: FormatVersion,
		SchemaVersion: SchemaVersion,
		FeatureWidth:  tr.Width(),
		TrainedAt:     trainedAt,
		Rows:          meta.Rows,
		TreeDepth:     reg.Depth(),
		TreeLeaves:    reg.Leaves(),
		Checksum:      hex.EncodeToString(hash[:]),
		SizeBytes:     int64(compressed.Len()),
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create model file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(Magic); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write model file: %w", err)
	}
	if err := gob.NewEncoder(tmp).Encode(storedFile{Header: header, CompressedData: compressed.Bytes()}); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write model file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close model file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("move model file into place: %w", err)
	}
	return &header, nil
}

// Load reads and verifies the model stored at path.
func Load(path string) (*Model, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read decodes and verifies a model from r.
func Read(r io.Reader) (*Model, error) {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != Magic {
		return nil, fmt.Errorf("%w: missing magic header", ErrCorrupt)
	}

	var sf storedFile
	if err := gob.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrCorrupt, err)
	}
	h := sf.Header
	if h.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", ErrIncompatible, h.FormatVersion, FormatVersion)
	}
	if h.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: schema %s, want %s", ErrIncompatible, h.SchemaVersion, SchemaVersion)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress model: %v", ErrCorrupt, err)
	}
	defer func() { _ = gzr.Close() }()
	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: read decompressed data: %v", ErrCorrupt, err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != h.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch: expected %s, got %s", ErrCorrupt, h.Checksum, checksum)
	}

	var p payload
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrCorrupt, err)
	}
	tr := &features.Transformer{}
	if err := tr.UnmarshalBinary(p.Transformer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	reg := &tree.DecisionTreeRegressor{}
	if err := reg.UnmarshalBinary(p.Regressor); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if tr.Width() != h.FeatureWidth || reg.NumFeatures() != h.FeatureWidth {
		return nil, fmt.Errorf("%w: header width %d, transformer %d, regressor %d",
			ErrIncompatible, h.FeatureWidth, tr.Width(), reg.NumFeatures())
	}

	return &Model{header: h, transformer: tr, regressor: reg}, nil
}
