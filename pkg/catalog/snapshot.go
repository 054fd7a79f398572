package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/genbi-ai/genbi-engine/pkg/apperrors"
	"github.com/genbi-ai/genbi-engine/pkg/models"
)

// SnapshotVersion is the persisted document format version.
const SnapshotVersion = "1.0.0"

// snapshotDoc is the on-disk shape of a catalog snapshot.
type snapshotDoc struct {
	Version     string          `json:"version"`
	LastUpdated time.Time       `json:"last_updated"`
	Catalog     *models.Catalog `json:"catalog"`
}

// SaveSnapshot writes the catalog as a versioned JSON document,
// atomically via a temp-file rename.
func SaveSnapshot(path string, cat *models.Catalog) error {
	doc := snapshotDoc{
		Version:     SnapshotVersion,
		LastUpdated: time.Now().UTC(),
		Catalog:     cat,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write catalog snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace catalog snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a persisted catalog. A missing file is not an
// error: an empty catalog is returned. A malformed file fails closed
// to an empty catalog with apperrors.ErrSnapshotCorrupt, never a
// partially populated graph.
func LoadSnapshot(path, name string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return models.NewCatalog(name), nil
	}
	if err != nil {
		return models.NewCatalog(name), fmt.Errorf("read catalog snapshot: %w", err)
	}

	var doc snapshotDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.NewCatalog(name), fmt.Errorf("%w: %v", apperrors.ErrSnapshotCorrupt, err)
	}
	if doc.Catalog == nil {
		return models.NewCatalog(name), fmt.Errorf("%w: no catalog section", apperrors.ErrSnapshotCorrupt)
	}

	cat := doc.Catalog
	// Re-initialize maps the encoder may have dropped when empty.
	if cat.Tables == nil {
		cat.Tables = make(map[string]*models.Table)
	}
	if cat.BusinessMetrics == nil {
		cat.BusinessMetrics = make(map[string]string)
	}
	if cat.BusinessDimensions == nil {
		cat.BusinessDimensions = make(map[string]string)
	}
	if cat.CommonJoins == nil {
		cat.CommonJoins = make(map[string]string)
	}
	if cat.Glossary == nil {
		cat.Glossary = make(map[string]string)
	}
	return cat, nil
}
