package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/storefront/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileSource loads the catalog from a YAML or JSON file holding either a
// list of product rows or a document with a top-level "products" list
type FileSource struct {
	path   string
	logger *logrus.Entry
}

// NewFileSource creates a catalog source backed by a local file
func NewFileSource(path string, logger *logrus.Entry) *FileSource {
	if logger == nil {
		logger = logrus.WithField("component", "catalog_file")
	}
	return &FileSource{path: path, logger: logger}
}

// LoadCatalog reads and maps the file on every call, so edits are picked up
// by the next refresh
func (s *FileSource) LoadCatalog(ctx context.Context) ([]domain.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	rows, err := ParseRows(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}

	entries, skipped := MapToCatalogEntries(rows)
	if skipped > 0 {
		s.logger.WithField("skipped", skipped).Warn("Skipped catalog rows without a unique id")
	}
	s.logger.WithFields(logrus.Fields{"path": s.path, "entries": len(entries)}).Info("Catalog loaded from file")

	return entries, nil
}

// ParseRows decodes product rows from YAML or JSON
func ParseRows(data []byte) ([]ProductRow, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFormat, err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	var rows []ProductRow
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&rows); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFormat, err)
		}
	case yaml.MappingNode:
		var wrapper struct {
			Products []ProductRow `yaml:"products"`
		}
		if err := doc.Decode(&wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFormat, err)
		}
		rows = wrapper.Products
	default:
		return nil, fmt.Errorf("%w: expected a list of products", domain.ErrCatalogFormat)
	}

	return rows, nil
}
