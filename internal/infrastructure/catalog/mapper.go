package catalog

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/storefront/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// ProductRow is one row of the data service's products table. Identifier,
// price and stock arrive as numbers or strings depending on who wrote the
// row, so they are decoded leniently.
type ProductRow struct {
	ID          flexString `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Brand       string     `json:"brand" yaml:"brand"`
	Category    string     `json:"category" yaml:"category"`
	Description string     `json:"description" yaml:"description"`
	Price       flexFloat  `json:"price" yaml:"price"`
	Gender      string     `json:"gender" yaml:"gender"`
	Type        string     `json:"type" yaml:"type"`
	InStock     *bool      `json:"in_stock" yaml:"in_stock"`
	Stock       *flexFloat `json:"stock" yaml:"stock"`
}

// MapToCatalogEntries converts rows to catalog entries in row order. Rows
// without an identifier are skipped, as are repeated identifiers after the
// first occurrence. It returns the number of skipped rows.
func MapToCatalogEntries(rows []ProductRow) ([]domain.CatalogEntry, int) {
	entries := make([]domain.CatalogEntry, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	skipped := 0

	for _, row := range rows {
		id := strings.TrimSpace(string(row.ID))
		if id == "" || seen[id] {
			skipped++
			continue
		}
		seen[id] = true
		entries = append(entries, mapRow(id, row))
	}

	return entries, skipped
}

func mapRow(id string, row ProductRow) domain.CatalogEntry {
	return domain.CatalogEntry{
		ID:          id,
		Name:        strings.TrimSpace(row.Name),
		Brand:       strings.TrimSpace(row.Brand),
		Category:    strings.TrimSpace(row.Category),
		Description: strings.TrimSpace(row.Description),
		Price:       float64(row.Price),
		InStock:     isAvailable(row),
		Gender:      strings.TrimSpace(row.Gender),
		Type:        strings.TrimSpace(row.Type),
	}
}

// isAvailable prefers the explicit flag, then the stock count, and treats
// rows with neither as available
func isAvailable(row ProductRow) bool {
	if row.InStock != nil {
		return *row.InStock
	}
	if row.Stock != nil {
		return *row.Stock > 0
	}
	return true
}

// flexString accepts a JSON/YAML string or number
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = flexString(str)
		return nil
	}
	*s = flexString(data)
	return nil
}

func (s *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*s = ""
		return nil
	}
	*s = flexString(node.Value)
	return nil
}

// flexFloat accepts a number, a numeric string, or null. Unparseable
// values decode as zero, matching how the storefront treated bad prices.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = parseFlexFloat(str)
		return nil
	}
	*f = parseFlexFloat(string(data))
	return nil
}

func (f *flexFloat) UnmarshalYAML(node *yaml.Node) error {
	*f = parseFlexFloat(node.Value)
	return nil
}

func parseFlexFloat(s string) flexFloat {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return flexFloat(v)
}
