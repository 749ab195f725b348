// Package tmdl parses tabular-model definition files into the typed
// table/column catalog consumed by the linguistic index builder.
package tmdl

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/dashforge-ai/dashforge/pkg/apperrors"
	"github.com/dashforge-ai/dashforge/pkg/models"
)

var columnNamePattern = regexp.MustCompile(`column\s+'?([^']+)'?`)

// Parser loads .tmdl table definitions from a semantic-model directory.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new Parser.
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger.Named("tmdl")}
}

// LoadModel parses every .tmdl file under dir into a catalog.
// Files that do not define a table are skipped.
func (p *Parser) LoadModel(dir string) (*models.Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrModelPathMissing, dir)
		}
		return nil, fmt.Errorf("read model directory: %w", err)
	}

	catalog := &models.Catalog{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".tmdl") {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}

		table := ParseTable(string(content))
		if table == nil {
			p.logger.Debug("no table definition in file", zap.String("file", entry.Name()))
			continue
		}

		p.logger.Debug("parsed table",
			zap.String("table", table.Name),
			zap.Int("columns", len(table.Columns)),
			zap.Bool("hidden", table.IsHidden))
		catalog.Tables = append(catalog.Tables, *table)
	}

	p.logger.Info("semantic model loaded",
		zap.String("dir", dir),
		zap.Int("tables", len(catalog.Tables)))
	return catalog, nil
}

// ParseTable extracts one table definition from TMDL text.
// Returns nil if the text contains no table declaration.
func ParseTable(text string) *models.CatalogTable {
	table := &models.CatalogTable{}
	var current *models.CatalogColumn

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "table ") {
			table.Name = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "table")), "'")
			continue
		}

		// isHidden before the first column applies to the table itself.
		if current == nil && line == "isHidden" {
			table.IsHidden = true
		}

		if strings.HasPrefix(line, "column ") {
			if m := columnNamePattern.FindStringSubmatch(line); m != nil {
				table.Columns = append(table.Columns, models.CatalogColumn{
					Name:        m[1],
					DataType:    "unknown",
					SummarizeBy: "none",
				})
				current = &table.Columns[len(table.Columns)-1]
			}
			continue
		}

		if current == nil || !strings.Contains(line, ":") {
			continue
		}

		key, value, _ := strings.Cut(line, ":")
		value = strings.TrimSpace(value)
		switch key {
		case "dataType":
			if value != "" {
				current.DataType = strings.ToLower(value)
			}
		case "summarizeBy":
			if value != "" {
				current.SummarizeBy = strings.ToLower(value)
			}
		case "defaultHierarchy":
			// Value looks like LocalDateTable_x.'Date Hierarchy'; the
			// table part before the dot is the variation table.
			if name, _, found := strings.Cut(value, "."); found {
				current.VariationTable = strings.TrimSpace(name)
			}
		}
	}

	if table.Name == "" {
		return nil
	}
	return table
}
