package platform

import (
	"context"
	"fmt"
	"net/http"

	"automl-orchestrator/internal/core/domain"
)

type datasetRequest struct {
	Format      string            `json:"format"`
	Header      bool              `json:"header"`
	SourceURLs  []string          `json:"source_urls"`
	ColumnTypes map[string]string `json:"column_types,omitempty"`
	LabelColumn string            `json:"label_column,omitempty"`
	Description string            `json:"description,omitempty"`
}

// RegisterDataset wraps delimited files as a tabular dataset. Registering
// an existing name creates a new version.
func (c *Client) RegisterDataset(ctx context.Context, spec domain.DatasetSpec) (*domain.Dataset, error) {
	req := datasetRequest{
		Format:      "delimited",
		Header:      true,
		SourceURLs:  spec.SourceURLs,
		LabelColumn: spec.LabelColumn,
		Description: spec.Description,
	}
	if len(spec.FloatColumns) > 0 {
		req.ColumnTypes = make(map[string]string, len(spec.FloatColumns))
		for _, col := range spec.FloatColumns {
			req.ColumnTypes[col] = "float"
		}
	}

	var ds domain.Dataset
	if err := c.do(ctx, http.MethodPut, "/datasets/"+escape(spec.Name), nil, req, &ds); err != nil {
		return nil, fmt.Errorf("register dataset %s: %w", spec.Name, err)
	}
	if ds.Name == "" {
		ds.Name = spec.Name
	}
	ds.Role = spec.Role
	return &ds, nil
}
