package tabular

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

type columnKind int

const (
	kindInt columnKind = iota
	kindFloat
	kindBool
	kindString
)

type csvSource struct {
	client *http.Client
}

// NewCSVSource creates a TabularSource reading headered CSV files from
// http(s) URLs, file:// URLs or local paths.
func NewCSVSource(timeout time.Duration) output.TabularSource {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	return &csvSource{client: &http.Client{Timeout: timeout}}
}

func (s *csvSource) Load(ctx context.Context, location string, opts output.TableOptions) (*domain.ScoringBatch, error) {
	rc, err := s.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	batch, err := Parse(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", location, err)
	}

	log.WithFields(log.Fields{
		"location": location,
		"rows":     len(batch.Records),
		"columns":  len(batch.Columns),
	}).Debug("loaded tabular data")
	return batch, nil
}

func (s *csvSource) open(ctx context.Context, location string) (io.ReadCloser, error) {
	u, err := url.Parse(location)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("create download request: %w", err)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", location, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("download %s: status %d", location, resp.StatusCode)
		}
		return resp.Body, nil
	}

	path := location
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Parse reads a headered CSV, types each column, splits off the label
// column and returns one record per row.
//
// A column is int when every non-empty cell parses as an integer, float
// when every cell parses as a number, bool for true/false, string
// otherwise. Empty cells become nil. Float columns listed in opts are
// forced to float64 and cells that do not parse become nil.
func Parse(r io.Reader, opts output.TableOptions) (*domain.ScoringBatch, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, domain.ErrEmptyDataset
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	labelIdx := -1
	if opts.LabelColumn != "" {
		for i, name := range header {
			if name == opts.LabelColumn {
				labelIdx = i
				break
			}
		}
		if labelIdx < 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrLabelColumnNotFound, opts.LabelColumn)
		}
	}

	forced := make(map[string]bool, len(opts.FloatColumns))
	for _, c := range opts.FloatColumns {
		forced[c] = true
	}

	kinds := make([]columnKind, len(header))
	for i, name := range header {
		if forced[name] {
			kinds[i] = kindFloat
			continue
		}
		kinds[i] = inferKind(rows, i)
	}

	batch := &domain.ScoringBatch{
		Records: make([]map[string]any, 0, len(rows)),
	}
	for i, name := range header {
		if i != labelIdx {
			batch.Columns = append(batch.Columns, name)
		}
	}
	if labelIdx >= 0 {
		batch.Labels = make([]string, 0, len(rows))
	}

	for _, row := range rows {
		rec := make(map[string]any, len(header))
		for i, name := range header {
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if i == labelIdx {
				batch.Labels = append(batch.Labels, cell)
				continue
			}
			rec[name] = convert(cell, kinds[i])
		}
		batch.Records = append(batch.Records, rec)
	}
	return batch, nil
}

func inferKind(rows [][]string, col int) columnKind {
	kind := kindInt
	seen := false
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[col])
		if cell == "" {
			continue
		}
		seen = true
		switch kind {
		case kindInt:
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				kind = kindFloat
				continue
			}
			if isBool(cell) {
				kind = kindBool
				continue
			}
			return kindString
		case kindFloat:
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				return kindString
			}
		case kindBool:
			if !isBool(cell) {
				return kindString
			}
		}
	}
	if !seen {
		return kindString
	}
	return kind
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false":
		return true
	}
	return false
}

func convert(cell string, kind columnKind) any {
	if cell == "" {
		return nil
	}
	switch kind {
	case kindInt:
		if v, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return v
		}
	case kindFloat:
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			return v
		}
		return nil
	case kindBool:
		return strings.EqualFold(cell, "true")
	}
	return cell
}
