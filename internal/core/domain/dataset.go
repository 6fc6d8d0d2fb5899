package domain

import (
	"net/url"
	"strings"
)

// DatasetRole names which part of the experiment a dataset feeds.
type DatasetRole string

const (
	DatasetTraining   DatasetRole = "training"
	DatasetValidation DatasetRole = "validation"
	DatasetTest       DatasetRole = "test"
)

// DatasetSpec wraps delimited files as a typed tabular dataset.
type DatasetSpec struct {
	Name         string      `json:"name"`
	Role         DatasetRole `json:"-"`
	SourceURLs   []string    `json:"source_urls"`
	FloatColumns []string    `json:"float_columns,omitempty"`
	LabelColumn  string      `json:"label_column,omitempty"`
	Description  string      `json:"description,omitempty"`
}

func (s DatasetSpec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrInvalidDatasetName
	}
	if len(s.SourceURLs) == 0 {
		return ErrInvalidDatasetURL
	}
	for _, raw := range s.SourceURLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidDatasetURL
		}
	}
	return nil
}

// Dataset is a registered tabular dataset handle.
type Dataset struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Version int         `json:"version"`
	Role    DatasetRole `json:"-"`
}

// DatasetSet holds the three datasets a classification experiment uses.
type DatasetSet struct {
	Training   *Dataset
	Validation *Dataset
	Test       *Dataset
}
