package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

// DatasetSources names the three delimited files an experiment uses.
type DatasetSources struct {
	Prefix       string
	TrainURL     string
	ValidateURL  string
	TestURL      string
	LabelColumn  string
	FloatColumns []string
}

// Specs returns the train, validation and test dataset specs in
// registration order.
func (d DatasetSources) Specs() []domain.DatasetSpec {
	mk := func(suffix string, role domain.DatasetRole, url string) domain.DatasetSpec {
		return domain.DatasetSpec{
			Name:         d.Prefix + "_" + suffix,
			Role:         role,
			SourceURLs:   []string{url},
			FloatColumns: d.FloatColumns,
			LabelColumn:  d.LabelColumn,
			Description:  fmt.Sprintf("%s data for %s", role, d.Prefix),
		}
	}
	return []domain.DatasetSpec{
		mk("train", domain.DatasetTraining, d.TrainURL),
		mk("validate", domain.DatasetValidation, d.ValidateURL),
		mk("test", domain.DatasetTest, d.TestURL),
	}
}

type DatasetService struct {
	client output.DatasetClient
}

func NewDatasetService(client output.DatasetClient) *DatasetService {
	return &DatasetService{client: client}
}

// RegisterAll registers specs in order and stops at the first failure.
func (s *DatasetService) RegisterAll(ctx context.Context, specs []domain.DatasetSpec) (*domain.DatasetSet, error) {
	set := &domain.DatasetSet{}
	for _, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("dataset %q: %w", spec.Name, err)
		}
		ds, err := s.client.RegisterDataset(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("register dataset %q: %w", spec.Name, err)
		}
		ds.Role = spec.Role

		switch spec.Role {
		case domain.DatasetTraining:
			set.Training = ds
		case domain.DatasetValidation:
			set.Validation = ds
		case domain.DatasetTest:
			set.Test = ds
		}

		log.WithFields(log.Fields{
			"dataset": ds.Name,
			"version": ds.Version,
			"role":    spec.Role,
		}).Info("dataset registered")
	}

	if set.Training == nil {
		return nil, domain.ErrMissingTrainingData
	}
	return set, nil
}
