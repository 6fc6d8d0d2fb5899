package dto

import (
	"time"

	"github.com/google/uuid"

	"automl-orchestrator/internal/core/domain"
)

type PipelineResponse struct {
	ID            uuid.UUID         `json:"id"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
	Workspace     string            `json:"workspace"`
	Experiment    string            `json:"experiment"`
	ComputeTarget string            `json:"compute_target"`
	RunID         string            `json:"run_id,omitempty"`
	BestRunID     string            `json:"best_run_id,omitempty"`
	BestAlgorithm string            `json:"best_algorithm,omitempty"`
	PrimaryMetric string            `json:"primary_metric"`
	BestScore     *float64          `json:"best_score"`
	Model         *ModelRef         `json:"model,omitempty"`
	Service       *ServiceRef       `json:"service,omitempty"`
	Stage         string            `json:"stage"`
	Status        string            `json:"status"`
	LastError     string            `json:"last_error,omitempty"`
	Accuracy      *float64          `json:"accuracy"`
	Labels        map[string]string `json:"labels"`
}

type ModelRef struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type ServiceRef struct {
	Name       string `json:"name"`
	Target     string `json:"target"`
	ScoringURI string `json:"scoring_uri,omitempty"`
}

type ListPipelinesResponse struct {
	Items      []PipelineResponse `json:"items"`
	Total      int                `json:"total"`
	PageSize   int                `json:"page_size"`
	NextOffset int                `json:"next_offset"`
}

func ToPipelineResponse(p *domain.Pipeline) PipelineResponse {
	resp := PipelineResponse{
		ID:            p.ID,
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
		Workspace:     p.Workspace,
		Experiment:    p.Experiment,
		ComputeTarget: p.ComputeTarget,
		RunID:         p.RunID,
		BestRunID:     p.BestRunID,
		BestAlgorithm: p.BestAlgorithm,
		PrimaryMetric: p.PrimaryMetric,
		BestScore:     p.BestScore,
		Stage:         p.Stage,
		Status:        string(p.Status),
		LastError:     p.LastError,
		Accuracy:      p.Accuracy,
		Labels:        p.Labels,
	}
	if resp.Labels == nil {
		resp.Labels = map[string]string{}
	}
	if p.ModelName != "" {
		resp.Model = &ModelRef{Name: p.ModelName, Version: p.ModelVersion}
	}
	if p.ServiceName != "" {
		resp.Service = &ServiceRef{
			Name:       p.ServiceName,
			Target:     string(p.DeployTarget),
			ScoringURI: p.ScoringURI,
		}
	}
	return resp
}
