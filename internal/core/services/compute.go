package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

type ComputeService struct {
	client output.ComputeClient
	poll   PollConfig
}

func NewComputeService(client output.ComputeClient, poll PollConfig) *ComputeService {
	return &ComputeService{client: client, poll: poll}
}

// GetOrCreate returns the named cluster, provisioning it when the platform
// reports it does not exist, and waits until provisioning settles.
func (s *ComputeService) GetOrCreate(ctx context.Context, spec domain.ComputeSpec) (*domain.ComputeTarget, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	logger := log.WithField("compute", spec.Name)

	target, err := s.client.GetCompute(ctx, spec.Name)
	switch {
	case err == nil:
		logger.WithField("state", target.ProvisioningState).Info("found existing compute target")
		if target.IsReady() {
			return target, nil
		}
	case errors.Is(err, domain.ErrComputeTargetNotFound):
		logger.WithFields(log.Fields{
			"vm_size":   spec.VMSize,
			"max_nodes": spec.MaxNodes,
		}).Info("creating compute target")
		target, err = s.client.CreateCompute(ctx, spec)
		if err != nil {
			return nil, fmt.Errorf("create compute: %w", err)
		}
	default:
		return nil, fmt.Errorf("get compute: %w", err)
	}

	return s.waitReady(ctx, target)
}

func (s *ComputeService) waitReady(ctx context.Context, target *domain.ComputeTarget) (*domain.ComputeTarget, error) {
	current := target
	err := pollUntil(ctx, s.poll, "compute "+target.Name, func(ctx context.Context) (bool, error) {
		if current == nil {
			t, err := s.client.GetCompute(ctx, target.Name)
			if err != nil {
				return false, fmt.Errorf("get compute: %w", err)
			}
			current = t
		}
		state := current.ProvisioningState
		log.WithFields(log.Fields{
			"compute": current.Name,
			"state":   state,
			"nodes":   current.CurrentNodeCount,
		}).Debug("polled compute target")

		switch {
		case current.IsReady():
			return true, nil
		case state.IsTerminal():
			return false, fmt.Errorf("%w: %s is %s: %s", domain.ErrComputeProvisioningFailed,
				current.Name, state, strings.Join(current.Errors, "; "))
		}
		current = nil
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("compute", current.Name).Info("compute target ready")
	return current, nil
}

func (s *ComputeService) Delete(ctx context.Context, name string) error {
	if err := s.client.DeleteCompute(ctx, name); err != nil {
		return fmt.Errorf("delete compute: %w", err)
	}
	log.WithField("compute", name).Info("compute target deleted")
	return nil
}
