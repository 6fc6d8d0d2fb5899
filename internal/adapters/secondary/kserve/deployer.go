package kserve

import (
	"context"
	"fmt"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

type deployer struct {
	client    output.KServeClient
	namespace string
}

// NewDeployer serves models as KServe InferenceServices.
func NewDeployer(client output.KServeClient, namespace string) output.ServiceDeployer {
	return &deployer{client: client, namespace: namespace}
}

func (d *deployer) Target() domain.DeployTarget {
	return domain.DeployTargetKServe
}

func (d *deployer) Deploy(ctx context.Context, spec domain.DeploySpec) (*domain.WebService, error) {
	if !d.client.IsAvailable() {
		return nil, domain.ErrKubernetesNotEnabled
	}

	dep, err := d.client.Deploy(ctx, d.namespace, spec)
	if err != nil {
		return nil, err
	}

	return &domain.WebService{
		Name:       spec.Name,
		Target:     domain.DeployTargetKServe,
		ExternalID: dep.ExternalID,
		State:      domain.ServiceStateTransitioning,
		UpdatedAt:  time.Now(),
	}, nil
}

func (d *deployer) GetService(ctx context.Context, name string) (*domain.WebService, error) {
	if !d.client.IsAvailable() {
		return nil, domain.ErrKubernetesNotEnabled
	}

	status, err := d.client.GetStatus(ctx, d.namespace, name)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrServiceNotFound, name)
		}
		return nil, err
	}

	return toWebService(name, status), nil
}

func (d *deployer) DeleteService(ctx context.Context, name string) error {
	if !d.client.IsAvailable() {
		return domain.ErrKubernetesNotEnabled
	}

	err := d.client.Undeploy(ctx, d.namespace, name)
	if err != nil && apierrors.IsNotFound(err) {
		return fmt.Errorf("%w: %s", domain.ErrServiceNotFound, name)
	}
	return err
}

// GetLogs reports the readiness condition; container logs live in the
// cluster and are read with kubectl.
func (d *deployer) GetLogs(ctx context.Context, name string) (string, error) {
	status, err := d.client.GetStatus(ctx, d.namespace, name)
	if err != nil {
		return "", err
	}
	if status.Error == "" {
		return fmt.Sprintf("inferenceservice %s ready=%t", name, status.Ready), nil
	}
	return fmt.Sprintf("inferenceservice %s ready=%t: %s", name, status.Ready, status.Error), nil
}

// terminalReasons are Ready=False reasons the controller does not recover
// from. Any other False condition is a rollout still in progress.
var terminalReasons = map[string]bool{
	"RevisionFailed":       true,
	"RevisionMissing":      true,
	"ModelLoadFailed":      true,
	"InvalidPredictorSpec": true,
}

// toWebService maps a Ready condition onto service states.
func toWebService(name string, status *output.KServeStatus) *domain.WebService {
	ws := &domain.WebService{
		Name:      name,
		Target:    domain.DeployTargetKServe,
		State:     domain.ServiceStateTransitioning,
		UpdatedAt: time.Now(),
	}
	switch {
	case status.Ready && status.URL != "":
		ws.MarkHealthy(strings.TrimRight(status.URL, "/") + "/score")
	case terminalReasons[status.Reason]:
		msg := status.Error
		if msg == "" {
			msg = status.Reason
		}
		ws.MarkFailed(msg)
	default:
		ws.Error = status.Error
	}
	return ws
}

var _ output.ServiceDeployer = (*deployer)(nil)
