package kserve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"automl-orchestrator/internal/config"
	"automl-orchestrator/internal/core/domain"
	output "automl-orchestrator/internal/core/ports/output"
)

var inferenceServiceGVR = schema.GroupVersionResource{
	Group:    "serving.kserve.io",
	Version:  "v1beta1",
	Resource: "inferenceservices",
}

const (
	labelService = "automl.orchestrator/service"
	labelModel   = "automl.orchestrator/model-id"
)

type kserveClient struct {
	client    dynamic.Interface
	enabled   bool
	defaultNS string
}

// NewKServeClient creates a new KServe client adapter
func NewKServeClient(cfg *config.KubernetesConfig) (output.KServeClient, error) {
	if !cfg.Enabled {
		return &kserveClient{enabled: false}, nil
	}

	var restCfg *rest.Config
	var err error

	if cfg.InCluster {
		restCfg, err = rest.InClusterConfig()
	} else if cfg.KubeConfigPath != "" {
		restCfg, err = clientcmd.BuildConfigFromFlags("", cfg.KubeConfigPath)
	} else {
		home, _ := os.UserHomeDir()
		restCfg, err = clientcmd.BuildConfigFromFlags("", filepath.Join(home, ".kube", "config"))
	}
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	client, err := dynamic.NewForConfig(restCfg)
	if err != nil {
		return nil, fmt.Errorf("create dynamic client: %w", err)
	}

	return newWithDynamic(client, cfg.DefaultNS), nil
}

func newWithDynamic(client dynamic.Interface, defaultNS string) *kserveClient {
	if defaultNS == "" {
		defaultNS = "model-serving"
	}
	return &kserveClient{client: client, enabled: true, defaultNS: defaultNS}
}

func (c *kserveClient) IsAvailable() bool {
	return c.enabled
}

func (c *kserveClient) namespace(ns string) string {
	if ns == "" {
		return c.defaultNS
	}
	return ns
}

func (c *kserveClient) Deploy(ctx context.Context, namespace string, spec domain.DeploySpec) (*output.KServeDeployment, error) {
	if !c.enabled {
		return nil, domain.ErrKubernetesNotEnabled
	}

	created, err := c.client.Resource(inferenceServiceGVR).
		Namespace(c.namespace(namespace)).
		Create(ctx, buildInferenceServiceCR(spec), metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("create kserve inferenceservice: %w", err)
	}

	return &output.KServeDeployment{
		ExternalID: string(created.GetUID()),
	}, nil
}

func (c *kserveClient) Undeploy(ctx context.Context, namespace, name string) error {
	if !c.enabled {
		return domain.ErrKubernetesNotEnabled
	}

	err := c.client.Resource(inferenceServiceGVR).
		Namespace(c.namespace(namespace)).
		Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil {
		return fmt.Errorf("delete kserve inferenceservice: %w", err)
	}

	return nil
}

func (c *kserveClient) GetStatus(ctx context.Context, namespace, name string) (*output.KServeStatus, error) {
	if !c.enabled {
		return nil, domain.ErrKubernetesNotEnabled
	}

	obj, err := c.client.Resource(inferenceServiceGVR).
		Namespace(c.namespace(namespace)).
		Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("get kserve inferenceservice: %w", err)
	}

	return parseStatus(obj), nil
}

// buildInferenceServiceCR runs the scoring image as a custom predictor with
// the entry script and model location passed through the environment.
func buildInferenceServiceCR(spec domain.DeploySpec) *unstructured.Unstructured {
	labels := map[string]interface{}{
		labelService: spec.Name,
	}
	if len(spec.ModelIDs) > 0 {
		labels[labelModel] = sanitizeLabel(spec.ModelIDs[0])
	}
	for k, v := range spec.Tags {
		labels[k] = v
	}

	env := []interface{}{
		map[string]interface{}{"name": "MODEL_URI", "value": spec.ModelURI},
		map[string]interface{}{"name": "ENTRY_SCRIPT", "value": spec.EntryScript},
	}

	cpu := strconv.FormatFloat(spec.CPUCores, 'f', -1, 64)
	memory := strconv.FormatFloat(spec.MemoryGB, 'f', -1, 64) + "Gi"

	container := map[string]interface{}{
		"name":  "kserve-container",
		"image": spec.Image,
		"env":   env,
		"resources": map[string]interface{}{
			"requests": map[string]interface{}{"cpu": cpu, "memory": memory},
			"limits":   map[string]interface{}{"cpu": cpu, "memory": memory},
		},
	}

	return &unstructured.Unstructured{
		Object: map[string]interface{}{
			"apiVersion": "serving.kserve.io/v1beta1",
			"kind":       "InferenceService",
			"metadata": map[string]interface{}{
				"name":   spec.Name,
				"labels": labels,
			},
			"spec": map[string]interface{}{
				"predictor": map[string]interface{}{
					"containers": []interface{}{container},
				},
			},
		},
	}
}

func parseStatus(obj *unstructured.Unstructured) *output.KServeStatus {
	status := &output.KServeStatus{}

	statusMap, found, _ := unstructured.NestedMap(obj.Object, "status")
	if !found {
		return status
	}

	status.URL, _, _ = unstructured.NestedString(statusMap, "url")

	conditions, found, _ := unstructured.NestedSlice(statusMap, "conditions")
	if !found {
		return status
	}
	for _, cond := range conditions {
		condMap, ok := cond.(map[string]interface{})
		if !ok {
			continue
		}
		condType, _ := condMap["type"].(string)
		condStatus, _ := condMap["status"].(string)

		if condType == "Ready" {
			status.Ready = condStatus == "True"
			if condStatus == "False" {
				status.Reason, _ = condMap["reason"].(string)
				status.Error, _ = condMap["message"].(string)
			}
			break
		}
	}

	return status
}

// sanitizeLabel keeps a label value within the characters k8s accepts.
func sanitizeLabel(v string) string {
	out := make([]byte, 0, len(v))
	for i := 0; i < len(v) && len(out) < 63; i++ {
		ch := v[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9', ch == '-', ch == '_', ch == '.':
			out = append(out, ch)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// Ensure interface compliance
var _ output.KServeClient = (*kserveClient)(nil)
