package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Platform   PlatformConfig
	Workspace  WorkspaceConfig
	Compute    ComputeConfig
	Data       DataConfig
	AutoML     AutoMLConfig
	Deploy     DeployConfig
	Kubernetes KubernetesConfig
	Database   DatabaseConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggerConfig struct {
	Level  string
	Format string
}

// PlatformConfig points at the managed ML platform REST API.
type PlatformConfig struct {
	Endpoint     string
	APIVersion   string
	Timeout      time.Duration
	PollInterval time.Duration
	Token        string
	TenantID     string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// UsesClientCredentials reports whether a service principal is configured.
func (p PlatformConfig) UsesClientCredentials() bool {
	return p.ClientID != "" && p.ClientSecret != "" && (p.TokenURL != "" || p.TenantID != "")
}

// ResolvedTokenURL returns TokenURL or the tenant-derived default.
func (p PlatformConfig) ResolvedTokenURL() string {
	if p.TokenURL != "" {
		return p.TokenURL
	}
	return fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", p.TenantID)
}

type WorkspaceConfig struct {
	ConfigPath     string
	SubscriptionID string
	ResourceGroup  string
	Name           string
	Experiment     string
}

type ComputeConfig struct {
	Name             string
	VMSize           string
	MinNodes         int
	MaxNodes         int
	IdleScaleDown    time.Duration
	ProvisionTimeout time.Duration
}

type DataConfig struct {
	TrainURL      string
	ValidateURL   string
	TestURL       string
	LabelColumn   string
	FloatColumns  []string
	DatasetPrefix string
	OutputDir     string
}

type AutoMLConfig struct {
	Task                   string
	PrimaryMetric          string
	UseDistributed         bool
	MaxNodes               int
	AllowedModels          []string
	ExperimentTimeoutHours float64
	Verbosity              string
	EnableEarlyStopping    bool
	Featurization          string
	RunTimeout             time.Duration
}

type DeployConfig struct {
	Target      string // platform or kserve
	ModelName   string
	ServiceName string
	CPUCores    float64
	MemoryGB    float64
	AuthEnabled bool
	Timeout     time.Duration
	Image       string
	Namespace   string
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	DefaultNS      string
}

type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN builds a libpq-style connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type MetricsConfig struct {
	PushgatewayURL string
	Job            string
}

// Load reads configuration from the environment, optionally overlaid by file.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	v.SetDefault("PLATFORM_ENDPOINT", "https://management.ml.example.com")
	v.SetDefault("PLATFORM_API_VERSION", "v1")
	v.SetDefault("PLATFORM_TIMEOUT", "60s")
	v.SetDefault("PLATFORM_POLL_INTERVAL", "15s")
	v.SetDefault("PLATFORM_SCOPES", "https://ml.azure.com/.default")

	v.SetDefault("WORKSPACE_EXPERIMENT", "automl-classification-distributed")

	v.SetDefault("COMPUTE_NAME", "cpu-cluster")
	v.SetDefault("COMPUTE_VM_SIZE", "STANDARD_DS12_V2")
	v.SetDefault("COMPUTE_MIN_NODES", 0)
	v.SetDefault("COMPUTE_MAX_NODES", 6)
	v.SetDefault("COMPUTE_IDLE_SCALE_DOWN", "30m")
	v.SetDefault("COMPUTE_PROVISION_TIMEOUT", "20m")

	v.SetDefault("DATA_TRAIN_URL", sampleDataURL+"bankmarketing_train.csv")
	v.SetDefault("DATA_VALIDATE_URL", sampleDataURL+"bankmarketing_validate.csv")
	v.SetDefault("DATA_TEST_URL", sampleDataURL+"bankmarketing_test.csv")
	v.SetDefault("DATA_LABEL_COLUMN", "y")
	v.SetDefault("DATA_FLOAT_COLUMNS", "duration")
	v.SetDefault("DATA_DATASET_PREFIX", "bankmarketing")
	v.SetDefault("DATA_OUTPUT_DIR", "outputs")

	v.SetDefault("AUTOML_TASK", "classification")
	v.SetDefault("AUTOML_PRIMARY_METRIC", "AUC_weighted")
	v.SetDefault("AUTOML_USE_DISTRIBUTED", true)
	v.SetDefault("AUTOML_MAX_NODES", 3)
	v.SetDefault("AUTOML_ALLOWED_MODELS", "LightGBM")
	v.SetDefault("AUTOML_EXPERIMENT_TIMEOUT_HOURS", 0.5)
	v.SetDefault("AUTOML_VERBOSITY", "info")
	v.SetDefault("AUTOML_ENABLE_EARLY_STOPPING", true)
	v.SetDefault("AUTOML_FEATURIZATION", "auto")
	v.SetDefault("AUTOML_RUN_TIMEOUT", "2h")

	v.SetDefault("DEPLOY_TARGET", "platform")
	v.SetDefault("DEPLOY_MODEL_NAME", "automl-distributed-model")
	v.SetDefault("DEPLOY_SERVICE_NAME", "automl-distributed-svc")
	v.SetDefault("DEPLOY_CPU_CORES", 2)
	v.SetDefault("DEPLOY_MEMORY_GB", 2)
	v.SetDefault("DEPLOY_AUTH_ENABLED", false)
	v.SetDefault("DEPLOY_TIMEOUT", "30m")

	v.SetDefault("KUBERNETES_ENABLED", false)
	v.SetDefault("KUBERNETES_IN_CLUSTER", false)
	v.SetDefault("KUBERNETES_DEFAULT_NS", "model-serving")

	v.SetDefault("DATABASE_ENABLED", false)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "automl")
	v.SetDefault("DATABASE_NAME", "automl")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 5)
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 1)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("METRICS_JOB", "automlctl")

	// Env
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Platform: PlatformConfig{
			Endpoint:     strings.TrimRight(v.GetString("PLATFORM_ENDPOINT"), "/"),
			APIVersion:   v.GetString("PLATFORM_API_VERSION"),
			Timeout:      duration(v, "PLATFORM_TIMEOUT", 60*time.Second),
			PollInterval: duration(v, "PLATFORM_POLL_INTERVAL", 15*time.Second),
			Token:        v.GetString("PLATFORM_TOKEN"),
			TenantID:     v.GetString("PLATFORM_TENANT_ID"),
			ClientID:     v.GetString("PLATFORM_CLIENT_ID"),
			ClientSecret: v.GetString("PLATFORM_CLIENT_SECRET"),
			TokenURL:     v.GetString("PLATFORM_TOKEN_URL"),
			Scopes:       list(v, "PLATFORM_SCOPES"),
		},
		Workspace: WorkspaceConfig{
			ConfigPath:     v.GetString("WORKSPACE_CONFIG_PATH"),
			SubscriptionID: v.GetString("WORKSPACE_SUBSCRIPTION_ID"),
			ResourceGroup:  v.GetString("WORKSPACE_RESOURCE_GROUP"),
			Name:           v.GetString("WORKSPACE_NAME"),
			Experiment:     v.GetString("WORKSPACE_EXPERIMENT"),
		},
		Compute: ComputeConfig{
			Name:             v.GetString("COMPUTE_NAME"),
			VMSize:           v.GetString("COMPUTE_VM_SIZE"),
			MinNodes:         v.GetInt("COMPUTE_MIN_NODES"),
			MaxNodes:         v.GetInt("COMPUTE_MAX_NODES"),
			IdleScaleDown:    duration(v, "COMPUTE_IDLE_SCALE_DOWN", 30*time.Minute),
			ProvisionTimeout: duration(v, "COMPUTE_PROVISION_TIMEOUT", 20*time.Minute),
		},
		Data: DataConfig{
			TrainURL:      v.GetString("DATA_TRAIN_URL"),
			ValidateURL:   v.GetString("DATA_VALIDATE_URL"),
			TestURL:       v.GetString("DATA_TEST_URL"),
			LabelColumn:   v.GetString("DATA_LABEL_COLUMN"),
			FloatColumns:  list(v, "DATA_FLOAT_COLUMNS"),
			DatasetPrefix: v.GetString("DATA_DATASET_PREFIX"),
			OutputDir:     v.GetString("DATA_OUTPUT_DIR"),
		},
		AutoML: AutoMLConfig{
			Task:                   v.GetString("AUTOML_TASK"),
			PrimaryMetric:          v.GetString("AUTOML_PRIMARY_METRIC"),
			UseDistributed:         v.GetBool("AUTOML_USE_DISTRIBUTED"),
			MaxNodes:               v.GetInt("AUTOML_MAX_NODES"),
			AllowedModels:          list(v, "AUTOML_ALLOWED_MODELS"),
			ExperimentTimeoutHours: v.GetFloat64("AUTOML_EXPERIMENT_TIMEOUT_HOURS"),
			Verbosity:              v.GetString("AUTOML_VERBOSITY"),
			EnableEarlyStopping:    v.GetBool("AUTOML_ENABLE_EARLY_STOPPING"),
			Featurization:          v.GetString("AUTOML_FEATURIZATION"),
			RunTimeout:             duration(v, "AUTOML_RUN_TIMEOUT", 2*time.Hour),
		},
		Deploy: DeployConfig{
			Target:      v.GetString("DEPLOY_TARGET"),
			ModelName:   v.GetString("DEPLOY_MODEL_NAME"),
			ServiceName: v.GetString("DEPLOY_SERVICE_NAME"),
			CPUCores:    v.GetFloat64("DEPLOY_CPU_CORES"),
			MemoryGB:    v.GetFloat64("DEPLOY_MEMORY_GB"),
			AuthEnabled: v.GetBool("DEPLOY_AUTH_ENABLED"),
			Timeout:     duration(v, "DEPLOY_TIMEOUT", 30*time.Minute),
			Image:       v.GetString("DEPLOY_IMAGE"),
			Namespace:   v.GetString("DEPLOY_NAMESPACE"),
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("KUBERNETES_ENABLED"),
			InCluster:      v.GetBool("KUBERNETES_IN_CLUSTER"),
			KubeConfigPath: v.GetString("KUBERNETES_KUBECONFIG"),
			DefaultNS:      v.GetString("KUBERNETES_DEFAULT_NS"),
		},
		Database: DatabaseConfig{
			Enabled:         v.GetBool("DATABASE_ENABLED"),
			Host:            v.GetString("DATABASE_HOST"),
			Port:            v.GetInt("DATABASE_PORT"),
			User:            v.GetString("DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			Name:            v.GetString("DATABASE_NAME"),
			SSLMode:         v.GetString("DATABASE_SSLMODE"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			ConnMaxLifetime: duration(v, "DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: v.GetString("METRICS_PUSHGATEWAY_URL"),
			Job:            v.GetString("METRICS_JOB"),
		},
	}

	return cfg, nil
}

const sampleDataURL = "https://automlsamplenotebookdata.blob.core.windows.net/automl-sample-notebook-data/"

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

// list accepts either a comma separated env value or a list from file.
func list(v *viper.Viper, key string) []string {
	raw := v.GetStringSlice(key)
	var out []string
	for _, item := range raw {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
