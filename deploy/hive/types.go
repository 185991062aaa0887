package hive

import (
	"encoding/json"

	"github.com/mark3labs/x402-function-go/deploy"
)

// response is the envelope every Hive endpoint replies with. Data is decoded
// per call site.
type response struct {
	Success    bool            `json:"success"`
	ErrCode    string          `json:"errCode"`
	ErrMessage string          `json:"errMessage"`
	Data       json.RawMessage `json:"data"`
}

// serviceCreateRequest is the Hive service-creation schema.
type serviceCreateRequest struct {
	Name          string        `json:"name"`
	Configuration configuration `json:"configuration"`
}

type configuration struct {
	SourceType       string `json:"sourceType"`
	SourceURI        string `json:"sourceUri"`
	SourceBranch     string `json:"sourceBranch,omitempty"`
	SourceContextDir string `json:"sourceContextDir,omitempty"`

	Port             int    `json:"port,omitempty"`
	Envs             []env  `json:"envs,omitempty"`
	ConcurrencyLimit int    `json:"concurrencyLimit,omitempty"`
	ReadinessProbe   string `json:"readinessProbe,omitempty"`
	LivenessProbe    string `json:"livenessProbe,omitempty"`

	CPURequest    string `json:"cpuRequest,omitempty"`
	MemoryRequest string `json:"memoryRequest,omitempty"`
	CPULimit      string `json:"cpuLimit,omitempty"`
	MemoryLimit   string `json:"memoryLimit,omitempty"`

	MinScale    int    `json:"minScale,omitempty"`
	MaxScale    int    `json:"maxScale,omitempty"`
	InitScale   int    `json:"initScale,omitempty"`
	WindowScale string `json:"windowScale,omitempty"`
	Metric      string `json:"metric,omitempty"`
	Target      int    `json:"target,omitempty"`
	Utilization int    `json:"utilization,omitempty"`

	DockerConfig string `json:"dockerConfig,omitempty"`
	PVCSize      string `json:"pvcSize,omitempty"`
	BuildEnvs    []env  `json:"buildEnvs,omitempty"`
}

type env struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// serviceCreateResult is the data of a successful POST /services.
type serviceCreateResult struct {
	ID string `json:"id"`
}

// serviceResult is the data of GET /services/{id}.
type serviceResult struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	URL            string                   `json:"url"`
	Ready          bool                     `json:"ready"`
	Message        string                   `json:"message"`
	DeployStatuses []map[string]interface{} `json:"deployStatuses"`
}

// toCreateRequest translates the canonical deployment model into the Hive
// schema. Only git sources are supported.
func toCreateRequest(config deploy.DeploymentConfig) serviceCreateRequest {
	cfg := configuration{
		SourceType:       "GIT",
		SourceURI:        config.Source.Git,
		SourceBranch:     config.Source.Branch,
		SourceContextDir: config.Source.Dir,

		Port:             config.Run.Port,
		Envs:             toEnvs(config.Run.Envs),
		ConcurrencyLimit: config.Run.ConcurrencyLimit,
		ReadinessProbe:   config.Run.ReadinessProbe,
		LivenessProbe:    config.Run.LivenessProbe,

		MinScale:    config.Run.MinScale,
		MaxScale:    config.Run.MaxScale,
		InitScale:   config.Run.InitScale,
		WindowScale: config.Run.WindowScale,
		Metric:      config.Run.Metric,
		Target:      config.Run.Target,
		Utilization: config.Run.Utilization,

		DockerConfig: config.Build.DockerConfig,
		BuildEnvs:    toEnvs(config.Build.BuildEnvs),
	}

	if config.Run.CPURequest != nil {
		cfg.CPURequest = config.Run.CPURequest.String()
	}
	if config.Run.MemoryRequest != nil {
		cfg.MemoryRequest = config.Run.MemoryRequest.String()
	}
	if config.Run.CPULimit != nil {
		cfg.CPULimit = config.Run.CPULimit.String()
	}
	if config.Run.MemoryLimit != nil {
		cfg.MemoryLimit = config.Run.MemoryLimit.String()
	}
	if config.Run.PVCSize != nil {
		cfg.PVCSize = config.Run.PVCSize.String()
	}

	return serviceCreateRequest{Name: config.Name, Configuration: cfg}
}

func toEnvs(envs []deploy.Env) []env {
	if len(envs) == 0 {
		return nil
	}
	out := make([]env, len(envs))
	for i, e := range envs {
		out[i] = env{Name: e.Name, Value: e.Value}
	}
	return out
}
