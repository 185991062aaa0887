// Package deploy defines the provider-agnostic interface for serverless
// deployment vendors and the canonical deployment data model paid handlers
// translate their commands into. Concrete adapters live in subpackages
// (deploy/hive).
package deploy

import (
	"context"
	"fmt"
)

// Vendor is the deployment-provider interface. Implementations are
// process-lived singletons created at startup and must be safe for concurrent
// use.
type Vendor interface {
	// Deploy creates a service from the given config and returns the
	// vendor-assigned id. Provider failures are reported as *VendorError.
	Deploy(ctx context.Context, config DeploymentConfig) (string, error)

	// Status returns the best-effort status of a deployment. Vendor-reported
	// failures map to Ready=false with a message, not an error; only
	// transport-level problems return one.
	Status(ctx context.Context, id string) (DeploymentStatus, error)
}

// VendorError reports a failure from a deployment provider. Code is the
// provider's error code when one was given, otherwise the HTTP status as a
// string.
type VendorError struct {
	Code    string
	Message string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("vendor error %s: %s", e.Code, e.Message)
}

// DeploymentConfig is the canonical vendor-agnostic deploy request.
type DeploymentConfig struct {
	Name   string
	Source SourceConfig
	Run    RunConfig
	Build  BuildConfig
}

// SourceConfig describes where the service's code comes from. Only git
// sources are modeled.
type SourceConfig struct {
	Git    string
	Branch string
	Dir    string
}

// RunConfig describes how the built service runs: networking, probes,
// resources, and autoscaling. Zero values mean "let the vendor default".
type RunConfig struct {
	Port             int
	Envs             []Env
	ConcurrencyLimit int
	ReadinessProbe   string
	LivenessProbe    string

	CPURequest    *CPUQuantity
	MemoryRequest *MemoryQuantity
	CPULimit      *CPUQuantity
	MemoryLimit   *MemoryQuantity

	MinScale    int
	MaxScale    int
	InitScale   int
	WindowScale string
	Metric      string
	Target      int
	Utilization int

	PVCSize *MemoryQuantity
}

// BuildConfig describes how the service image is built.
type BuildConfig struct {
	DockerConfig string
	BuildEnvs    []Env
}

// Env is a name/value pair passed to the service at run or build time.
type Env struct {
	Name  string
	Value string
}

// DeploymentStatus is the canonical status of a deployed service.
type DeploymentStatus struct {
	ID      string
	Name    string
	URL     string
	Ready   bool
	Message string
	Extra   map[string]interface{}
}
