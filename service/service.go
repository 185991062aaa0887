// Package service is the thin orchestration layer between paid HTTP handlers
// and the deployment vendor: it validates service-creation commands,
// translates them to the canonical deployment model, and maps vendor statuses
// to transport DTOs.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/mark3labs/x402-function-go/deploy"
)

// ErrInvalidCommand indicates a service-creation command that failed
// validation. Callers surface it as a 400.
var ErrInvalidCommand = errors.New("invalid service creation command")

var serviceNameRegex = regexp.MustCompile(`^[A-Za-z0-9\-]+$`)

// CreationCmd is a validated request to create a service from a git repo.
type CreationCmd struct {
	// Name may contain only letters, numbers, and '-'.
	Name string `json:"name" validate:"omitempty,svcname,max=32"`

	// URL is the git repository to deploy.
	URL string `json:"url" validate:"required,max=2048"`

	// Branch is the git branch; the vendor defaults it when empty.
	Branch string `json:"branch" validate:"max=64"`

	// Dir is the context directory inside the repo.
	Dir string `json:"dir" validate:"max=128"`

	// Port is the container port the service listens on.
	Port int `json:"port" validate:"omitempty,min=1,max=65535"`
}

// CreateResult is returned on successful creation.
type CreateResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Status is the transport view of a deployment's state.
type Status struct {
	ID      string                 `json:"id"`
	Name    string                 `json:"name"`
	URL     string                 `json:"url"`
	Ready   bool                   `json:"ready"`
	Message string                 `json:"message"`
	Extra   map[string]interface{} `json:"extra"`
}

// Service creates deployments through a vendor and reports their status.
// Safe for concurrent use.
type Service struct {
	vendor   deploy.Vendor
	validate *validator.Validate
}

// New creates the service façade over a deployment vendor.
func New(vendor deploy.Vendor) *Service {
	v := validator.New()
	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("svcname", func(fl validator.FieldLevel) bool {
		return serviceNameRegex.MatchString(fl.Field().String())
	})
	return &Service{vendor: vendor, validate: v}
}

// Create validates cmd, deploys it through the vendor, and returns the
// vendor-assigned id alongside the requested name. Validation failures wrap
// ErrInvalidCommand; vendor failures surface as *deploy.VendorError.
func (s *Service) Create(ctx context.Context, cmd CreationCmd) (CreateResult, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return CreateResult{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}

	id, err := s.vendor.Deploy(ctx, deploy.DeploymentConfig{
		Name: cmd.Name,
		Source: deploy.SourceConfig{
			Git:    cmd.URL,
			Branch: cmd.Branch,
			Dir:    cmd.Dir,
		},
		Run: deploy.RunConfig{
			Port: cmd.Port,
		},
	})
	if err != nil {
		return CreateResult{}, err
	}
	return CreateResult{ID: id, Name: cmd.Name}, nil
}

// ServiceStatus returns the deployment status of a service by its id.
func (s *Service) ServiceStatus(ctx context.Context, id string) (Status, error) {
	status, err := s.vendor.Status(ctx, id)
	if err != nil {
		return Status{}, err
	}
	return Status{
		ID:      status.ID,
		Name:    status.Name,
		URL:     status.URL,
		Ready:   status.Ready,
		Message: status.Message,
		Extra:   status.Extra,
	}, nil
}
