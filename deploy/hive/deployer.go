package hive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/x402-function-go/deploy"
)

// errCodeVendor is the code reported when Hive accepts the request but
// replies success=false.
const errCodeVendor = "VENDOR_ERROR"

// Deployer implements deploy.Vendor against the Hive API.
type Deployer struct {
	client *Client
	logger *slog.Logger
}

var _ deploy.Vendor = (*Deployer)(nil)

// NewDeployer creates a Hive-backed vendor. A nil logger means slog.Default().
func NewDeployer(client *Client, logger *slog.Logger) *Deployer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deployer{client: client, logger: logger}
}

// Deploy creates a service on Hive and returns the vendor-assigned id.
func (d *Deployer) Deploy(ctx context.Context, config deploy.DeploymentConfig) (string, error) {
	resp, err := d.client.createService(ctx, toCreateRequest(config))
	if err != nil {
		return "", err
	}

	if !resp.Success {
		d.logger.Error("failed to deploy service to hive",
			"name", config.Name, "errCode", resp.ErrCode, "errMessage", resp.ErrMessage)
		return "", &deploy.VendorError{Code: errCodeVendor, Message: "failed to deploy service to hive"}
	}

	var result serviceCreateResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return "", fmt.Errorf("failed to decode hive create result: %w", err)
	}
	return result.ID, nil
}

// Status returns the status of a service by id. Vendor-reported failures are
// mapped to a not-ready status instead of an error.
func (d *Deployer) Status(ctx context.Context, id string) (deploy.DeploymentStatus, error) {
	resp, err := d.client.getServiceByID(ctx, id)
	if err != nil {
		return deploy.DeploymentStatus{}, err
	}
	return d.toStatus(id, resp)
}

// StatusByName is Status keyed by service name.
func (d *Deployer) StatusByName(ctx context.Context, name string) (deploy.DeploymentStatus, error) {
	resp, err := d.client.getServiceByName(ctx, name)
	if err != nil {
		return deploy.DeploymentStatus{}, err
	}
	return d.toStatus(name, resp)
}

func (d *Deployer) toStatus(key string, resp *response) (deploy.DeploymentStatus, error) {
	if !resp.Success {
		return deploy.DeploymentStatus{
			ID:      key,
			Ready:   false,
			Message: resp.ErrMessage,
			Extra:   map[string]interface{}{},
		}, nil
	}

	var result serviceResult
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return deploy.DeploymentStatus{}, fmt.Errorf("failed to decode hive service result: %w", err)
	}

	return deploy.DeploymentStatus{
		ID:      result.ID,
		Name:    result.Name,
		URL:     result.URL,
		Ready:   result.Ready,
		Message: result.Message,
		Extra:   map[string]interface{}{"details": result.DeployStatuses},
	}, nil
}
