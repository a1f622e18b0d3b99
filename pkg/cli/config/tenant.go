package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

// TenantFile is the TOML shape for onboarding a tenant.
type TenantFile struct {
	ID    string            `toml:"id"`
	Email string            `toml:"email"`
	Name  string            `toml:"name"`
	Jira  model.JiraConfig  `toml:"jira"`
	Drive model.DriveConfig `toml:"drive"`
	Flow  model.FlowConfig  `toml:"flow"`
}

// LoadTenantFile reads and validates a tenant definition.
func LoadTenantFile(path string) (*model.Tenant, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tenant file", goerr.V("path", path))
	}

	var file TenantFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML tenant file", goerr.V("path", path))
	}

	tenant := &model.Tenant{
		ID:    types.TenantID(file.ID),
		Email: file.Email,
		Name:  file.Name,
		Jira:  file.Jira,
		Drive: file.Drive,
		Flow:  file.Flow,
	}
	if err := tenant.Validate(); err != nil {
		return nil, goerr.Wrap(err, "tenant file validation failed", goerr.V("path", path))
	}

	return tenant, nil
}
