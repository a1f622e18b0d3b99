package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pmsync-dev/pmsync/pkg/cli/config"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

func writeTenantFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tenant.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600)).Required()
	return path
}

func TestLoadTenantFile(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		path := writeTenantFile(t, `
id = "U0123456"
email = "pm@example.com"
name = "Alex PM"

[jira]
base_url = "https://example.atlassian.net"
email = "pm@example.com"
api_token = "secret-token"
project_key = "PROJ"

[drive]
folder_id = "folder-abc"

[flow]
document_only = true
notification_channel = "C0PROJECT"
`)

		tenant, err := config.LoadTenantFile(path)
		gt.NoError(t, err).Required()
		gt.Value(t, tenant.ID).Equal(types.TenantID("U0123456"))
		gt.Value(t, tenant.Jira.ProjectKey).Equal("PROJ")
		gt.Value(t, tenant.Jira.APIToken).Equal("secret-token")
		gt.Value(t, tenant.Drive.FolderID).Equal("folder-abc")
		gt.Bool(t, tenant.Flow.DocumentOnly).True()
		gt.Value(t, tenant.Flow.NotificationChannel).Equal("C0PROJECT")
	})

	t.Run("missing required fields", func(t *testing.T) {
		path := writeTenantFile(t, `
id = "U0123456"

[jira]
base_url = "https://example.atlassian.net"
`)

		_, err := config.LoadTenantFile(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("malformed TOML", func(t *testing.T) {
		path := writeTenantFile(t, `id = [unclosed`)

		_, err := config.LoadTenantFile(path)
		gt.Value(t, err).NotNil()
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadTenantFile(filepath.Join(t.TempDir(), "nope.toml"))
		gt.Value(t, err).NotNil()
	})
}
