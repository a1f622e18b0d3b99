package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// GDrive holds the shared document source service account. Tenants can
// override only the folder and the client email; the key material always
// comes from here.
type GDrive struct {
	projectID      string
	clientEmail    string
	privateKeyFile string
	privateKeyID   string
	clientID       string
	folderID       string
	fileFilter     string
}

func (g *GDrive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gdrive-project-id",
			Category:    "Google Drive",
			Usage:       "Service account project ID",
			Sources:     cli.EnvVars("PMSYNC_GDRIVE_PROJECT_ID"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gdrive-client-email",
			Category:    "Google Drive",
			Usage:       "Service account client email",
			Sources:     cli.EnvVars("PMSYNC_GDRIVE_CLIENT_EMAIL"),
			Destination: &g.clientEmail,
		},
		&cli.StringFlag{
			Name:        "gdrive-private-key-file",
			Category:    "Google Drive",
			Usage:       "Path to the service account private key (PEM)",
			Sources:     cli.EnvVars("PMSYNC_GDRIVE_PRIVATE_KEY_FILE"),
			Destination: &g.privateKeyFile,
		},
		&cli.StringFlag{
			Name:        "gdrive-private-key-id",
			Category:    "Google Drive",
			Usage:       "Service account private key ID",
			Sources:     cli.EnvVars("PMSYNC_GDRIVE_PRIVATE_KEY_ID"),
			Destination: &g.privateKeyID,
		},
		&cli.StringFlag{
			Name:        "gdrive-client-id",
			Category:    "Google Drive",
			Usage:       "Service account client ID",
			Sources:     cli.EnvVars("PMSYNC_GDRIVE_CLIENT_ID"),
			Destination: &g.clientID,
		},
		&cli.StringFlag{
			Name:        "gdrive-folder-id",
			Category:    "Google Drive",
			Usage:       "Default folder to watch when a tenant has no override",
			Sources:     cli.EnvVars("PMSYNC_GDRIVE_FOLDER_ID"),
			Destination: &g.folderID,
		},
		&cli.StringFlag{
			Name:        "gdrive-file-filter",
			Category:    "Google Drive",
			Usage:       "Substring filter on document names",
			Sources:     cli.EnvVars("PMSYNC_GDRIVE_FILE_FILTER"),
			Destination: &g.fileFilter,
		},
	}
}

// Configure builds the default DriveConfig, reading the private key file
// if one is set.
func (g *GDrive) Configure() (model.DriveConfig, error) {
	cfg := model.DriveConfig{
		ProjectID:    g.projectID,
		ClientEmail:  g.clientEmail,
		PrivateKeyID: g.privateKeyID,
		ClientID:     g.clientID,
		FolderID:     g.folderID,
		FileFilter:   g.fileFilter,
	}

	if g.privateKeyFile != "" {
		key, err := os.ReadFile(g.privateKeyFile)
		if err != nil {
			return cfg, goerr.Wrap(err, "failed to read private key file",
				goerr.V("path", g.privateKeyFile))
		}
		cfg.PrivateKey = string(key)
	}

	return cfg, nil
}
