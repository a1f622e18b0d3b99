// Package gdrive reads project documents from Google Drive. Credentials
// are assembled per call from the effective tenant configuration, since
// tenants may point at folders shared with different service accounts.
package gdrive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/utils/safe"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const googleDocMimeType = "application/vnd.google-apps.document"

type Service struct{}

var _ interfaces.DocumentSource = &Service{}

func New() *Service {
	return &Service{}
}

// LatestDocument returns the most recently modified matching document in
// the configured folder, with its text content.
func (s *Service) LatestDocument(ctx context.Context, cfg model.DriveConfig) (*model.Document, error) {
	if cfg.FolderID == "" {
		return nil, goerr.New("drive folder_id is not configured")
	}

	svc, err := s.driveService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("'%s' in parents and trashed = false", cfg.FolderID)
	if cfg.FileFilter != "" {
		query += fmt.Sprintf(" and name contains '%s'", cfg.FileFilter)
	}

	list, err := svc.Files.List().
		Q(query).
		OrderBy("modifiedTime desc").
		PageSize(1).
		Fields("files(id, name, mimeType, modifiedTime)").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list drive folder", goerr.V("folder_id", cfg.FolderID))
	}
	if len(list.Files) == 0 {
		return nil, goerr.Wrap(interfaces.ErrNoDocument, "folder has no matching documents",
			goerr.V("folder_id", cfg.FolderID), goerr.V("filter", cfg.FileFilter))
	}

	file := list.Files[0]
	modifiedAt, err := time.Parse(time.RFC3339, file.ModifiedTime)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid modifiedTime from drive", goerr.V("file_id", file.Id))
	}

	text, err := s.readContent(ctx, svc, file.Id, file.MimeType)
	if err != nil {
		return nil, err
	}

	return &model.Document{
		ID:         file.Id,
		Name:       file.Name,
		ModifiedAt: modifiedAt,
		Text:       text,
	}, nil
}

// readContent exports Google Docs as plain text and downloads everything
// else raw.
func (s *Service) readContent(ctx context.Context, svc *drive.Service, fileID, mimeType string) (string, error) {
	var resp io.ReadCloser
	if mimeType == googleDocMimeType {
		r, err := svc.Files.Export(fileID, "text/plain").Context(ctx).Download()
		if err != nil {
			return "", goerr.Wrap(err, "failed to export document", goerr.V("file_id", fileID))
		}
		resp = r.Body
	} else {
		r, err := svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return "", goerr.Wrap(err, "failed to download document", goerr.V("file_id", fileID))
		}
		resp = r.Body
	}
	defer safe.Close(ctx, resp)

	data, err := io.ReadAll(resp)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read document content", goerr.V("file_id", fileID))
	}
	return string(data), nil
}

func (s *Service) driveService(ctx context.Context, cfg model.DriveConfig) (*drive.Service, error) {
	creds, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(creds),
		option.WithScopes(drive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create drive client")
	}
	return svc, nil
}

// serviceAccountJSON rebuilds the credentials file shape from the
// configured fields.
func serviceAccountJSON(cfg model.DriveConfig) ([]byte, error) {
	if cfg.ClientEmail == "" || cfg.PrivateKey == "" {
		return nil, goerr.New("drive client_email and private_key are required")
	}

	creds := map[string]string{
		"type":           "service_account",
		"project_id":     cfg.ProjectID,
		"private_key_id": cfg.PrivateKeyID,
		"private_key":    cfg.PrivateKey,
		"client_email":   cfg.ClientEmail,
		"client_id":      cfg.ClientID,
		"token_uri":      "https://oauth2.googleapis.com/token",
	}
	raw, err := json.Marshal(creds)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode service account credentials")
	}
	return raw, nil
}
