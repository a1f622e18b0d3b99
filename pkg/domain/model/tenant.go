package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
)

// JiraConfig holds a tenant's ticketing credentials.
type JiraConfig struct {
	BaseURL    string `json:"base_url" firestore:"base_url" toml:"base_url"`
	Email      string `json:"email" firestore:"email" toml:"email"`
	APIToken   string `json:"api_token" firestore:"api_token" toml:"api_token" masq:"secret"`
	AuthType   string `json:"auth_type" firestore:"auth_type" toml:"auth_type"`
	ProjectKey string `json:"project_key" firestore:"project_key" toml:"project_key"`
}

// DriveConfig holds document-source credentials. In tenant records only
// FolderID and ClientEmail are meaningful overrides; the remaining fields
// live in the process-wide default (see Tenant.EffectiveDriveConfig).
type DriveConfig struct {
	ProjectID    string `json:"project_id" firestore:"project_id" toml:"project_id"`
	ClientEmail  string `json:"client_email" firestore:"client_email" toml:"client_email"`
	PrivateKey   string `json:"private_key" firestore:"private_key" toml:"private_key" masq:"secret"`
	PrivateKeyID string `json:"private_key_id" firestore:"private_key_id" toml:"private_key_id"`
	ClientID     string `json:"client_id" firestore:"client_id" toml:"client_id"`
	FolderID     string `json:"folder_id" firestore:"folder_id" toml:"folder_id"`
	FolderName   string `json:"folder_name" firestore:"folder_name" toml:"folder_name"`
	FileFilter   string `json:"file_filter" firestore:"file_filter" toml:"file_filter"`
}

// Watermark records the last document processed for a tenant. Compared by
// modification time; written whole (last-write-wins), never merged.
type Watermark struct {
	FileID      string    `json:"file_id" firestore:"file_id"`
	FileName    string    `json:"file_name" firestore:"file_name"`
	ModifiedAt  time.Time `json:"modified_at" firestore:"modified_at"`
	ProcessedAt time.Time `json:"processed_at" firestore:"processed_at"`
}

// IsZero reports whether no document has been processed yet.
func (w Watermark) IsZero() bool {
	return w.FileID == "" && w.ModifiedAt.IsZero()
}

// IsNewer reports whether a document modified at t supersedes the
// watermark. An unset watermark is superseded by anything.
func (w Watermark) IsNewer(t time.Time) bool {
	if w.IsZero() {
		return true
	}
	return t.After(w.ModifiedAt)
}

// FlowConfig holds per-tenant behavior flags.
type FlowConfig struct {
	// DocumentOnly makes /jira-sync default to document-only mode and lets
	// the scheduler auto-open sessions for new documents.
	DocumentOnly bool `json:"document_only" firestore:"document_only" toml:"document_only"`
	// NotificationChannel overrides where new-document notifications go.
	// Empty means DM the tenant directly.
	NotificationChannel string `json:"notification_channel" firestore:"notification_channel" toml:"notification_channel"`
	// AutoApprove is reserved; it is persisted but never read.
	AutoApprove bool `json:"auto_approve" firestore:"auto_approve" toml:"auto_approve"`
}

// Tenant is one operator's configuration record. Tenants are disabled, not
// deleted.
type Tenant struct {
	ID        types.TenantID `json:"id" firestore:"id"`
	Email     string         `json:"email" firestore:"email"`
	Name      string         `json:"name" firestore:"name"`
	Jira      JiraConfig     `json:"jira" firestore:"jira"`
	Drive     DriveConfig    `json:"drive" firestore:"drive"`
	Watermark Watermark      `json:"watermark" firestore:"watermark"`
	Flow      FlowConfig     `json:"flow" firestore:"flow"`
	Enabled   bool           `json:"enabled" firestore:"enabled"`
	CreatedAt time.Time      `json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" firestore:"updated_at"`
}

// Validate checks the fields required to onboard a tenant.
func (t *Tenant) Validate() error {
	if err := t.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid tenant")
	}
	if t.Jira.BaseURL == "" {
		return goerr.New("jira base_url is required", goerr.V("tenant_id", t.ID))
	}
	if t.Jira.ProjectKey == "" {
		return goerr.New("jira project_key is required", goerr.V("tenant_id", t.ID))
	}
	return nil
}

// TenantUpdate is a partial update. Nil sections are left untouched.
type TenantUpdate struct {
	Email *string
	Name  *string
	Jira  *JiraConfig
	Drive *DriveConfig
	Flow  *FlowConfig
}

// Apply merges the update into the tenant. Empty secret values mean "keep
// existing": an update form with a blank API token or private key must not
// wipe the stored credential.
func (t *Tenant) Apply(u TenantUpdate) {
	if u.Email != nil {
		t.Email = *u.Email
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Jira != nil {
		keep := t.Jira.APIToken
		t.Jira = *u.Jira
		if t.Jira.APIToken == "" {
			t.Jira.APIToken = keep
		}
	}
	if u.Drive != nil {
		keep := t.Drive.PrivateKey
		t.Drive = *u.Drive
		if t.Drive.PrivateKey == "" {
			t.Drive.PrivateKey = keep
		}
	}
	if u.Flow != nil {
		t.Flow = *u.Flow
	}
}

// EffectiveDriveConfig merges the shared service-account defaults with the
// tenant's overrides. Only FolderID and ClientEmail may be overridden per
// tenant; everything else always comes from the shared default. Pure: no
// I/O, safe to call on every session open.
func (t *Tenant) EffectiveDriveConfig(defaults DriveConfig) DriveConfig {
	cfg := defaults
	if t.Drive.FolderID != "" {
		cfg.FolderID = t.Drive.FolderID
	}
	if t.Drive.ClientEmail != "" {
		cfg.ClientEmail = t.Drive.ClientEmail
	}
	return cfg
}

// NotificationTarget returns the channel (or DM) for this tenant's
// notifications.
func (t *Tenant) NotificationTarget() string {
	if t.Flow.NotificationChannel != "" {
		return t.Flow.NotificationChannel
	}
	return t.ID.String()
}
