package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/cli/config"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdTenant() *cli.Command {
	return &cli.Command{
		Name:  "tenant",
		Usage: "Manage tenant configuration records",
		Commands: []*cli.Command{
			cmdTenantOnboard(),
			cmdTenantEnable(true),
			cmdTenantEnable(false),
			cmdTenantShow(),
		},
	}
}

func tenantUseCases(ctx context.Context, repoCfg *config.Repository) (*usecase.UseCases, func(), error) {
	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	uc := usecase.New(usecase.WithRepository(repo))
	cleanup := func() {
		_ = repo.Close()
	}
	return uc, cleanup, nil
}

func cmdTenantOnboard() *cli.Command {
	var repoCfg config.Repository
	var filePath string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "file",
			Aliases:     []string{"f"},
			Usage:       "Tenant definition TOML file",
			Required:    true,
			Destination: &filePath,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "onboard",
		Usage: "Register a tenant from a TOML definition",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			tenant, err := config.LoadTenantFile(filePath)
			if err != nil {
				return err
			}

			uc, cleanup, err := tenantUseCases(ctx, &repoCfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := uc.OnboardTenant(ctx, tenant); err != nil {
				return err
			}

			color.Green("✓ tenant %s onboarded (project %s)", tenant.ID, tenant.Jira.ProjectKey)
			return nil
		},
	}
}

func cmdTenantEnable(enable bool) *cli.Command {
	var repoCfg config.Repository
	var tenantID string

	name := "enable"
	usage := "Enable a tenant"
	if !enable {
		name = "disable"
		usage = "Disable a tenant (records are kept)"
	}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant-id",
			Usage:       "Tenant ID (Slack user ID)",
			Required:    true,
			Destination: &tenantID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := tenantUseCases(ctx, &repoCfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := uc.SetTenantEnabled(ctx, types.TenantID(tenantID), enable); err != nil {
				return err
			}

			if enable {
				color.Green("✓ tenant %s enabled", tenantID)
			} else {
				color.Yellow("✓ tenant %s disabled", tenantID)
			}
			return nil
		},
	}
}

func cmdTenantShow() *cli.Command {
	var repoCfg config.Repository
	var tenantID string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant-id",
			Usage:       "Tenant ID (Slack user ID)",
			Required:    true,
			Destination: &tenantID,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "show",
		Usage: "Show a tenant's configuration (secrets redacted)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := tenantUseCases(ctx, &repoCfg)
			if err != nil {
				return err
			}
			defer cleanup()

			tenant, err := uc.GetTenant(ctx, types.TenantID(tenantID))
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Printf("Tenant %s\n", tenant.ID)
			fmt.Printf("  name:          %s\n", tenant.Name)
			fmt.Printf("  email:         %s\n", tenant.Email)
			fmt.Printf("  enabled:       %t\n", tenant.Enabled)
			fmt.Printf("  jira:          %s (project %s)\n", tenant.Jira.BaseURL, tenant.Jira.ProjectKey)
			fmt.Printf("  jira token:    %s\n", redacted(tenant.Jira.APIToken))
			fmt.Printf("  drive folder:  %s\n", tenant.Drive.FolderID)
			fmt.Printf("  document only: %t\n", tenant.Flow.DocumentOnly)
			if !tenant.Watermark.IsZero() {
				fmt.Printf("  watermark:     %s (%s)\n", tenant.Watermark.FileName,
					tenant.Watermark.ModifiedAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}

func redacted(secret string) string {
	if secret == "" {
		return "(unset)"
	}
	return "********"
}
