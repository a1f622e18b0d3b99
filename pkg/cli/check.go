package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pmsync-dev/pmsync/pkg/cli/config"
	"github.com/pmsync-dev/pmsync/pkg/domain/interfaces"
	"github.com/pmsync-dev/pmsync/pkg/domain/model"
	"github.com/pmsync-dev/pmsync/pkg/domain/types"
	"github.com/pmsync-dev/pmsync/pkg/service/analysis"
	"github.com/pmsync-dev/pmsync/pkg/service/gdrive"
	"github.com/pmsync-dev/pmsync/pkg/service/jira"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// cmdCheck runs one document check pass from the command line, outside
// the scheduler. Useful for verifying drive credentials and folder
// sharing during onboarding.
func cmdCheck() *cli.Command {
	var repoCfg config.Repository
	var gdriveCfg config.GDrive
	var geminiCfg config.Gemini
	var tenantID string
	var dryRun bool

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "tenant-id",
			Usage:       "Check only this tenant (default: all enabled tenants)",
			Destination: &tenantID,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Only report the latest document, do not advance watermarks",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, gdriveCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)

	return &cli.Command{
		Name:  "check",
		Usage: "Run one document change detection pass",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				_ = repo.Close()
			}()

			driveDefaults, err := gdriveCfg.Configure()
			if err != nil {
				return err
			}

			docSource := gdrive.New()
			ucOpts := []usecase.Option{
				usecase.WithRepository(repo),
				usecase.WithDocumentSource(docSource),
				usecase.WithNotifier(&noopNotifier{}),
				usecase.WithDriveDefaults(driveDefaults),
				usecase.WithTicketServiceFactory(jira.Factory),
			}

			if dryRun {
				uc := usecase.New(ucOpts...)
				return checkDryRun(ctx, uc, docSource, repo, tenantID)
			}

			// A non-dry run can auto-open document-only sessions, which
			// needs the analysis engine.
			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			uc := usecase.New(append(ucOpts, usecase.WithAnalysisEngine(analysis.New(llmClient)))...)

			if tenantID != "" {
				tenant, err := uc.GetTenant(ctx, types.TenantID(tenantID))
				if err != nil {
					return err
				}
				if err := uc.CheckTenant(ctx, tenant); err != nil {
					color.Red("✗ %s: %v", tenant.ID, err)
					return err
				}
				color.Green("✓ %s checked", tenant.ID)
				return nil
			}

			return uc.CheckAllTenants(ctx)
		},
	}
}

func checkDryRun(ctx context.Context, uc *usecase.UseCases, docSource interfaces.DocumentSource, repo interfaces.Repository, tenantID string) error {
	tenants, err := repo.Tenant().ListEnabled(ctx)
	if err != nil {
		return err
	}

	for _, tenant := range tenants {
		if tenantID != "" && tenant.ID.String() != tenantID {
			continue
		}

		doc, err := docSource.LatestDocument(ctx, uc.EffectiveDriveConfig(tenant))
		if err != nil {
			color.Red("✗ %s: %v", tenant.ID, err)
			continue
		}

		if tenant.Watermark.IsNewer(doc.ModifiedAt) {
			color.Yellow("● %s: %q modified %s (new, would trigger)",
				tenant.ID, doc.Name, doc.ModifiedAt.Format("2006-01-02 15:04"))
		} else {
			color.Green("✓ %s: %q unchanged since watermark", tenant.ID, doc.Name)
		}
	}
	return nil
}

// noopNotifier satisfies the notifier dependency for CLI-only runs; the
// check command reports to the terminal instead of Slack.
type noopNotifier struct{}

var _ interfaces.Notifier = &noopNotifier{}

func (n *noopNotifier) NotifyProposals(ctx context.Context, target string, session *model.Session, summary string, proposals []*model.Proposal) error {
	return nil
}

func (n *noopNotifier) NotifyReport(ctx context.Context, target string, session *model.Session, report *model.ExecutionReport) error {
	return nil
}

func (n *noopNotifier) NotifyNewDocument(ctx context.Context, target string, tenant *model.Tenant, doc *model.Document) error {
	color.Cyan("→ %s: new document %q detected", tenant.ID, doc.Name)
	return nil
}

func (n *noopNotifier) NotifyText(ctx context.Context, target, text string) error {
	return nil
}
