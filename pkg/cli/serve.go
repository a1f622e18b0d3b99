package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/pmsync-dev/pmsync/pkg/cli/config"
	httpctrl "github.com/pmsync-dev/pmsync/pkg/controller/http"
	"github.com/pmsync-dev/pmsync/pkg/service/analysis"
	"github.com/pmsync-dev/pmsync/pkg/service/gdrive"
	"github.com/pmsync-dev/pmsync/pkg/service/jira"
	"github.com/pmsync-dev/pmsync/pkg/service/worker"
	"github.com/pmsync-dev/pmsync/pkg/usecase"
	"github.com/pmsync-dev/pmsync/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var repoCfg config.Repository
	var slackCfg config.Slack
	var geminiCfg config.Gemini
	var gdriveCfg config.GDrive
	var schedulerCfg config.Scheduler

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("PMSYNC_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, gdriveCfg.Flags()...)
	flags = append(flags, schedulerCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook server and document watcher",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to initialize slack service")
			}
			if !slackCfg.IsWebhookConfigured() {
				return goerr.New("slack-signing-secret is required for webhook verification")
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			driveDefaults, err := gdriveCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure document source")
			}

			uc := usecase.New(
				usecase.WithRepository(repo),
				usecase.WithAnalysisEngine(analysis.New(llmClient)),
				usecase.WithTicketServiceFactory(jira.Factory),
				usecase.WithDocumentSource(gdrive.New()),
				usecase.WithNotifier(slackSvc),
				usecase.WithDriveDefaults(driveDefaults),
			)

			slackHandler := httpctrl.NewSlackHandler(uc, slackSvc,
				httpctrl.WithMarkEmoji(slackCfg.MarkEmoji()))

			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(
					httpctrl.WithSlackHandler(slackHandler, slackCfg.SigningSecret()),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			var watchWorker *worker.DocumentWatchWorker
			if schedulerCfg.Enabled() {
				watchWorker = worker.NewDocumentWatchWorker(uc, schedulerCfg.Interval())
				if err := watchWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start document watch worker")
				}
			} else {
				logging.Default().Info("document watch scheduler disabled")
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if watchWorker != nil {
					watchWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
