// Dealflowd watches a chat channel for meeting transcripts, extracts a
// structured summary with an LLM, and routes the human follow-up
// decision to email, channel broadcasts, and the CRM.
//
// Configuration is loaded from environment variables, with an optional
// YAML file for fund criteria and overrides. See internal/config.
//
// Usage:
//
//	# Start with environment configuration
//	dealflowd
//
//	# Start with a fund criteria file
//	dealflowd --config funds.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dealflowhq/dealflow/internal/config"
	"github.com/dealflowhq/dealflow/internal/email"
	"github.com/dealflowhq/dealflow/internal/extraction"
	"github.com/dealflowhq/dealflow/internal/httpapi"
	"github.com/dealflowhq/dealflow/internal/logging"
	"github.com/dealflowhq/dealflow/internal/slack"
	"github.com/dealflowhq/dealflow/internal/workflow"

	"github.com/dealflowhq/dealflow/internal/crm"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "dealflowd",
		Short:         "Transcript triage bot",
		Version:       fmt.Sprintf("%s (%s)", version, gitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to YAML config file (fund criteria, overrides)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "dealflowd: %v\n", err)
		os.Exit(1)
	}
}

// run wires the pipeline and blocks until the context is canceled.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logging.Sync(logger)
	}()

	logger.Info("starting dealflowd",
		zap.String("version", version),
		zap.String("source_channel", cfg.Slack.SourceChannel),
		zap.Bool("crm_enabled", cfg.DealCloud.Enabled))

	completer, err := extraction.NewCompleter(extraction.Config{
		APIKey:      cfg.OpenAI.APIKey.Value(),
		Model:       cfg.OpenAI.Model,
		BaseURL:     cfg.OpenAI.BaseURL,
		Temperature: cfg.OpenAI.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to create completer: %w", err)
	}
	extractor, err := extraction.NewExtractor(completer, cfg.Funds, logger)
	if err != nil {
		return fmt.Errorf("failed to create extractor: %w", err)
	}

	api := slackapi.New(cfg.Slack.BotToken.Value(),
		slackapi.OptionAppLevelToken(cfg.Slack.AppToken.Value()))
	socket := socketmode.New(api)
	client, err := slack.NewClient(api, logger)
	if err != nil {
		return fmt.Errorf("failed to create slack client: %w", err)
	}

	sender, err := email.NewSender(email.SMTPConfig{
		Provider: cfg.Email.Provider,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password.Value(),
		From:     cfg.Email.From,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create email sender: %w", err)
	}

	var crmClient workflow.CRM
	if cfg.DealCloud.Enabled {
		c, err := crm.NewClient(crm.Config{
			BaseURL:      cfg.DealCloud.BaseURL,
			ClientID:     cfg.DealCloud.ClientID,
			ClientSecret: cfg.DealCloud.ClientSecret.Value(),
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create crm client: %w", err)
		}
		crmClient = c
	}

	store := workflow.NewMemoryStore()
	orchestrator, err := workflow.NewOrchestrator(extractor, client, store, cfg.Slack.FollowUpChannel, logger)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}
	router, err := workflow.NewRouter(client, sender, store, crmClient, workflow.RouterConfig{
		EmailRecipient:     cfg.Email.Recipient(),
		FundXChannel:       cfg.Slack.FundXChannel,
		NoActionChannel:    cfg.Slack.NoActionChannel,
		CRMEnabled:         cfg.DealCloud.Enabled,
		CRMInteractionType: cfg.DealCloud.InteractionType,
		CRMAttendeeID:      cfg.DealCloud.AttendeeID,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}

	listener, err := slack.NewListener(socket, cfg.Slack.SourceChannel, orchestrator, router, logger)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	httpSrv, err := httpapi.NewServer(logger, &httpapi.Config{
		Host: cfg.HTTP.Host,
		Port: cfg.HTTP.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := listener.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("socket listener: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
