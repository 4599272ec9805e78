package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"archivemail/internal/core"
	applog "archivemail/internal/log"
	"archivemail/internal/mailer"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archivemail",
		Short: "Admin notification mail for the archive",
		Long: `archivemail sends the archive's admin notifications: comments on admin
posts, spam report digests and password setup mail for new admins.

Configuration comes from the environment, an optional .env file and an
optional YAML archive file (ARCHIVE_CONFIG or --config).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringP("config", "c", "", "YAML archive config file, overrides ARCHIVE_CONFIG")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewSpamAlertCmd())
	cmd.AddCommand(NewCreateAdminCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the sanitizing logger.
func loadConfig(cmd *cobra.Command) (*core.Config, error) {
	cfg := core.LoadConfig()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg.ArchiveConfigPath = path
		if err := cfg.ApplyArchiveFile(path); err != nil {
			return nil, fmt.Errorf("archive config: %w", err)
		}
	}

	level := applog.ParseLevel(cfg.LogLevel)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(applog.NewLogger(cmd.ErrOrStderr(), level, cfg.LogJSON))

	return cfg, nil
}

// newMailer connects the stores and builds the mailer. dryRun forces the
// log-only sender.
func newMailer(ctx context.Context, cfg *core.Config, dryRun bool) (*mailer.AdminMailer, error) {
	if err := core.InitRedis(ctx, cfg); err != nil {
		return nil, err
	}

	var sender mailer.Sender = mailer.NewSMTPSender(cfg)
	if dryRun || cfg.MailDryRun {
		sender = mailer.LogSender{}
	}
	return mailer.NewAdminMailer(cfg, core.RedisArchive{}, sender)
}
