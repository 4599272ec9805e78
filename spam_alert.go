package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"archivemail/internal/mailer"

	"github.com/spf13/cobra"
)

func NewSpamAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spam-alert",
		Short: "Mail a spam report digest",
		Long: `Read a spam report and mail the digest to SPAM_ALERT_ADDRESS.

The report is a JSON object keyed by user id, in the order the users should
be listed:

  {"100": {"score": 13, "work_ids": [1, 2, 3]}, "200": {"score": 5, "work_ids": [4]}}

Users that no longer exist are left out. When none are left nothing is sent.

Examples:
  archivemail spam-alert --file report.json
  archivemail spam-alert --file - --dry-run < report.json`,
		Args: cobra.NoArgs,
		RunE: runSpamAlertCmd,
	}

	cmd.Flags().StringP("file", "f", "", "Report file, - for stdin")
	cmd.Flags().Bool("dry-run", false, "Render and print the mail instead of sending it")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSpamAlertCmd(cmd *cobra.Command, _ []string) error {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	report, err := readReport(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateMail(); err != nil {
		return err
	}

	m, err := newMailer(cmd.Context(), cfg, dryRun)
	if err != nil {
		return err
	}

	msg, err := m.SendSpamAlert(cmd.Context(), report)
	if errors.Is(err, mailer.ErrNothingToSend) {
		slog.Info("No reported user exists any more, nothing sent", "entries", len(report))
		return nil
	}
	if err != nil {
		return err
	}

	if dryRun {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "To: %s\nSubject: %s\n\n%s", msg.To[0], msg.Subject, msg.Text)
	}
	return nil
}

func readReport(stdin io.Reader, path string) (mailer.SpamReport, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path) //nolint:gosec // operator supplied path
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	var report mailer.SpamReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return report, nil
}
