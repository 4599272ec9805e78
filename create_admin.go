package main

import (
	"fmt"

	"archivemail/internal/core"

	"github.com/spf13/cobra"
)

func NewCreateAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account and mail its password setup link",
		Args:  cobra.NoArgs,
		RunE:  runCreateAdminCmd,
	}

	cmd.Flags().String("login", "", "Admin login")
	cmd.Flags().String("email", "", "Address the setup link is sent to")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runCreateAdminCmd(cmd *cobra.Command, _ []string) error {
	login, _ := cmd.Flags().GetString("login")
	email, _ := cmd.Flags().GetString("email")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateMail(); err != nil {
		return err
	}

	ctx := cmd.Context()
	m, err := newMailer(ctx, cfg, false)
	if err != nil {
		return err
	}

	admin, err := core.CreateUser(ctx, login, email, true)
	if err != nil {
		return fmt.Errorf("create admin %q: %w", login, err)
	}
	core.LogAudit(ctx, "ADMIN_CREATE_ADMIN", "cli", "", map[string]interface{}{"target": login})

	if _, err := m.SendPasswordSetup(ctx, admin); err != nil {
		return fmt.Errorf("admin %q created but the setup mail failed: %w", login, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (id %d); password setup mail sent to %s\n", login, admin.ID, admin.Email)
	return nil
}
