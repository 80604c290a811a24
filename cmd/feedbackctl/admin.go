package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"feedback-backend/internal/repository"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage dashboard administrators",
	}
	cmd.AddCommand(newAdminCreateCmd(a), newAdminResetCmd(a))
	return cmd
}

type adminFlags struct {
	email    string
	name     string
	password string
}

func (f *adminFlags) bind(cmd *cobra.Command, nameDefault string) {
	cmd.Flags().StringVar(&f.email, "email", "", "admin email address")
	cmd.Flags().StringVar(&f.name, "name", nameDefault, "display name")
	cmd.Flags().StringVar(&f.password, "password", "", "password (defaults to $ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
}

func (f *adminFlags) resolvePassword() (string, error) {
	if f.password != "" {
		return f.password, nil
	}
	if p := os.Getenv("ADMIN_PASSWORD"); p != "" {
		return p, nil
	}
	return "", errors.New("a password is required: pass --password or set ADMIN_PASSWORD")
}

func newAdminCreateCmd(a *app) *cobra.Command {
	var flags adminFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an admin; an existing admin with the same email is left untouched",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := flags.resolvePassword()
			if err != nil {
				return err
			}
			if err := ensureAdminIndexes(cmd, a); err != nil {
				return err
			}

			created, err := a.maintenance.ProvisionAdmin(cmd.Context(), flags.email, flags.name, password)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "Admin %s already exists, nothing changed.\n", flags.email)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created. Log in at /admin/login.\n", flags.email)
			return nil
		},
	}
	flags.bind(cmd, "Admin")
	return cmd
}

func newAdminResetCmd(a *app) *cobra.Command {
	var flags adminFlags
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password for an admin, creating the admin if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := flags.resolvePassword()
			if err != nil {
				return err
			}
			if err := ensureAdminIndexes(cmd, a); err != nil {
				return err
			}

			if err := a.maintenance.ResetPassword(cmd.Context(), flags.email, flags.name, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password for %s updated.\n", flags.email)
			return nil
		},
	}
	flags.bind(cmd, "")
	return cmd
}

func ensureAdminIndexes(cmd *cobra.Command, a *app) error {
	if err := repository.NewAdminRepo(a.db).EnsureIndexes(cmd.Context()); err != nil {
		return fmt.Errorf("ensure admin indexes: %w", err)
	}
	return nil
}
