package cmd

import (
	"github.com/spf13/cobra"
)

func newAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "auth",
		GroupID: groupUserFacing,
		Short:   "Sign in and out of the current backend",
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthLogoutCommand())
	cmd.AddCommand(newAuthWhoamiCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the current backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}

			resolvedEmail, password, err := loginForm(cmd.InOrStdin(), cmd.OutOrStdout(), &email)
			if err != nil {
				return err
			}

			user, err := current.Sessions.Login(cmd.Context(), resolvedEmail, password)
			if err != nil {
				return err
			}

			if display, ok := user["display_name"].(string); ok && display != "" {
				successf(cmd, "signed in as %s", display)
			} else {
				successf(cmd, "signed in as %s", resolvedEmail)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email (prompted when omitted)")
	return cmd
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}
			if err := current.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			successf(cmd, "signed out")
			return nil
		},
	}
}

func newAuthWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}
			user, err := current.Sessions.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return printYAML(cmd, user)
		},
	}
}
