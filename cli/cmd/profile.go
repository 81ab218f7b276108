package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crmarques/storectl/binder"
	"github.com/crmarques/storectl/storefront"
)

func newProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		GroupID: groupUserFacing,
		Short:   "View and edit the signed-in account",
	}

	cmd.AddCommand(newProfileShowCommand())
	cmd.AddCommand(newProfileSetCommand())

	return cmd
}

func newProfileShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the profile of the signed-in account",
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

func newProfileSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Update one profile field",
		Long: fmt.Sprintf(
			"Update one profile field and save it immediately.\n\nEditable fields: %v",
			storefront.ProfileKeys(),
		),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !profileKeyEditable(key) {
				return usageError(cmd, fmt.Sprintf("unknown profile field %q", key))
			}

			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}
			user, err := current.Sessions.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}

			bus := newNoticeBus()
			defer flushNotices(cmd, bus)

			// A long debounce plus an immediate flush makes the save
			// synchronous.
			field := binder.NewField(current.Client, storefront.ProfilePath, key,
				binder.WithFieldExtractor(storefront.UserEnvelope),
				binder.WithFieldNotifier(bus),
				binder.WithDebounce(time.Hour),
				binder.WithSavedMessage("Profile saved"),
			)
			defer field.Close()

			field.Seed(user[key])
			field.Set(parseFieldValue(args[1]))

			return resultError(field.Flush())
		},
	}

	return cmd
}

func profileKeyEditable(key string) bool {
	for _, allowed := range storefront.ProfileKeys() {
		if allowed == key {
			return true
		}
	}
	return false
}
