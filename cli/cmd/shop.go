package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crmarques/storectl/binder"
	"github.com/crmarques/storectl/storefront"
)

func newShopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shop",
		GroupID: groupUserFacing,
		Short:   "Manage shops",
	}

	cmd.AddCommand(newShopListCommand())
	cmd.AddCommand(newShopGetCommand())
	cmd.AddCommand(newShopCreateCommand())
	cmd.AddCommand(newShopUpdateCommand())
	cmd.AddCommand(newShopDeleteCommand())

	return cmd
}

func newShopListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the shops of the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}
			value, err := current.Client.Get(cmd.Context(), storefront.ShopsPath, nil)
			if err != nil {
				return err
			}
			return printYAML(cmd, value)
		},
	}
}

func newShopGetCommand() *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:   "get <shop-id>",
		Short: "Show one shop, by id or by slug",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			switch {
			case slug != "" && len(args) > 0:
				return usageError(cmd, "pass either <shop-id> or --slug, not both")
			case slug != "":
				path = storefront.ShopBySlugPath(slug)
			case len(args) == 1:
				path = storefront.ShopPath(args[0])
			default:
				return usageError(cmd, "expected <shop-id> or --slug")
			}

			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}
			value, err := current.Client.Get(cmd.Context(), path, nil)
			if err != nil {
				return err
			}
			return printYAML(cmd, value)
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Look the shop up by its public slug")
	return cmd
}

func newShopCreateCommand() *cobra.Command {
	var setPairs []string

	cmd := &cobra.Command{
		Use:   "create --set name=value [--set ...]",
		Short: "Create a shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseSetValues(setPairs)
			if err != nil {
				return usageError(cmd, err.Error())
			}
			if len(fields) == 0 {
				return usageError(cmd, "at least one --set key=value is required")
			}
			fillSlug(fields)

			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}

			bus := newNoticeBus()
			defer flushNotices(cmd, bus)

			creator := binder.NewCreator(current.Client, storefront.ShopsPath,
				binder.WithCreateKeys(storefront.ShopKeys()...),
				binder.WithCreateNotifier(bus),
				binder.WithCreatedMessage("Shop created"),
			)
			for key, value := range fields {
				creator.SetField(key, value)
			}

			created, result := creator.Create(cmd.Context())
			if result.Err != nil {
				return resultError(result)
			}
			return printYAML(cmd, created)
		},
	}

	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "Field to set, as key=value (repeatable)")
	return cmd
}

func newShopUpdateCommand() *cobra.Command {
	var setPairs []string

	cmd := &cobra.Command{
		Use:   "update <shop-id> --set name=value [--set ...]",
		Short: "Update fields of a shop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseSetValues(setPairs)
			if err != nil {
				return usageError(cmd, err.Error())
			}
			if len(fields) == 0 {
				return usageError(cmd, "at least one --set key=value is required")
			}

			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}

			bus := newNoticeBus()
			defer flushNotices(cmd, bus)

			updater := binder.NewUpdater(current.Client, storefront.ShopPath(args[0]),
				binder.WithKeys(storefront.ShopKeys()...),
				binder.WithNotifier(bus),
			)
			if err := updater.Load(cmd.Context()); err != nil {
				return err
			}
			for key, value := range fields {
				updater.SetField(key, value)
			}

			if result := updater.Save(cmd.Context()); result.Err != nil {
				return resultError(result)
			}
			return printYAML(cmd, updater.Data())
		},
	}

	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "Field to set, as key=value (repeatable)")
	return cmd
}

func newShopDeleteCommand() *cobra.Command {
	var skipPrompt bool

	cmd := &cobra.Command{
		Use:   "delete <shop-id>",
		Short: "Delete a shop and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}

			bus := newNoticeBus()
			defer flushNotices(cmd, bus)

			updater := binder.NewUpdater(current.Client, storefront.ShopPath(args[0]),
				binder.WithNotifier(bus),
				binder.WithConfirmer(cliConfirmer{
					cmd:        cmd,
					skipPrompt: skipPrompt,
					message:    fmt.Sprintf("Delete shop %s? This also removes its products and images.", args[0]),
				}),
				binder.WithDeletedMessage("Shop deleted"),
			)
			return resultError(updater.Delete(cmd.Context()))
		},
	}

	cmd.Flags().BoolVarP(&skipPrompt, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
