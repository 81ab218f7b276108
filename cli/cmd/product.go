package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crmarques/storectl/binder"
	"github.com/crmarques/storectl/storefront"
)

func newProductCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "product",
		GroupID: groupUserFacing,
		Short:   "Manage the products of a shop",
	}

	cmd.AddCommand(newProductListCommand())
	cmd.AddCommand(newProductGetCommand())
	cmd.AddCommand(newProductCreateCommand())
	cmd.AddCommand(newProductUpdateCommand())
	cmd.AddCommand(newProductDeleteCommand())

	return cmd
}

func requireShopFlag(cmd *cobra.Command, shopID string) (string, error) {
	if shopID == "" {
		return "", usageError(cmd, "--shop is required")
	}
	return shopID, nil
}

func newProductListCommand() *cobra.Command {
	var shopID string

	cmd := &cobra.Command{
		Use:   "list --shop <shop-id>",
		Short: "List the products of a shop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shopID, err := requireShopFlag(cmd, shopID)
			if err != nil {
				return err
			}
			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}
			value, err := current.Client.Get(cmd.Context(), storefront.ProductsPath(shopID), nil)
			if err != nil {
				return err
			}
			return printYAML(cmd, value)
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the products belong to")
	return cmd
}

func newProductGetCommand() *cobra.Command {
	var shopID, slug string

	cmd := &cobra.Command{
		Use:   "get <product-id> --shop <shop-id>",
		Short: "Show one product, by id or by slug",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shopID, err := requireShopFlag(cmd, shopID)
			if err != nil {
				return err
			}

			path := ""
			switch {
			case slug != "" && len(args) > 0:
				return usageError(cmd, "pass either <product-id> or --slug, not both")
			case slug != "":
				path = storefront.ProductBySlugPath(shopID, slug)
			case len(args) == 1:
				path = storefront.ProductPath(shopID, args[0])
			default:
				return usageError(cmd, "expected <product-id> or --slug")
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

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the product belongs to")
	cmd.Flags().StringVar(&slug, "slug", "", "Look the product up by its public slug")
	return cmd
}

func newProductCreateCommand() *cobra.Command {
	var shopID string
	var setPairs []string

	cmd := &cobra.Command{
		Use:   "create --shop <shop-id> --set name=value [--set ...]",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shopID, err := requireShopFlag(cmd, shopID)
			if err != nil {
				return err
			}
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

			creator := binder.NewCreator(current.Client, storefront.ProductsPath(shopID),
				binder.WithCreateKeys(storefront.ProductKeys()...),
				binder.WithCreateNotifier(bus),
				binder.WithCreatedMessage("Product created"),
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

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop to create the product in")
	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "Field to set, as key=value (repeatable)")
	return cmd
}

func newProductUpdateCommand() *cobra.Command {
	var shopID string
	var setPairs []string

	cmd := &cobra.Command{
		Use:   "update <product-id> --shop <shop-id> --set name=value [--set ...]",
		Short: "Update fields of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shopID, err := requireShopFlag(cmd, shopID)
			if err != nil {
				return err
			}
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

			updater := binder.NewUpdater(current.Client, storefront.ProductPath(shopID, args[0]),
				binder.WithKeys(storefront.ProductKeys()...),
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

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the product belongs to")
	cmd.Flags().StringArrayVar(&setPairs, "set", nil, "Field to set, as key=value (repeatable)")
	return cmd
}

func newProductDeleteCommand() *cobra.Command {
	var shopID string
	var skipPrompt bool

	cmd := &cobra.Command{
		Use:   "delete <product-id> --shop <shop-id>",
		Short: "Delete a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shopID, err := requireShopFlag(cmd, shopID)
			if err != nil {
				return err
			}
			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}

			bus := newNoticeBus()
			defer flushNotices(cmd, bus)

			updater := binder.NewUpdater(current.Client, storefront.ProductPath(shopID, args[0]),
				binder.WithNotifier(bus),
				binder.WithConfirmer(cliConfirmer{
					cmd:        cmd,
					skipPrompt: skipPrompt,
					message:    fmt.Sprintf("Delete product %s?", args[0]),
				}),
				binder.WithDeletedMessage("Product deleted"),
			)
			return resultError(updater.Delete(cmd.Context()))
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the product belongs to")
	cmd.Flags().BoolVarP(&skipPrompt, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
