package cmd

import (
	"github.com/spf13/cobra"

	"github.com/crmarques/storectl/catalog"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		GroupID: groupUserFacing,
		Short:   "Export shop catalogs to a local YAML tree",
	}

	cmd.AddCommand(newCatalogExportCommand())

	return cmd
}

func newCatalogExportCommand() *cobra.Command {
	var shopID string

	cmd := &cobra.Command{
		Use:   "export --shop <shop-id>",
		Short: "Export a shop and its products to the catalog directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if shopID == "" {
				return usageError(cmd, "--shop is required")
			}

			current, err := loadCurrentContext(cmd)
			if err != nil {
				return err
			}
			if current.Config.Catalog == nil {
				return usageError(cmd, "the current context has no catalog section; add one with catalog.base-dir")
			}

			var gitOptions *catalog.GitOptions
			if git := current.Config.Catalog.Git; git != nil && git.AutoCommit {
				gitOptions = &catalog.GitOptions{
					AuthorName:  git.AuthorName,
					AuthorEmail: git.AuthorEmail,
				}
			}

			exporter, err := catalog.NewExporter(current.Client, current.Config.Catalog.BaseDir, gitOptions)
			if err != nil {
				return err
			}

			trace := debugf(cmd, debugGroupCatalog)
			if trace != nil {
				trace("exporting shop %s to %s", shopID, current.Config.Catalog.BaseDir)
			}

			written, err := exporter.ExportShop(cmd.Context(), shopID)
			if err != nil {
				return err
			}

			successf(cmd, "exported shop %s (%d files)", shopID, written)
			return nil
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop to export")
	return cmd
}
