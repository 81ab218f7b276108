package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	noStatusOutput bool
)

var rootCmd = newRootCommand()

const (
	groupUtility    = "utility"
	groupUserFacing = "user"
)

func Execute() error {
	// Pre-scan so status suppression also covers output written before
	// cobra has parsed the flags.
	if shouldSuppressStatusMessage(os.Args[1:]) {
		noStatusOutput = true
	}
	return rootCmd.Execute()
}

func shouldSuppressStatusMessage(args []string) bool {
	flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)

	var noStatus bool
	flags.BoolVar(&noStatus, "no-status", false, "hide status output")
	if err := flags.Parse(args); err != nil {
		return false
	}
	return noStatus
}

func NewRootCommand() *cobra.Command {
	return newRootCommand()
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storectl",
		Short: "Manage storefronts, products, and product images from the terminal",
		Long: `storectl talks to the storefront backend the same way the web dashboard does.

Use the CLI to:
  - configure contexts for the backends you manage and switch between them
  - sign in and inspect the active account
  - create, edit, and delete shops and their products
  - upload, reorder, and remove product images
  - export a shop's catalog to a local YAML tree`,
		Example: `  # Register a backend and sign in
  storectl config setup
  storectl auth login

  # Edit a product and save only the changed fields
  storectl product update 12 --shop 5 --set base_price=14.50

  # Upload two images and move the second one to the front
  storectl image upload --shop 5 --product 12 front.png back.png
  storectl image reorder --shop 5 --product 12 --move 1:0`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetHelpCommandGroupID(groupUtility)
	cmd.SetCompletionCommandGroupID(groupUtility)

	cmd.PersistentFlags().BoolVar(&noStatusOutput, "no-status", false, "Suppress status messages and print only command output")
	cmd.PersistentFlags().String("debug", "", "Print grouped debug information (groups: network, upload, catalog, all)")
	cmd.PersistentFlags().Lookup("debug").NoOptDefVal = debugGroupAll

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if err == nil {
			return nil
		}
		return usageError(cmd, err.Error())
	})

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return configureDebugSettings(cmd)
	}

	cmd.AddGroup(&cobra.Group{ID: groupUserFacing, Title: "Commands:"})
	cmd.AddGroup(&cobra.Group{ID: groupUtility, Title: "Utility Commands:"})

	cmd.AddCommand(newConfigCommand())
	cmd.AddCommand(newAuthCommand())
	cmd.AddCommand(newShopCommand())
	cmd.AddCommand(newProductCommand())
	cmd.AddCommand(newImageCommand())
	cmd.AddCommand(newProfileCommand())
	cmd.AddCommand(newCatalogCommand())
	cmd.AddCommand(newVersionCommand())

	return cmd
}
