package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/storectl/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		GroupID: groupUserFacing,
		Short:   "Manage backend contexts",
	}

	cmd.AddCommand(newConfigSetupCommand())
	cmd.AddCommand(newConfigAddContextCommand())
	cmd.AddCommand(newConfigListCommand())
	cmd.AddCommand(newConfigUseCommand())
	cmd.AddCommand(newConfigCurrentCommand())
	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigDeleteCommand())
	cmd.AddCommand(newConfigRenameCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create an empty configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newContextManager(cmd).InitConfig(); err != nil {
				return err
			}
			successf(cmd, "configuration initialized")
			return nil
		},
	}
}

func newConfigSetupCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "setup [name]",
		Short: "Interactively register a backend context",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			initialName := ""
			if len(args) == 1 {
				initialName = args[0]
			}

			answers, err := setupForm(cmd.InOrStdin(), cmd.OutOrStdout(), initialName)
			if err != nil {
				return err
			}

			cfg := &config.ContextConfig{
				Storefront: config.Storefront{BaseURL: answers.BaseURL},
			}
			if answers.SessionPath != "" {
				if answers.Passphrase == "" {
					return usageError(cmd, "a session store needs a passphrase")
				}
				cfg.SessionStore = &config.SessionStore{
					Path:       answers.SessionPath,
					Passphrase: answers.Passphrase,
				}
			}
			if answers.CatalogBaseDir != "" {
				cfg.Catalog = &config.Catalog{BaseDir: answers.CatalogBaseDir}
			}

			manager := newContextManager(cmd)
			if force {
				err = manager.ReplaceContext(answers.Name, cfg)
			} else {
				err = manager.AddContext(answers.Name, cfg)
			}
			if err != nil {
				return err
			}

			successf(cmd, "context %q configured", answers.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace the context if it already exists")
	return cmd
}

func newConfigAddContextCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add-context <name>",
		Short: "Register a context from a YAML configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(file) == "" {
				return usageError(cmd, "--file is required")
			}
			if err := newContextManager(cmd).AddContextFile(args[0], file); err != nil {
				return err
			}
			successf(cmd, "context %q added", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the context configuration YAML")
	return cmd
}

func newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := newContextManager(cmd)
			names, err := manager.ListContexts()
			if err != nil {
				return err
			}
			current, _ := manager.CurrentContextName()

			for _, name := range names {
				if name == current {
					infof(cmd, "* %s (current)", name)
				} else {
					infof(cmd, "  %s", name)
				}
			}
			return nil
		},
	}
}

func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Switch the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newContextManager(cmd).SetCurrentContext(args[0]); err != nil {
				return err
			}
			successf(cmd, "current context is now %q", args[0])
			return nil
		},
	}
}

func newConfigCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current context name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := newContextManager(cmd).CurrentContextName()
			if err != nil {
				return err
			}
			infof(cmd, "%s", current)
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Print a context configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := newContextManager(cmd)

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" {
				current, err := manager.CurrentContextName()
				if err != nil {
					return err
				}
				name = current
			}

			cfg, found, err := manager.GetContextConfig(name)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("context %q not found", name)
			}

			redacted := *cfg
			if redacted.SessionStore != nil && redacted.SessionStore.Passphrase != "" {
				store := *redacted.SessionStore
				store.Passphrase = "********"
				redacted.SessionStore = &store
			}
			return printYAML(cmd, redacted)
		},
	}
}

func newConfigDeleteCommand() *cobra.Command {
	var skipPrompt bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := fmt.Sprintf("Delete context %q?", args[0])
			if err := confirmAction(cmd, skipPrompt, message); err != nil {
				return err
			}
			if err := newContextManager(cmd).DeleteContext(args[0]); err != nil {
				return err
			}
			successf(cmd, "context %q deleted", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&skipPrompt, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newConfigRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <current-name> <new-name>",
		Short: "Rename a context",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := newContextManager(cmd).RenameContext(args[0], args[1]); err != nil {
				return err
			}
			successf(cmd, "context %q renamed to %q", args[0], args[1])
			return nil
		},
	}
}
