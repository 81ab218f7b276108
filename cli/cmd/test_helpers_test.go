package cmd_test

import (
	"fmt"
	"os"
	"testing"

	cli "github.com/crmarques/storectl/cli/cmd"
	ctx "github.com/crmarques/storectl/context"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	return cli.NewRootCommand()
}

func findCommand(t *testing.T, root *cobra.Command, args ...string) *cobra.Command {
	t.Helper()
	found, _, err := root.Find(args)
	if err != nil {
		t.Fatalf("find %v: %v", args, err)
	}
	return found
}

func setTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("STORECTL_CONFIG_DIR", "")
	t.Setenv("STORECTL_CONFIG_FILE", "")
	return home
}

func writeContextConfig(t *testing.T, path, baseURL string) {
	t.Helper()
	content := fmt.Sprintf("storefront:\n  base-url: %s\n", baseURL)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write context config: %v", err)
	}
}

func addContext(t *testing.T, name, contextPath string) {
	t.Helper()
	manager := &ctx.Manager{}
	if err := manager.AddContextFile(name, contextPath); err != nil {
		t.Fatalf("AddContextFile: %v", err)
	}
}
