package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	debugGroupAll     = "all"
	debugGroupNetwork = "network"
	debugGroupUpload  = "upload"
	debugGroupCatalog = "catalog"
)

type debugSettings struct {
	enabled bool
	groups  map[string]bool
}

var currentDebug debugSettings

func configureDebugSettings(cmd *cobra.Command) error {
	debugValue, err := cmd.Flags().GetString("debug")
	if err != nil {
		return err
	}

	settings, err := parseDebugSettings(debugValue)
	if err != nil {
		return usageError(cmd, err.Error())
	}
	currentDebug = settings
	return nil
}

func parseDebugSettings(raw string) (debugSettings, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return debugSettings{}, nil
	}

	groups := map[string]bool{}
	for _, entry := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		name := strings.ToLower(strings.TrimSpace(entry))
		if name == "" {
			continue
		}
		if name == debugGroupAll {
			return debugSettings{enabled: true, groups: map[string]bool{
				debugGroupNetwork: true,
				debugGroupUpload:  true,
				debugGroupCatalog: true,
			}}, nil
		}
		switch name {
		case debugGroupNetwork, debugGroupUpload, debugGroupCatalog:
			groups[name] = true
		default:
			return debugSettings{}, fmt.Errorf(
				"unknown debug group %q (available: %s)",
				name,
				strings.Join([]string{debugGroupAll, debugGroupNetwork, debugGroupUpload, debugGroupCatalog}, ", "),
			)
		}
	}
	if len(groups) == 0 {
		return debugSettings{}, nil
	}
	return debugSettings{enabled: true, groups: groups}, nil
}

func debugEnabled(group string) bool {
	return currentDebug.enabled && currentDebug.groups[group]
}

// debugf returns a trace sink for one debug group, or nil when the group is
// not enabled.
func debugf(cmd *cobra.Command, group string) func(format string, args ...any) {
	if !debugEnabled(group) {
		return nil
	}
	return func(format string, args ...any) {
		fmt.Fprintf(cmd.ErrOrStderr(), "[debug][%s] "+format+"\n", append([]any{group}, args...)...)
	}
}
