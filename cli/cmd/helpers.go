package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/binder"
	ctx "github.com/crmarques/storectl/context"
	"github.com/crmarques/storectl/notify"
	"github.com/crmarques/storectl/resource"
	"github.com/crmarques/storectl/storefront"
	"github.com/crmarques/storectl/yamlutil"
)

type handledError struct {
	msg string
}

func (handledError) handledMarker() {}

func (e handledError) Error() string {
	return e.msg
}

type handled interface {
	handledMarker()
}

func IsHandledError(err error) bool {
	if err == nil {
		return false
	}
	var h handled
	return errors.As(err, &h)
}

func newContextManager(cmd *cobra.Command) *ctx.Manager {
	manager := &ctx.Manager{}
	if sink := debugf(cmd, debugGroupNetwork); sink != nil {
		manager.ClientOptions = []api.ClientOption{api.WithDebugf(sink)}
	}
	return manager
}

// loadCurrentContext resolves the current context and restores its stored
// session so commands run authenticated when a login exists.
func loadCurrentContext(cmd *cobra.Command) (ctx.Context, error) {
	current, err := newContextManager(cmd).LoadCurrent()
	if err != nil {
		return ctx.Context{}, err
	}
	if _, err := current.Sessions.Restore(); err != nil {
		return ctx.Context{}, err
	}
	return current, nil
}

func usageError(cmd *cobra.Command, message string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = "invalid command usage"
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())

	return handledError{msg: msg}
}

func successf(cmd *cobra.Command, format string, args ...any) {
	if noStatusOutput {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "[OK] "+format+"\n", args...)
}

func infof(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

// newNoticeBus creates the notice collector commands hand to the data
// bindings. Notices stay until flushed.
func newNoticeBus() *notify.Bus {
	return notify.NewBus()
}

// flushNotices prints collected notices to stderr. Error notices always
// print; the rest respect --no-status.
func flushNotices(cmd *cobra.Command, bus *notify.Bus) {
	defer bus.Close()

	for _, notice := range bus.Notices() {
		switch notice.Type {
		case notify.ErrorNotice:
			fmt.Fprintf(cmd.ErrOrStderr(), "[ERROR] %s\n", notice.Message)
		case notify.SuccessNotice:
			if !noStatusOutput {
				fmt.Fprintf(cmd.ErrOrStderr(), "[OK] %s\n", notice.Message)
			}
		case notify.WarningNotice:
			if !noStatusOutput {
				fmt.Fprintf(cmd.ErrOrStderr(), "[WARN] %s\n", notice.Message)
			}
		default:
			if !noStatusOutput {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", notice.Message)
			}
		}
	}
}

func confirmAction(cmd *cobra.Command, skipPrompt bool, message string) error {
	if skipPrompt {
		return nil
	}
	prompt := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
	confirmed, err := prompt.confirm(message, false)
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
		return handledError{msg: "operation cancelled"}
	}
	return nil
}

// cliConfirmer adapts the terminal prompt to the bindings' confirmation
// hook.
type cliConfirmer struct {
	cmd        *cobra.Command
	skipPrompt bool
	message    string
}

func (c cliConfirmer) Confirm(prompt string) (bool, error) {
	if c.skipPrompt {
		return true, nil
	}
	message := c.message
	if message == "" {
		message = prompt
	}
	confirmed, err := newPrompter(c.cmd.InOrStdin(), c.cmd.ErrOrStderr()).confirm(message, false)
	if err != nil {
		return false, err
	}
	if !confirmed {
		fmt.Fprintln(c.cmd.ErrOrStderr(), "Aborted.")
	}
	return confirmed, nil
}

// fillSlug derives the slug from the name when a create omits it, matching
// what the dashboard does.
func fillSlug(fields resource.Fields) {
	if _, ok := fields["slug"]; ok {
		return
	}
	name, _ := fields["name"].(string)
	if slug := storefront.Slugify(name); slug != "" {
		fields["slug"] = slug
	}
}

// resultError converts a failed binding result into a handled error so the
// message, already flushed as a notice, is not printed twice.
func resultError(result binder.Result) error {
	if result.Err == nil {
		return nil
	}
	return handledError{msg: result.Err.Error()}
}

func resolveOptionalArg(cmd *cobra.Command, value string, args []string, label string) (string, error) {
	if len(args) > 1 {
		return "", usageError(cmd, fmt.Sprintf("expected <%s>", label))
	}
	value = strings.TrimSpace(value)
	if len(args) == 1 {
		arg := strings.TrimSpace(args[0])
		if arg != "" {
			if value != "" && value != arg {
				return "", usageError(cmd, fmt.Sprintf("%s specified twice", label))
			}
			if value == "" {
				value = arg
			}
		}
	}
	return value, nil
}

// parseSetValues turns repeated --set key=value flags into fields. Values
// that parse as JSON scalars keep their type; everything else stays a
// string.
func parseSetValues(pairs []string) (resource.Fields, error) {
	fields := resource.Fields{}
	for _, pair := range pairs {
		key, rawValue, found := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("--set %q must look like key=value", pair)
		}
		fields[key] = parseFieldValue(rawValue)
	}
	return fields, nil
}

func parseFieldValue(raw string) resource.Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		return raw
	}
	switch decoded.(type) {
	case bool, float64, nil:
		return decoded
	}
	return raw
}

// printYAML writes a payload to stdout as indented YAML.
func printYAML(cmd *cobra.Command, value any) error {
	if fields, ok := value.(resource.Fields); ok {
		value = map[string]any(fields)
	}
	data, err := yamlutil.MarshalWithIndent(value, 2)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}
