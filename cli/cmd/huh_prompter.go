package cmd

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// loginForm collects credentials interactively, hiding the password.
func loginForm(stdin io.Reader, stdout io.Writer, email *string) (string, string, error) {
	resolvedEmail := strings.TrimSpace(*email)
	password := ""

	fields := []huh.Field{}
	if resolvedEmail == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Prompt("> ").
			Value(&resolvedEmail).
			Validate(requiredInput("email")))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		Prompt("> ").
		Value(&password).
		EchoMode(huh.EchoModePassword).
		Validate(requiredInput("password")))

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithShowHelp(false).
		WithInput(stdin).
		WithOutput(stdout)
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return strings.TrimSpace(resolvedEmail), password, nil
}

// setupForm collects the fields of a new context configuration.
type setupAnswers struct {
	Name           string
	BaseURL        string
	SessionPath    string
	Passphrase     string
	CatalogBaseDir string
}

func setupForm(stdin io.Reader, stdout io.Writer, initialName string) (setupAnswers, error) {
	answers := setupAnswers{Name: strings.TrimSpace(initialName)}

	fields := []huh.Field{}
	if answers.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Context name").
			Description("A short, unique name for this backend.").
			Prompt("> ").
			Value(&answers.Name).
			Validate(requiredInput("context name")))
	}
	fields = append(fields,
		huh.NewInput().
			Title("Backend base URL").
			Description("For example https://shops.example.com").
			Prompt("> ").
			Value(&answers.BaseURL).
			Validate(requiredInput("base URL")),
		huh.NewInput().
			Title("Session store file").
			Description("Where the encrypted login token is kept. Leave empty to skip persistent sessions.").
			Prompt("> ").
			Value(&answers.SessionPath),
		huh.NewInput().
			Title("Session store passphrase").
			Prompt("> ").
			Value(&answers.Passphrase).
			EchoMode(huh.EchoModePassword),
		huh.NewInput().
			Title("Catalog export directory").
			Description("Leave empty to skip catalog exports.").
			Prompt("> ").
			Value(&answers.CatalogBaseDir),
	)

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithShowHelp(false).
		WithInput(stdin).
		WithOutput(stdout)
	if err := form.Run(); err != nil {
		return setupAnswers{}, err
	}

	answers.Name = strings.TrimSpace(answers.Name)
	answers.BaseURL = strings.TrimSpace(answers.BaseURL)
	answers.SessionPath = strings.TrimSpace(answers.SessionPath)
	answers.CatalogBaseDir = strings.TrimSpace(answers.CatalogBaseDir)
	return answers, nil
}

func requiredInput(label string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}
