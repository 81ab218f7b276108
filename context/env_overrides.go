package context

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/crmarques/storectl/config"
)

const (
	contextEnvPrefix  = "STORECTL_CTX_"
	contextEnvNameVar = contextEnvPrefix + "NAME"
)

// Environment overrides let CI jobs point a stored context at a different
// backend or passphrase without editing the catalog file. Each variable is
// STORECTL_CTX_ plus the upper-cased setting path with dots replaced by
// double underscores, e.g. STORECTL_CTX_STOREFRONT__BASE_URL.
var contextEnvSetters = map[string]func(*config.ContextConfig, string) error{
	"storefront.base_url":           setStorefrontBaseURL,
	"storefront.session_cookie":     setStorefrontSessionCookie,
	"storefront.timeout_seconds":    setStorefrontTimeoutSeconds,
	"storefront.default_headers":    setStorefrontDefaultHeaders,
	"session_store.path":            setSessionStorePath,
	"session_store.passphrase":      setSessionStorePassphrase,
	"session_store.passphrase_file": setSessionStorePassphraseFile,
	"catalog.base_dir":              setCatalogBaseDir,
}

func envContextName() (string, bool) {
	value, ok := os.LookupEnv(contextEnvNameVar)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

func applyEnvOverrides(cfg *config.ContextConfig) error {
	for _, entry := range os.Environ() {
		name, value, found := strings.Cut(entry, "=")
		if !found || !strings.HasPrefix(name, contextEnvPrefix) || name == contextEnvNameVar {
			continue
		}

		settingPath := envVarToSettingPath(name)
		setter, known := contextEnvSetters[settingPath]
		if !known {
			return fmt.Errorf("unknown context override variable %s", name)
		}
		if err := setter(cfg, value); err != nil {
			return fmt.Errorf("invalid value for %s: %w", name, err)
		}
	}
	return nil
}

func envVarToSettingPath(name string) string {
	path := strings.TrimPrefix(name, contextEnvPrefix)
	path = strings.ToLower(path)
	return strings.ReplaceAll(path, "__", ".")
}

func setStorefrontBaseURL(cfg *config.ContextConfig, value string) error {
	cfg.Storefront.BaseURL = strings.TrimSpace(value)
	return nil
}

func setStorefrontSessionCookie(cfg *config.ContextConfig, value string) error {
	cfg.Storefront.SessionCookie = strings.TrimSpace(value)
	return nil
}

func setStorefrontTimeoutSeconds(cfg *config.ContextConfig, value string) error {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	cfg.Storefront.TimeoutSeconds = seconds
	return nil
}

// setStorefrontDefaultHeaders parses "Header:value,Other:value" pairs.
func setStorefrontDefaultHeaders(cfg *config.ContextConfig, value string) error {
	headers := map[string]string{}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, headerValue, found := strings.Cut(pair, ":")
		if !found || strings.TrimSpace(name) == "" {
			return fmt.Errorf("header pair %q must look like Name:value", pair)
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(headerValue)
	}
	if len(headers) > 0 {
		cfg.Storefront.DefaultHeaders = headers
	}
	return nil
}

func setSessionStorePath(cfg *config.ContextConfig, value string) error {
	ensureSessionStore(cfg).Path = strings.TrimSpace(value)
	return nil
}

func setSessionStorePassphrase(cfg *config.ContextConfig, value string) error {
	store := ensureSessionStore(cfg)
	store.Passphrase = strings.TrimSpace(value)
	store.PassphraseFile = ""
	return nil
}

func setSessionStorePassphraseFile(cfg *config.ContextConfig, value string) error {
	store := ensureSessionStore(cfg)
	store.PassphraseFile = strings.TrimSpace(value)
	store.Passphrase = ""
	return nil
}

func setCatalogBaseDir(cfg *config.ContextConfig, value string) error {
	if cfg.Catalog == nil {
		cfg.Catalog = &config.Catalog{}
	}
	cfg.Catalog.BaseDir = strings.TrimSpace(value)
	return nil
}

func ensureSessionStore(cfg *config.ContextConfig) *config.SessionStore {
	if cfg.SessionStore == nil {
		cfg.SessionStore = &config.SessionStore{}
	}
	return cfg.SessionStore
}
