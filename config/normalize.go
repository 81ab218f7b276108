package config

import (
	"errors"
	"strings"
)

// Normalize trims user-provided strings and drops empty optional sections so
// two configs that mean the same thing compare and serialize the same way.
func Normalize(cfg *ContextConfig) *ContextConfig {
	if cfg == nil {
		return &ContextConfig{}
	}

	cfg.Storefront.BaseURL = strings.TrimSpace(cfg.Storefront.BaseURL)
	cfg.Storefront.SessionCookie = strings.TrimSpace(cfg.Storefront.SessionCookie)
	if len(cfg.Storefront.DefaultHeaders) > 0 {
		headers := make(map[string]string, len(cfg.Storefront.DefaultHeaders))
		for key, value := range cfg.Storefront.DefaultHeaders {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			headers[key] = strings.TrimSpace(value)
		}
		if len(headers) == 0 {
			headers = nil
		}
		cfg.Storefront.DefaultHeaders = headers
	}

	if cfg.SessionStore != nil {
		cfg.SessionStore.Path = strings.TrimSpace(cfg.SessionStore.Path)
		cfg.SessionStore.Passphrase = strings.TrimSpace(cfg.SessionStore.Passphrase)
		cfg.SessionStore.PassphraseFile = strings.TrimSpace(cfg.SessionStore.PassphraseFile)
		if *cfg.SessionStore == (SessionStore{}) {
			cfg.SessionStore = nil
		}
	}

	if cfg.Catalog != nil {
		cfg.Catalog.BaseDir = strings.TrimSpace(cfg.Catalog.BaseDir)
		if cfg.Catalog.Git != nil {
			cfg.Catalog.Git.AuthorName = strings.TrimSpace(cfg.Catalog.Git.AuthorName)
			cfg.Catalog.Git.AuthorEmail = strings.TrimSpace(cfg.Catalog.Git.AuthorEmail)
		}
		if cfg.Catalog.BaseDir == "" && cfg.Catalog.Git == nil {
			cfg.Catalog = nil
		}
	}

	return cfg
}

// Validate reports the first problem that would keep the context from being
// usable.
func Validate(cfg *ContextConfig) error {
	if cfg == nil {
		return errors.New("context configuration is required")
	}
	if cfg.Storefront.BaseURL == "" {
		return errors.New("storefront.base-url is required")
	}
	if cfg.Storefront.TimeoutSeconds < 0 {
		return errors.New("storefront.timeout-seconds must not be negative")
	}

	if store := cfg.SessionStore; store != nil {
		if store.Path == "" {
			return errors.New("session-store.path is required")
		}
		hasPassphrase := store.Passphrase != ""
		hasFile := store.PassphraseFile != ""
		if hasPassphrase == hasFile {
			return errors.New("session-store must define exactly one of passphrase and passphrase-file")
		}
	}

	if catalog := cfg.Catalog; catalog != nil && catalog.BaseDir == "" {
		return errors.New("catalog.base-dir is required when a catalog is configured")
	}

	return nil
}
