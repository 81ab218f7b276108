// Package context manages the named connection contexts of the CLI: a YAML
// catalog of backends under ~/.storectl/config, and the wiring that turns
// the current context into a ready-to-use client and session.
package context

import (
	"errors"
	"time"

	"github.com/crmarques/storectl/api"
	"github.com/crmarques/storectl/config"
	"github.com/crmarques/storectl/session"
)

// Context is one resolved entry of the catalog: its configuration plus the
// client and session manager built from it.
type Context struct {
	Name     string
	Config   *config.ContextConfig
	Client   *api.Client
	Sessions *session.Manager
}

func buildContext(name string, cfg *config.ContextConfig, opts ...api.ClientOption) (Context, error) {
	if cfg == nil {
		return Context{}, errors.New("context configuration is required")
	}
	if err := config.Validate(cfg); err != nil {
		return Context{}, err
	}

	client, err := api.NewClient(api.Config{
		BaseURL:        cfg.Storefront.BaseURL,
		DefaultHeaders: cfg.Storefront.DefaultHeaders,
		SessionCookie:  cfg.Storefront.SessionCookie,
		Timeout:        time.Duration(cfg.Storefront.TimeoutSeconds) * time.Second,
	}, opts...)
	if err != nil {
		return Context{}, err
	}

	var store *session.Store
	if cfg.SessionStore != nil {
		store, err = session.NewStore(sessionStoreConfig(cfg.SessionStore))
		if err != nil {
			return Context{}, err
		}
	}

	return Context{
		Name:     name,
		Config:   cfg,
		Client:   client,
		Sessions: session.NewManager(client, store, name),
	}, nil
}

func sessionStoreConfig(cfg *config.SessionStore) session.StoreConfig {
	storeConfig := session.StoreConfig{
		Path:           cfg.Path,
		Passphrase:     cfg.Passphrase,
		PassphraseFile: cfg.PassphraseFile,
	}
	if cfg.KDF != nil {
		storeConfig.KDF = &session.KDFConfig{
			Time:    cfg.KDF.Time,
			Memory:  cfg.KDF.Memory,
			Threads: cfg.KDF.Threads,
		}
	}
	return storeConfig
}
