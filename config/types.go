package config

// ContextConfig is everything one named context needs: the backend
// connection, where the session token is kept, and optionally a local
// catalog directory for exports.
type ContextConfig struct {
	Storefront   Storefront    `yaml:"storefront"`
	SessionStore *SessionStore `yaml:"session-store,omitempty"`
	Catalog      *Catalog      `yaml:"catalog,omitempty"`
}

type Storefront struct {
	BaseURL        string            `yaml:"base-url"`
	DefaultHeaders map[string]string `yaml:"default-headers,omitempty"`
	SessionCookie  string            `yaml:"session-cookie,omitempty"`
	TimeoutSeconds int               `yaml:"timeout-seconds,omitempty"`
}

type SessionStore struct {
	Path           string `yaml:"path"`
	Passphrase     string `yaml:"passphrase,omitempty"`
	PassphraseFile string `yaml:"passphrase-file,omitempty"`
	KDF            *KDF   `yaml:"kdf,omitempty"`
}

type KDF struct {
	Time    int `yaml:"time,omitempty"`
	Memory  int `yaml:"memory,omitempty"`
	Threads int `yaml:"threads,omitempty"`
}

type Catalog struct {
	BaseDir string      `yaml:"base-dir"`
	Git     *CatalogGit `yaml:"git,omitempty"`
}

// CatalogGit enables committing catalog exports to a local git repository.
type CatalogGit struct {
	AutoCommit  bool   `yaml:"auto-commit,omitempty"`
	AuthorName  string `yaml:"author-name,omitempty"`
	AuthorEmail string `yaml:"author-email,omitempty"`
}
