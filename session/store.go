package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/crmarques/storectl/faults"
)

const (
	storeVersion     = 1
	keyLengthBytes   = 32
	nonceLengthBytes = 12
	saltLengthBytes  = 16

	defaultKDFTime    = 1
	defaultKDFMemory  = 64 * 1024
	defaultKDFThreads = 4
)

// StoreConfig describes where the session store lives and how its
// encryption key is derived. Exactly one of Passphrase and PassphraseFile
// must be set.
type StoreConfig struct {
	Path           string
	Passphrase     string
	PassphraseFile string
	KDF            *KDFConfig
}

// KDFConfig overrides the argon2id parameters. Zero values keep the
// defaults.
type KDFConfig struct {
	Time    int
	Memory  int
	Threads int
}

// Record is one stored session: the backend token plus the account it
// belongs to.
type Record struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}

// Store keeps session tokens per context in one encrypted file. Tokens are
// sealed with AES-GCM under an argon2id-derived key, and the file is
// replaced atomically on every write.
type Store struct {
	path       string
	passphrase []byte
	kdf        kdfSettings

	mu sync.Mutex
}

type kdfSettings struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

type sealedFile struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

type storeSnapshot struct {
	Sessions map[string]Record `json:"sessions"`
}

func NewStore(cfg StoreConfig) (*Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, validationError("session-store.path is required", nil)
	}

	hasPassphrase := strings.TrimSpace(cfg.Passphrase) != ""
	hasFile := strings.TrimSpace(cfg.PassphraseFile) != ""
	if hasPassphrase == hasFile {
		return nil, validationError("session-store must define exactly one of passphrase and passphrase-file", nil)
	}

	kdf, err := resolveKDFSettings(cfg.KDF)
	if err != nil {
		return nil, err
	}

	store := &Store{
		path: filepath.Clean(path),
		kdf:  kdf,
	}

	if hasPassphrase {
		store.passphrase = []byte(strings.TrimSpace(cfg.Passphrase))
		return store, nil
	}

	data, err := os.ReadFile(strings.TrimSpace(cfg.PassphraseFile))
	if err != nil {
		return nil, validationError("session-store.passphrase-file could not be read", err)
	}
	passphrase := strings.TrimSpace(string(data))
	if passphrase == "" {
		return nil, validationError("session-store.passphrase-file must not be empty", nil)
	}
	store.passphrase = []byte(passphrase)
	return store, nil
}

// Put saves the session for a context, replacing any previous one.
func (s *Store) Put(contextName string, record Record) error {
	name, err := normalizeContextName(contextName)
	if err != nil {
		return err
	}
	if strings.TrimSpace(record.Token) == "" {
		return validationError("session token must not be empty", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.readSnapshotLocked()
	if err != nil {
		return err
	}
	snapshot.Sessions[name] = record
	return s.writeSnapshotLocked(snapshot)
}

// Get returns the stored session for a context.
func (s *Store) Get(contextName string) (Record, error) {
	name, err := normalizeContextName(contextName)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.readSnapshotLocked()
	if err != nil {
		return Record{}, err
	}

	record, found := snapshot.Sessions[name]
	if !found {
		return Record{}, faults.NewTypedError(faults.NotFoundError, "no stored session for context", nil)
	}
	return record, nil
}

// Delete forgets the session for a context. Deleting a context with no
// session is a no-op.
func (s *Store) Delete(contextName string) error {
	name, err := normalizeContextName(contextName)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.readSnapshotLocked()
	if err != nil {
		return err
	}
	if _, found := snapshot.Sessions[name]; !found {
		return nil
	}
	delete(snapshot.Sessions, name)
	return s.writeSnapshotLocked(snapshot)
}

// Contexts lists the context names with a stored session.
func (s *Store) Contexts() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := s.readSnapshotLocked()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(snapshot.Sessions))
	for name := range snapshot.Sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) readSnapshotLocked() (storeSnapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storeSnapshot{Sessions: map[string]Record{}}, nil
		}
		return storeSnapshot{}, internalError("failed to read session store", err)
	}

	var envelope sealedFile
	if err := json.Unmarshal(data, &envelope); err != nil {
		return storeSnapshot{}, internalError("failed to decode session store", err)
	}
	if envelope.Version != storeVersion {
		return storeSnapshot{}, validationError("session store format version is unsupported", nil)
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil {
		return storeSnapshot{}, validationError("session store salt is invalid", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(envelope.Nonce)
	if err != nil {
		return storeSnapshot{}, validationError("session store nonce is invalid", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(envelope.Ciphertext)
	if err != nil {
		return storeSnapshot{}, validationError("session store ciphertext is invalid", err)
	}

	gcm, err := s.cipherMode(salt)
	if err != nil {
		return storeSnapshot{}, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return storeSnapshot{}, faults.NewTypedError(
			faults.AuthError,
			"failed to decrypt session store with the configured passphrase",
			err,
		)
	}

	var snapshot storeSnapshot
	if err := json.Unmarshal(plaintext, &snapshot); err != nil {
		return storeSnapshot{}, internalError("failed to decode decrypted session store", err)
	}
	if snapshot.Sessions == nil {
		snapshot.Sessions = map[string]Record{}
	}
	return snapshot, nil
}

func (s *Store) writeSnapshotLocked(snapshot storeSnapshot) error {
	if snapshot.Sessions == nil {
		snapshot.Sessions = map[string]Record{}
	}

	plaintext, err := json.Marshal(snapshot)
	if err != nil {
		return internalError("failed to encode session snapshot", err)
	}

	salt, err := randomBytes(saltLengthBytes)
	if err != nil {
		return internalError("failed to generate session store salt", err)
	}
	nonce, err := randomBytes(nonceLengthBytes)
	if err != nil {
		return internalError("failed to generate session store nonce", err)
	}

	gcm, err := s.cipherMode(salt)
	if err != nil {
		return err
	}

	envelope := sealedFile{
		Version:    storeVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plaintext, nil)),
	}

	encoded, err := json.Marshal(envelope)
	if err != nil {
		return internalError("failed to encode session store", err)
	}
	return writeAtomicFile(s.path, encoded, 0o600)
}

func (s *Store) cipherMode(salt []byte) (cipher.AEAD, error) {
	if len(salt) == 0 {
		return nil, validationError("session store salt is missing", nil)
	}

	key := argon2.IDKey(s.passphrase, salt, s.kdf.Time, s.kdf.Memory, s.kdf.Threads, keyLengthBytes)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, internalError("failed to initialize session cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, internalError("failed to initialize session cipher mode", err)
	}
	return gcm, nil
}

func resolveKDFSettings(kdf *KDFConfig) (kdfSettings, error) {
	settings := kdfSettings{
		Time:    defaultKDFTime,
		Memory:  defaultKDFMemory,
		Threads: defaultKDFThreads,
	}
	if kdf == nil {
		return settings, nil
	}

	if kdf.Time < 0 || kdf.Memory < 0 || kdf.Threads < 0 {
		return kdfSettings{}, validationError("session-store.kdf values must be non-negative", nil)
	}
	if uint64(kdf.Time) > math.MaxUint32 {
		return kdfSettings{}, validationError("session-store.kdf.time is out of range", nil)
	}
	if uint64(kdf.Memory) > math.MaxUint32 {
		return kdfSettings{}, validationError("session-store.kdf.memory is out of range", nil)
	}
	if kdf.Threads > math.MaxUint8 {
		return kdfSettings{}, validationError("session-store.kdf.threads must be at most 255", nil)
	}
	if kdf.Time > 0 {
		settings.Time = uint32(kdf.Time)
	}
	if kdf.Memory > 0 {
		settings.Memory = uint32(kdf.Memory)
	}
	if kdf.Threads > 0 {
		settings.Threads = uint8(kdf.Threads)
	}
	return settings, nil
}

func normalizeContextName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", validationError("context name must not be empty", nil)
	}
	return trimmed, nil
}

func randomBytes(length int) ([]byte, error) {
	buffer := make([]byte, length)
	if _, err := rand.Read(buffer); err != nil {
		return nil, err
	}
	return buffer, nil
}

func writeAtomicFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return internalError("failed to create session store directory", err)
	}

	tempFile, err := os.CreateTemp(dir, ".storectl-session-*")
	if err != nil {
		return internalError("failed to create temporary session file", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to write temporary session file", err)
	}
	if err := tempFile.Chmod(mode); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return internalError("failed to set session file permissions", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to close temporary session file", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return internalError("failed to replace session store file", err)
	}
	return nil
}
