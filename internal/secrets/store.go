// Package secrets keeps the session tokens on disk between runs.
package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/budgetbook/budgetbook/internal/api"
)

// per-user token file (0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but avoids plain-text tokens.

const fileName = "tokens.json"

type tokenFile struct {
	Access  string `json:"access_token,omitempty"`  // base64(ciphertext)
	Refresh string `json:"refresh_token,omitempty"` // base64(ciphertext)
}

// FileStore implements api.TokenStore on an encrypted file. Reads are served
// from memory after the first load.
type FileStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	cached api.Tokens
}

// DefaultPath is <UserConfigDir>/budgetbook/tokens.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "budgetbook", fileName), nil
}

// NewFileStore stores tokens at path; an empty path means DefaultPath.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &FileStore{path: path}, nil
}

// Path reports where tokens are written.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Tokens() (api.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cached, nil
	}
	t, err := s.read()
	if err != nil {
		return api.Tokens{}, err
	}
	s.cached, s.loaded = t, true
	return t, nil
}

func (s *FileStore) SaveTokens(t api.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(t); err != nil {
		return err
	}
	s.cached, s.loaded = t, true
	return nil
}

// Clear forgets both tokens and removes the file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached, s.loaded = api.Tokens{}, true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

func (s *FileStore) read() (api.Tokens, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return api.Tokens{}, nil
		}
		return api.Tokens{}, err
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return api.Tokens{}, fmt.Errorf("decode token file: %w", err)
	}
	access, err := open(tf.Access)
	if err != nil {
		return api.Tokens{}, fmt.Errorf("access token: %w", err)
	}
	refresh, err := open(tf.Refresh)
	if err != nil {
		return api.Tokens{}, fmt.Errorf("refresh token: %w", err)
	}
	return api.Tokens{Access: access, Refresh: refresh}, nil
}

func (s *FileStore) write(t api.Tokens) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil { // restrict directory
		return err
	}
	var tf tokenFile
	var err error
	if tf.Access, err = seal(t.Access); err != nil {
		return err
	}
	if tf.Refresh, err = seal(t.Refresh); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	ct, err := encrypt([]byte(plain))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

func open(enc string) (string, error) {
	if enc == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", err
	}
	return string(pt), nil
}

func masterKey() []byte {
	base := fmt.Sprintf("budgetbook-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

var _ api.TokenStore = (*FileStore)(nil)
