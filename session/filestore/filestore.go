// Package filestore persists the session slot as a JSON file, optionally
// sealed with XChaCha20-Poly1305 under an Argon2id passphrase key.
package filestore

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-leads-client/session"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	saltSize    = 16
	argonTime   = 1
	argonMemory = 64 * 1024
	argonLanes  = 4
)

var ErrDecrypt = errors.New("session file could not be decrypted")

var _ session.Store = (*FileStore)(nil)

// FileStore derives the passphrase key once per salt. The salt is kept
// across writes; each write gets a fresh nonce.
type FileStore struct {
	path       string
	passphrase []byte
	deriveKey  func(passphrase, salt []byte) []byte
	salt       []byte
	key        []byte
	lock       sync.Mutex
}

type sealedFile struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	Data  []byte `json:"data"`
}

type Option func(*FileStore)

// WithPassphrase encrypts the file at rest.
func WithPassphrase(passphrase string) Option {
	return func(f *FileStore) {
		if passphrase != "" {
			f.passphrase = []byte(passphrase)
		}
	}
}

func New(path string, options ...Option) *FileStore {
	f := &FileStore{path: path, deriveKey: deriveKey}
	for _, opt := range options {
		opt(f)
	}
	return f
}

func (f *FileStore) Get(key string) (string, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStore) Set(key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil {
		return err
	}
	values[key] = value
	return f.save(values)
}

func (f *FileStore) Delete(keys ...string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.load()
	if err != nil && !errors.Is(err, ErrDecrypt) {
		return err
	}
	if values == nil {
		// Unreadable content is replaced so a logout always succeeds.
		values = make(map[string]string)
	}
	for _, k := range keys {
		delete(values, k)
	}
	return f.save(values)
}

func (f *FileStore) load() (map[string]string, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "FileStore.load ReadFile")
	}

	if f.passphrase != nil {
		if raw, err = f.open(raw); err != nil {
			return nil, err
		}
	}

	values := make(map[string]string)
	if len(raw) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, errors.Wrap(err, "FileStore.load Unmarshal")
	}
	return values, nil
}

func (f *FileStore) save(values map[string]string) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, "FileStore.save Marshal")
	}

	if f.passphrase != nil {
		if raw, err = f.seal(raw); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "FileStore.save MkdirAll")
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return errors.Wrap(err, "FileStore.save CreateTemp")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileStore.save Write")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "FileStore.save Chmod")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "FileStore.save Close")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "FileStore.save Rename")
}

func (f *FileStore) seal(plaintext []byte) ([]byte, error) {
	salt := f.salt
	if salt == nil {
		salt = make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, errors.Wrap(err, "FileStore.seal rand.Read salt")
		}
	}
	aead, err := chacha20poly1305.NewX(f.keyFor(salt))
	if err != nil {
		return nil, errors.Wrap(err, "FileStore.seal NewX")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, errors.Wrap(err, "FileStore.seal rand.Read nonce")
	}

	return json.Marshal(sealedFile{
		Salt:  salt,
		Nonce: nonce,
		Data:  aead.Seal(nil, nonce, plaintext, nil),
	})
}

func (f *FileStore) open(raw []byte) ([]byte, error) {
	var sf sealedFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return nil, errors.Wrap(ErrDecrypt, err.Error())
	}
	if len(sf.Salt) != saltSize {
		return nil, ErrDecrypt
	}
	aead, err := chacha20poly1305.NewX(f.keyFor(sf.Salt))
	if err != nil {
		return nil, errors.Wrap(err, "FileStore.open NewX")
	}
	if len(sf.Nonce) != aead.NonceSize() {
		return nil, ErrDecrypt
	}
	plaintext, err := aead.Open(nil, sf.Nonce, sf.Data, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// keyFor returns the cached key when salt matches the last one seen.
func (f *FileStore) keyFor(salt []byte) []byte {
	if f.key != nil && bytes.Equal(salt, f.salt) {
		return f.key
	}
	f.salt = append([]byte(nil), salt...)
	f.key = f.deriveKey(f.passphrase, salt)
	return f.key
}

func deriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonLanes, chacha20poly1305.KeySize)
}
