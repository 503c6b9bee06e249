package filestore_test

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jrsteele09/go-leads-client/session"
	"github.com/jrsteele09/go-leads-client/session/filestore"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs := filestore.New(path)

	_, ok, err := fs.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, fs.Set(session.KeyAccessToken, "abc"))
	require.NoError(t, fs.Set(session.KeyTokenExpiration, "1700000000000"))

	v, ok, err := filestore.New(path).Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "abc", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, fs.Delete(session.KeyAccessToken, session.KeyRefreshToken))
	_, ok, err = fs.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = fs.Get(session.KeyTokenExpiration)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestFileStore_Encrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fs := filestore.New(path, filestore.WithPassphrase("correct horse"))

	require.NoError(t, fs.Set(session.KeyAccessToken, "secret-token"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-token")

	v, ok, err := filestore.New(path, filestore.WithPassphrase("correct horse")).Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "secret-token", v)

	wrong := filestore.New(path, filestore.WithPassphrase("battery staple"))
	_, _, err = wrong.Get(session.KeyAccessToken)
	require.ErrorIs(t, err, filestore.ErrDecrypt)

	// Logout must still work when the file cannot be opened.
	require.NoError(t, wrong.Delete(session.KeyAccessToken))
	_, ok, err = wrong.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileStore_BacksManager(t *testing.T) {
	m := session.NewManager(filestore.New(filepath.Join(t.TempDir(), "session.json")))
	m.Store(session.TokenPayload{AccessToken: "abc", ExpiresIn: 3600, RefreshToken: "r"})
	require.True(t, m.IsValid())

	m.Clear()
	_, ok := m.Current()
	require.False(t, ok)
}

func countingKeys(n *atomic.Int32) filestore.Option {
	return filestore.WithKeyDerivation(func(passphrase, salt []byte) []byte {
		n.Add(1)
		return filestore.DeriveKey(passphrase, salt)
	})
}

func TestFileStore_DerivesKeyOncePerSalt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	var writes atomic.Int32
	m := session.NewManager(filestore.New(path, filestore.WithPassphrase("correct horse"), countingKeys(&writes)))
	m.Store(session.TokenPayload{AccessToken: "abc", ExpiresIn: 3600, RefreshToken: "r"})
	require.True(t, m.IsValid())
	tok, err := m.Token()
	require.NoError(t, err)
	require.Equal(t, "abc", tok.AccessToken)
	require.Equal(t, int32(1), writes.Load())

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	// A second process reading the same file derives once for its salt.
	var reads atomic.Int32
	other := session.NewManager(filestore.New(path, filestore.WithPassphrase("correct horse"), countingKeys(&reads)))
	require.True(t, other.IsValid())
	other.StoreAccessToken("def")
	current, ok := other.Current()
	require.True(t, ok)
	require.Equal(t, "def", current)
	require.Equal(t, int32(1), reads.Load())

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
