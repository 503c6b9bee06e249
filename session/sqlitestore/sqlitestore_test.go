package sqlitestore_test

import (
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-leads-client/session"
	"github.com/jrsteele09/go-leads-client/session/sqlitestore"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := sqlitestore.Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(session.KeyAccessToken, "first"))
	require.NoError(t, s.Set(session.KeyAccessToken, "second"))

	v, ok, err := s.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", v)

	require.NoError(t, s.Delete(session.KeyAccessToken, session.KeyRefreshToken, session.KeyTokenExpiration))
	_, ok, err = s.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSQLiteStore_DetectCorruption(t *testing.T) {
	s, err := sqlitestore.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(session.KeyAccessToken, "abc"))
	require.NoError(t, s.Set(session.KeyTokenExpiration, "12abc"))

	m := session.NewManager(s)
	require.True(t, m.DetectCorruption())
	_, ok, err := s.Get(session.KeyAccessToken)
	require.NoError(t, err)
	require.False(t, ok)
}
