package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontor-dev/kontor/internal/model"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	reg := NewRegistry()
	for _, params := range DefaultChart() {
		_, err := reg.Create(params)
		require.NoError(t, err)
	}
	require.NoError(t, reg.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)

	want := reg.List("")
	got := loaded.List("")
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].Code, got[i].Code)
		assert.Equal(t, want[i].Type, got[i].Type)
		assert.Equal(t, want[i].TaxKeyCode, got[i].TaxKeyCode)
		assert.Equal(t, want[i].Active, got[i].Active)
	}
}

func TestSave_InactivePreserved(t *testing.T) {
	dir := t.TempDir()

	reg := NewRegistry()
	acct, err := reg.Create(CreateParams{Code: "1200", Name: "Bank", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	require.NoError(t, reg.Deactivate(acct.ID))
	require.NoError(t, reg.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)

	got, err := loaded.Get(acct.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, ok := loaded.Resolve(acct.ID)
	assert.False(t, ok)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestSave_WritesHeader(t *testing.T) {
	dir := t.TempDir()

	reg := NewRegistry()
	_, err := reg.Create(CreateParams{Code: "1200", Name: "Bank", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	require.NoError(t, reg.Save(dir))

	data, err := os.ReadFile(filepath.Join(dir, "accounts", "chart-of-accounts.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), Header)
}

func TestUnmarshalAccount_BadType(t *testing.T) {
	_, err := UnmarshalAccount([]string{"id-1", "1200", "Bank", "mystery", "", "true", "2025-01-01T00:00:00Z"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown account type")
}

func TestUnmarshalAccount_WrongFieldCount(t *testing.T) {
	_, err := UnmarshalAccount([]string{"id-1", "1200"})
	require.Error(t, err)
}
