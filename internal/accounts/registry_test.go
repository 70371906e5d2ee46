package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/model"
)

func TestCreate(t *testing.T) {
	reg := NewRegistry()

	acct, err := reg.Create(CreateParams{Code: "1200", Name: "Bank", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	assert.NotEmpty(t, acct.ID)
	assert.Equal(t, "1200", acct.Code)
	assert.True(t, acct.Active)
	assert.False(t, acct.CreatedAt.IsZero())
}

func TestCreate_DuplicateCode(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Create(CreateParams{Code: "1200", Name: "Bank", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	_, err = reg.Create(CreateParams{Code: "1200", Name: "Other bank", Type: model.AccountTypeAsset})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindDuplicateCode))
}

func TestCreate_Validation(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name   string
		params CreateParams
	}{
		{"code too short", CreateParams{Code: "12", Name: "Bank", Type: model.AccountTypeAsset}},
		{"code too long", CreateParams{Code: "12345678901", Name: "Bank", Type: model.AccountTypeAsset}},
		{"empty name", CreateParams{Code: "1200", Name: "  ", Type: model.AccountTypeAsset}},
		{"bad type", CreateParams{Code: "1200", Name: "Bank", Type: "thing"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Create(tt.params)
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestGetByCode(t *testing.T) {
	reg := NewRegistry()
	created, err := reg.Create(CreateParams{Code: "8400", Name: "Erlöse 19% USt", Type: model.AccountTypeRevenue, TaxKeyCode: "UST19"})
	require.NoError(t, err)

	acct, err := reg.GetByCode("8400")
	require.NoError(t, err)
	assert.Equal(t, created.ID, acct.ID)
	assert.Equal(t, "UST19", acct.TaxKeyCode)

	_, err = reg.GetByCode("9999")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnknownAccount))
}

func TestResolve_InactiveAccount(t *testing.T) {
	reg := NewRegistry()
	acct, err := reg.Create(CreateParams{Code: "1200", Name: "Bank", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	_, ok := reg.Resolve(acct.ID)
	assert.True(t, ok)

	require.NoError(t, reg.Deactivate(acct.ID))

	_, ok = reg.Resolve(acct.ID)
	assert.False(t, ok, "inactive accounts must not resolve for posting")

	// Get still works for historical display.
	got, err := reg.Get(acct.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestDeactivate_Twice(t *testing.T) {
	reg := NewRegistry()
	acct, err := reg.Create(CreateParams{Code: "1200", Name: "Bank", Type: model.AccountTypeAsset})
	require.NoError(t, err)

	require.NoError(t, reg.Deactivate(acct.ID))
	err = reg.Deactivate(acct.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestList_CodeOrder(t *testing.T) {
	reg := NewRegistry()
	for _, code := range []string{"8400", "1200", "4900"} {
		_, err := reg.Create(CreateParams{Code: code, Name: "Konto " + code, Type: model.AccountTypeAsset})
		require.NoError(t, err)
	}

	accts := reg.List("")
	require.Len(t, accts, 3)
	assert.Equal(t, "1200", accts[0].Code)
	assert.Equal(t, "4900", accts[1].Code)
	assert.Equal(t, "8400", accts[2].Code)
}

func TestList_FilterByType(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Create(CreateParams{Code: "1200", Name: "Bank", Type: model.AccountTypeAsset})
	require.NoError(t, err)
	_, err = reg.Create(CreateParams{Code: "8400", Name: "Erlöse", Type: model.AccountTypeRevenue})
	require.NoError(t, err)

	revenues := reg.List(model.AccountTypeRevenue)
	require.Len(t, revenues, 1)
	assert.Equal(t, "8400", revenues[0].Code)
}

func TestDefaultChart(t *testing.T) {
	reg := NewRegistry()
	for _, params := range DefaultChart() {
		_, err := reg.Create(params)
		require.NoError(t, err)
	}

	bank, err := reg.GetByCode("1200")
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeAsset, bank.Type)

	vorsteuer, err := reg.GetByCode("1576")
	require.NoError(t, err)
	assert.Equal(t, "VST19", vorsteuer.TaxKeyCode)

	umsatzsteuer, err := reg.GetByCode("1776")
	require.NoError(t, err)
	assert.Equal(t, model.AccountTypeLiability, umsatzsteuer.Type)
}
