package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kontor-dev/kontor/internal/model"
)

// Header is the CSV header for chart-of-accounts.csv.
const Header = "id,code,name,type,tax_key,active,created_at"

const (
	numFields    = 7
	colID        = 0
	colCode      = 1
	colName      = 2
	colType      = 3
	colTaxKey    = 4
	colActive    = 5
	colCreatedAt = 6
)

// chartPath returns the chart file location under a data directory.
func chartPath(dataDir string) string {
	return filepath.Join(dataDir, "accounts", "chart-of-accounts.csv")
}

// Load reads chart-of-accounts.csv from a data directory into a Registry.
func Load(dataDir string) (*Registry, error) {
	f, err := os.Open(chartPath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}

	reg := NewRegistry()
	for _, a := range accts {
		if err := reg.Add(a); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// Save writes the registry's chart to <dataDir>/accounts/chart-of-accounts.csv.
func (r *Registry) Save(dataDir string) error {
	dir := filepath.Join(dataDir, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(chartPath(dataDir))
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, r.List("")); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}

// ReadAccounts reads all accounts from a chart CSV reader.
func ReadAccounts(r io.Reader) ([]model.Account, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chart CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var accts []model.Account
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accts = append(accts, acct)
	}
	return accts, nil
}

// WriteAccounts writes accounts to a chart CSV writer (including header).
func WriteAccounts(w io.Writer, accts []model.Account) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accts {
		if err := cw.Write(MarshalAccount(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a model.Account) []string {
	row := make([]string, numFields)
	row[colID] = a.ID
	row[colCode] = a.Code
	row[colName] = a.Name
	row[colType] = string(a.Type)
	row[colTaxKey] = a.TaxKeyCode
	row[colActive] = strconv.FormatBool(a.Active)
	row[colCreatedAt] = a.CreatedAt.UTC().Format(time.RFC3339)
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (model.Account, error) {
	if len(record) != numFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	active, err := strconv.ParseBool(record[colActive])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing active %q: %w", record[colActive], err)
	}

	createdAt, err := time.Parse(time.RFC3339, record[colCreatedAt])
	if err != nil {
		return model.Account{}, fmt.Errorf("parsing created_at %q: %w", record[colCreatedAt], err)
	}

	acctType := model.AccountType(record[colType])
	if !acctType.Valid() {
		return model.Account{}, fmt.Errorf("unknown account type %q", record[colType])
	}

	return model.Account{
		ID:         record[colID],
		Code:       record[colCode],
		Name:       record[colName],
		Type:       acctType,
		TaxKeyCode: record[colTaxKey],
		Active:     active,
		CreatedAt:  createdAt,
	}, nil
}
