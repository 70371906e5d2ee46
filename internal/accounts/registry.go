// Package accounts owns the chart of accounts. The registry is the only
// writer; the ledger and report layers read account metadata through it.
package accounts

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kontor-dev/kontor/internal/apperr"
	"github.com/kontor-dev/kontor/internal/model"
)

// Registry provides lookup and administration over the chart of accounts.
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]model.Account
	byCode map[string]string // code -> id
	order  []string          // ids in code order
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]model.Account),
		byCode: make(map[string]string),
	}
}

// CreateParams holds the caller-supplied fields for a new account.
type CreateParams struct {
	Code       string
	Name       string
	Type       model.AccountType
	TaxKeyCode string
}

// Create adds an account to the chart. The code must be unique and
// 4-10 characters; the name must be non-empty.
func (r *Registry) Create(params CreateParams) (model.Account, error) {
	code := strings.TrimSpace(params.Code)
	name := strings.TrimSpace(params.Name)

	if len(code) < 4 || len(code) > 10 {
		return model.Account{}, apperr.Newf(apperr.KindValidation, "account code %q must be 4-10 characters", code)
	}
	if name == "" {
		return model.Account{}, apperr.New(apperr.KindValidation, "account name must not be empty")
	}
	if !params.Type.Valid() {
		return model.Account{}, apperr.Newf(apperr.KindValidation, "unknown account type %q", params.Type)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[code]; exists {
		return model.Account{}, apperr.Newf(apperr.KindDuplicateCode, "account code %q already exists", code)
	}

	acct := model.Account{
		ID:         uuid.NewString(),
		Code:       code,
		Name:       name,
		Type:       params.Type,
		TaxKeyCode: params.TaxKeyCode,
		Active:     true,
		CreatedAt:  time.Now().UTC(),
	}
	r.insertLocked(acct)
	return acct, nil
}

// Add inserts a pre-built account, used when loading a persisted chart.
// Duplicate codes or IDs fail with DuplicateCodeError.
func (r *Registry) Add(acct model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[acct.Code]; exists {
		return apperr.Newf(apperr.KindDuplicateCode, "account code %q already exists", acct.Code)
	}
	if _, exists := r.byID[acct.ID]; exists {
		return apperr.Newf(apperr.KindDuplicateCode, "account id %q already exists", acct.ID)
	}
	r.insertLocked(acct)
	return nil
}

func (r *Registry) insertLocked(acct model.Account) {
	r.byID[acct.ID] = acct
	r.byCode[acct.Code] = acct.ID
	r.order = append(r.order, acct.ID)
	sort.Slice(r.order, func(i, j int) bool {
		return r.byID[r.order[i]].Code < r.byID[r.order[j]].Code
	})
}

// Get returns an account by ID.
func (r *Registry) Get(id string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.byID[id]
	if !ok {
		return model.Account{}, apperr.Newf(apperr.KindUnknownAccount, "no account with id %q", id)
	}
	return acct, nil
}

// GetByCode returns an account by its chart code.
func (r *Registry) GetByCode(code string) (model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCode[code]
	if !ok {
		return model.Account{}, apperr.Newf(apperr.KindUnknownAccount, "no account with code %q", code)
	}
	return r.byID[id], nil
}

// Resolve returns an account by ID if it exists and is active. It is the
// lookup the ledger uses when validating postings.
func (r *Registry) Resolve(id string) (model.Account, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.byID[id]
	if !ok || !acct.Active {
		return model.Account{}, false
	}
	return acct, true
}

// List returns accounts in code order, optionally filtered by type.
// An empty filter returns the whole chart.
func (r *Registry) List(filter model.AccountType) []model.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]model.Account, 0, len(r.order))
	for _, id := range r.order {
		acct := r.byID[id]
		if filter != "" && acct.Type != filter {
			continue
		}
		result = append(result, acct)
	}
	return result
}

// Deactivate soft-disables an account. This is the only removal path:
// accounts referenced by posted lines are never deleted.
func (r *Registry) Deactivate(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acct, ok := r.byID[id]
	if !ok {
		return apperr.Newf(apperr.KindUnknownAccount, "no account with id %q", id)
	}
	if !acct.Active {
		return apperr.Newf(apperr.KindInvalidState, "account %s is already inactive", acct.Code)
	}
	acct.Active = false
	r.byID[id] = acct
	return nil
}
