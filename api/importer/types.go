package importer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Ledger entry status values. Imports only ever derive received/pending;
// late is set through the administrative endpoints.
const (
	StatusPending  = "pending"
	StatusReceived = "received"
	StatusLate     = "late"
)

// Property classification values stored in the database. Brazilian
// spreadsheets say Residencial/Comercial; both spellings are accepted on
// input and normalized on the way in.
const (
	KindResidential = "Residential"
	KindCommercial  = "Commercial"
)

type Owner struct {
	ID           int64
	Name         string
	Surname      string
	Document     string // digits only, CPF (11) or CNPJ (14)
	DocumentType string // CPF or CNPJ
	Address      string
	Phone        string
	Email        string
	Active       bool
}

type Property struct {
	ID            int64
	Name          string
	Address       string
	Kind          string // Residential / Commercial
	TotalArea     decimal.NullDecimal
	BuiltArea     decimal.NullDecimal
	AssessedValue decimal.NullDecimal
	MarketValue   decimal.NullDecimal
	AnnualTax     decimal.NullDecimal
	CondoFee      decimal.NullDecimal
	Rented        bool
	Active        bool
}

// OwnershipShare ties an owner to a property as of a registration date.
// Percentage is on the 0-100 scale.
type OwnershipShare struct {
	ID           int64
	PropertyID   int64
	OwnerID      int64
	Percentage   decimal.Decimal
	RegisteredOn time.Time
}

// LedgerEntry is one owner's slice of a property's rent for one accounting
// period. Natural key: (PropertyID, OwnerID, Period).
type LedgerEntry struct {
	ID         int64
	PropertyID int64
	OwnerID    int64
	Period     time.Time
	TotalRent  decimal.Decimal
	OwnerShare decimal.Decimal
	AdminFee   decimal.Decimal
	Status     string
}

// ImportResult is what every import entry point hands back to the caller.
// A non-empty Errors list does not mean nothing was imported; partial
// success is the normal outcome for operator-authored spreadsheets.
type ImportResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	ImportedCount int      `json:"imported_count"`
	RowsProcessed int      `json:"rows_processed"`
	TabsProcessed int      `json:"tabs_processed,omitempty"`
	Errors        []string `json:"errors"`
}

func newImportResult() *ImportResult {
	return &ImportResult{Errors: []string{}}
}

func (r *ImportResult) addErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// structural marks the whole import as failed before any row was touched.
func (r *ImportResult) structural(format string, args ...interface{}) *ImportResult {
	r.Success = false
	r.Message = fmt.Sprintf(format, args...)
	return r
}
