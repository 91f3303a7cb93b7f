package shares

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"AluguelSaas/api/importer"
)

// Ownership shares for one (property, registration date) pair must sum to
// 100%, give or take Tolerance percentage points. The check runs both
// on demand (reporting) and as a guard inside the same transaction as any
// share write.

var (
	// Tolerance is the band, in percentage points, around ExpectedTotal.
	Tolerance = decimal.RequireFromString("0.4")
	// ExpectedTotal is the whole property.
	ExpectedTotal = decimal.NewFromInt(100)
)

// CheckResult is the outcome of a share-sum diagnostic.
type CheckResult struct {
	Valid      bool            `json:"valid"`
	Sum        decimal.Decimal `json:"current_sum"`
	Difference decimal.Decimal `json:"difference"`
	Tolerance  decimal.Decimal `json:"tolerance"`
	Count      int             `json:"share_count"`
	Message    string          `json:"message"`
}

// ValidationError is the 400-class failure raised when a write would push
// the share sum outside tolerance. It carries enough context for the caller
// to show the operator what the write would have done.
type ValidationError struct {
	CurrentSum   decimal.Decimal `json:"current_sum"`
	NewShare     decimal.Decimal `json:"new_share"`
	ResultingSum decimal.Decimal `json:"resulting_sum"`
	Difference   decimal.Decimal `json:"difference"`
	Tolerance    decimal.Decimal `json:"tolerance"`
	Message      string          `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Check sums the existing shares for the (property, registration date) pair
// and compares against 100 within tolerance. The message names the
// direction of the deviation so the operator knows whether shares are
// missing or duplicated.
func Check(ctx context.Context, store importer.Store, propertyID int64, registeredOn time.Time) (*CheckResult, error) {
	existing, err := store.SharesFor(ctx, propertyID, registeredOn)
	if err != nil {
		return nil, err
	}
	sum := decimal.Zero
	for _, sh := range existing {
		sum = sum.Add(sh.Percentage)
	}
	diff := sum.Sub(ExpectedTotal).Abs()
	out := &CheckResult{
		Valid:      diff.LessThanOrEqual(Tolerance),
		Sum:        sum,
		Difference: diff,
		Tolerance:  Tolerance,
		Count:      len(existing),
	}
	switch {
	case out.Valid:
		out.Message = fmt.Sprintf("share sum %s%% is within tolerance", sum)
	case sum.GreaterThan(ExpectedTotal):
		out.Message = fmt.Sprintf("share sum %s%% exceeds 100%% by %s%% (tolerance: ±%s%%)", sum, diff, Tolerance)
	default:
		out.Message = fmt.Sprintf("share sum %s%% is under 100%%, missing %s%% (tolerance: ±%s%%)", sum, diff, Tolerance)
	}
	return out, nil
}

// ValidateBeforeInsert recomputes the sum as if the new share were already
// present and fails when the result would leave the tolerance band. Must be
// called inside the transaction that also persists the share, after the
// property row is locked, or two concurrent writers can both pass against a
// stale sum.
func ValidateBeforeInsert(ctx context.Context, store importer.Store, propertyID int64, newPct decimal.Decimal, registeredOn time.Time) error {
	if err := store.LockProperty(ctx, propertyID); err != nil {
		return err
	}
	return validateResulting(ctx, store, propertyID, 0, newPct, registeredOn)
}

// ValidateBeforeUpdate is ValidateBeforeInsert for an edit: the row being
// updated is excluded from the current sum before the new value is added.
func ValidateBeforeUpdate(ctx context.Context, store importer.Store, shareID, propertyID int64, newPct decimal.Decimal, registeredOn time.Time) error {
	if err := store.LockProperty(ctx, propertyID); err != nil {
		return err
	}
	return validateResulting(ctx, store, propertyID, shareID, newPct, registeredOn)
}

func validateResulting(ctx context.Context, store importer.Store, propertyID, excludeShareID int64, newPct decimal.Decimal, registeredOn time.Time) error {
	existing, err := store.SharesFor(ctx, propertyID, registeredOn)
	if err != nil {
		return err
	}
	current := decimal.Zero
	for _, sh := range existing {
		if excludeShareID != 0 && sh.ID == excludeShareID {
			continue
		}
		current = current.Add(sh.Percentage)
	}
	resulting := current.Add(newPct)
	diff := resulting.Sub(ExpectedTotal).Abs()
	if diff.LessThanOrEqual(Tolerance) {
		return nil
	}
	return &ValidationError{
		CurrentSum:   current,
		NewShare:     newPct,
		ResultingSum: resulting,
		Difference:   diff,
		Tolerance:    Tolerance,
		Message: fmt.Sprintf("writing %s%% would make the share sum %s%%, outside the ±%s%% tolerance around 100%%",
			newPct, resulting, Tolerance),
	}
}
