package shares

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"AluguelSaas/api/importer"
)

// stubStore serves canned shares; only the methods the validator touches do
// anything.
type stubStore struct {
	importer.Store
	shares []importer.OwnershipShare
	locked []int64
}

func (s *stubStore) SharesFor(ctx context.Context, propertyID int64, registeredOn time.Time) ([]importer.OwnershipShare, error) {
	var out []importer.OwnershipShare
	for _, sh := range s.shares {
		if sh.PropertyID == propertyID && sh.RegisteredOn.Equal(registeredOn) {
			out = append(out, sh)
		}
	}
	return out, nil
}

func (s *stubStore) LockProperty(ctx context.Context, propertyID int64) error {
	s.locked = append(s.locked, propertyID)
	return nil
}

var regOn = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

func stubWith(pcts ...string) *stubStore {
	st := &stubStore{}
	for i, p := range pcts {
		st.shares = append(st.shares, importer.OwnershipShare{
			ID:           int64(i + 1),
			PropertyID:   10,
			OwnerID:      int64(i + 1),
			Percentage:   decimal.RequireFromString(p),
			RegisteredOn: regOn,
		})
	}
	return st
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		pcts      []string
		wantValid bool
		wantIn    string
	}{
		{"exact", []string{"60", "40"}, true, "within tolerance"},
		{"within band low", []string{"60", "39.7"}, true, "within tolerance"},
		{"within band high", []string{"60", "40.4"}, true, "within tolerance"},
		{"under", []string{"60", "30"}, false, "under 100%"},
		{"over", []string{"60", "45"}, false, "exceeds 100%"},
		{"empty", nil, false, "under 100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Check(context.Background(), stubWith(tt.pcts...), 10, regOn)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if got.Valid != tt.wantValid {
				t.Errorf("Valid = %v, want %v (sum %s)", got.Valid, tt.wantValid, got.Sum)
			}
			if !strings.Contains(got.Message, tt.wantIn) {
				t.Errorf("Message = %q, want it to mention %q", got.Message, tt.wantIn)
			}
		})
	}
}

func TestValidateBeforeInsert(t *testing.T) {
	store := stubWith("60", "39.7")
	// 99.7 + 0.5 = 100.2, inside the band.
	if err := ValidateBeforeInsert(context.Background(), store, 10, decimal.RequireFromString("0.5"), regOn); err != nil {
		t.Fatalf("insert within tolerance rejected: %v", err)
	}
	if len(store.locked) == 0 || store.locked[0] != 10 {
		t.Error("the property row must be locked before validating")
	}

	// 99.7 + 5.3 = 105, outside.
	err := ValidateBeforeInsert(context.Background(), store, 10, decimal.RequireFromString("5.3"), regOn)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.ResultingSum.String() != "105" {
		t.Errorf("ResultingSum = %s, want 105", vErr.ResultingSum)
	}
	if vErr.CurrentSum.String() != "99.7" {
		t.Errorf("CurrentSum = %s, want 99.7", vErr.CurrentSum)
	}
}

func TestValidateBeforeUpdateExcludesOwnRow(t *testing.T) {
	store := stubWith("60", "40")
	// Rewriting share 2 from 40 to 39.8: current sum without it is 60,
	// resulting 99.8, valid.
	if err := ValidateBeforeUpdate(context.Background(), store, 2, 10, decimal.RequireFromString("39.8"), regOn); err != nil {
		t.Fatalf("update within tolerance rejected: %v", err)
	}
	// Without the exclusion the same edit would read as 139.8 and fail, so
	// a failing variant proves the sum really dropped the old value.
	err := ValidateBeforeUpdate(context.Background(), store, 2, 10, decimal.RequireFromString("50"), regOn)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.ResultingSum.String() != "110" {
		t.Errorf("ResultingSum = %s, want 110 (old row excluded)", vErr.ResultingSum)
	}
}
