package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

// fakeStore is an in-memory Store for engine tests. Lookups mirror the
// Postgres implementation: (nil, nil) when nothing matches.
type fakeStore struct {
	owners     []Owner
	properties []Property
	shares     []OwnershipShare
	ledger     []LedgerEntry
	nextID     int64
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Owners(ctx context.Context) ([]Owner, error) {
	return append([]Owner(nil), f.owners...), nil
}

func (f *fakeStore) Properties(ctx context.Context) ([]Property, error) {
	return append([]Property(nil), f.properties...), nil
}

func (f *fakeStore) OwnerByDocument(ctx context.Context, document string) (*Owner, error) {
	for i := range f.owners {
		if f.owners[i].Document == document {
			return &f.owners[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) PropertyByNameAddress(ctx context.Context, name, address string) (*Property, error) {
	for i := range f.properties {
		if strings.EqualFold(f.properties[i].Name, name) && strings.EqualFold(f.properties[i].Address, address) {
			return &f.properties[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertOwner(ctx context.Context, o *Owner) error {
	o.ID = f.id()
	f.owners = append(f.owners, *o)
	return nil
}

func (f *fakeStore) InsertProperty(ctx context.Context, p *Property) error {
	p.ID = f.id()
	f.properties = append(f.properties, *p)
	return nil
}

func (f *fakeStore) InsertShare(ctx context.Context, s *OwnershipShare) error {
	s.ID = f.id()
	f.shares = append(f.shares, *s)
	return nil
}

func (f *fakeStore) UpdateShare(ctx context.Context, s *OwnershipShare) error {
	for i := range f.shares {
		if f.shares[i].ID == s.ID {
			f.shares[i] = *s
			return nil
		}
	}
	return nil
}

func (f *fakeStore) SharesFor(ctx context.Context, propertyID int64, registeredOn time.Time) ([]OwnershipShare, error) {
	var out []OwnershipShare
	for _, s := range f.shares {
		if s.PropertyID == propertyID && s.RegisteredOn.Equal(registeredOn) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ShareDatesFor(ctx context.Context, propertyID int64) ([]time.Time, error) {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, s := range f.shares {
		if s.PropertyID == propertyID && !seen[s.RegisteredOn] {
			seen[s.RegisteredOn] = true
			out = append(out, s.RegisteredOn)
		}
	}
	return out, nil
}

func (f *fakeStore) LockProperty(ctx context.Context, propertyID int64) error {
	return nil
}

func (f *fakeStore) LedgerEntryByKey(ctx context.Context, propertyID, ownerID int64, period time.Time) (*LedgerEntry, error) {
	for i := range f.ledger {
		e := &f.ledger[i]
		if e.PropertyID == propertyID && e.OwnerID == ownerID && e.Period.Equal(period) {
			out := *e
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertLedgerEntry(ctx context.Context, e *LedgerEntry) error {
	e.ID = f.id()
	f.ledger = append(f.ledger, *e)
	return nil
}

func (f *fakeStore) UpdateLedgerEntry(ctx context.Context, e *LedgerEntry) error {
	for i := range f.ledger {
		if f.ledger[i].ID == e.ID {
			f.ledger[i] = *e
			return nil
		}
	}
	return nil
}

// xlsxBytes renders the given tabs into a real xlsx payload so tests walk
// the same reading path as uploads.
func xlsxBytes(t *testing.T, sheets []Sheet) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for si, sheet := range sheets {
		if si == 0 {
			f.SetSheetName("Sheet1", sheet.Name)
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				t.Fatalf("new sheet %q: %v", sheet.Name, err)
			}
		}
		for ri, row := range sheet.Rows {
			for ci, value := range row {
				cellRef, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellStr(sheet.Name, cellRef, value); err != nil {
					t.Fatalf("set cell: %v", err)
				}
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func singleSheet(t *testing.T, rows [][]string) []byte {
	t.Helper()
	return xlsxBytes(t, []Sheet{{Name: "Plan1", Rows: rows}})
}
