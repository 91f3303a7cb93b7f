package importer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// reconcileTolerance is one currency cent: per-owner splits plus the
// administrative fee must rebuild the declared total this closely.
var reconcileTolerance = decimal.RequireFromString("0.01")

// Rent tab layout: cell A1 holds the period marker, row 2 the headers
// (property identifier, declared total, one positional column per owner,
// administrative fee), data from row 3. Each tab is one accounting period.
const rentHeaderRowIdx = 1

// ImportRentLedger reconciles and upserts monthly rent distributions, one
// workbook tab per accounting period. A failing tab never aborts its
// siblings; a failing row never blocks the rest of its tab.
func ImportRentLedger(ctx context.Context, content []byte, store Store) (*ImportResult, error) {
	res := newImportResult()

	wb, err := OpenWorkbook(content)
	if err != nil {
		return res.structural("could not read spreadsheet: %v", err), nil
	}

	owners, err := store.Owners(ctx)
	if err != nil {
		return nil, fmt.Errorf("load owners: %w", err)
	}
	properties, err := store.Properties(ctx)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}
	ownerRes := ownerResolver(owners, ContainsMatch)
	propRes := propertyResolver(properties, ContainsMatch)

	for _, sheet := range wb.Sheets {
		res.TabsProcessed++
		if err := importRentTab(ctx, store, sheet, ownerRes, propRes, res); err != nil {
			return nil, err
		}
	}

	res.Success = true
	res.Message = fmt.Sprintf("import finished: %d ledger entries written from %d rows across %d tabs",
		res.ImportedCount, res.RowsProcessed, res.TabsProcessed)
	return res, nil
}

// rentColumns is the per-tab column layout worked out from the header row.
type rentColumns struct {
	totalCol int
	feeCol   int
	owners   map[int]int64 // column index -> owner id
}

func importRentTab(ctx context.Context, store Store, sheet Sheet, ownerRes, propRes *Resolver, res *ImportResult) error {
	rows := sheet.Rows
	if len(rows) < rentHeaderRowIdx+2 {
		res.addErrorf("tab %q: needs a period marker, a header row and at least one data row", sheet.Name)
		return nil
	}

	marker := cell(rows[0], 0)
	period, ok := ParseDate(marker)
	if !ok {
		res.addErrorf("tab %q: period marker in cell A1 is missing or unparsable (found: %q)", sheet.Name, marker)
		return nil
	}

	headers := rows[rentHeaderRowIdx]
	cols, diags := mapRentColumns(headers, ownerRes)
	for _, d := range diags {
		res.addErrorf("tab %q: %s", sheet.Name, d)
	}
	if cols.totalCol < 0 {
		res.addErrorf("tab %q: declared total column not found in header row", sheet.Name)
		return nil
	}
	if len(cols.owners) == 0 {
		res.addErrorf("tab %q: no header column matches a registered owner", sheet.Name)
		return nil
	}

	for i, row := range rows[rentHeaderRowIdx+1:] {
		if allEmptyRow(row) {
			continue
		}
		label := rowLabel(i, rentHeaderRowIdx+1)

		ident := cell(row, 0)
		if ident == "" {
			continue
		}
		// Instruction footers in the staff templates start with a flag word
		// in the first column and nothing numeric after it.
		if cell(row, cols.totalCol) == "" && rowIsAnnotation(row, cols) {
			continue
		}
		res.RowsProcessed++

		total, ok := ParseMoney(cell(row, cols.totalCol))
		if !ok {
			res.addErrorf("tab %q, %s: invalid declared total (found: %q)", sheet.Name, label, cell(row, cols.totalCol))
			continue
		}

		fee := decimal.Zero
		if cols.feeCol >= 0 {
			if f, ok := ParseMoney(cell(row, cols.feeCol)); ok {
				fee = f
			}
		}

		type split struct {
			ownerID int64
			amount  decimal.Decimal
		}
		var splits []split
		sum := decimal.Zero
		for col, ownerID := range cols.owners {
			amount, ok := ParseMoney(cell(row, col))
			if !ok || amount.IsZero() {
				continue
			}
			splits = append(splits, split{ownerID: ownerID, amount: amount})
			sum = sum.Add(amount)
		}

		computed := sum.Add(fee)
		if computed.Sub(total).Abs().GreaterThan(reconcileTolerance) {
			res.addErrorf("tab %q, %s: splits plus fee (%s) do not rebuild the declared total (%s)",
				sheet.Name, label, computed.StringFixed(2), total.StringFixed(2))
			continue
		}

		propID, found := propRes.Resolve(ident)
		if !found {
			res.addErrorf("tab %q, %s: property %q not found%s", sheet.Name, label, ident, propRes.suggestSuffix(ident))
			continue
		}

		for _, sp := range splits {
			if err := upsertLedgerEntry(ctx, store, propID, sp.ownerID, period, total, sp.amount, fee); err != nil {
				return fmt.Errorf("stage ledger entry: %w", err)
			}
			res.ImportedCount++
		}
	}
	return nil
}

// mapRentColumns locates the declared-total and fee columns by synonym and
// resolves every remaining header against the owner population. Headers
// that match nothing produce one diagnostic each (unless the column is
// claimed as the fee fallback below); their column is ignored, which makes
// the affected rows fail reconciliation loudly instead of dropping money
// silently.
func mapRentColumns(headers []string, ownerRes *Resolver) (rentColumns, []string) {
	cols := rentColumns{totalCol: -1, feeCol: -1, owners: make(map[int]int64)}
	bound := MapHeaders(headers, rentHeaderRoles)
	if idx, ok := bound[RoleTotal]; ok {
		cols.totalCol = idx
	}
	if idx, ok := bound[RoleAdminFee]; ok {
		cols.feeCol = idx
	}

	unmatched := make(map[int]string)
	for i := 1; i < len(headers); i++ {
		if i == cols.totalCol || i == cols.feeCol {
			continue
		}
		name := normalizeCell(headers[i])
		if name == "" {
			continue
		}
		if ownerID, ok := ownerRes.Resolve(name); ok {
			cols.owners[i] = ownerID
			continue
		}
		unmatched[i] = name
	}

	// Legacy sheets put the fee in the last column without a recognizable
	// header; fall back to it when the synonym scan found nothing. The
	// column then carries the fee, so it gets no owner diagnostic.
	if cols.feeCol < 0 && len(headers) > 2 {
		last := len(headers) - 1
		if _, taken := cols.owners[last]; !taken && last != cols.totalCol {
			cols.feeCol = last
			delete(unmatched, last)
		}
	}

	var diags []string
	for i := 1; i < len(headers); i++ {
		name, ok := unmatched[i]
		if !ok {
			continue
		}
		diags = append(diags, fmt.Sprintf("column %q does not match any registered owner%s",
			name, ownerRes.suggestSuffix(name)))
	}
	return cols, diags
}

func rowIsAnnotation(row []string, cols rentColumns) bool {
	for i := 1; i < len(row); i++ {
		if strings.TrimSpace(row[i]) != "" {
			return false
		}
	}
	return true
}

// upsertLedgerEntry is the find-by-natural-key, insert-or-overwrite step.
// It runs inside the same transaction as the reconciliation check, so two
// concurrent imports of the same tab cannot produce duplicate rows.
func upsertLedgerEntry(ctx context.Context, store Store, propertyID, ownerID int64, period time.Time, total, share, fee decimal.Decimal) error {
	existing, err := store.LedgerEntryByKey(ctx, propertyID, ownerID, period)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.TotalRent = total
		existing.OwnerShare = share
		existing.AdminFee = fee
		return store.UpdateLedgerEntry(ctx, existing)
	}
	status := StatusPending
	if share.IsPositive() {
		status = StatusReceived
	}
	return store.InsertLedgerEntry(ctx, &LedgerEntry{
		PropertyID: propertyID,
		OwnerID:    ownerID,
		Period:     period,
		TotalRent:  total,
		OwnerShare: share,
		AdminFee:   fee,
		Status:     status,
	})
}
