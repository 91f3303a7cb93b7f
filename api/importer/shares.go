package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// declaredTotalTolerance bounds how far the sheet's VALOR column may sit
	// from 1.0 (the whole property).
	declaredTotalTolerance = decimal.RequireFromString("0.01")
	// shareSumImportTolerance is the band, in percentage points, within
	// which a row's share sum must land around 100.
	shareSumImportTolerance = decimal.RequireFromString("1.0")

	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// ImportOwnershipShares ingests the wide share sheet: property name,
// address, declared total (VALOR, a fraction of 1.0), then one column per
// owner carrying that owner's fraction. Fractions are stored as 0-100
// percentages.
func ImportOwnershipShares(ctx context.Context, content []byte, store Store) (*ImportResult, error) {
	res := newImportResult()

	wb, err := OpenWorkbook(content)
	if err != nil {
		return res.structural("could not read spreadsheet: %v", err), nil
	}
	rows := wb.Sheets[0].Rows
	if len(rows) < 2 {
		return res.structural("sheet must have a header row and at least one data row"), nil
	}

	headers := rows[0]
	bound := MapHeaders(headers, shareHeaderRoles)
	if missing := missingMandatory(bound, shareHeaderRoles); len(missing) > 0 {
		return structuralHeaderError(res, missing, headers), nil
	}

	// Every unbound column is an owner column keyed by its header text.
	boundCols := make(map[int]bool, len(bound))
	for _, idx := range bound {
		boundCols[idx] = true
	}
	var ownerCols []int
	for i := range headers {
		if !boundCols[i] && normalizeCell(headers[i]) != "" {
			ownerCols = append(ownerCols, i)
		}
	}
	if len(ownerCols) == 0 {
		return res.structural("sheet has no owner columns: add one column per owner after VALOR"), nil
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

	today := truncateToDay(time.Now())

	for i, row := range rows[1:] {
		if allEmptyRow(row) {
			continue
		}
		res.RowsProcessed++
		label := rowLabel(i, 1)

		propName := cell(row, bound[RoleName])
		propAddress := ""
		if idx, ok := bound[RoleAddress]; ok {
			propAddress = cell(row, idx)
		}

		declared, ok := ParseFraction(cell(row, bound[RoleTotal]))
		if !ok || declared.Sub(one).Abs().GreaterThan(declaredTotalTolerance) {
			res.addErrorf("%s: VALOR must be close to 1.0 / 100%% (found: %q)", label, cell(row, bound[RoleTotal]))
			continue
		}

		propID, ok := propRes.resolveBoth(propName, propAddress)
		if !ok {
			res.addErrorf("%s: property %q not found%s", label, propName, propRes.suggestSuffix(propName))
			continue
		}

		registeredOn := today
		if idx, ok := bound[RoleRegDate]; ok {
			if d, parsed := ParseDate(cell(row, idx)); parsed {
				registeredOn = d
			}
		}

		type stagedShare struct {
			ownerID int64
			pct     decimal.Decimal
		}
		var staged []stagedShare
		sum := decimal.Zero
		rowOK := true

		for _, col := range ownerCols {
			ownerName := normalizeCell(headers[col])
			raw := cell(row, col)
			frac, parsed := ParseFraction(raw)
			if !parsed || frac.IsZero() {
				if raw != "" && !parsed && !isBlankCell(raw) {
					res.addErrorf("%s: share of %q must be a number (found: %q)", label, ownerName, raw)
					rowOK = false
				}
				continue
			}
			if frac.IsNegative() || frac.GreaterThan(one) {
				res.addErrorf("%s: share of %q must be between 0 and 1 (found: %q)", label, ownerName, raw)
				rowOK = false
				continue
			}
			ownerID, found := ownerRes.Resolve(ownerName)
			if !found {
				res.addErrorf("%s: owner %q not found%s", label, ownerName, ownerRes.suggestSuffix(ownerName))
				rowOK = false
				continue
			}
			staged = append(staged, stagedShare{ownerID: ownerID, pct: frac.Mul(hundred)})
			sum = sum.Add(frac)
		}

		sumPct := sum.Mul(hundred)
		if sumPct.Sub(hundred).Abs().GreaterThan(shareSumImportTolerance) {
			res.addErrorf("%s: shares must sum to 100%% (current: %s%%)", label, sumPct.StringFixed(2))
			continue
		}
		if !rowOK {
			// Some columns were dropped but the remainder still summed to
			// 100; refuse the row rather than persist a silently thinner set.
			continue
		}

		for _, sh := range staged {
			share := &OwnershipShare{
				PropertyID:   propID,
				OwnerID:      sh.ownerID,
				Percentage:   sh.pct,
				RegisteredOn: registeredOn,
			}
			if err := store.InsertShare(ctx, share); err != nil {
				return nil, fmt.Errorf("stage share: %w", err)
			}
			res.ImportedCount++
		}
	}

	res.Success = true
	res.Message = fmt.Sprintf("import finished: %d shares imported from %d rows processed",
		res.ImportedCount, res.RowsProcessed)
	return res, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
