package importer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// normalizeKind folds the Portuguese spellings onto the stored
// classification values.
func normalizeKind(raw string) (string, bool) {
	switch strings.ToLower(normalizeCell(raw)) {
	case "residencial", "residential":
		return KindResidential, true
	case "comercial", "commercial":
		return KindCommercial, true
	}
	return "", false
}

// optionalMoney parses an optional monetary attribute; unparsable or blank
// cells become null rather than errors.
func optionalMoney(row []string, idx int, ok bool) decimal.NullDecimal {
	if !ok {
		return decimal.NullDecimal{}
	}
	if d, parsed := ParseMoney(cell(row, idx)); parsed {
		return decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return decimal.NullDecimal{}
}

// ImportProperties ingests the property registration sheet (first tab only).
func ImportProperties(ctx context.Context, content []byte, store Store) (*ImportResult, error) {
	res := newImportResult()

	wb, err := OpenWorkbook(content)
	if err != nil {
		return res.structural("could not read spreadsheet: %v", err), nil
	}
	rows := wb.Sheets[0].Rows
	if len(rows) < 2 {
		return res.structural("sheet must have a header row and at least one data row"), nil
	}

	bound := MapHeaders(rows[0], propertyHeaderRoles)
	if missing := missingMandatory(bound, propertyHeaderRoles); len(missing) > 0 {
		return structuralHeaderError(res, missing, rows[0]), nil
	}

	seen := make(map[string]bool) // name+address staged earlier in this file
	for i, row := range rows[1:] {
		if allEmptyRow(row) {
			continue
		}
		res.RowsProcessed++
		label := rowLabel(i, 1)

		name := cell(row, bound[RoleName])
		address := cell(row, bound[RoleAddress])
		if name == "" || address == "" {
			res.addErrorf("%s: name and address are mandatory", label)
			continue
		}
		kind, ok := normalizeKind(cell(row, bound[RoleKind]))
		if !ok {
			res.addErrorf("%s: classification must be Residential or Commercial (found: %q)",
				label, cell(row, bound[RoleKind]))
			continue
		}
		key := strings.ToLower(name) + "|" + strings.ToLower(address)
		if seen[key] {
			res.addErrorf("%s: property %q at this address appears more than once in this file", label, name)
			continue
		}

		existing, err := store.PropertyByNameAddress(ctx, name, address)
		if err != nil {
			return nil, fmt.Errorf("property lookup: %w", err)
		}
		if existing != nil {
			res.addErrorf("%s: property %q already exists at this address", label, name)
			continue
		}

		idxTotalArea, okTotalArea := bound[RoleTotalArea]
		idxBuiltArea, okBuiltArea := bound[RoleBuiltArea]
		idxAssessed, okAssessed := bound[RoleAssessed]
		idxMarket, okMarket := bound[RoleMarketValue]
		idxTax, okTax := bound[RoleAnnualTax]
		idxCondo, okCondo := bound[RoleCondoFee]

		prop := &Property{
			Name:          name,
			Address:       address,
			Kind:          kind,
			TotalArea:     optionalMoney(row, idxTotalArea, okTotalArea),
			BuiltArea:     optionalMoney(row, idxBuiltArea, okBuiltArea),
			AssessedValue: optionalMoney(row, idxAssessed, okAssessed),
			MarketValue:   optionalMoney(row, idxMarket, okMarket),
			AnnualTax:     optionalMoney(row, idxTax, okTax),
			CondoFee:      optionalMoney(row, idxCondo, okCondo),
			Active:        true,
		}
		if err := store.InsertProperty(ctx, prop); err != nil {
			return nil, fmt.Errorf("stage property: %w", err)
		}
		seen[key] = true
		res.ImportedCount++
	}

	res.Success = true
	res.Message = fmt.Sprintf("import finished: %d properties imported from %d rows processed",
		res.ImportedCount, res.RowsProcessed)
	return res, nil
}
