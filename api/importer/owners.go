package importer

import (
	"context"
	"fmt"
	"strings"
)

// ImportOwners ingests the owner registration sheet (first tab only).
// Row-level failures are collected and skipped; a returned error means
// infrastructure trouble and the caller must roll the transaction back.
func ImportOwners(ctx context.Context, content []byte, store Store) (*ImportResult, error) {
	res := newImportResult()

	wb, err := OpenWorkbook(content)
	if err != nil {
		return res.structural("could not read spreadsheet: %v", err), nil
	}
	rows := wb.Sheets[0].Rows
	if len(rows) < 2 {
		return res.structural("sheet must have a header row and at least one data row"), nil
	}

	bound := MapHeaders(rows[0], ownerHeaderRoles)
	if missing := missingMandatory(bound, ownerHeaderRoles); len(missing) > 0 {
		return structuralHeaderError(res, missing, rows[0]), nil
	}

	seen := make(map[string]bool) // documents staged earlier in this same file
	for i, row := range rows[1:] {
		if allEmptyRow(row) {
			continue
		}
		res.RowsProcessed++
		label := rowLabel(i, 1)

		name := cell(row, bound[RoleName])
		surname := cell(row, bound[RoleSurname])
		rawDoc := cell(row, bound[RoleDocument])
		email := strings.ToLower(cell(row, bound[RoleEmail]))

		if name == "" {
			res.addErrorf("%s: name is mandatory", label)
			continue
		}
		if email == "" || !strings.Contains(email, "@") {
			res.addErrorf("%s: invalid email (found: %q)", label, cell(row, bound[RoleEmail]))
			continue
		}
		document := CleanDocument(rawDoc)
		if !ValidDocument(document) {
			res.addErrorf("%s: invalid document, needs at least 11 digits (found: %q -> %q)", label, rawDoc, document)
			continue
		}
		if seen[document] {
			res.addErrorf("%s: document %s appears more than once in this file", label, document)
			continue
		}

		existing, err := store.OwnerByDocument(ctx, document)
		if err != nil {
			return nil, fmt.Errorf("owner lookup: %w", err)
		}
		if existing != nil {
			res.addErrorf("%s: owner with document %s already exists (name: %s)", label, document, existing.Name)
			continue
		}

		docType := strings.ToUpper(cell(row, bound[RoleDocumentType]))
		if docType == "" {
			docType = "CPF"
		}
		owner := &Owner{
			Name:         strings.TrimSpace(name + " " + surname),
			Surname:      surname,
			Document:     document,
			DocumentType: docType,
			Address:      cell(row, bound[RoleAddress]),
			Phone:        cell(row, bound[RolePhone]),
			Email:        email,
			Active:       true,
		}
		if err := store.InsertOwner(ctx, owner); err != nil {
			return nil, fmt.Errorf("stage owner: %w", err)
		}
		seen[document] = true
		res.ImportedCount++
	}

	res.Success = true
	res.Message = fmt.Sprintf("import finished: %d owners imported from %d rows processed",
		res.ImportedCount, res.RowsProcessed)
	return res, nil
}
