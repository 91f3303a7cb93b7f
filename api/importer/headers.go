package importer

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical column roles bound by the header mapper.
const (
	RoleName         = "name"
	RoleSurname      = "surname"
	RoleDocument     = "document"
	RoleDocumentType = "document_type"
	RoleAddress      = "address"
	RolePhone        = "phone"
	RoleEmail        = "email"
	RoleKind         = "kind"
	RoleTotalArea    = "total_area"
	RoleBuiltArea    = "built_area"
	RoleAssessed     = "assessed_value"
	RoleMarketValue  = "market_value"
	RoleAnnualTax    = "annual_tax"
	RoleCondoFee     = "condo_fee"
	RoleTotal        = "total"
	RoleAdminFee     = "admin_fee"
	RoleRegDate      = "registration_date"
)

// HeaderRole couples a canonical role with its synonym set. Synonyms are
// listed in priority order and carry both the Portuguese spellings the staff
// spreadsheets actually use and the English equivalents.
type HeaderRole struct {
	Role      string
	Mandatory bool
	Synonyms  []string
}

var ownerHeaderRoles = []HeaderRole{
	{RoleName, true, []string{"nome", "name", "first name"}},
	{RoleSurname, false, []string{"sobrenome", "surname", "last name"}},
	{RoleDocument, true, []string{"documento", "document", "cpf", "cnpj", "cpf/cnpj"}},
	{RoleDocumentType, false, []string{"tipo documento", "tipo de documento", "document type"}},
	{RoleAddress, false, []string{"endereço", "endereco", "address"}},
	{RolePhone, false, []string{"telefone", "phone"}},
	{RoleEmail, true, []string{"email", "e-mail"}},
}

var propertyHeaderRoles = []HeaderRole{
	{RoleName, true, []string{"nome", "name"}},
	{RoleAddress, true, []string{"endereço", "endereco", "address"}},
	{RoleKind, true, []string{"tipo", "type", "classificação", "classificacao", "classification"}},
	{RoleTotalArea, false, []string{"área total", "area total", "total area"}},
	{RoleBuiltArea, false, []string{"área construída", "area construida", "built area"}},
	{RoleAssessed, false, []string{"valor catastral", "assessed value"}},
	{RoleMarketValue, false, []string{"valor mercado", "valor de mercado", "market value"}},
	{RoleAnnualTax, false, []string{"iptu anual", "iptu", "annual tax", "property tax"}},
	{RoleCondoFee, false, []string{"condomínio", "condominio", "condo fee"}},
}

var shareHeaderRoles = []HeaderRole{
	{RoleName, true, []string{"nome", "name"}},
	{RoleAddress, false, []string{"endereço", "endereco", "address"}},
	{RoleTotal, true, []string{"valor", "valor total", "total"}},
	{RoleRegDate, false, []string{"data", "data cadastro", "data de cadastro", "registration date"}},
}

// Rent ledger tabs bind only these two roles by synonym; the remaining
// columns are positional owner columns keyed by the owner's own name.
var rentHeaderRoles = []HeaderRole{
	{RoleTotal, true, []string{"valor total", "valor", "total"}},
	{RoleAdminFee, false, []string{"taxa administração", "taxa administracao", "taxa adm", "taxa admin",
		"taxa de administração", "taxa de administracao", "admin fee", "administration fee"}},
}

// MapHeaders binds canonical roles to column indexes. Comparison is
// case-insensitive on trimmed, whitespace-collapsed headers; for each role
// the synonyms are scanned in order and the first actual header that matches
// wins. Roles with no matching header are simply absent from the result.
func MapHeaders(actual []string, roles []HeaderRole) map[string]int {
	norm := make([]string, len(actual))
	for i, h := range actual {
		norm[i] = strings.ToLower(normalizeCell(h))
	}
	bound := make(map[string]int, len(roles))
	taken := make(map[int]bool, len(roles))
	for _, role := range roles {
		for _, syn := range role.Synonyms {
			idx := -1
			for i, h := range norm {
				if h == syn && !taken[i] {
					idx = i
					break
				}
			}
			if idx >= 0 {
				bound[role.Role] = idx
				taken[idx] = true
				break
			}
		}
	}
	return bound
}

// missingMandatory lists mandatory roles left unbound, for the structural
// error message.
func missingMandatory(bound map[string]int, roles []HeaderRole) []string {
	var missing []string
	for _, role := range roles {
		if !role.Mandatory {
			continue
		}
		if _, ok := bound[role.Role]; !ok {
			missing = append(missing, role.Role)
		}
	}
	sort.Strings(missing)
	return missing
}

func structuralHeaderError(res *ImportResult, missing, actual []string) *ImportResult {
	return res.structural("mandatory columns missing: %s (columns found: %s)",
		strings.Join(missing, ", "), strings.Join(actual, ", "))
}

// cell returns the trimmed cell at idx, or "" when the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return normalizeCell(row[idx])
}

// rowLabel names a spreadsheet row the way operators see it (1-based,
// header included).
func rowLabel(dataIdx, headerRows int) string {
	return fmt.Sprintf("row %d", dataIdx+headerRows+1)
}
