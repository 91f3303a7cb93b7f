package importer

import "testing"

func TestMapHeadersBindsSynonymsCaseInsensitively(t *testing.T) {
	headers := []string{"NOME", "Sobrenome", "Documento", "Endereço", "  e-mail  "}
	bound := MapHeaders(headers, ownerHeaderRoles)

	want := map[string]int{
		RoleName:     0,
		RoleSurname:  1,
		RoleDocument: 2,
		RoleAddress:  3,
		RoleEmail:    4,
	}
	for role, idx := range want {
		if got, ok := bound[role]; !ok || got != idx {
			t.Errorf("role %s bound to %d (ok=%v), want %d", role, got, ok, idx)
		}
	}
}

func TestMapHeadersFirstMatchWins(t *testing.T) {
	// Two columns both say "valor"; only the first may bind, leaving the
	// second free to be treated as an owner column.
	headers := []string{"Nome", "valor", "valor"}
	bound := MapHeaders(headers, shareHeaderRoles)
	if bound[RoleTotal] != 1 {
		t.Errorf("RoleTotal bound to %d, want 1", bound[RoleTotal])
	}
}

func TestMapHeadersDoesNotReuseColumns(t *testing.T) {
	// "cpf" could bind document; "nome" binds name first and must not be
	// taken again by another role's synonym scan.
	headers := []string{"nome", "cpf", "email"}
	bound := MapHeaders(headers, ownerHeaderRoles)
	if bound[RoleName] != 0 || bound[RoleDocument] != 1 || bound[RoleEmail] != 2 {
		t.Errorf("unexpected binding: %v", bound)
	}
}

func TestMissingMandatory(t *testing.T) {
	bound := MapHeaders([]string{"nome", "telefone"}, ownerHeaderRoles)
	missing := missingMandatory(bound, ownerHeaderRoles)
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want document and email", missing)
	}
	if missing[0] != RoleDocument || missing[1] != RoleEmail {
		t.Errorf("missing = %v, want [document email]", missing)
	}
}

func TestCellShortRow(t *testing.T) {
	row := []string{"a"}
	if got := cell(row, 5); got != "" {
		t.Errorf("cell beyond row = %q, want empty", got)
	}
	if got := cell(row, -1); got != "" {
		t.Errorf("cell at -1 = %q, want empty", got)
	}
}
