package importer

import (
	"context"
	"strings"
	"testing"
)

func ownerSheet(rows ...[]string) [][]string {
	out := [][]string{{"Nome", "Sobrenome", "Documento", "Tipo Documento", "Endereço", "Telefone", "Email"}}
	return append(out, rows...)
}

func TestImportOwners(t *testing.T) {
	store := &fakeStore{}
	content := singleSheet(t, ownerSheet(
		[]string{"Maria", "Silva", "123.456.789-01", "cpf", "Rua A, 1", "11 99999-0000", "Maria@Example.com"},
		[]string{"Carlos", "Lima", "987.654.321-00", "", "", "", "carlos@example.com"},
	))

	res, err := ImportOwners(context.Background(), content, store)
	if err != nil {
		t.Fatalf("ImportOwners: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got message %q", res.Message)
	}
	if res.ImportedCount != 2 || res.RowsProcessed != 2 {
		t.Fatalf("imported %d of %d rows, want 2 of 2 (errors: %v)", res.ImportedCount, res.RowsProcessed, res.Errors)
	}

	got := store.owners[0]
	if got.Name != "Maria Silva" {
		t.Errorf("Name = %q, want full name", got.Name)
	}
	if got.Document != "12345678901" {
		t.Errorf("Document = %q, want digits only", got.Document)
	}
	if got.DocumentType != "CPF" {
		t.Errorf("DocumentType = %q, want CPF", got.DocumentType)
	}
	if got.Email != "maria@example.com" {
		t.Errorf("Email = %q, want lowercased", got.Email)
	}
	if store.owners[1].DocumentType != "CPF" {
		t.Errorf("blank document type should default to CPF, got %q", store.owners[1].DocumentType)
	}
}

func TestImportOwnersRowFailuresAreCollected(t *testing.T) {
	store := &fakeStore{
		owners: []Owner{{ID: 1, Name: "Maria Silva", Document: "12345678901", Email: "maria@example.com"}},
	}
	content := singleSheet(t, ownerSheet(
		[]string{"", "Silva", "222.333.444-55", "", "", "", "x@example.com"},      // no name
		[]string{"Ana", "Souza", "123", "", "", "", "ana@example.com"},            // short document
		[]string{"Bia", "Costa", "222.333.444-55", "", "", "", "not-an-email"},    // no @
		[]string{"Maria", "Silva", "123.456.789-01", "", "", "", "m@example.com"}, // already registered
		[]string{"Davi", "Rocha", "555.666.777-88", "", "", "", "davi@example.com"},
		[]string{"Davi", "Rocha", "555.666.777-88", "", "", "", "davi@example.com"}, // dup within file
	))

	res, err := ImportOwners(context.Background(), content, store)
	if err != nil {
		t.Fatalf("ImportOwners: %v", err)
	}
	if !res.Success {
		t.Fatalf("row failures must not fail the import: %q", res.Message)
	}
	if res.ImportedCount != 1 {
		t.Errorf("ImportedCount = %d, want 1 (only Davi, once)", res.ImportedCount)
	}
	if res.RowsProcessed != 6 {
		t.Errorf("RowsProcessed = %d, want 6", res.RowsProcessed)
	}
	if len(res.Errors) != 5 {
		t.Fatalf("Errors = %v, want 5 diagnostics", res.Errors)
	}
	// Diagnostics carry the operator-visible row number.
	if !strings.Contains(res.Errors[0], "row 2") {
		t.Errorf("first diagnostic %q should name row 2", res.Errors[0])
	}
}

func TestImportOwnersMissingMandatoryColumnIsStructural(t *testing.T) {
	store := &fakeStore{}
	content := singleSheet(t, [][]string{
		{"Nome", "Telefone"},
		{"Maria", "11 99999-0000"},
	})

	res, err := ImportOwners(context.Background(), content, store)
	if err != nil {
		t.Fatalf("ImportOwners: %v", err)
	}
	if res.Success {
		t.Fatal("missing mandatory columns must fail the whole import")
	}
	if !strings.Contains(res.Message, "document") || !strings.Contains(res.Message, "email") {
		t.Errorf("message %q should name the missing columns", res.Message)
	}
	if len(store.owners) != 0 {
		t.Error("nothing may be staged on structural failure")
	}
}

func TestImportOwnersGarbageContent(t *testing.T) {
	res, err := ImportOwners(context.Background(), []byte{0x00, 0x01, 0x02}, &fakeStore{})
	if err != nil {
		t.Fatalf("unreadable content must be a structural result, not an error: %v", err)
	}
	if res.Success {
		t.Error("unreadable content must not succeed")
	}
}
