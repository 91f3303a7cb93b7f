package importer

import (
	"context"
	"strings"
	"testing"
)

func propertySheet(rows ...[]string) [][]string {
	out := [][]string{{"Nome", "Endereço", "Tipo", "Área Total", "Valor Mercado", "IPTU Anual"}}
	return append(out, rows...)
}

func TestImportProperties(t *testing.T) {
	store := &fakeStore{}
	content := singleSheet(t, propertySheet(
		[]string{"Casa Verde", "Rua das Flores, 100", "Residencial", "250,5", "R$ 450.000,00", "1.200,00"},
		[]string{"Loja Centro", "Av. Paulista, 200", "Comercial", "", "", ""},
	))

	res, err := ImportProperties(context.Background(), content, store)
	if err != nil {
		t.Fatalf("ImportProperties: %v", err)
	}
	if !res.Success || res.ImportedCount != 2 {
		t.Fatalf("imported %d, want 2 (errors: %v)", res.ImportedCount, res.Errors)
	}

	casa := store.properties[0]
	if casa.Kind != KindResidential {
		t.Errorf("Kind = %q, want normalized %q", casa.Kind, KindResidential)
	}
	if !casa.MarketValue.Valid || casa.MarketValue.Decimal.String() != "450000" {
		t.Errorf("MarketValue = %+v, want 450000", casa.MarketValue)
	}
	if !casa.TotalArea.Valid || casa.TotalArea.Decimal.String() != "250.5" {
		t.Errorf("TotalArea = %+v, want 250.5", casa.TotalArea)
	}

	loja := store.properties[1]
	if loja.Kind != KindCommercial {
		t.Errorf("Kind = %q, want %q", loja.Kind, KindCommercial)
	}
	if loja.MarketValue.Valid {
		t.Error("blank monetary cell must stay null")
	}
}

func TestImportPropertiesRowFailures(t *testing.T) {
	store := &fakeStore{
		properties: []Property{{ID: 1, Name: "Casa Verde", Address: "Rua das Flores, 100", Kind: KindResidential}},
	}
	content := singleSheet(t, propertySheet(
		[]string{"", "Rua X, 1", "Residencial", "", "", ""},                    // no name
		[]string{"Sitio", "Estrada Velha, km 3", "Chácara", "", "", ""},       // unknown kind
		[]string{"Casa Verde", "Rua das Flores, 100", "Residencial", "", "", ""}, // exists
		[]string{"Galpão", "Rua Y, 9", "Comercial", "", "", ""},
		[]string{"galpão", "rua y, 9", "Comercial", "", "", ""}, // dup within file, case-insensitive
	))

	res, err := ImportProperties(context.Background(), content, store)
	if err != nil {
		t.Fatalf("ImportProperties: %v", err)
	}
	if res.ImportedCount != 1 {
		t.Errorf("ImportedCount = %d, want 1 (errors: %v)", res.ImportedCount, res.Errors)
	}
	if len(res.Errors) != 4 {
		t.Errorf("Errors = %v, want 4 diagnostics", res.Errors)
	}
	if !strings.Contains(res.Errors[1], "Residential or Commercial") {
		t.Errorf("kind diagnostic %q should explain the accepted values", res.Errors[1])
	}
}

func TestImportPropertiesMissingKindColumnIsStructural(t *testing.T) {
	content := singleSheet(t, [][]string{
		{"Nome", "Endereço"},
		{"Casa Verde", "Rua das Flores, 100"},
	})
	res, err := ImportProperties(context.Background(), content, &fakeStore{})
	if err != nil {
		t.Fatalf("ImportProperties: %v", err)
	}
	if res.Success {
		t.Fatal("missing classification column must fail the whole import")
	}
}
