package importer

import (
	"strings"
	"testing"
)

func TestContainsMatch(t *testing.T) {
	tests := []struct {
		candidate  string
		registered string
		want       bool
	}{
		{"Maria", "Maria Silva Santos", true},
		{"maria silva santos", "Maria Silva", true},
		{"MARIA", "maria silva", true},
		{"João", "Maria Silva", false},
		{"", "Maria", false},
		{"Maria", "", false},
	}
	for _, tt := range tests {
		if got := ContainsMatch(tt.candidate, tt.registered); got != tt.want {
			t.Errorf("ContainsMatch(%q, %q) = %v, want %v", tt.candidate, tt.registered, got, tt.want)
		}
	}
}

func TestResolverPicksLowestIDOnTie(t *testing.T) {
	owners := []Owner{
		{ID: 7, Name: "Ana Souza"},
		{ID: 3, Name: "Ana Pereira"},
	}
	r := ownerResolver(owners, ContainsMatch)

	id, ok := r.Resolve("Ana")
	if !ok {
		t.Fatal("expected a match for shared prefix")
	}
	if id != 3 {
		t.Errorf("ambiguous match resolved to %d, want lowest ID 3", id)
	}
}

func TestResolverNoMatch(t *testing.T) {
	r := ownerResolver([]Owner{{ID: 1, Name: "Carlos Lima"}}, ContainsMatch)
	if _, ok := r.Resolve("Fernanda"); ok {
		t.Error("expected no match")
	}
}

func TestPropertyResolverMatchesAddress(t *testing.T) {
	props := []Property{
		{ID: 1, Name: "Casa Verde", Address: "Rua das Flores, 100"},
	}
	r := propertyResolver(props, ContainsMatch)

	if id, ok := r.Resolve("Rua das Flores"); !ok || id != 1 {
		t.Errorf("Resolve by address = (%d, %v), want (1, true)", id, ok)
	}
	if id, ok := r.Resolve("Casa Verde"); !ok || id != 1 {
		t.Errorf("Resolve by name = (%d, %v), want (1, true)", id, ok)
	}
}

func TestResolveBothRequiresAgreement(t *testing.T) {
	props := []Property{
		{ID: 1, Name: "Casa Verde", Address: "Rua A, 1"},
		{ID: 2, Name: "Casa Azul", Address: "Rua B, 2"},
	}
	r := propertyResolver(props, ContainsMatch)

	if id, ok := r.resolveBoth("Casa Verde", "Rua A"); !ok || id != 1 {
		t.Errorf("agreeing pair = (%d, %v), want (1, true)", id, ok)
	}
	if _, ok := r.resolveBoth("Casa Verde", "Rua B"); ok {
		t.Error("name and address pointing at different properties must not resolve")
	}
	// Empty secondary is unconstrained.
	if id, ok := r.resolveBoth("Casa Azul", ""); !ok || id != 2 {
		t.Errorf("empty secondary = (%d, %v), want (2, true)", id, ok)
	}
}

func TestSuggest(t *testing.T) {
	owners := []Owner{
		{ID: 1, Name: "Maria Silva"},
		{ID: 2, Name: "Maria Souza"},
		{ID: 3, Name: "Carlos Lima"},
	}
	r := ownerResolver(owners, ContainsMatch)

	got := r.Suggest("Maria Oliveira", 3)
	if len(got) != 2 {
		t.Fatalf("Suggest = %v, want the two Marias", got)
	}
	suffix := r.suggestSuffix("Maria Oliveira")
	if !strings.Contains(suffix, "Maria Silva") || !strings.Contains(suffix, "Maria Souza") {
		t.Errorf("suggestSuffix = %q, want both near names", suffix)
	}
	if r.suggestSuffix("Zulmira") != "" {
		t.Error("no suggestions expected for unrelated name")
	}
}
