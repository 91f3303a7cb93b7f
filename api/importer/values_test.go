package importer

import (
	"testing"
	"time"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.234,56", "1234.56", true},
		{"2,500.00", "2500", true},
		{"R$ 1.500,00", "1500", true},
		{"R$1500", "1500", true},
		{"- 1.200,00", "-1200", true},
		{"-350,10", "-350.1", true},
		{"1200", "1200", true},
		{"1200,5", "1200.5", true},
		{"1,2", "1.2", true},
		{"12.3", "12.3", true},
		{"1.234.567,89", "1234567.89", true},
		// Inconclusive separators: comma is stripped as thousands grouping.
		{"1.23,456", "1.23456", true},
		{"0", "0", true},
		{"", "", false},
		{"-", "", false},
		{"nan", "", false},
		{"abc", "", false},
		{"12x3", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMoney(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseMoney(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("ParseMoney(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFraction(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0,5", "0.5", true},
		{"0.5", "0.5", true},
		{"1", "1", true},
		{"50%", "0.5", true},
		{"100%", "1", true},
		{"", "", false},
		{"half", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFraction(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseFraction(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("ParseFraction(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"01/03/2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"01-03-2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		// Day-first wins over month-first when both could apply.
		{"02/03/2024", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), true},
		// Month-first is the fallback when day-first cannot parse.
		{"03/25/2024", time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-01 00:00:00", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"March 1st", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanDocument(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		valid bool
	}{
		{"123.456.789-01", "12345678901", true},
		{"12345678901", "12345678901", true},
		{"12.345.678/0001-95", "12345678000195", true},
		{"123", "123", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got := CleanDocument(tt.in)
		if got != tt.want {
			t.Errorf("CleanDocument(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if ValidDocument(got) != tt.valid {
			t.Errorf("ValidDocument(%q) = %v, want %v", got, !tt.valid, tt.valid)
		}
	}
}
