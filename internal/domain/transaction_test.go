package domain

import (
	"errors"
	"testing"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TransactionType
		wantErr bool
	}{
		{"upper income", "INCOME", TransactionTypeIncome, false},
		{"lower expense", "expense", TransactionTypeExpense, false},
		{"padded", "  Expense ", TransactionTypeExpense, false},
		{"unknown", "transfer", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTransactionType(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ParseTransactionType(%q) error = %v, want validation error", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTransactionType(%q) unexpected error %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTransactionType(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSortDirection(t *testing.T) {
	tests := []struct {
		input string
		want  SortDirection
	}{
		{"ASC", SortAsc},
		{"asc", SortAsc},
		{"DESC", SortDesc},
		{"", SortDesc},
		{"sideways", SortDesc},
	}

	for _, tt := range tests {
		if got := ParseSortDirection(tt.input); got != tt.want {
			t.Errorf("ParseSortDirection(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestTransactionSortColumns_DefaultIsMapped(t *testing.T) {
	if _, ok := TransactionSortColumns[DefaultSortBy]; !ok {
		t.Errorf("default sort field %q has no column mapping", DefaultSortBy)
	}
}
