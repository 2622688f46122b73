package cmd

import (
	"testing"

	"github.com/theirongolddev/debtfree/internal/apperr"
)

func TestParseExpenseFlags(t *testing.T) {
	got, err := parseExpenseFlags([]string{"Loyer=900", "Crédit auto = 400,50", "A=B=12"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d lines", len(got))
	}
	if got[1].Category != "Crédit auto" || got[1].Amount != 400.5 {
		t.Errorf("line 2 = %+v", got[1])
	}
	if got[2].Category != "A=B" || got[2].Amount != 12 {
		t.Errorf("line 3 = %+v", got[2])
	}

	for _, bad := range []string{"Loyer", "=900", "Loyer=abc"} {
		if _, err := parseExpenseFlags([]string{bad}); err == nil {
			t.Errorf("parseExpenseFlags(%q) should fail", bad)
		}
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", ":9000", "--detach=true"})
	want := []string{"serve", "--addr", ":9000"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"abc":                      "****",
		"abcdef":                   "ab...",
		"postgres://u:p@host/db01": "postgr...db01",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCheckMonthFlag(t *testing.T) {
	old := flagBudgetMonth
	t.Cleanup(func() { flagBudgetMonth = old })

	for _, ok := range []string{"", "2026-10"} {
		flagBudgetMonth = ok
		if err := checkMonthFlag(); err != nil {
			t.Errorf("month %q: %v", ok, err)
		}
	}
	for _, bad := range []string{"2026-13", "10-2026", "octobre"} {
		flagBudgetMonth = bad
		if err := checkMonthFlag(); !apperr.HasCode(err, apperr.CodeMonthInvalid) {
			t.Errorf("month %q err = %v, want %s", bad, err, apperr.CodeMonthInvalid)
		}
	}
}
