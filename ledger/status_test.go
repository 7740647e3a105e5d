package ledger_test

import (
	"testing"

	"github.com/dasunhq/idurar-erp-crm/ledger"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name                    string
		total, discount, credit string
		want                    ledger.Status
	}{
		{"no credit", "100.00", "0", "0", ledger.StatusUnpaid},
		{"partial credit", "100.00", "0", "40.00", ledger.StatusPartially},
		{"exact settlement", "100.00", "0", "100.00", ledger.StatusPaid},
		{"exact settlement with discount", "100.00", "10.00", "90.00", ledger.StatusPaid},
		{"discounted partial", "100.00", "10.00", "89.99", ledger.StatusPartially},
		{"one cent short", "100.00", "0", "99.99", ledger.StatusPartially},
		{"zero net zero credit", "50.00", "50.00", "0", ledger.StatusPaid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ledger.DeriveStatus(amt(tc.total), amt(tc.discount), amt(tc.credit))
			if got != tc.want {
				t.Errorf("DeriveStatus(%s, %s, %s) = %s, want %s",
					tc.total, tc.discount, tc.credit, got, tc.want)
			}
		})
	}
}

func TestDeriveStatus_PaidCheckedBeforePartially(t *testing.T) {
	// credit == net is paid even though credit is also positive; the order
	// of checks matters because both predicates hold.
	got := ledger.DeriveStatus(amt("100.00"), amt("0"), amt("100.00"))
	if got != ledger.StatusPaid {
		t.Errorf("status = %s, want paid", got)
	}
}
