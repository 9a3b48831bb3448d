package bank

import "testing"

func TestMaxLoan(t *testing.T) {
	cases := []struct {
		wallet int64
		want   int64
	}{
		{0, 1000},
		{1500, 1000},
		{2000, 1000},
		{2002, 1001},
		{10000, 5000},
	}
	for _, tc := range cases {
		if got := MaxLoan(tc.wallet); got != tc.want {
			t.Fatalf("MaxLoan(%d) = %d, want %d", tc.wallet, got, tc.want)
		}
	}
}

func TestLoanOwed(t *testing.T) {
	cases := []struct {
		principal int64
		want      int64
	}{
		{1000, 1100},
		{1001, 1102}, // 1101.1 rounds up
		{5000, 5500},
	}
	for _, tc := range cases {
		if got := LoanOwed(tc.principal); got != tc.want {
			t.Fatalf("LoanOwed(%d) = %d, want %d", tc.principal, got, tc.want)
		}
	}
}
