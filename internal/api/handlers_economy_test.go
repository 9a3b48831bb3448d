package api

import (
	"encoding/json"
	"testing"
)

func TestAmountOrAll(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    int64
		wantErr bool
	}{
		{"plain number", `{"amount": 500}`, 500, false},
		{"all keyword", `{"amount": "all"}`, 0, false},
		{"zero rejected", `{"amount": 0}`, 0, true},
		{"negative rejected", `{"amount": -5}`, 0, true},
		{"other string rejected", `{"amount": "half"}`, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var in struct {
				Amount amountOrAll `json:"amount"`
			}
			err := json.Unmarshal([]byte(tc.body), &in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("decode %s succeeded, want error", tc.body)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode %s failed: %v", tc.body, err)
			}
			if int64(in.Amount) != tc.want {
				t.Fatalf("decode %s = %d, want %d", tc.body, in.Amount, tc.want)
			}
		})
	}
}
