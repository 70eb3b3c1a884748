package handlers

import "testing"

func TestParseCheckCallback(t *testing.T) {
	cases := []struct {
		data       string
		wantMethod string
		wantID     string
		wantOK     bool
	}{
		{"check:yookassa:yk-123", "yookassa", "yk-123", true},
		{"check:paypal:pp-456", "paypal", "pp-456", true},
		{"check:yookassa:42_20240101120000_ab12cd34", "yookassa", "42_20240101120000_ab12cd34", true},
		// Payment ids may contain colons, only the first two split.
		{"check:paypal:ORDER:XYZ", "paypal", "ORDER:XYZ", true},
		{"check:yookassa:", "", "", false},
		{"check::yk-123", "", "", false},
		{"check:yookassa", "", "", false},
		{"pay:yookassa", "", "", false},
	}

	for _, tc := range cases {
		method, paymentID, ok := parseCheckCallback(tc.data)
		if ok != tc.wantOK {
			t.Errorf("parseCheckCallback(%q) ok = %v, want %v", tc.data, ok, tc.wantOK)
			continue
		}
		if method != tc.wantMethod || paymentID != tc.wantID {
			t.Errorf("parseCheckCallback(%q) = (%q, %q), want (%q, %q)",
				tc.data, method, paymentID, tc.wantMethod, tc.wantID)
		}
	}
}
