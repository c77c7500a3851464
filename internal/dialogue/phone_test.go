package dialogue

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		countryCode string
		want        string
	}{
		{"international with punctuation", "+91 98765-43210", "91", "919876543210"},
		{"trunk prefix replaced", "098765432", "91", "9198765432"},
		{"already canonical", "919876543210", "91", "919876543210"},
		{"parentheses and spaces", "(091) 98 76", "91", "91919876"},
		{"only first zero replaced", "0012345", "91", "91012345"},
		{"letters stripped", "call 98x76", "91", "9876"},
		{"empty input", "", "91", ""},
		{"other country code", "0171234", "44", "44171234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.raw, tt.countryCode); got != tt.want {
				t.Fatalf("NormalizePhone(%q, %q) = %q, want %q", tt.raw, tt.countryCode, got, tt.want)
			}
		})
	}
}
