package domain

import "testing"

func TestNormalizePhoneStripsSeparators(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(555) 123-4567", "5551234567"},
		{"  555 000 1111  ", "5550001111"},
		{"555-000-1111", "5550001111"},
		{"555.000.1111", "5550001111"},
		{"+86 138-0000-0000", "+8613800000000"},
		{"5550001111", "5550001111"},
	}

	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	once := NormalizePhone("(555) 123-4567")
	twice := NormalizePhone(once)
	if once != twice {
		t.Fatalf("normalization is not idempotent: %q != %q", once, twice)
	}
}

func TestNormalizePhoneEmptyPassesThrough(t *testing.T) {
	if got := NormalizePhone(""); got != "" {
		t.Fatalf("NormalizePhone(\"\") = %q, want empty string", got)
	}
}

func TestContactTableName(t *testing.T) {
	if got := (Contact{}).TableName(); got != "contacts" {
		t.Fatalf("TableName() = %q, want %q", got, "contacts")
	}
}
