package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		input  string
		region string
		want   string
	}{
		{"+1 (415) 555-2671", "US", "+14155552671"},
		{"415-555-2671", "US", "+14155552671"},
		{"415-555-2671", "", "+14155552671"},
		{"06 12345678", "NL", "+31612345678"},
		{"  ", "US", ""},
		{"not a number", "US", "not a number"},
		{"+1555", "US", "+1555"},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.input, tc.region); got != tc.want {
			t.Errorf("NormalizeE164(%q, %q) = %q, want %q", tc.input, tc.region, got, tc.want)
		}
	}
}
