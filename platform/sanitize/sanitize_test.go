package sanitize

import "testing"

func TestStripHTML(t *testing.T) {
	cases := map[string]string{
		"<b>Jane</b>":                   "Jane",
		"  plain  ":                     "plain",
		"&lt;script&gt;x&lt;/script&gt;": "x",
		"Tom &amp; Jerry":               "Tom & Jerry",
	}
	for in, want := range cases {
		if got := StripHTML(in); got != want {
			t.Errorf("StripHTML(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextPtrBlankBecomesNil(t *testing.T) {
	if got := TextPtr(nil); got != nil {
		t.Fatalf("expected nil for nil input, got %q", *got)
	}
	blank := "<br/>  "
	if got := TextPtr(&blank); got != nil {
		t.Fatalf("expected nil for blank input, got %q", *got)
	}
	name := " <i>Ana</i> "
	got := TextPtr(&name)
	if got == nil || *got != "Ana" {
		t.Fatalf("expected Ana, got %v", got)
	}
}
