package textutil

import "testing"

func TestPlainText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "  Chi siamo  ", want: "Chi siamo"},
		{in: "<b>New</b> & Co", want: "New & Co"},
		{in: "<script>alert(1)</script>Hello", want: "Hello"},
		{in: `<a href="https://example.com">x</a>`, want: "x"},
		{in: "   ", want: ""},
		{in: "Caffè &amp; cornetto", want: "Caffè & cornetto"},
	}
	for _, tc := range cases {
		if got := PlainText(tc.in); got != tc.want {
			t.Errorf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
