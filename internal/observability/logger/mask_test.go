package logger

import "testing"

func TestMask(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"bob":               "***",
		"alice":             "a…e",
		"alice@example.com": "a…@e….com",
		"  ñandú ":          "ñ…ú",
	}
	for in, want := range cases {
		if got := Mask(in); got != want {
			t.Errorf("Mask(%q) = %q, want %q", in, got, want)
		}
	}
}
