package sizeof

import "testing"

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"1KiB", 1024},
		{"1.5GB", 1_500_000_000},
		{"512", 512},
		{"2 MB", 2_000_000},
		{"1 TiB", 1024 * 1024 * 1024 * 1024},
	}
	for _, c := range cases {
		got, err := ParseSize(c.in)
		if err != nil {
			t.Fatalf("ParseSize(%q): unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseSize(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestParseSizeRejectsInvalid(t *testing.T) {
	for _, in := range []string{"", "0", "-5MB", "abc", "5XB"} {
		if _, err := ParseSize(in); err == nil {
			t.Errorf("ParseSize(%q): expected error, got nil", in)
		}
	}
}

func TestFormatSize(t *testing.T) {
	if got := FormatSize(1024, true); got != "1 KiB" {
		t.Errorf("FormatSize(1024, true) = %q, want %q", got, "1 KiB")
	}
	if got := FormatSize(1000, false); got != "1 KB" {
		t.Errorf("FormatSize(1000, false) = %q, want %q", got, "1 KB")
	}
}

func TestEstimate(t *testing.T) {
	if Estimate(nil) != 8 {
		t.Error("nil should estimate to 8")
	}
	if Estimate(true) != 4 {
		t.Error("bool should estimate to 4")
	}
	if Estimate("ab") != 4 {
		t.Error("2-char string should estimate to 4")
	}
	arr := []interface{}{"a", 1}
	if Estimate(arr) != 24+2+8 {
		t.Errorf("array estimate mismatch: got %d", Estimate(arr))
	}
}

func TestEstimateCycle(t *testing.T) {
	m := map[string]interface{}{}
	m["self"] = m
	if got := Estimate(m); got <= 0 {
		t.Errorf("cyclic value should still produce a finite estimate, got %d", got)
	}
}
