package field

import "testing"

func TestParse_States(t *testing.T) {
	cases := []struct {
		in    string
		state State
		value float64
	}{
		{"", Unset, 0},
		{"   ", Unset, 0},
		{"120.50", Value, 120.5},
		{"120,50", Value, 120.5},
		{" 85000 ", Value, 85000},
		{"0", Value, 0},
		{"12m2", Invalid, 0},
		{"--", Invalid, 0},
		{"1.2.3", Invalid, 0},
	}
	for _, tc := range cases {
		d := Parse(tc.in)
		if d.State() != tc.state {
			t.Errorf("Parse(%q).State() = %v; want %v", tc.in, d.State(), tc.state)
			continue
		}
		if v, ok := d.Float(); tc.state == Value && (v != tc.value || !ok) {
			t.Errorf("Parse(%q).Float() = (%v, %v); want (%v, true)", tc.in, v, ok, tc.value)
		}
	}
}

func TestParse_InvalidCarriesReason(t *testing.T) {
	d := Parse("12m2")
	if d.Reason() == "" {
		t.Fatalf("invalid input must carry a reason")
	}
	if d.Raw() != "12m2" {
		t.Fatalf("raw = %q; want original input", d.Raw())
	}
	if d.Ptr() != nil {
		t.Fatalf("invalid input must not yield a number")
	}
}

func TestPtr(t *testing.T) {
	if Parse("").Ptr() != nil {
		t.Fatalf("unset Ptr must be nil")
	}
	p := Parse("120.50").Ptr()
	if p == nil || *p != 120.5 {
		t.Fatalf("Ptr = %v; want 120.5", p)
	}
}

func TestFromFloat(t *testing.T) {
	if FromFloat(nil).State() != Unset {
		t.Fatalf("nil hydrates to Unset")
	}
	v := 42.5
	d := FromFloat(&v)
	if got, ok := d.Float(); !ok || got != 42.5 {
		t.Fatalf("FromFloat = (%v, %v)", got, ok)
	}
	if d.Raw() != "42.5" {
		t.Fatalf("raw = %q; want 42.5", d.Raw())
	}
}
