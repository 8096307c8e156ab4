package version

import (
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		input string
		major uint16
		minor uint16
	}{
		{"1.0", 1, 0},
		{"1.1", 1, 1},
		{"2.0", 2, 0},
		{"10.23", 10, 23},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if v.Major != tt.major {
				t.Errorf("Major = %d, want %d", v.Major, tt.major)
			}
			if v.Minor != tt.minor {
				t.Errorf("Minor = %d, want %d", v.Minor, tt.minor)
			}
			if v.String() != tt.input {
				t.Errorf("String() = %q, want %q", v.String(), tt.input)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []string{
		"",
		"1",
		"abc",
		"1.0.0",
		"1.x",
		"-1.0",
		".1",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			if err == nil {
				t.Errorf("Parse(%q) should return error", input)
			}
		})
	}
}

func TestMustParsePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustParse(bad) did not panic")
		}
	}()
	MustParse("bad")
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"1.1", "1.0", 1},
		{"2.0", "1.9", 1},
		{"1.9", "2.0", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := MustParse(tt.a).Compare(MustParse(tt.b)); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCompatible(t *testing.T) {
	v := MustParse("1.1")
	if !v.Compatible(MustParse("1.0")) {
		t.Error("1.1 should be compatible with 1.0")
	}
	if v.Compatible(MustParse("2.0")) {
		t.Error("1.1 should not be compatible with 2.0")
	}
}

func TestHasTrailer(t *testing.T) {
	if MustParse(Legacy).HasTrailer() {
		t.Errorf("%s.HasTrailer() = true, want false", Legacy)
	}
	if !MustParse(Current).HasTrailer() {
		t.Errorf("%s.HasTrailer() = false, want true", Current)
	}
}

func TestForTrailer(t *testing.T) {
	if got := ForTrailer(true); got != Current {
		t.Errorf("ForTrailer(true) = %q, want %q", got, Current)
	}
	if got := ForTrailer(false); got != Legacy {
		t.Errorf("ForTrailer(false) = %q, want %q", got, Legacy)
	}
}
