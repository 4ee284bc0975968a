package convert

import (
	"errors"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		value    string
		from, to int
		want     string
	}{
		{"255", 10, 16, "ff"},
		{"FF", 16, 10, "255"},
		{"0xff", 16, 2, "11111111"},
		{"101", 2, 10, "5"},
		{"0b101", 2, 8, "5"},
		{"777", 8, 10, "511"},
		{" 42 ", 10, 10, "42"},
		{"0", 10, 2, "0"},
		{"18446744073709551616", 10, 16, "10000000000000000"},
	}
	for _, tt := range tests {
		got, err := Convert(tt.value, tt.from, tt.to)
		if err != nil {
			t.Errorf("Convert(%q, %d, %d) error: %v", tt.value, tt.from, tt.to, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Convert(%q, %d, %d) = %q; want %q", tt.value, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		value    string
		from, to int
		want     error
	}{
		{"12", 2, 10, ErrMalformed},
		{"g", 16, 10, ErrMalformed},
		{"", 10, 2, ErrMalformed},
		{"-5", 10, 2, ErrMalformed},
		{"1_000", 10, 2, ErrMalformed},
		{"10", 3, 10, ErrUnsupportedBase},
		{"10", 10, 36, ErrUnsupportedBase},
	}
	for _, tt := range tests {
		_, err := Convert(tt.value, tt.from, tt.to)
		if !errors.Is(err, tt.want) {
			t.Errorf("Convert(%q, %d, %d) error = %v; want %v", tt.value, tt.from, tt.to, err, tt.want)
		}
	}
}
