package utils

import "testing"

func TestShipTypeLabel(t *testing.T) {
	cases := []struct {
		code int
		want string
	}{
		{30, "Fishing"},
		{36, "Sailing"},
		{52, "Tug"},
		{60, "Passenger"},
		{69, "Passenger"},
		{70, "Cargo"},
		{79, "Cargo"},
		{80, "Tanker"},
		{89, "Tanker"},
		{0, "Other"},
		{255, "Other"},
	}
	for _, tc := range cases {
		if got := ShipTypeLabel(tc.code); got != tc.want {
			t.Errorf("ShipTypeLabel(%d) = %q, want %q", tc.code, got, tc.want)
		}
	}
}
