package domain

import (
	"errors"
	"testing"
)

func TestDetectVehicleType(t *testing.T) {
	tests := []struct {
		plate  string
		expect VehicleType
	}{
		{"51L40065", VehicleTypeCar},
		{"30A12345", VehicleTypeCar},
		{"37LD00097", VehicleTypeCar},
		{"29DA1234", VehicleTypeCar},
		{"29DA123456", VehicleTypeCar},
		{"29DA123", VehicleTypeMotorbike},
		{"29ld12345", VehicleTypeMotorbike},
		{"59X312345", VehicleTypeMotorbike},
		{"30A1234", VehicleTypeMotorbike},
		{"", VehicleTypeMotorbike},
	}

	for _, tt := range tests {
		if got := DetectVehicleType(tt.plate); got != tt.expect {
			t.Errorf("DetectVehicleType(%q) = %q, want %q", tt.plate, got, tt.expect)
		}
	}
}

func TestDetectVehicleType_AnyEightAlphanumerics(t *testing.T) {
	for _, plate := range []string{"ABCDEFGH", "12345678", "a1b2c3d4"} {
		if got := DetectVehicleType(plate); got != VehicleTypeCar {
			t.Errorf("DetectVehicleType(%q) = %q, want car", plate, got)
		}
	}
}

func TestCleanPlate(t *testing.T) {
	if got := CleanPlate("51L-400.65"); got != "51L40065" {
		t.Errorf("CleanPlate = %q", got)
	}
	if got := CleanPlate(" 37-LD 000.97 "); got != "37LD00097" {
		t.Errorf("CleanPlate = %q", got)
	}
}

func TestValidatePlate(t *testing.T) {
	if err := ValidatePlate(""); !errors.Is(err, ErrInvalidPlate) {
		t.Errorf("expected ErrInvalidPlate for empty plate, got %v", err)
	}
	if err := ValidatePlate("51L-400.651"); !errors.Is(err, ErrInvalidPlate) {
		t.Errorf("expected ErrInvalidPlate for long plate, got %v", err)
	}
	if err := ValidatePlate("51L-400.65"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseVehicleType(t *testing.T) {
	for _, s := range []string{"", "1", "2"} {
		if _, err := ParseVehicleType(s); err != nil {
			t.Errorf("ParseVehicleType(%q) unexpected error: %v", s, err)
		}
	}
	if _, err := ParseVehicleType("3"); !errors.Is(err, ErrInvalidVehicleType) {
		t.Errorf("expected ErrInvalidVehicleType, got %v", err)
	}
}

func TestCaptchaSolution_Valid(t *testing.T) {
	tests := []struct {
		sol    CaptchaSolution
		expect bool
	}{
		{CaptchaSolution{Session: "PHPSESSID=abc", Text: "a1b2c3"}, true},
		{CaptchaSolution{Session: "", Text: "a1b2c3"}, false},
		{CaptchaSolution{Session: "PHPSESSID=abc", Text: "a1b2c"}, false},
		{CaptchaSolution{Session: "PHPSESSID=abc", Text: "a1b2c3d"}, false},
		{CaptchaSolution{Session: "PHPSESSID=abc", Text: "A1B2C3"}, false},
	}
	for _, tt := range tests {
		if got := tt.sol.Valid(); got != tt.expect {
			t.Errorf("%+v.Valid() = %v, want %v", tt.sol, got, tt.expect)
		}
	}
}

func TestResultLocation_ValidFor(t *testing.T) {
	base := "https://www.csgt.vn"
	ok := ResultLocation{URL: base + "/tra-cuu?id=1", Session: "PHPSESSID=x"}
	if !ok.ValidFor(base) {
		t.Error("expected location to be valid")
	}
	if (ResultLocation{URL: "https://evil.example/login", Session: "PHPSESSID=x"}).ValidFor(base) {
		t.Error("foreign URL must be rejected")
	}
	if (ResultLocation{URL: base + "/x"}).ValidFor(base) {
		t.Error("missing session must be rejected")
	}
}

func TestViolationRecord_FieldsOrder(t *testing.T) {
	var rec ViolationRecord
	for i, key := range RecordSchema {
		rec.SetField(key, string(rune('a'+i)))
	}
	got := rec.Fields()
	want := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Fields()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if rec.Field(FieldDetectingUnit) != "h" {
		t.Errorf("unexpected detecting unit: %q", rec.DetectingUnit)
	}
}
