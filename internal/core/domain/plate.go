package domain

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"
)

// MaxPlateLength is the longest raw plate accepted by the lookup.
const MaxPlateLength = 10

var (
	// ErrInvalidPlate is returned when a plate is empty or too long.
	ErrInvalidPlate = errors.New("invalid plate")

	// ErrInvalidVehicleType is returned for vehicle types other than "1" or "2".
	ErrInvalidVehicleType = errors.New("invalid vehicle type")
)

// VehicleType is the category code the lookup service tags a query with.
type VehicleType string

const (
	VehicleTypeCar       VehicleType = "1"
	VehicleTypeMotorbike VehicleType = "2"
)

var (
	nonAlphanumeric  = regexp.MustCompile(`[^a-zA-Z0-9]`)
	specialCarPlates = regexp.MustCompile(`^\d{2}(LD|DA)\d{4,6}$`)
)

// ParseVehicleType accepts "", "1" or "2". The empty string means "infer".
func ParseVehicleType(s string) (VehicleType, error) {
	switch VehicleType(s) {
	case "", VehicleTypeCar, VehicleTypeMotorbike:
		return VehicleType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidVehicleType, s)
	}
}

// ValidatePlate checks the raw plate before any cleaning.
func ValidatePlate(raw string) error {
	n := utf8.RuneCountInString(raw)
	if n == 0 {
		return fmt.Errorf("%w: plate is required", ErrInvalidPlate)
	}
	if n > MaxPlateLength {
		return fmt.Errorf("%w: plate must be at most %d characters", ErrInvalidPlate, MaxPlateLength)
	}
	return nil
}

// CleanPlate strips every character that is not an ASCII letter or digit.
func CleanPlate(plate string) string {
	return nonAlphanumeric.ReplaceAllString(plate, "")
}

// DetectVehicleType infers the vehicle category from a cleaned plate.
//
// Eight-character plates and the special series NNLD/NNDA followed by 4-6
// digits are cars; everything else is treated as a motorbike.
func DetectVehicleType(plate string) VehicleType {
	if len(plate) == 8 || specialCarPlates.MatchString(plate) {
		return VehicleTypeCar
	}
	return VehicleTypeMotorbike
}
