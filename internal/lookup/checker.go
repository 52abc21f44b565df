package lookup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/infra/ocr"
)

// Messages carried by failed pipeline results.
const (
	MsgNoLocation = "could not obtain session/result location"
	MsgNoData     = "could not obtain result data"
)

// Checker runs the full lookup for one plate.
type Checker struct {
	query   *QuerySubmitter
	results *ResultFetcher
}

// NewChecker wires the three stages over one transport and recognizer.
func NewChecker(t Transport, rec ocr.Recognizer, cfg Config) *Checker {
	cfg = cfg.withDefaults()
	return &Checker{
		query:   NewQuerySubmitter(t, NewCaptchaSolver(t, rec, cfg), cfg),
		results: NewResultFetcher(t, cfg),
	}
}

// Check validates the input, then locates and parses the results page.
//
// Only input validation returns an error, and it does so before any network
// call. Every upstream failure is reported as PipelineResult.Error.
func (c *Checker) Check(
	ctx context.Context,
	plate string,
	vt domain.VehicleType,
) (domain.PipelineResult, error) {
	cleaned, vt, err := NormalizeInput(plate, vt)
	if err != nil {
		return domain.PipelineResult{}, err
	}

	loc, ok := c.query.Locate(ctx, cleaned, vt)
	if !ok {
		slog.Warn("Lookup failed", "plate", cleaned, "vehicle_type", vt, "reason", MsgNoLocation)
		return domain.PipelineResult{Error: true, Message: MsgNoLocation}, nil
	}

	out, ok := c.results.FetchWithRetry(ctx, loc)
	if !ok {
		slog.Warn("Lookup failed", "plate", cleaned, "vehicle_type", vt, "reason", MsgNoData)
		return domain.PipelineResult{Error: true, Message: MsgNoData}, nil
	}

	records := out.Records
	if records == nil {
		records = []domain.ViolationRecord{}
	}
	return domain.PipelineResult{Records: records}, nil
}

// NormalizeInput validates a raw plate and vehicle type and returns the
// cleaned plate with the type to query under.
func NormalizeInput(plate string, vt domain.VehicleType) (string, domain.VehicleType, error) {
	if err := domain.ValidatePlate(plate); err != nil {
		return "", "", err
	}
	vt, err := domain.ParseVehicleType(string(vt))
	if err != nil {
		return "", "", err
	}

	cleaned := domain.CleanPlate(plate)
	if cleaned == "" {
		return "", "", fmt.Errorf("%w: plate has no letters or digits", domain.ErrInvalidPlate)
	}
	if vt == "" {
		vt = domain.DetectVehicleType(cleaned)
	}
	return cleaned, vt, nil
}
