package postgres

import (
	"testing"
	"time"

	"github.com/vietddude/finecheck/internal/core/domain"
	"github.com/vietddude/finecheck/internal/infra/storage"
)

var _ storage.HistoryRepository = (*HistoryRepo)(nil)

func TestViolationRowRoundTrip(t *testing.T) {
	rec := domain.ViolationRecord{
		Plate:         "51L-400.65",
		ViolationTime: "10:20, 01/02/2024",
		Status:        "Chưa xử phạt",
		ResolvingUnit: []string{"1. Đội CSGT số 1", "Địa chỉ: 123 Đường A"},
	}

	row := toViolationRow("id-1", 3, rec)
	if row.LookupID != "id-1" || row.Position != 3 {
		t.Fatalf("unexpected key columns: %s/%d", row.LookupID, row.Position)
	}
	if len(row.ResolvingUnits) != 2 {
		t.Fatalf("expected 2 resolving units, got %d", len(row.ResolvingUnits))
	}

	got := row.toDomain()
	if got.Plate != rec.Plate || got.Status != rec.Status || got.ViolationTime != rec.ViolationTime {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if len(got.ResolvingUnit) != 2 || got.ResolvingUnit[1] != "Địa chỉ: 123 Đường A" {
		t.Errorf("resolving units mismatch: %v", got.ResolvingUnit)
	}
}

func TestViolationRow_EmptyResolvingUnits(t *testing.T) {
	got := toViolationRow("id", 0, domain.ViolationRecord{Plate: "x"}).toDomain()
	if got.ResolvingUnit != nil {
		t.Errorf("expected nil resolving units, got %v", got.ResolvingUnit)
	}
}

func TestAssembleEntries(t *testing.T) {
	now := time.Now()
	rows := []lookupRow{
		{ID: "b", Plate: "p", VehicleType: "1", CreatedAt: now},
		{ID: "a", Plate: "p", VehicleType: "1", Error: true, Message: "m", CreatedAt: now.Add(-time.Minute)},
	}
	vrows := []violationRow{
		{LookupID: "b", Position: 0, Plate: "first"},
		{LookupID: "b", Position: 1, Plate: "second"},
		{LookupID: "zz", Position: 0, Plate: "orphan"},
	}

	got := assembleEntries(rows, vrows)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "b" || len(got[0].Records) != 2 || got[0].Records[1].Plate != "second" {
		t.Errorf("unexpected first entry: %+v", got[0])
	}
	if got[1].Records == nil || len(got[1].Records) != 0 {
		t.Errorf("entry without violations should have empty non-nil records")
	}
	if !got[1].Error || got[1].Message != "m" {
		t.Errorf("lookup columns not carried over: %+v", got[1])
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no migrations embedded")
	}
}
