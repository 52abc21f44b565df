package lookup

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vietddude/finecheck/internal/core/domain"
)

var sampleValues = [8]string{
	"51L-400.65",
	"Nền mầu trắng, chữ và số màu đen",
	"Ô tô",
	"10:20, 01/02/2024",
	"Quốc lộ 1A, Bình Chánh, TP. Hồ Chí Minh",
	"12321.5.9.a.01.Điều khiển xe chạy quá tốc độ quy định",
	"Chưa xử phạt",
	"Đội CSGT đường bộ số 1",
}

func formGroup(label, value string) string {
	return fmt.Sprintf(
		`<div class="form-group"><label class="control-label col-md-3">%s</label><div class="col-md-9">%s</div></div>`,
		label, value,
	)
}

func violationFragment(values [8]string, extra ...string) string {
	var b strings.Builder
	for i, v := range values {
		b.WriteString(formGroup(fmt.Sprintf("Nhãn %d:", i+1), v))
		b.WriteString("\n")
	}
	for _, e := range extra {
		fmt.Fprintf(&b, `<div class="form-group">%s</div>`+"\n", e)
	}
	return b.String()
}

func resultPage(fragments ...string) string {
	return `<!DOCTYPE html><html><head><meta charset="utf-8"><title>Tra cứu</title></head><body>
<div class="content"><div id="bodyPrint123">
` + strings.Join(fragments, "\n<hr style=\"margin-bottom: 25px;\">\n") + `
</div></div></body></html>`
}

func TestParseResultPage_MissingContainer(t *testing.T) {
	out := ParseResultPage([]byte(`<html><body><div id="other">x</div></body></html>`))
	if !out.Retry {
		t.Error("missing container must ask for retry")
	}
}

func TestParseResultPage_NoResults(t *testing.T) {
	page := `<html><body><div id="bodyPrint123"><div class="xe_texterror">Không tìm thấy kết quả !</div></div></body></html>`
	out := ParseResultPage([]byte(page))
	if out.Retry {
		t.Error("no-results page must not ask for retry")
	}
	if out.Records == nil || len(out.Records) != 0 {
		t.Errorf("expected empty non-nil records, got %#v", out.Records)
	}
}

func TestParseResultPage_TwoViolationsWithExtraUnit(t *testing.T) {
	second := sampleValues
	second[3] = "08:00, 05/03/2024"

	page := resultPage(
		violationFragment(sampleValues, "1. Đội CSGT đường bộ số 1 - Phòng CSGT"),
		violationFragment(second, "1. Công an huyện Bình Chánh"),
	)

	out := ParseResultPage([]byte(page))
	if out.Retry {
		t.Fatal("unexpected retry")
	}
	if len(out.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out.Records))
	}

	first := out.Records[0]
	for i, key := range domain.RecordSchema {
		if got := first.Field(key); got != sampleValues[i] {
			t.Errorf("record 0 field %s = %q, want %q", key, got, sampleValues[i])
		}
	}
	if len(first.ResolvingUnit) != 1 || first.ResolvingUnit[0] != "1. Đội CSGT đường bộ số 1 - Phòng CSGT" {
		t.Errorf("unexpected resolving units %q", first.ResolvingUnit)
	}

	if out.Records[1].ViolationTime != "08:00, 05/03/2024" {
		t.Errorf("second record took the wrong fragment: %q", out.Records[1].ViolationTime)
	}
	if len(out.Records[1].ResolvingUnit) != 1 || out.Records[1].ResolvingUnit[0] != "1. Công an huyện Bình Chánh" {
		t.Errorf("unexpected resolving units %q", out.Records[1].ResolvingUnit)
	}
}

func TestParseResultPage_LabelledFieldPastSchema(t *testing.T) {
	frag := violationFragment(sampleValues) + formGroup("Nơi giải quyết vụ việc:", "Đội 2")
	out := ParseResultPage([]byte(resultPage(frag)))
	if len(out.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out.Records))
	}
	units := out.Records[0].ResolvingUnit
	if len(units) != 1 || units[0] != "Nơi giải quyết vụ việc:Đội 2" {
		t.Errorf("unexpected resolving units %q", units)
	}
}

func TestParseResultPage_SkipKeepsPosition(t *testing.T) {
	frag := formGroup("Biển kiểm soát:", "30A-123.45") +
		formGroup("Màu biển:", "") +
		formGroup("Loại phương tiện:", "Ô tô")

	out := ParseResultPage([]byte(resultPage(frag)))
	if len(out.Records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out.Records))
	}
	rec := out.Records[0]
	if rec.Plate != "30A-123.45" {
		t.Errorf("plate = %q", rec.Plate)
	}
	if rec.PlateColor != "" {
		t.Errorf("skipped field must leave plateColor empty, got %q", rec.PlateColor)
	}
	if rec.VehicleType != "Ô tô" {
		t.Errorf("third group must land in vehicleType, got %q", rec.VehicleType)
	}
}

func TestParseResultPage_FragmentsWithoutFieldsRetry(t *testing.T) {
	page := `<html><body><div id="bodyPrint123"><p>Đang tải dữ liệu...</p></div></body></html>`
	out := ParseResultPage([]byte(page))
	if !out.Retry {
		t.Error("fragments that yield no record must ask for retry")
	}
	if len(out.Records) != 0 {
		t.Errorf("expected no records, got %d", len(out.Records))
	}
}

func TestParseResultPage_EmptyContainer(t *testing.T) {
	out := ParseResultPage([]byte(`<html><body><div id="bodyPrint123">  
	</div></body></html>`))
	if out.Retry {
		t.Error("empty container has nothing to retry")
	}
	if len(out.Records) != 0 {
		t.Errorf("expected no records, got %d", len(out.Records))
	}
}

func TestParseResultPage_OtherRulesDoNotSplit(t *testing.T) {
	frag := formGroup("Biển kiểm soát:", "30A-123.45") + `<hr>` + formGroup("Màu biển:", "Trắng")
	out := ParseResultPage([]byte(resultPage(frag)))
	if len(out.Records) != 1 {
		t.Fatalf("plain <hr> must not split, got %d records", len(out.Records))
	}
	if out.Records[0].PlateColor != "Trắng" {
		t.Errorf("plateColor = %q", out.Records[0].PlateColor)
	}
}

func TestParseResultPage_SeparatorInsideWrapper(t *testing.T) {
	second := sampleValues
	second[0] = "30A-999.99"

	page := `<html><body><div id="bodyPrint123"><div class="wrap">` +
		violationFragment(sampleValues) +
		`<hr style="margin-bottom: 25px;">` +
		violationFragment(second) +
		`</div></div></body></html>`

	out := ParseResultPage([]byte(page))
	if out.Retry {
		t.Fatal("unexpected retry")
	}
	if len(out.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out.Records))
	}
	if len(out.Records[0].ResolvingUnit) != 0 {
		t.Errorf("second violation leaked into resolving units: %q", out.Records[0].ResolvingUnit)
	}
	if out.Records[1].Plate != "30A-999.99" {
		t.Errorf("second record plate = %q", out.Records[1].Plate)
	}
	if out.Records[1].DetectingUnit != sampleValues[7] {
		t.Errorf("second record detectingUnit = %q", out.Records[1].DetectingUnit)
	}
}

func TestParseResultPage_SeparatorsAtMixedDepths(t *testing.T) {
	third := sampleValues
	third[0] = "29B-111.11"

	page := `<html><body><div id="bodyPrint123"><section>` +
		violationFragment(sampleValues) +
		`<hr style="margin-bottom: 25px;">` +
		violationFragment(sampleValues) +
		`</section><hr style="margin-bottom: 25px;">` +
		violationFragment(third) +
		`</div></body></html>`

	out := ParseResultPage([]byte(page))
	if len(out.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out.Records))
	}
	if out.Records[2].Plate != "29B-111.11" {
		t.Errorf("records out of document order, last plate = %q", out.Records[2].Plate)
	}
}
