package lookup

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vietddude/finecheck/internal/core/domain"
)

// Format selects how a result is rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "", "text" or "json". Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// Render formats a result for display.
func Render(plate string, result domain.PipelineResult, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.Marshal(result)
		if err != nil {
			return "", fmt.Errorf("marshal result: %w", err)
		}
		return string(data), nil
	case FormatText, "":
		return RenderText(plate, result), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

// RenderText describes a result as a short Vietnamese message.
func RenderText(plate string, result domain.PipelineResult) string {
	if result.Error {
		return fmt.Sprintf("Xin lỗi, hiện tại tôi không thể kiểm tra thông tin vi phạm giao thông "+
			"cho biển số xe %s. Bạn có thể thử lại sau hoặc cung cấp một biển số khác để tôi kiểm tra.", plate)
	}

	if len(result.Records) == 0 {
		return fmt.Sprintf("Biển số xe %s không có vi phạm nào được ghi nhận. "+
			"Nếu bạn cần kiểm tra thêm thông tin về biển số khác, hãy cho tôi biết!", plate)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Biển số xe %s có %d vi phạm giao thông.\n", plate, len(result.Records))
	for i, r := range result.Records {
		fmt.Fprintf(&b, "\n- Lỗi %d:\n", i+1)
		fmt.Fprintf(&b, "  - Thời gian vi phạm: %s\n", r.ViolationTime)
		fmt.Fprintf(&b, "  - Địa điểm: %s\n", r.Location)
		fmt.Fprintf(&b, "  - Loại vi phạm: %s\n", r.ViolationType)
		fmt.Fprintf(&b, "  - Trạng thái: %s\n", r.Status)
		fmt.Fprintf(&b, "  - Đơn vị phát hiện: %s\n", r.DetectingUnit)
		fmt.Fprintf(&b, "  - Đơn vị giải quyết: %s\n", strings.Join(r.ResolvingUnit, ", "))
	}
	return b.String()
}
