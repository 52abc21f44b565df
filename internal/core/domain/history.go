package domain

import "time"

// LookupEntry is one completed lookup kept for auditing.
type LookupEntry struct {
	ID          string            `json:"id"`
	Plate       string            `json:"plate"`
	VehicleType VehicleType       `json:"vehicleType"`
	Error       bool              `json:"error"`
	Message     string            `json:"message,omitempty"`
	Records     []ViolationRecord `json:"data"`
	Cached      bool              `json:"cached"`
	DurationMS  int64             `json:"durationMs"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// Result rebuilds the pipeline result this entry recorded.
func (e LookupEntry) Result() PipelineResult {
	return PipelineResult{Error: e.Error, Message: e.Message, Records: e.Records}
}
