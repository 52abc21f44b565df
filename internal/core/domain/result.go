package domain

// ParseOutcome is what one pass over the results page produced.
type ParseOutcome struct {
	Retry   bool              `json:"retry"`
	Records []ViolationRecord `json:"data"`
}

// PipelineResult is the terminal value of a lookup.
//
// Error=false with no records is a confirmed clean plate. Error=true means the
// pipeline could not complete and Message says which stage gave up.
type PipelineResult struct {
	Error   bool              `json:"error"`
	Message string            `json:"message,omitempty"`
	Records []ViolationRecord `json:"data"`
}
