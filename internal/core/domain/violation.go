package domain

// FieldKey names one positional slot of a violation record.
type FieldKey string

const (
	FieldPlate         FieldKey = "plate"
	FieldPlateColor    FieldKey = "plateColor"
	FieldVehicleType   FieldKey = "vehicleType"
	FieldViolationTime FieldKey = "violationTime"
	FieldLocation      FieldKey = "location"
	FieldViolationType FieldKey = "violationType"
	FieldStatus        FieldKey = "status"
	FieldDetectingUnit FieldKey = "detectingUnit"
)

// RecordSchema is the order in which the results page lists a violation's
// fields. The n-th labelled field on the page fills the n-th key.
var RecordSchema = [...]FieldKey{
	FieldPlate,
	FieldPlateColor,
	FieldVehicleType,
	FieldViolationTime,
	FieldLocation,
	FieldViolationType,
	FieldStatus,
	FieldDetectingUnit,
}

// ViolationRecord is one infraction parsed from the results page.
type ViolationRecord struct {
	Plate         string   `json:"plate"`
	PlateColor    string   `json:"plateColor"`
	VehicleType   string   `json:"vehicleType"`
	ViolationTime string   `json:"violationTime"`
	Location      string   `json:"location"`
	ViolationType string   `json:"violationType"`
	Status        string   `json:"status"`
	DetectingUnit string   `json:"detectingUnit"`
	ResolvingUnit []string `json:"resolvingUnit,omitempty"`
}

// Field returns the value stored under key.
func (r *ViolationRecord) Field(key FieldKey) string {
	if p := r.slot(key); p != nil {
		return *p
	}
	return ""
}

// SetField stores value under key. Unknown keys are ignored.
func (r *ViolationRecord) SetField(key FieldKey, value string) {
	if p := r.slot(key); p != nil {
		*p = value
	}
}

// Fields returns the schema fields in declaration order.
func (r *ViolationRecord) Fields() []string {
	out := make([]string, len(RecordSchema))
	for i, key := range RecordSchema {
		out[i] = r.Field(key)
	}
	return out
}

func (r *ViolationRecord) slot(key FieldKey) *string {
	switch key {
	case FieldPlate:
		return &r.Plate
	case FieldPlateColor:
		return &r.PlateColor
	case FieldVehicleType:
		return &r.VehicleType
	case FieldViolationTime:
		return &r.ViolationTime
	case FieldLocation:
		return &r.Location
	case FieldViolationType:
		return &r.ViolationType
	case FieldStatus:
		return &r.Status
	case FieldDetectingUnit:
		return &r.DetectingUnit
	}
	return nil
}
