package valueobjects

type ProbeFailureClass string

const (
	ProbeFailureClassTransient     ProbeFailureClass = "transient"
	ProbeFailureClassConfiguration ProbeFailureClass = "configuration"
	ProbeFailureClassUnknown       ProbeFailureClass = "unknown"
)

// ProbeFailureClassDetailKey is the AppError details key probe gateways use to
// report how a failed attempt was classified.
const ProbeFailureClassDetailKey = "failure_class"

func ProbeFailureClassFromDetails(details map[string]any) ProbeFailureClass {
	switch value := details[ProbeFailureClassDetailKey].(type) {
	case ProbeFailureClass:
		return value
	case string:
		switch ProbeFailureClass(value) {
		case ProbeFailureClassTransient, ProbeFailureClassConfiguration:
			return ProbeFailureClass(value)
		}
	}
	return ProbeFailureClassUnknown
}

func (c ProbeFailureClass) String() string {
	return string(c)
}
