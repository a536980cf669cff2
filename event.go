package appgridlog

import (
	"fmt"
	"strconv"
)

// LogEventOptions describes a single event before encoding.
type LogEventOptions struct {
	Message      string
	FacilityCode int
	ErrorCode    int

	// Free-form dimension slots. Nil means the slot is absent.
	Dim1 any
	Dim2 any
	Dim3 any
	Dim4 any
}

// Dimensions are the four analytics tags sent with an event.
type Dimensions struct {
	Dim1 any `json:"dim1,omitempty"`
	Dim2 any `json:"dim2,omitempty"`
	Dim3 any `json:"dim3,omitempty"`
	Dim4 any `json:"dim4,omitempty"`
}

// LogEvent is the payload POSTed to AppGrid.
type LogEvent struct {
	Code       int        `json:"code"`
	Message    string     `json:"message"`
	Dimensions Dimensions `json:"dimensions"`
}

// String gives a one-line description for diagnostics.
func (e LogEvent) String() string {
	return fmt.Sprintf("{code: %d, message: %q, dimensions: %+v}", e.Code, e.Message, e.Dimensions)
}

// ComputeCode joins the decimal digits of facilityCode and errorCode and
// parses the result, so (1, 23) and (12, 3) both yield 123 and (1, 3) yields 13.
func ComputeCode(facilityCode, errorCode int) (int, error) {
	if facilityCode < 0 || errorCode < 0 {
		return 0, &SerializationError{
			What: "code",
			Err:  fmt.Errorf("facility code %d and error code %d must be non-negative", facilityCode, errorCode),
		}
	}
	code, err := strconv.Atoi(strconv.Itoa(facilityCode) + strconv.Itoa(errorCode))
	if err != nil {
		return 0, &SerializationError{What: "code", Err: err}
	}
	return code, nil
}

// BuildEvent encodes opts and metadata into the wire payload.
func BuildEvent(opts LogEventOptions, metadata []any) (LogEvent, error) {
	message, err := BuildMessage(opts.Message, metadata)
	if err != nil {
		return LogEvent{}, err
	}
	code, err := ComputeCode(opts.FacilityCode, opts.ErrorCode)
	if err != nil {
		return LogEvent{}, err
	}
	return LogEvent{
		Code:    code,
		Message: message,
		Dimensions: Dimensions{
			Dim1: opts.Dim1,
			Dim2: opts.Dim2,
			Dim3: opts.Dim3,
			Dim4: opts.Dim4,
		},
	}, nil
}
