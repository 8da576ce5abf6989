package pnppm

import "fmt"

// Classified error taxonomy (spec §7). These are the only errors this
// engine writes onto an AR's ErrClass/ErrCode fields.
const (
	ErrClassPPM = "PPM"

	ErrCodeInvalidState = "INVALID_STATE"
	ErrCodeInvalid       = "INVALID"
)

// Fault is a classified protocol error: state violations (PPM/INVALID_STATE
// from Activate and the data-plane accessors) and timer/send failures
// (PPM/INVALID). Every classified fault is written onto the AR; only
// PPM/INVALID is also reported to the connection manager collaborator.
type Fault struct {
	Class string
	Code  string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s/%s", f.Class, f.Code)
}

func invalidState() *Fault { return &Fault{Class: ErrClassPPM, Code: ErrCodeInvalidState} }
func invalid() *Fault      { return &Fault{Class: ErrClassPPM, Code: ErrCodeInvalid} }
