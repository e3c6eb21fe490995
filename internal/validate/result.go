package validate

// Reason classifies a validation failure.
type Reason string

// Failure reasons. The zero Reason means the input is valid.
const (
	Required               Reason = "Required"
	Malformed              Reason = "Malformed"
	SelfTransferNotAllowed Reason = "SelfTransferNotAllowed"
	MalformedNumber        Reason = "MalformedNumber"
	InsufficientBalance    Reason = "InsufficientBalance"
)

// Result is the outcome of a validator. Validators never panic or return
// errors; a failure is a Result with a non-empty Reason.
type Result struct {
	Reason  Reason
	Message string
}

// Valid is the successful Result.
var Valid = Result{}

// OK reports whether the input passed validation.
func (r Result) OK() bool { return r.Reason == "" }

// String returns the human-readable message, or "" when valid.
func (r Result) String() string { return r.Message }

// Error lets a failed Result be returned where an error is expected.
func (r Result) Error() string {
	if r.OK() {
		return ""
	}
	return r.Message
}

// Err returns r as an error, or nil when valid.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	return r
}

func fail(reason Reason, msg string) Result {
	return Result{Reason: reason, Message: msg}
}
