// Package form holds the editable state of one token operation (approve,
// transfer or mint) and derives whether it can be submitted.
//
// A Form moves through Editing → Submitting → Confirming → Idle. Every Set
// re-runs the validators; Submit packages the validated values into a
// contract.Call; Broadcast, Confirm and Fail report what the signing side
// observed. A Form is not safe for concurrent use; drive it from one
// goroutine.
package form

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/tokendash/internal/contract"
	"github.com/Mohsinsiddi/tokendash/internal/token"
	"github.com/Mohsinsiddi/tokendash/internal/validate"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNotSubmittable is returned by Submit when CanSubmit is false.
	ErrNotSubmittable = errors.New("form cannot be submitted")
	// ErrInvalidTransition is returned when a lifecycle event does not fit
	// the current phase.
	ErrInvalidTransition = errors.New("invalid form transition")
	// ErrUnknownField is returned by Set for a field the form does not have.
	ErrUnknownField = errors.New("unknown field")
)

// Kind is the operation a form performs.
type Kind string

const (
	KindApprove  Kind = "approve"
	KindTransfer Kind = "transfer"
	KindMint     Kind = "mint"
)

// ParseKind maps a command name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindApprove, KindTransfer, KindMint:
		return k, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// Field names an editable input.
type Field string

const (
	FieldRecipient Field = "recipient"
	FieldSpender   Field = "spender"
	FieldAmount    Field = "amount"
)

// Phase is the lifecycle position of a form.
type Phase int

const (
	Editing Phase = iota
	Submitting
	Confirming
	Idle
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Confirming:
		return "confirming"
	case Idle:
		return "idle"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Form is the state of one operation on one token.
type Form struct {
	kind    Kind
	tok     token.Token
	self    string
	ceiling *big.Int

	values  map[Field]string
	touched map[Field]bool

	phase   Phase
	pending *contract.Call
	hash    common.Hash
	banner  string
}

// New creates an empty form in the Editing phase. self is the connected
// account, used to reject sending or approving to oneself; pass "" when
// no wallet is known.
func New(kind Kind, tok token.Token, self string) *Form {
	return &Form{
		kind:    kind,
		tok:     tok,
		self:    self,
		values:  make(map[Field]string, 2),
		touched: make(map[Field]bool, 2),
	}
}

func (f *Form) Kind() Kind          { return f.kind }
func (f *Form) Token() token.Token  { return f.tok }
func (f *Form) Phase() Phase        { return f.phase }
func (f *Form) Banner() string      { return f.banner }
func (f *Form) TxHash() common.Hash { return f.hash }

// InFlight reports whether a submission is being signed or confirmed.
func (f *Form) InFlight() bool {
	return f.phase == Submitting || f.phase == Confirming
}

// Pending returns the call currently in flight.
func (f *Form) Pending() (contract.Call, bool) {
	if f.pending == nil {
		return contract.Call{}, false
	}
	return *f.pending, true
}

// AccountField is the address input: spender for approve, recipient otherwise.
func (f *Form) AccountField() Field {
	if f.kind == KindApprove {
		return FieldSpender
	}
	return FieldRecipient
}

// Fields lists the form's inputs in display order.
func (f *Form) Fields() []Field {
	return []Field{f.AccountField(), FieldAmount}
}

// SetBalance supplies the transfer ceiling. nil means unknown, which
// disables the balance check. Ignored by approve and mint.
func (f *Form) SetBalance(balance *big.Int) {
	if balance == nil {
		f.ceiling = nil
		return
	}
	f.ceiling = new(big.Int).Set(balance)
}

// Set records the text of a field. Edits are accepted in every phase; an
// in-flight submission is unaffected and keeps resolving on its own.
func (f *Form) Set(field Field, text string) error {
	if field != f.AccountField() && field != FieldAmount {
		return fmt.Errorf("%w %q for %s", ErrUnknownField, field, f.kind)
	}
	f.values[field] = text
	f.touched[field] = true
	if f.phase == Idle {
		f.phase = Editing
	}
	return nil
}

// Value returns the current text of a field.
func (f *Form) Value(field Field) string { return f.values[field] }

// FieldError is the inline error for a field, or "" when it is valid or
// untouched and empty.
func (f *Form) FieldError(field Field) string {
	if f.values[field] == "" && !f.touched[field] {
		return ""
	}
	switch field {
	case f.AccountField():
		return f.accountResult().Message
	case FieldAmount:
		_, r := f.amountResult()
		return r.Message
	}
	return ""
}

// CanSubmit reports whether every field validates and nothing is in flight.
func (f *Form) CanSubmit() bool {
	if f.InFlight() {
		return false
	}
	if !f.accountResult().OK() {
		return false
	}
	_, r := f.amountResult()
	return r.OK()
}

// Submit builds the call for the current inputs and moves to Submitting.
func (f *Form) Submit() (contract.Call, error) {
	if f.InFlight() {
		return contract.Call{}, fmt.Errorf("%w: %s already in flight", ErrNotSubmittable, f.kind)
	}
	if r := f.accountResult(); !r.OK() {
		return contract.Call{}, fmt.Errorf("%w: %s", ErrNotSubmittable, r.Message)
	}
	amount, r := f.amountResult()
	if !r.OK() {
		return contract.Call{}, fmt.Errorf("%w: %s", ErrNotSubmittable, r.Message)
	}

	account := common.HexToAddress(f.values[f.AccountField()])
	var call contract.Call
	switch f.kind {
	case KindApprove:
		call = contract.BuildApproveCall(f.tok, account, amount)
	case KindTransfer:
		call = contract.BuildTransferCall(f.tok, account, amount)
	case KindMint:
		call = contract.BuildMintCall(f.tok, account, amount)
	}

	f.pending = &call
	f.hash = common.Hash{}
	f.banner = ""
	f.phase = Submitting
	return call, nil
}

// Broadcast records that the signed transaction was sent as hash.
func (f *Form) Broadcast(hash common.Hash) error {
	if f.phase != Submitting {
		return fmt.Errorf("%w: broadcast while %s", ErrInvalidTransition, f.phase)
	}
	f.hash = hash
	f.phase = Confirming
	return nil
}

// Confirm records a successful receipt and clears the submitted fields.
func (f *Form) Confirm() error {
	if f.phase != Confirming {
		return fmt.Errorf("%w: confirm while %s", ErrInvalidTransition, f.phase)
	}
	for _, field := range f.Fields() {
		delete(f.values, field)
		delete(f.touched, field)
	}
	f.pending = nil
	f.banner = ""
	f.phase = Idle
	return nil
}

// Fail records a signing, broadcast or execution failure. Field values are
// kept so the user can correct and resubmit.
func (f *Form) Fail(err error) error {
	if !f.InFlight() {
		return fmt.Errorf("%w: fail while %s", ErrInvalidTransition, f.phase)
	}
	f.pending = nil
	f.banner = "Transaction failed"
	if err != nil {
		f.banner = err.Error()
	}
	f.phase = Editing
	return nil
}

// --- validation ---

func (f *Form) accountResult() validate.Result {
	self := f.self
	if f.kind == KindMint {
		self = "" // minting to oneself is allowed
	}
	return validate.ValidateAddress(f.values[f.AccountField()], self)
}

func (f *Form) amountResult() (*big.Int, validate.Result) {
	var ceiling *big.Int
	if f.kind == KindTransfer {
		ceiling = f.ceiling
	}
	return validate.ValidateAmount(f.values[FieldAmount], f.tok.Decimals, ceiling)
}
