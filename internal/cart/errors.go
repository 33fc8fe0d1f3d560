package cart

import "errors"

// Reason identifies why the engine refused an operation. Every rejection is local and
// recoverable: the cart is left exactly as it was.
type Reason string

const (
	ReasonStockInsufficient    Reason = "stock_insufficient"
	ReasonEmptyCart            Reason = "empty_cart"
	ReasonCustomerRequired     Reason = "customer_required"
	ReasonProductNotFound      Reason = "product_not_found"
	ReasonItemNotInCart        Reason = "item_not_in_cart"
	ReasonCheckoutInProgress   Reason = "checkout_in_progress"
	ReasonInvalidPaymentStatus Reason = "invalid_payment_status"
)

type RejectionError struct {
	Reason  Reason
	message string
}

func (e *RejectionError) Error() string {
	return e.message
}

var (
	ErrStockInsufficient    = &RejectionError{ReasonStockInsufficient, "stock insufficient"}
	ErrEmptyCart            = &RejectionError{ReasonEmptyCart, "cart is empty"}
	ErrCustomerRequired     = &RejectionError{ReasonCustomerRequired, "customer required for unpaid sale"}
	ErrProductNotFound      = &RejectionError{ReasonProductNotFound, "product not found in catalog"}
	ErrItemNotInCart        = &RejectionError{ReasonItemNotInCart, "item not in cart"}
	ErrCheckoutInProgress   = &RejectionError{ReasonCheckoutInProgress, "checkout already in progress"}
	ErrInvalidPaymentStatus = &RejectionError{ReasonInvalidPaymentStatus, "invalid payment status"}
)

// ReasonOf returns the rejection reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var rejection *RejectionError
	if errors.As(err, &rejection) {
		return rejection.Reason, true
	}
	return "", false
}

// FallbackSubmissionMessage is shown when the order endpoint failed without a usable message.
const FallbackSubmissionMessage = "Gagal menyimpan transaksi"

// SubmissionError reports a failed order submission. Message is the backend's own message when it
// sent one. The cart is not cleared, so the same contents can be submitted again.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// userMessager is implemented by collaborator errors that carry a message meant for the operator.
type userMessager interface {
	UserMessage() string
}

func newSubmissionError(err error) *SubmissionError {
	msg := FallbackSubmissionMessage
	var m userMessager
	if errors.As(err, &m) && m.UserMessage() != "" {
		msg = m.UserMessage()
	}
	return &SubmissionError{Message: msg, Err: err}
}
