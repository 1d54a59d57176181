package workflow

import "errors"

// Validation failures. Each blocks only the action that raised it.
var (
	ErrInventoryEmpty    = errors.New("inventory data is empty")
	ErrNoItems           = errors.New("at least one drug is required")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrUnknownDrug       = errors.New("drug not found in inventory")
	ErrInsufficientStock = errors.New("quantity exceeds stock on hand")
	ErrUnknownHospital   = errors.New("hospital not found")
	ErrUnknownOrder      = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrStatusRegression  = errors.New("status would move the order backwards")

	ErrArtifactRequired    = errors.New("a verification document must be uploaded")
	ErrVerificationPending = errors.New("hospital verification is pending")
	ErrHospitalRejected    = errors.New("hospital verification was rejected")
	ErrHospitalFields      = errors.New("hospital id and name are required")
	ErrDuplicateHospital   = errors.New("hospital id already exists")
)

// ErrPersistence wraps failures to write a table. The computed result is
// still returned alongside it.
var ErrPersistence = errors.New("could not save data")
