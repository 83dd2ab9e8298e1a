package sendflow

import "errors"

// FieldError is a user-correctable validation error scoped to a single field
// of the draft transaction. Field errors are recorded in state and aggregated
// into the draft status, never returned from operations.
type FieldError string

const (
	// amount field
	ErrInsufficientFunds  FieldError = "insufficientFunds"
	ErrInsufficientTokens FieldError = "insufficientTokens"
	ErrNegativeAmount     FieldError = "negativeValue"

	// recipient field
	ErrInvalidRecipientAddress FieldError = "invalidAddressRecipient"
	// Variant reported on networks that are not one of the recognized default
	// chains, where a mistyped address is more likely a wrong-network paste.
	ErrInvalidRecipientAddressNotDefaultNetwork FieldError = "invalidAddressRecipientNotEthNetwork"
	ErrContractAddressRecipient                 FieldError = "contractAddressError"

	// asset field
	ErrInvalidAssetType FieldError = "invalidAssetType"
)

// FieldWarning is a non-blocking recipient advisory.
type FieldWarning string

const WarnKnownAddressRecipient FieldWarning = "knownAddressRecipient"

// Hard failures. These indicate integration errors rather than user input
// problems and abort the operation that encountered them.
var (
	ErrNoDraftTransaction    = errors.New("sendflow: no current draft transaction")
	ErrAssetKindRequired     = errors.New("sendflow: asset kind is required")
	ErrAssetDetailsRequired  = errors.New("sendflow: asset details with a contract address are required")
	ErrUnsupportedStandard   = errors.New("sendflow: sends of ERC1155 tokens are not supported")
	ErrCollectibleNotOwned   = errors.New("sendflow: collectible is not owned by the sending account")
	ErrPendingTxNotFound     = errors.New("sendflow: pending transaction not found")
	ErrFormInvalid           = errors.New("sendflow: draft transaction is not valid for submission")
)

// ErrOwnershipUnverifiable is returned by BalanceReader implementations when
// collectible ownership could not be checked at all, as opposed to a definite
// not-owner answer.
var ErrOwnershipUnverifiable = errors.New("sendflow: unable to verify ownership")
