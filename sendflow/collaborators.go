package sendflow

import (
	"context"
	"math/big"

	"github.com/0xsequence/sendkit/gasfee"
	"github.com/ethereum/go-ethereum/common"
)

// The send flow never talks to a node or a wallet backend directly. All of
// its chain inputs arrive through the narrow capability interfaces below,
// owned by the embedding application.

// Account is an address/balance pair for the sending account.
type Account struct {
	Address common.Address
	Balance *big.Int
}

// NetworkContext carries the chain facts the flow needs to validate drafts
// and shape transaction parameters. It is supplied at initialization and
// again whenever the network changes.
type NetworkContext struct {
	ChainID        *big.Int
	EIP1559Support bool

	// IsMultiLayerFeeNetwork marks rollups that charge a separate
	// settlement-layer fee on top of the local gas fee.
	IsMultiLayerFeeNetwork bool

	// IsDefaultNetwork marks the recognized default chains; it selects which
	// invalid-recipient error variant is reported.
	IsDefaultNetwork bool

	BlockGasLimit *big.Int
	NativeTicker  string
}

// GasLimitRequest is the input snapshot for a gas limit estimation.
type GasLimitRequest struct {
	GasPrice      *big.Int
	BlockGasLimit *big.Int
	FromAddress   common.Address
	Token         *TokenDetails // nil for native sends
	To            string
	Value         *big.Int
	Data          string
	ChainID       *big.Int
}

// GasFeeEstimator starts and stops background gas fee polling and exposes the
// latest estimate snapshot. *gasfee.Poller satisfies this interface.
type GasFeeEstimator interface {
	StartPolling(ctx context.Context) (pollToken string, err error)
	StopPolling(pollToken string)
	LatestEstimates() gasfee.Estimates
}

// GasLimitEstimator estimates the gas limit for a send. A nil result with a
// nil error means no better estimate is available and the caller keeps its
// baseline.
type GasLimitEstimator interface {
	EstimateGasLimit(ctx context.Context, req GasLimitRequest) (*big.Int, error)
}

// Layer1FeeEstimator fetches the settlement-layer fee total on multi-layer
// fee networks.
type Layer1FeeEstimator interface {
	EstimateLayer1Fee(ctx context.Context, params TxParams) (*big.Int, error)
}

// NameResolver resolves a domain name typed into the recipient field to an
// address. *nameres.Resolver satisfies this interface.
type NameResolver interface {
	ResolveName(ctx context.Context, name string) (common.Address, bool, error)
}

// BalanceReader answers asset balance and ownership questions.
// IsCollectibleOwner returns ErrOwnershipUnverifiable (possibly wrapped) when
// the check could not be performed at all, which is distinct from a definite
// false.
type BalanceReader interface {
	ERC20Balance(ctx context.Context, token TokenDetails, owner common.Address) (*big.Int, error)
	IsCollectibleOwner(ctx context.Context, owner, contract common.Address, tokenID *big.Int) (bool, error)
	TokenStandard(ctx context.Context, contract, owner common.Address) (TokenStandard, error)
}

// AddressBook exposes the user's saved contacts and token lists.
type AddressBook interface {
	// EntryName returns the saved nickname for an address, if any.
	EntryName(address string) (string, bool)
	// KnownTokenAddresses lists the token contract addresses known to the
	// wallet, used for the known-recipient warning.
	KnownTokenAddresses() []common.Address
	// UserTokens lists the tokens tracked in the user's wallet.
	UserTokens() []TokenDetails
}

// TxKind tags a submitted transaction for the transaction service.
type TxKind string

const (
	TxSimpleSend              TxKind = "simpleSend"
	TxTokenTransfer           TxKind = "transfer"
	TxCollectibleTransferFrom TxKind = "transferfrom"
)

// PendingTransaction is a transaction already submitted to the transaction
// service but not yet confirmed, as seen by the edit flow.
type PendingTransaction struct {
	ID                    string
	Params                TxParams
	UserEditedGasLimit    bool
	DappSuggestedGasLimit *big.Int
}

// TransactionService creates and updates pending transactions.
type TransactionService interface {
	SubmitNewTransaction(ctx context.Context, params TxParams, kind TxKind, history []HistoryEntry) error
	UpdateExistingTransaction(ctx context.Context, id string, params TxParams) error
	PendingTransaction(id string) (*PendingTransaction, bool)
}

// Services bundles the collaborators a Flow needs.
type Services struct {
	FeeEstimator   GasFeeEstimator
	LimitEstimator GasLimitEstimator
	Layer1Fees     Layer1FeeEstimator // required only on multi-layer fee networks
	Names          NameResolver       // optional, domain name recipient input stays unresolved without it
	Balances       BalanceReader
	AddressBook    AddressBook
	Transactions   TransactionService
}
