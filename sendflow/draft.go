package sendflow

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// EnvelopeType is the transaction fee-pricing scheme. Legacy transactions
// carry a single gas price; fee market (EIP-1559) transactions carry a max
// fee and max priority fee.
type EnvelopeType uint8

const (
	EnvelopeLegacy EnvelopeType = iota
	EnvelopeFeeMarket
)

// TypeTag returns the wire type tag for the envelope.
func (e EnvelopeType) TypeTag() string {
	if e == EnvelopeFeeMarket {
		return "0x2"
	}
	return "0x0"
}

func (e EnvelopeType) String() string {
	if e == EnvelopeFeeMarket {
		return "fee-market"
	}
	return "legacy"
}

// Status describes whether the draft can currently generate valid transaction
// parameters. It is derived by validation, never set directly.
type Status uint8

const (
	StatusValid Status = iota
	StatusInvalid
)

func (s Status) String() string {
	if s == StatusValid {
		return "valid"
	}
	return "invalid"
}

// AssetKind is the class of asset a draft sends.
type AssetKind uint8

const (
	AssetNative AssetKind = iota
	AssetToken
	AssetCollectible
)

func (k AssetKind) String() string {
	switch k {
	case AssetToken:
		return "token"
	case AssetCollectible:
		return "collectible"
	default:
		return "native"
	}
}

// TokenStandard is the contract standard reported for a token or collectible.
type TokenStandard string

const (
	StandardERC20   TokenStandard = "ERC20"
	StandardERC721  TokenStandard = "ERC721"
	StandardERC1155 TokenStandard = "ERC1155"
	StandardNone    TokenStandard = ""
)

// TokenDetails describes the contract behind a token or collectible asset.
// Nil exactly when the asset kind is native.
type TokenDetails struct {
	Address  common.Address
	Symbol   string
	Decimals int
	Standard TokenStandard
	TokenID  *big.Int // collectibles only
}

// GasValues holds the draft's gas settings. Total is always derived as
// limit × (maxFeePerGas for fee market envelopes, gasPrice otherwise) and is
// never assigned independently.
type GasValues struct {
	Limit                *big.Int
	Price                *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Total                *big.Int
	Err                  FieldError
}

// AmountValue is the quantity of asset to send, in the asset's minimal unit.
type AmountValue struct {
	Value *big.Int
	Err   FieldError
}

// Asset describes what the draft sends. Balance is in wei for native assets,
// whole-token units for tokens, and 1/0 for collectibles.
type Asset struct {
	Kind    AssetKind
	Balance *big.Int
	Details *TokenDetails
	Err     FieldError
}

// Recipient is the intended destination. Address is the resolved hex address,
// empty while the user is still choosing one; Nickname is the address book
// name if known.
type Recipient struct {
	Address  string
	Nickname string
	Err      FieldError
	Warning  FieldWarning
}

// FromAccount overrides the flow-level selected account, used when editing a
// transaction that was created from a different account.
type FromAccount struct {
	Address common.Address
	Balance *big.Int
}

// HistoryEntry is one audit-trail record of the user's journey through the
// flow. The history log is append-only and is forwarded to the transaction
// service on submission for troubleshooting.
type HistoryEntry struct {
	Event     string
	Timestamp time.Time
}

// DraftTransaction is one transaction under interactive construction.
type DraftTransaction struct {
	// UUID keys the draft in the flow's draft map.
	UUID string

	// ID is the pending-transaction id when editing a transaction already
	// submitted to the transaction service, empty for new drafts.
	ID string

	Status           Status
	Envelope         EnvelopeType
	UserInputHexData string
	FromAccount      *FromAccount
	Gas              GasValues
	Amount           AmountValue
	Asset            Asset
	Recipient        Recipient
	History          []HistoryEntry
}

func newDraftTransaction() *DraftTransaction {
	return &DraftTransaction{
		UUID:   uuid.NewString(),
		Status: StatusValid,
		Gas: GasValues{
			Limit:                new(big.Int),
			Price:                new(big.Int),
			MaxFeePerGas:         new(big.Int),
			MaxPriorityFeePerGas: new(big.Int),
			Total:                new(big.Int),
		},
		Amount: AmountValue{Value: new(big.Int)},
		Asset:  Asset{Kind: AssetNative, Balance: new(big.Int)},
	}
}

func (d *DraftTransaction) addHistory(event string) {
	d.History = append(d.History, HistoryEntry{Event: event, Timestamp: time.Now()})
}

// isSendingToken reports whether the draft sends a contract-backed asset.
func (d *DraftTransaction) isSendingToken() bool {
	return d.Asset.Kind == AssetToken || d.Asset.Kind == AssetCollectible
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// clone returns a deep value copy of the draft, safe to hand outside the
// store.
func (d *DraftTransaction) clone() DraftTransaction {
	out := *d
	out.Gas.Limit = cloneBig(d.Gas.Limit)
	out.Gas.Price = cloneBig(d.Gas.Price)
	out.Gas.MaxFeePerGas = cloneBig(d.Gas.MaxFeePerGas)
	out.Gas.MaxPriorityFeePerGas = cloneBig(d.Gas.MaxPriorityFeePerGas)
	out.Gas.Total = cloneBig(d.Gas.Total)
	out.Amount.Value = cloneBig(d.Amount.Value)
	out.Asset.Balance = cloneBig(d.Asset.Balance)
	if d.Asset.Details != nil {
		details := *d.Asset.Details
		details.TokenID = cloneBig(d.Asset.Details.TokenID)
		out.Asset.Details = &details
	}
	if d.FromAccount != nil {
		from := *d.FromAccount
		from.Balance = cloneBig(d.FromAccount.Balance)
		out.FromAccount = &from
	}
	out.History = append([]HistoryEntry(nil), d.History...)
	return out
}
