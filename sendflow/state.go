package sendflow

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Stage is the coarse state of the send flow.
//
//	Inactive -> AddRecipient -> (Draft | Edit)
//
// AddRecipient moves to Draft when the recipient resolves on a new draft, or
// to Edit when the draft carries a pending-transaction id. Clearing the
// recipient returns to AddRecipient. Only a full reset returns to Inactive.
type Stage uint8

const (
	StageInactive Stage = iota
	StageAddRecipient
	StageDraft
	StageEdit
)

func (s Stage) String() string {
	switch s {
	case StageAddRecipient:
		return "add-recipient"
	case StageDraft:
		return "draft"
	case StageEdit:
		return "edit"
	default:
		return "inactive"
	}
}

// AmountMode says whether the amount field holds user input or is pinned to
// the maximum sendable amount.
type AmountMode uint8

const (
	AmountInput AmountMode = iota
	AmountMax
)

// RecipientSearchMode selects which recipient list the user searches.
type RecipientSearchMode uint8

const (
	SearchContactList RecipientSearchMode = iota
	SearchMyAccounts
)

// Baseline gas limits used when estimation is skipped or unavailable.
var (
	// GasLimitSimple covers a plain value transfer (21000).
	GasLimitSimple = big.NewInt(21000)
	// GasLimitBaseToken is the starting point for token transfers (100000).
	GasLimitBaseToken = big.NewInt(100000)
)

// sendState is the single mutable state tree of one send session. All access
// happens under the flow lock; nothing outside the package ever receives a
// reference into it.
type sendState struct {
	currentDraftUUID string
	drafts           map[string]*DraftTransaction

	stage          Stage
	eip1559Support bool

	accountAddress common.Address
	nativeBalance  *big.Int
	layer1GasTotal *big.Int

	isGasEstimateLoading bool
	isCustomGasSet       bool
	gasPriceEstimate     *big.Int
	gasEstimatePollToken string
	minimumGasLimit      *big.Int

	amountMode     AmountMode
	recipientMode  RecipientSearchMode
	recipientInput string
}

func newSendState(minimumGasLimit *big.Int) *sendState {
	if minimumGasLimit == nil {
		minimumGasLimit = GasLimitSimple
	}
	return &sendState{
		drafts:               map[string]*DraftTransaction{},
		stage:                StageInactive,
		nativeBalance:        new(big.Int),
		layer1GasTotal:       new(big.Int),
		isGasEstimateLoading: true,
		gasPriceEstimate:     new(big.Int),
		minimumGasLimit:      new(big.Int).Set(minimumGasLimit),
		amountMode:           AmountInput,
		recipientMode:        SearchContactList,
	}
}

// currentDraft returns the draft the flow is pointed at, or nil when there is
// none. A non-empty currentDraftUUID always references a live entry; clearing
// drafts clears the pointer with them.
func (s *sendState) currentDraft() *DraftTransaction {
	if s.currentDraftUUID == "" {
		return nil
	}
	return s.drafts[s.currentDraftUUID]
}

func (s *sendState) addNewDraft(draft *DraftTransaction) {
	s.currentDraftUUID = draft.UUID
	s.drafts[draft.UUID] = draft
}

func (s *sendState) clearPreviousDrafts() {
	s.currentDraftUUID = ""
	s.drafts = map[string]*DraftTransaction{}
}
