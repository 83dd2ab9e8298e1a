package sendflow

import (
	"math/big"

	"github.com/0xsequence/sendkit/gasfee"
	"github.com/0xsequence/sendkit/nameres"
	"github.com/ethereum/go-ethereum/common"
)

// The methods in this file are the synchronous state mutations of the flow,
// mirrored one to one onto the update events the UI and background services
// produce. They must only run with the flow lock held, they never block, and
// they always leave state fully revalidated: any mutation that can affect a
// field's validity re-runs the amount -> gas -> overall status chain before
// returning, so a reader never observes a half-propagated edit.

// GasFeeUpdate carries new gas fee values into the draft. IsAutomaticUpdate
// marks pushes that originate from background estimate polling rather than
// user edits.
type GasFeeUpdate struct {
	Envelope             EnvelopeType
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	IsAutomaticUpdate    bool
}

// recipientValidationContext is the snapshot of wallet facts that recipient
// input classification needs.
type recipientValidationContext struct {
	isDefaultNetwork    bool
	knownTokenAddresses []common.Address
	userTokens          []TokenDetails
}

func (s *sendState) addHistoryEntry(event string) {
	if draft := s.currentDraft(); draft != nil {
		draft.addHistory(event)
	}
}

// updateSendAmount stores a new amount value and re-runs validation. For
// native sends the amount competes with gas against the same balance, so the
// gas field is revalidated too.
func (s *sendState) updateSendAmount(value *big.Int) {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	draft.Amount.Value = orZero(cloneBig(value))
	s.validateAmountField()
	if draft.Asset.Kind == AssetNative {
		s.validateGasField()
	}
	s.validateSendState()
}

// updateAmountToMax computes the maximum sendable amount and delegates to
// updateSendAmount for validation. Token and collectible maxes are the full
// asset balance: gas is paid in the native asset, not the token. The native
// max subtracts the gas total plus any settlement-layer fee and is
// intentionally not clamped at zero; a negative result surfaces through
// amount validation instead.
func (s *sendState) updateAmountToMax() {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	amount := new(big.Int)
	if draft.isSendingToken() {
		decimals := 0
		if draft.Asset.Details != nil {
			decimals = draft.Asset.Details.Decimals
		}
		amount.Mul(orZero(draft.Asset.Balance), decimalsMultiplier(decimals))
	} else {
		gasTotal := new(big.Int).Add(orZero(draft.Gas.Total), orZero(s.layer1GasTotal))
		amount.Sub(orZero(draft.Asset.Balance), gasTotal)
	}
	s.updateSendAmount(amount)
}

func (s *sendState) updateUserInputHexData(data string) {
	if draft := s.currentDraft(); draft != nil {
		draft.UserInputHexData = data
	}
}

// calculateGasTotal recomputes the derived gas total from the gas limit and
// the envelope's authoritative fee field. The total is never assigned from
// anywhere else.
func (s *sendState) calculateGasTotal() {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	fee := draft.Gas.Price
	if draft.Envelope == EnvelopeFeeMarket {
		fee = draft.Gas.MaxFeePerGas
	}
	draft.Gas.Total = new(big.Int).Mul(orZero(draft.Gas.Limit), orZero(fee))

	// a changed gas total moves the native max amount
	if s.amountMode == AmountMax && draft.Asset.Kind == AssetNative {
		s.updateAmountToMax()
	}
	s.validateAmountField()
	s.validateGasField()
	s.validateSendState()
}

func (s *sendState) updateGasLimit(limit *big.Int) {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	draft.Gas.Limit = orZero(cloneBig(limit))
	s.calculateGasTotal()
}

// updateGasFees writes new fee values and settles the draft's envelope type.
// Automatic legacy pushes are dropped when the user has already diverged the
// gas price from the last known estimate, so background estimate churn never
// clobbers a manual override.
func (s *sendState) updateGasFees(update GasFeeUpdate) {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	if update.Envelope == EnvelopeFeeMarket {
		draft.Gas.MaxFeePerGas = orZero(cloneBig(update.MaxFeePerGas))
		draft.Gas.MaxPriorityFeePerGas = orZero(cloneBig(update.MaxPriorityFeePerGas))
		draft.Envelope = EnvelopeFeeMarket
	} else {
		overwrite := !update.IsAutomaticUpdate ||
			s.gasPriceEstimate.Sign() == 0 ||
			orZero(draft.Gas.Price).Cmp(s.gasPriceEstimate) == 0
		if overwrite {
			draft.Gas.Price = orZero(cloneBig(update.GasPrice))
		}
		draft.Envelope = EnvelopeLegacy
	}
	s.calculateGasTotal()
}

// updateGasFeeEstimates applies a fresh estimate snapshot from the fee
// poller and records the estimate used for the divergence check above.
func (s *sendState) updateGasFeeEstimates(estimates gasfee.Estimates) {
	priceEstimate := new(big.Int)
	switch estimates.Type {
	case gasfee.EstimateFeeMarket:
		s.updateGasFees(GasFeeUpdate{
			Envelope:             EnvelopeFeeMarket,
			MaxFeePerGas:         estimates.Medium.MaxFeePerGas,
			MaxPriorityFeePerGas: estimates.Medium.MaxPriorityFeePerGas,
		})
	case gasfee.EstimateLegacy:
		priceEstimate = gasfee.RoundGasPrice(estimates.Medium.GasPrice)
		s.updateGasFees(GasFeeUpdate{
			Envelope:          EnvelopeLegacy,
			GasPrice:          priceEstimate,
			IsAutomaticUpdate: true,
		})
	case gasfee.EstimateEthGasPrice:
		priceEstimate = gasfee.RoundGasPrice(estimates.GasPrice)
		s.updateGasFees(GasFeeUpdate{
			Envelope:          EnvelopeLegacy,
			GasPrice:          priceEstimate,
			IsAutomaticUpdate: true,
		})
	case gasfee.EstimateNone:
		// nothing to apply
	}
	s.gasPriceEstimate = priceEstimate
}

func (s *sendState) updateLayer1Fees(total *big.Int) {
	draft := s.currentDraft()
	s.layer1GasTotal = orZero(cloneBig(total))
	if draft != nil && s.amountMode == AmountMax && draft.Asset.Kind == AssetNative {
		s.updateAmountToMax()
	}
}

func (s *sendState) updateAmountMode(mode AmountMode) {
	s.amountMode = mode
}

// updateAsset replaces the draft's asset. Switching to native clears the
// details and any recipient error or warning that only makes sense for
// contract-backed assets. The amount is recomputed because the previous
// value was denominated in the old asset.
func (s *sendState) updateAsset(asset Asset) {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	draft.Asset.Kind = asset.Kind
	draft.Asset.Balance = orZero(cloneBig(asset.Balance))
	draft.Asset.Err = asset.Err
	if draft.isSendingToken() {
		draft.Asset.Details = asset.Details
	} else {
		draft.Asset.Details = nil
		if draft.Recipient.Err == ErrContractAddressRecipient {
			draft.Recipient.Err = ""
		}
		if draft.Recipient.Warning == WarnKnownAddressRecipient {
			draft.Recipient.Warning = ""
		}
	}
	if s.amountMode == AmountMax {
		s.updateAmountToMax()
	} else {
		s.updateSendAmount(new(big.Int))
	}
	s.validateSendState()
}

// updateRecipient resolves the recipient and advances the stage machine: an
// empty address returns to AddRecipient, a resolved one moves to Edit when
// the draft has a pending-transaction id and Draft otherwise.
func (s *sendState) updateRecipient(address, nickname string) {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	draft.Recipient.Err = ""
	s.recipientInput = ""
	draft.Recipient.Address = address
	draft.Recipient.Nickname = nickname

	if draft.Recipient.Address == "" {
		s.stage = StageAddRecipient
	} else {
		if draft.ID != "" {
			s.stage = StageEdit
		} else {
			s.stage = StageDraft
		}
		s.recipientMode = SearchContactList
	}
	s.validateSendState()
}

func (s *sendState) updateRecipientUserInput(input string) {
	s.recipientInput = input
}

// validateRecipientUserInput classifies the raw recipient input. The rules,
// in order: searching own accounts or empty input clears everything; a burn
// address or input that is neither a hex address nor a domain name is
// invalid, with the error variant picked by whether the network is a
// recognized default chain; for token sends, the asset's own contract
// address is rejected; finally a known token contract or tracked token
// yields a non-blocking warning.
func (s *sendState) validateRecipientUserInput(vc recipientValidationContext) {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	if s.recipientMode == SearchMyAccounts || s.recipientInput == "" {
		draft.Recipient.Err = ""
		draft.Recipient.Warning = ""
		return
	}

	input := s.recipientInput
	isSendingToken := draft.isSendingToken()

	switch {
	case nameres.IsBurnAddress(input),
		!isValidHexAddress(input) && !nameres.IsValidName(input):
		if vc.isDefaultNetwork {
			draft.Recipient.Err = ErrInvalidRecipientAddress
		} else {
			draft.Recipient.Err = ErrInvalidRecipientAddressNotDefaultNetwork
		}
	case isSendingToken && draft.Asset.Details != nil &&
		addressesEqual(input, draft.Asset.Details.Address.Hex()):
		draft.Recipient.Err = ErrContractAddressRecipient
	default:
		draft.Recipient.Err = ""
	}

	if isSendingToken && isValidHexAddress(input) && s.isKnownRecipient(input, vc) {
		draft.Recipient.Warning = WarnKnownAddressRecipient
	} else {
		draft.Recipient.Warning = ""
	}
}

func (s *sendState) isKnownRecipient(input string, vc recipientValidationContext) bool {
	for _, addr := range vc.knownTokenAddresses {
		if addressesEqual(input, addr.Hex()) {
			return true
		}
	}
	for _, token := range vc.userTokens {
		if addressesEqual(input, token.Address.Hex()) {
			return true
		}
	}
	return false
}

func (s *sendState) updateRecipientSearchMode(mode RecipientSearchMode) {
	s.recipientInput = ""
	s.recipientMode = mode
}

// validateAmountField checks the amount as a priority-ordered rule set,
// first match wins:
//  1. native send where amount plus gas total exceeds the asset balance
//  2. token send where the amount exceeds the decimal-adjusted token balance
//  3. negative amount
//  4. otherwise the error clears
func (s *sendState) validateAmountField() {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	switch {
	case draft.Asset.Kind == AssetNative &&
		!isBalanceSufficient(draft.Amount.Value, draft.Gas.Total, draft.Asset.Balance):
		draft.Amount.Err = ErrInsufficientFunds
	case draft.Asset.Kind == AssetToken && draft.Asset.Details != nil &&
		!isTokenBalanceSufficient(draft.Amount.Value, draft.Asset.Balance, draft.Asset.Details.Decimals):
		draft.Amount.Err = ErrInsufficientTokens
	case orZero(draft.Amount.Value).Sign() < 0:
		draft.Amount.Err = ErrNegativeAmount
	default:
		draft.Amount.Err = ""
	}
}

// validateGasField checks the gas total against the relevant native balance,
// counting the send amount only when the native asset itself is being sent.
// The draft's override account balance wins over the flow-level balance.
func (s *sendState) validateGasField() {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	amount := new(big.Int)
	if draft.Asset.Kind == AssetNative {
		amount = draft.Amount.Value
	}
	balance := s.nativeBalance
	if draft.FromAccount != nil && draft.FromAccount.Balance != nil {
		balance = draft.FromAccount.Balance
	}
	if isBalanceSufficient(amount, draft.Gas.Total, balance) {
		draft.Gas.Err = ""
	} else {
		draft.Gas.Err = ErrInsufficientFunds
	}
}

// validateSendState derives the overall draft status. The draft is invalid
// when any of the following hold, checked in order with the first match
// short-circuiting:
//  1. the amount field has an error
//  2. the gas field has an error
//  3. the asset field has an error
//  4. the asset is a token with no details
//  5. the flow is still choosing a recipient or was never initialized
//  6. a gas estimate is loading
//  7. the gas limit is below the network minimum
func (s *sendState) validateSendState() {
	draft := s.currentDraft()
	if draft == nil {
		return
	}
	switch {
	case draft.Amount.Err != "",
		draft.Gas.Err != "",
		draft.Asset.Err != "",
		draft.Asset.Kind == AssetToken && draft.Asset.Details == nil,
		s.stage == StageAddRecipient,
		s.stage == StageInactive,
		s.isGasEstimateLoading,
		orZero(draft.Gas.Limit).Cmp(s.minimumGasLimit) < 0:
		draft.Status = StatusInvalid
	default:
		draft.Status = StatusValid
	}
}
