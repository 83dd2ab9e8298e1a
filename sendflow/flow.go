package sendflow

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/0xsequence/sendkit/gasfee"
	"github.com/0xsequence/sendkit/nameres"
	"github.com/0xsequence/sendkit/sendcoder"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/goware/logger"
	"github.com/goware/superr"
	"golang.org/x/sync/errgroup"
)

// Options configures a Flow.
type Options struct {
	// Logger used by the flow. Defaults to a basic info logger.
	Logger logger.Logger

	// MinimumGasLimit is the lowest gas limit a draft may carry and still be
	// submittable. Defaults to GasLimitSimple.
	MinimumGasLimit *big.Int

	// RecipientDebounceInterval is how long recipient input must settle
	// before it is classified. A non-positive value validates synchronously,
	// which tests rely on.
	RecipientDebounceInterval time.Duration
}

var DefaultOptions = Options{
	RecipientDebounceInterval: 300 * time.Millisecond,
}

// Flow drives a single send session: drafting a transaction, validating it
// against balances and gas estimates as the user edits, and handing the
// finished parameters to the transaction service. All exported methods are
// safe for concurrent use.
type Flow struct {
	options  Options
	log      logger.Logger
	services Services

	mu       sync.Mutex
	state    *sendState
	network  NetworkContext
	selected Account
	debounce *time.Timer

	// background gas estimations in flight
	estimating sync.WaitGroup
}

func NewFlow(services Services, opts ...Options) (*Flow, error) {
	options := DefaultOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Logger == nil {
		options.Logger = logger.NewLogger(logger.LogLevel_INFO)
	}
	if services.FeeEstimator == nil || services.Balances == nil || services.Transactions == nil {
		return nil, fmt.Errorf("sendflow: fee estimator, balance reader and transaction service are required")
	}
	return &Flow{
		options:  options,
		log:      options.Logger,
		services: services,
		state:    newSendState(options.MinimumGasLimit),
	}, nil
}

// Wait blocks until all background gas estimations kicked off so far have
// been applied or discarded.
func (f *Flow) Wait() {
	f.estimating.Wait()
}

// StartNewDraft opens a fresh send session on the given network and account,
// discarding any previous drafts. A non-nil asset preselects what is being
// sent; otherwise the draft starts on the native asset.
func (f *Flow) StartNewDraft(ctx context.Context, network NetworkContext, account Account, asset *Asset) error {
	f.mu.Lock()
	f.network = network
	f.selected = account
	f.state.clearPreviousDrafts()
	draft := newDraftTransaction()
	if network.EIP1559Support {
		draft.Envelope = EnvelopeFeeMarket
	}
	draft.Asset.Balance = orZero(cloneBig(account.Balance))
	f.state.addNewDraft(draft)
	f.state.addHistoryEntry("sendFlow - user started new draft transaction")
	f.mu.Unlock()

	if asset != nil {
		if err := f.setAsset(ctx, *asset, true); err != nil {
			return err
		}
	}
	return f.Initialize(ctx, network, account)
}

// EditExistingTransaction reopens a transaction already pending with the
// transaction service so its parameters can be changed before approval. The
// draft's asset, recipient and amount are reconstructed from the pending
// parameters, decoding transfer calldata for token and collectible sends.
func (f *Flow) EditExistingTransaction(ctx context.Context, network NetworkContext, account Account, kind TxKind, txID string) error {
	pending, ok := f.services.Transactions.PendingTransaction(txID)
	if !ok {
		return superr.New(ErrPendingTxNotFound, fmt.Errorf("id %s", txID))
	}

	draft := newDraftTransaction()
	draft.ID = pending.ID
	if network.EIP1559Support {
		draft.Envelope = EnvelopeFeeMarket
	}
	draft.Gas.Limit = decodeHexBig(pending.Params.Gas)
	draft.Gas.Price = decodeHexBig(pending.Params.GasPrice)
	draft.Gas.MaxFeePerGas = decodeHexBig(pending.Params.MaxFeePerGas)
	draft.Gas.MaxPriorityFeePerGas = decodeHexBig(pending.Params.MaxPriorityFeePerGas)
	draft.UserInputHexData = pending.Params.Data

	from := common.HexToAddress(pending.Params.From)
	fromAccount := &FromAccount{Address: from}
	if from == account.Address {
		fromAccount.Balance = cloneBig(account.Balance)
	}
	draft.FromAccount = fromAccount

	recipient := pending.Params.To
	amount := decodeHexBig(pending.Params.Value)

	switch kind {
	case TxTokenTransfer, TxCollectibleTransferFrom:
		transfer, err := sendcoder.DecodeTransferData(sendcoder.MustHexDecode(pending.Params.Data))
		if err != nil {
			return fmt.Errorf("sendflow: failed to decode transfer data of pending transaction: %w", err)
		}
		contract := common.HexToAddress(pending.Params.To)
		details, err := f.lookupTokenDetails(ctx, contract, from)
		if err != nil {
			return err
		}
		// the calldata belongs to the generated transfer, not the user
		draft.UserInputHexData = ""
		recipient = transfer.To.Hex()
		if kind == TxCollectibleTransferFrom {
			details.TokenID = cloneBig(transfer.Value)
			draft.Asset = Asset{Kind: AssetCollectible, Balance: big.NewInt(1), Details: details}
			amount = big.NewInt(1)
		} else {
			draft.Asset = Asset{Kind: AssetToken, Details: details}
			balance, err := f.services.Balances.ERC20Balance(ctx, *details, from)
			if err != nil {
				f.log.Warnf("sendflow: failed to read token balance for edit: %v", err)
				balance = new(big.Int)
			}
			draft.Asset.Balance = balance
			amount = transfer.Value
		}
	default:
		draft.Asset.Balance = orZero(cloneBig(fromAccount.Balance))
	}
	draft.Amount.Value = orZero(amount)

	f.mu.Lock()
	f.state.clearPreviousDrafts()
	f.state.addNewDraft(draft)
	f.state.addHistoryEntry(fmt.Sprintf("sendFlow - user started editing transaction %s", txID))
	f.state.updateRecipient(recipient, "")
	f.mu.Unlock()

	return f.Initialize(ctx, network, account)
}

// lookupTokenDetails resolves a token contract to its details, preferring the
// user's tracked token list over an on-chain standard query.
func (f *Flow) lookupTokenDetails(ctx context.Context, contract, owner common.Address) (*TokenDetails, error) {
	if f.services.AddressBook != nil {
		for _, token := range f.services.AddressBook.UserTokens() {
			if token.Address == contract {
				t := token
				return &t, nil
			}
		}
	}
	standard, err := f.services.Balances.TokenStandard(ctx, contract, owner)
	if err != nil {
		return nil, fmt.Errorf("sendflow: failed to resolve token standard for %s: %w", contract.Hex(), err)
	}
	return &TokenDetails{Address: contract, Standard: standard}, nil
}

// Initialize connects the session to the network: it starts gas fee polling,
// applies the first estimate snapshot, picks the baseline gas limit and runs
// a gas limit estimation when a recipient is already in place. The draft
// stays marked as loading, and therefore invalid, if polling could not be
// started.
func (f *Flow) Initialize(ctx context.Context, network NetworkContext, account Account) error {
	pollToken, err := f.services.FeeEstimator.StartPolling(ctx)
	if err != nil {
		f.log.Warnf("sendflow: failed to start gas fee polling: %v", err)
		pollToken = ""
	}
	estimates := f.services.FeeEstimator.LatestEstimates()

	f.mu.Lock()
	f.network = network
	f.selected = account
	s := f.state
	s.eip1559Support = network.EIP1559Support
	s.accountAddress = account.Address
	s.nativeBalance = orZero(cloneBig(account.Balance))
	s.gasEstimatePollToken = pollToken
	if pollToken != "" {
		s.isGasEstimateLoading = false
	}

	draft := s.currentDraft()
	if draft != nil {
		if draft.Asset.Kind == AssetNative && draft.ID == "" {
			draft.Asset.Balance = orZero(cloneBig(account.Balance))
		}
		if draft.Gas.Limit.Sign() == 0 {
			if draft.isSendingToken() {
				draft.Gas.Limit = new(big.Int).Set(GasLimitBaseToken)
			} else {
				draft.Gas.Limit = new(big.Int).Set(GasLimitSimple)
			}
		}
		s.updateGasFeeEstimates(estimates)
		s.calculateGasTotal()
	}

	if s.stage == StageInactive {
		s.stage = StageAddRecipient
	}
	s.validateRecipientUserInput(f.recipientValidationContextLocked())
	s.validateSendState()

	estimate := draft != nil && s.stage != StageEdit &&
		estimates.Type != gasfee.EstimateNone && draft.Recipient.Address != ""
	f.mu.Unlock()

	if estimate {
		f.computeEstimatedGasLimit(ctx)
		f.Wait()
	}
	return nil
}

func (f *Flow) recipientValidationContextLocked() recipientValidationContext {
	vc := recipientValidationContext{isDefaultNetwork: f.network.IsDefaultNetwork}
	if f.services.AddressBook != nil {
		vc.knownTokenAddresses = f.services.AddressBook.KnownTokenAddresses()
		vc.userTokens = f.services.AddressBook.UserTokens()
	}
	return vc
}

// computeEstimatedGasLimit re-estimates the draft's gas limit, and on
// multi-layer fee networks the settlement-layer fee, in the background. A
// stale result is discarded if the draft changed while the estimation was in
// flight, and failures degrade to the current values with a warning.
func (f *Flow) computeEstimatedGasLimit(ctx context.Context) {
	f.mu.Lock()
	draft := f.state.currentDraft()
	if draft == nil || draft.Recipient.Address == "" {
		f.mu.Unlock()
		return
	}
	if f.state.stage == StageEdit {
		if pending, ok := f.services.Transactions.PendingTransaction(draft.ID); ok {
			if pending.DappSuggestedGasLimit != nil && pending.UserEditedGasLimit {
				f.mu.Unlock()
				return
			}
		}
	}

	uuid := draft.UUID
	// the price here is only an input to the limit estimation, it is never
	// written back to the draft's fee fields
	provisionalPrice := orZero(draft.Gas.Price)
	if provisionalPrice.Sign() == 0 {
		provisionalPrice = orZero(draft.Gas.MaxFeePerGas)
	}
	if provisionalPrice.Sign() == 0 {
		provisionalPrice = big.NewInt(1)
	}
	req := GasLimitRequest{
		GasPrice:      cloneBig(provisionalPrice),
		BlockGasLimit: cloneBig(f.network.BlockGasLimit),
		FromAddress:   f.state.accountAddress,
		To:            draft.Recipient.Address,
		Value:         cloneBig(draft.Amount.Value),
		Data:          draft.UserInputHexData,
		ChainID:       cloneBig(f.network.ChainID),
	}
	if draft.FromAccount != nil {
		req.FromAddress = draft.FromAccount.Address
	}
	if draft.Asset.Details != nil {
		details := *draft.Asset.Details
		details.TokenID = cloneBig(draft.Asset.Details.TokenID)
		req.Token = &details
	}

	f.state.isGasEstimateLoading = true
	f.state.validateSendState()

	var layer1Params TxParams
	wantLayer1 := f.network.IsMultiLayerFeeNetwork && f.services.Layer1Fees != nil
	if wantLayer1 {
		params, err := generateTransactionParams(f.state, f.state.eip1559Support)
		if err != nil {
			wantLayer1 = false
		} else {
			layer1Params = params
		}
	}
	f.mu.Unlock()

	f.estimating.Add(1)
	go func() {
		defer f.estimating.Done()

		var gasLimit, layer1Fee *big.Int
		g, gctx := errgroup.WithContext(ctx)
		if f.services.LimitEstimator != nil {
			g.Go(func() error {
				limit, err := f.services.LimitEstimator.EstimateGasLimit(gctx, req)
				if err != nil {
					return fmt.Errorf("gas limit: %w", err)
				}
				gasLimit = limit
				return nil
			})
		}
		if wantLayer1 {
			g.Go(func() error {
				fee, err := f.services.Layer1Fees.EstimateLayer1Fee(gctx, layer1Params)
				if err != nil {
					return fmt.Errorf("layer1 fee: %w", err)
				}
				layer1Fee = fee
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			f.log.Warnf("sendflow: gas estimation failed, keeping current values: %v", err)
			f.mu.Lock()
			defer f.mu.Unlock()
			f.settleGasEstimateLoadingLocked()
			f.state.validateSendState()
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		f.settleGasEstimateLoadingLocked()
		if f.state.currentDraftUUID != uuid {
			f.state.validateSendState()
			return
		}
		if layer1Fee != nil {
			f.state.updateLayer1Fees(layer1Fee)
		}
		if gasLimit != nil {
			f.state.updateGasLimit(gasLimit)
		} else {
			f.state.calculateGasTotal()
		}
	}()
}

// settleGasEstimateLoadingLocked marks the in-flight gas estimation as done.
// A session whose fee polling never started stays in the loading state, so
// the draft cannot be submitted with fees that were never estimated.
func (f *Flow) settleGasEstimateLoadingLocked() {
	f.state.isGasEstimateLoading = f.state.gasEstimatePollToken == ""
}

// SetSendAmount stores a user-entered amount, in the asset's minimal unit,
// and re-estimates the gas limit. Typing an amount leaves max mode.
func (f *Flow) SetSendAmount(ctx context.Context, value *big.Int) {
	f.mu.Lock()
	f.state.addHistoryEntry(fmt.Sprintf("sendFlow - user set amount to %s", orZero(value).String()))
	if f.state.amountMode == AmountMax {
		f.state.updateAmountMode(AmountInput)
	}
	f.state.updateSendAmount(value)
	f.mu.Unlock()

	f.computeEstimatedGasLimit(ctx)
}

// ToggleMaxMode switches between max mode, where the amount is pinned to the
// maximum sendable value, and plain input mode, where leaving max resets the
// amount to zero.
func (f *Flow) ToggleMaxMode(ctx context.Context) {
	f.mu.Lock()
	if f.state.amountMode == AmountMax {
		f.state.addHistoryEntry("sendFlow - user toggled max mode off")
		f.state.updateAmountMode(AmountInput)
		f.state.updateSendAmount(new(big.Int))
	} else {
		f.state.addHistoryEntry("sendFlow - user toggled max mode on")
		f.state.updateAmountMode(AmountMax)
		f.state.updateAmountToMax()
	}
	f.mu.Unlock()

	f.computeEstimatedGasLimit(ctx)
}

// SetSendAsset changes what the draft sends. Token assets must carry details
// with a contract address; a missing token standard is resolved on chain.
// Collectible sends verify ownership first, tolerating backends that cannot
// answer the question at all.
func (f *Flow) SetSendAsset(ctx context.Context, asset Asset) error {
	return f.setAsset(ctx, asset, false)
}

func (f *Flow) setAsset(ctx context.Context, asset Asset, initial bool) error {
	resolved, err := f.resolveAsset(ctx, asset)
	if err != nil {
		return err
	}

	f.mu.Lock()
	symbol := f.network.NativeTicker
	if resolved.Details != nil {
		symbol = resolved.Details.Symbol
	}
	f.state.addHistoryEntry(fmt.Sprintf("sendFlow - user set asset to type %s with symbol %s", resolved.Kind, symbol))
	f.state.updateAsset(resolved)
	f.mu.Unlock()

	if !initial {
		f.computeEstimatedGasLimit(ctx)
	}
	return nil
}

func (f *Flow) resolveAsset(ctx context.Context, asset Asset) (Asset, error) {
	switch asset.Kind {
	case AssetNative:
		f.mu.Lock()
		balance := cloneBig(f.selected.Balance)
		f.mu.Unlock()
		return Asset{Kind: AssetNative, Balance: balance}, nil

	case AssetToken, AssetCollectible:
		if asset.Details == nil || asset.Details.Address == (common.Address{}) {
			return Asset{}, ErrAssetDetailsRequired
		}
		details := *asset.Details
		details.TokenID = cloneBig(asset.Details.TokenID)

		f.mu.Lock()
		owner := f.selected.Address
		f.mu.Unlock()

		if details.Standard == StandardNone {
			standard, err := f.services.Balances.TokenStandard(ctx, details.Address, owner)
			if err != nil {
				return Asset{}, fmt.Errorf("sendflow: failed to resolve token standard: %w", err)
			}
			details.Standard = standard
		}
		if details.Standard == StandardERC1155 {
			return Asset{}, superr.New(ErrUnsupportedStandard, fmt.Errorf("contract %s", details.Address.Hex()))
		}

		if asset.Kind == AssetCollectible {
			isOwner, err := f.services.Balances.IsCollectibleOwner(ctx, owner, details.Address, details.TokenID)
			if err != nil {
				// an unverifiable answer is not a definite no
				if errors.Is(err, ErrOwnershipUnverifiable) {
					f.log.Warnf("sendflow: unable to verify collectible ownership: %v", err)
					isOwner = true
				} else {
					return Asset{}, fmt.Errorf("sendflow: failed to check collectible ownership: %w", err)
				}
			}
			if !isOwner {
				return Asset{}, superr.New(ErrCollectibleNotOwned, fmt.Errorf("token %s of %s", details.TokenID, details.Address.Hex()))
			}
			return Asset{Kind: AssetCollectible, Balance: big.NewInt(1), Details: &details}, nil
		}

		balance := asset.Balance
		if balance == nil {
			b, err := f.services.Balances.ERC20Balance(ctx, details, owner)
			if err != nil {
				return Asset{}, fmt.Errorf("sendflow: failed to read token balance: %w", err)
			}
			balance = b
		}
		return Asset{Kind: AssetToken, Balance: cloneBig(balance), Details: &details}, nil

	default:
		return Asset{}, superr.New(ErrAssetKindRequired, fmt.Errorf("kind %d", asset.Kind))
	}
}

// SetRecipient resolves the recipient to an address, looking its nickname up
// in the address book, and advances the flow to the draft stage.
func (f *Flow) SetRecipient(ctx context.Context, address, nickname string) {
	if f.services.AddressBook != nil {
		if name, ok := f.services.AddressBook.EntryName(address); ok {
			nickname = name
		}
	}

	f.mu.Lock()
	f.state.addHistoryEntry(fmt.Sprintf("sendFlow - user set recipient to %s", address))
	f.state.updateRecipient(address, nickname)
	f.mu.Unlock()

	f.computeEstimatedGasLimit(ctx)
}

// SetRecipientUserInput records what the user has typed into the recipient
// field. Classification of the input is debounced so that half-typed
// addresses do not flash errors, and input that looks like a domain name is
// resolved through the configured name resolver.
func (f *Flow) SetRecipientUserInput(ctx context.Context, input string) {
	f.mu.Lock()
	f.state.addHistoryEntry(fmt.Sprintf("sendFlow - user typed %s into recipient input field", input))
	f.state.updateRecipientUserInput(input)

	if f.options.RecipientDebounceInterval <= 0 {
		f.mu.Unlock()
		f.classifyRecipientInput(ctx)
		return
	}
	if f.debounce != nil {
		f.debounce.Stop()
	}
	f.debounce = time.AfterFunc(f.options.RecipientDebounceInterval, func() {
		f.classifyRecipientInput(ctx)
	})
	f.mu.Unlock()
}

// classifyRecipientInput validates whatever the recipient input holds at
// call time, then resolves it through the name resolver when it is a domain
// name rather than an address. A resolution that completes after the input
// changed again is discarded.
func (f *Flow) classifyRecipientInput(ctx context.Context) {
	f.mu.Lock()
	f.state.validateRecipientUserInput(f.recipientValidationContextLocked())
	input := f.state.recipientInput
	resolve := f.services.Names != nil && nameres.IsValidName(input)
	f.mu.Unlock()

	if !resolve {
		return
	}
	address, ok, err := f.services.Names.ResolveName(ctx, input)
	if err != nil {
		f.log.Warnf("sendflow: failed to resolve recipient name %q: %v", input, err)
	}

	f.mu.Lock()
	draft := f.state.currentDraft()
	if draft == nil || f.state.recipientInput != input {
		f.mu.Unlock()
		return
	}
	if err != nil || !ok {
		draft.Recipient.Err = ErrInvalidRecipientAddress
		f.state.validateSendState()
		f.mu.Unlock()
		return
	}
	f.state.updateRecipient(strings.ToLower(address.Hex()), input)
	f.mu.Unlock()

	f.computeEstimatedGasLimit(ctx)
}

// ResetRecipientInput clears the recipient, its typed input and any pending
// classification, returning the flow to recipient selection.
func (f *Flow) ResetRecipientInput(ctx context.Context) {
	f.mu.Lock()
	f.state.addHistoryEntry("sendFlow - user cleared recipient input")
	if f.debounce != nil {
		f.debounce.Stop()
		f.debounce = nil
	}
	f.state.updateRecipientUserInput("")
	f.state.updateRecipient("", "")
	f.state.validateRecipientUserInput(f.recipientValidationContextLocked())
	f.state.updateRecipientSearchMode(SearchContactList)
	f.mu.Unlock()
}

// SetRecipientSearchMode switches which recipient list is searched and
// clears the typed input.
func (f *Flow) SetRecipientSearchMode(mode RecipientSearchMode) {
	f.mu.Lock()
	f.state.updateRecipientSearchMode(mode)
	f.mu.Unlock()
}

// SetSendHexData attaches raw calldata to a native send. Token sends carry
// generated transfer calldata instead, so only native sends re-estimate.
func (f *Flow) SetSendHexData(ctx context.Context, data string) {
	f.mu.Lock()
	f.state.addHistoryEntry(fmt.Sprintf("sendFlow - user added custom hexData %s", data))
	f.state.updateUserInputHexData(data)
	native := false
	if draft := f.state.currentDraft(); draft != nil {
		native = draft.Asset.Kind == AssetNative
	}
	f.mu.Unlock()

	if native {
		f.computeEstimatedGasLimit(ctx)
	}
}

// UseCustomGas marks the draft as carrying user-chosen gas values, which
// background estimate pushes must respect.
func (f *Flow) UseCustomGas() {
	f.mu.Lock()
	f.state.isCustomGasSet = true
	f.mu.Unlock()
}

// UseDefaultGas returns gas control to the background estimates.
func (f *Flow) UseDefaultGas() {
	f.mu.Lock()
	f.state.isCustomGasSet = false
	f.mu.Unlock()
}

// SetGasLimit stores a user-entered gas limit and recomputes the gas total.
func (f *Flow) SetGasLimit(limit *big.Int) {
	f.mu.Lock()
	f.state.addHistoryEntry(fmt.Sprintf("sendFlow - user set legacy gasLimit to %s", orZero(limit).String()))
	f.state.updateGasLimit(limit)
	f.mu.Unlock()
}

// SetGasPrice stores a user-entered legacy gas price.
func (f *Flow) SetGasPrice(price *big.Int) {
	f.mu.Lock()
	f.state.addHistoryEntry(fmt.Sprintf("sendFlow - user set legacy gasPrice to %s", orZero(price).String()))
	f.state.updateGasFees(GasFeeUpdate{Envelope: EnvelopeLegacy, GasPrice: price})
	f.mu.Unlock()
}

// SetGasFees stores user-entered fee market values.
func (f *Flow) SetGasFees(maxFeePerGas, maxPriorityFeePerGas *big.Int) {
	f.mu.Lock()
	f.state.addHistoryEntry("sendFlow - user set fee market gas fees")
	f.state.updateGasFees(GasFeeUpdate{
		Envelope:             EnvelopeFeeMarket,
		MaxFeePerGas:         maxFeePerGas,
		MaxPriorityFeePerGas: maxPriorityFeePerGas,
	})
	f.mu.Unlock()
}

// Submit turns the draft into wire parameters and hands them to the
// transaction service: updating the pending transaction when editing, and
// submitting a new one otherwise. The draft must be valid.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	draft := f.state.currentDraft()
	if draft == nil {
		f.mu.Unlock()
		return ErrNoDraftTransaction
	}
	if draft.Status != StatusValid {
		f.mu.Unlock()
		return ErrFormInvalid
	}
	draft.addHistory("sendFlow - user clicked sign")

	params, err := generateTransactionParams(f.state, f.state.eip1559Support)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	editing := f.state.stage == StageEdit
	txID := draft.ID
	kind := TxSimpleSend
	switch draft.Asset.Kind {
	case AssetToken:
		kind = TxTokenTransfer
	case AssetCollectible:
		kind = TxCollectibleTransferFrom
	}
	history := append([]HistoryEntry(nil), draft.History...)
	f.mu.Unlock()

	if editing {
		pending, ok := f.services.Transactions.PendingTransaction(txID)
		if !ok {
			return superr.New(ErrPendingTxNotFound, fmt.Errorf("id %s", txID))
		}
		merged := pending.Params
		merged.From = params.From
		merged.To = params.To
		merged.Value = params.Value
		merged.Data = params.Data
		merged.Type = params.Type
		merged.GasPrice = params.GasPrice
		merged.MaxFeePerGas = params.MaxFeePerGas
		merged.MaxPriorityFeePerGas = params.MaxPriorityFeePerGas
		// a gas limit the user already customized on the pending transaction
		// wins over the draft's estimate
		if !pending.UserEditedGasLimit {
			merged.Gas = params.Gas
		}
		if err := f.services.Transactions.UpdateExistingTransaction(ctx, txID, merged); err != nil {
			return fmt.Errorf("sendflow: failed to update pending transaction: %w", err)
		}
		return nil
	}

	if err := f.services.Transactions.SubmitNewTransaction(ctx, params, kind, history); err != nil {
		return fmt.Errorf("sendflow: failed to submit transaction: %w", err)
	}
	return nil
}

// Reset tears the session down: gas fee polling is released and the state
// returns to inactive, ready for a new draft.
func (f *Flow) Reset() {
	f.mu.Lock()
	if f.debounce != nil {
		f.debounce.Stop()
		f.debounce = nil
	}
	pollToken := f.state.gasEstimatePollToken
	f.state = newSendState(f.options.MinimumGasLimit)
	f.mu.Unlock()

	if pollToken != "" {
		f.services.FeeEstimator.StopPolling(pollToken)
	}
}

func decodeHexBig(s string) *big.Int {
	if s == "" {
		return new(big.Int)
	}
	v, err := hexutil.DecodeBig(s)
	if err != nil {
		return new(big.Int)
	}
	return v
}
