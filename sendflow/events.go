package sendflow

import (
	"math/big"
	"strings"

	"github.com/0xsequence/sendkit/gasfee"
)

// External wallet events the flow reacts to while a session is open. These
// are fire-and-forget notifications, so none of them return errors; a
// notification that does not apply to the current state is ignored.

// HandleQRCode applies an address scanned from a QR code. A scan of the
// address already in place is a no-op, and a malformed address is surfaced
// as a recipient field error rather than silently dropped.
func (f *Flow) HandleQRCode(scannedAddress string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	draft := f.state.currentDraft()
	if draft == nil {
		return
	}
	scannedAddress = strings.ToLower(scannedAddress)
	if isValidHexAddress(scannedAddress) {
		if !addressesEqual(draft.Recipient.Address, scannedAddress) {
			f.state.updateRecipient(scannedAddress, "")
		}
	} else {
		draft.Recipient.Err = ErrInvalidRecipientAddress
	}
}

// HandleSelectedAccountChanged follows the wallet's selected account while a
// new draft is open. Edits are pinned to the account that created the
// pending transaction, so the edit stage ignores selection changes.
func (f *Flow) HandleSelectedAccountChanged(account Account) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.stage == StageEdit {
		return
	}
	f.selected = account
	f.state.accountAddress = account.Address
	f.state.nativeBalance = orZero(cloneBig(account.Balance))

	draft := f.state.currentDraft()
	if draft == nil {
		return
	}
	if draft.Asset.Kind == AssetNative {
		draft.Asset.Balance = orZero(cloneBig(account.Balance))
	}
	f.state.validateAmountField()
	f.state.validateGasField()
	f.state.validateSendState()
}

// HandleAccountChanged applies a balance update for a specific account. It
// only matters in the edit stage, when the draft's originating account may
// differ from the wallet's selected one.
func (f *Flow) HandleAccountChanged(account Account) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.stage != StageEdit {
		return
	}
	draft := f.state.currentDraft()
	if draft == nil || draft.FromAccount == nil || draft.FromAccount.Address != account.Address {
		return
	}
	draft.FromAccount.Balance = orZero(cloneBig(account.Balance))
	if draft.Asset.Kind == AssetNative {
		draft.Asset.Balance = orZero(cloneBig(account.Balance))
	}
	f.state.validateAmountField()
	f.state.validateGasField()
	f.state.validateSendState()
}

// HandleAddressBookUpdated refreshes the recipient nickname when the address
// book entry for the current recipient changes.
func (f *Flow) HandleAddressBookUpdated(address, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	draft := f.state.currentDraft()
	if draft == nil || !addressesEqual(draft.Recipient.Address, address) {
		return
	}
	draft.Recipient.Nickname = name
}

// HandleGasFeeEstimatesUpdated pushes a fresh estimate snapshot from the fee
// poller into the draft. Wire a gasfee.Subscription's channel to this method
// to keep an open draft priced; see the poller for the divergence rules that
// protect user-set prices.
func (f *Flow) HandleGasFeeEstimatesUpdated(estimates gasfee.Estimates) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state.currentDraft() == nil {
		return
	}
	f.state.updateGasFeeEstimates(estimates)
}

// HandleLayer1FeeUpdated pushes a fresh settlement-layer fee total into the
// state on multi-layer fee networks.
func (f *Flow) HandleLayer1FeeUpdated(total *big.Int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.updateLayer1Fees(total)
	f.state.validateAmountField()
	f.state.validateGasField()
	f.state.validateSendState()
}
