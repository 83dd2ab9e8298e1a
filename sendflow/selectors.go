package sendflow

import "math/big"

// Read-side accessors. Every value returned here is a deep copy taken under
// the flow lock, so callers can hold and mutate results freely.

// CurrentDraft returns a copy of the draft under construction, or false when
// the flow has no draft.
func (f *Flow) CurrentDraft() (DraftTransaction, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft := f.state.currentDraft()
	if draft == nil {
		return DraftTransaction{}, false
	}
	return draft.clone(), true
}

// Stage returns the coarse state of the flow.
func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.stage
}

// IsValid reports whether the draft can currently be submitted.
func (f *Flow) IsValid() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft := f.state.currentDraft()
	return draft != nil && draft.Status == StatusValid
}

// GasTotal returns the draft's derived maximum gas cost in wei, including
// any settlement-layer fee.
func (f *Flow) GasTotal() *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := new(big.Int).Set(orZero(f.state.layer1GasTotal))
	if draft := f.state.currentDraft(); draft != nil {
		total.Add(total, orZero(draft.Gas.Total))
	}
	return total
}

// Amount returns the draft amount in the asset's minimal unit.
func (f *Flow) Amount() *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if draft := f.state.currentDraft(); draft != nil {
		return orZero(cloneBig(draft.Amount.Value))
	}
	return new(big.Int)
}

// AmountMode reports whether the amount field is pinned to max.
func (f *Flow) AmountMode() AmountMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.amountMode
}

// Recipient returns a copy of the draft's recipient field.
func (f *Flow) Recipient() Recipient {
	f.mu.Lock()
	defer f.mu.Unlock()
	if draft := f.state.currentDraft(); draft != nil {
		return draft.Recipient
	}
	return Recipient{}
}

// RecipientUserInput returns the raw text in the recipient field.
func (f *Flow) RecipientUserInput() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.recipientInput
}

// RecipientSearchMode returns which recipient list is being searched.
func (f *Flow) RecipientSearchMode() RecipientSearchMode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.recipientMode
}

// IsGasEstimateLoading reports whether the flow is still waiting for its
// first usable gas estimate. A loading draft is never valid.
func (f *Flow) IsGasEstimateLoading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.isGasEstimateLoading
}

// IsCustomGasSet reports whether the user has taken over gas values.
func (f *Flow) IsCustomGasSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.isCustomGasSet
}

// MinimumGasLimit returns the lowest submittable gas limit.
func (f *Flow) MinimumGasLimit() *big.Int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return new(big.Int).Set(f.state.minimumGasLimit)
}

// TransactionParams generates wire-ready parameters from the current draft
// without submitting them.
func (f *Flow) TransactionParams() (TxParams, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return generateTransactionParams(f.state, f.state.eip1559Support)
}

// History returns a copy of the draft's audit trail.
func (f *Flow) History() []HistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	if draft := f.state.currentDraft(); draft != nil {
		return append([]HistoryEntry(nil), draft.History...)
	}
	return nil
}
