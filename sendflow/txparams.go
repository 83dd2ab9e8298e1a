package sendflow

import (
	"fmt"
	"math/big"

	"github.com/0xsequence/sendkit/sendcoder"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TxParams are wire-ready transaction parameters, hex-encoded the way the
// transaction service expects them. Exactly one fee field set is populated,
// matching the Type tag: gasPrice for legacy, the max fee pair for fee
// market.
type TxParams struct {
	From                 string `json:"from"`
	To                   string `json:"to"`
	Value                string `json:"value,omitempty"`
	Data                 string `json:"data,omitempty"`
	Gas                  string `json:"gas"`
	GasPrice             string `json:"gasPrice,omitempty"`
	MaxFeePerGas         string `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
	Type                 string `json:"type"`
}

func encodeBig(v *big.Int) string {
	return hexutil.EncodeBig(orZero(v))
}

// generateTransactionParams produces transaction parameters from the current
// draft. Native sends target the recipient directly; token and collectible
// sends target the token contract with the recipient and amount encoded in
// the calldata and a zero value.
func generateTransactionParams(s *sendState, eip1559Support bool) (TxParams, error) {
	draft := s.currentDraft()
	if draft == nil {
		return TxParams{}, ErrNoDraftTransaction
	}

	from := s.accountAddress
	if draft.FromAccount != nil {
		from = draft.FromAccount.Address
	}

	// the gas limit is always included regardless of asset kind or envelope
	params := TxParams{
		From: from.Hex(),
		Gas:  encodeBig(draft.Gas.Limit),
	}

	switch draft.Asset.Kind {
	case AssetToken:
		if draft.Asset.Details == nil {
			return TxParams{}, ErrAssetDetailsRequired
		}
		data, err := sendcoder.EncodeERC20Transfer(
			common.HexToAddress(draft.Recipient.Address),
			orZero(draft.Amount.Value),
		)
		if err != nil {
			return TxParams{}, fmt.Errorf("sendflow: failed to encode transfer data: %w", err)
		}
		params.To = draft.Asset.Details.Address.Hex()
		params.Value = "0x0"
		params.Data = sendcoder.HexEncode(data)

	case AssetCollectible:
		if draft.Asset.Details == nil {
			return TxParams{}, ErrAssetDetailsRequired
		}
		data, err := sendcoder.EncodeERC721TransferFrom(
			from,
			common.HexToAddress(draft.Recipient.Address),
			draft.Asset.Details.TokenID,
		)
		if err != nil {
			return TxParams{}, fmt.Errorf("sendflow: failed to encode transferFrom data: %w", err)
		}
		params.To = draft.Asset.Details.Address.Hex()
		params.Value = "0x0"
		params.Data = sendcoder.HexEncode(data)

	default:
		params.To = draft.Recipient.Address
		params.Value = encodeBig(draft.Amount.Value)
		params.Data = draft.UserInputHexData
	}

	if eip1559Support {
		params.Type = EnvelopeFeeMarket.TypeTag()
		params.MaxFeePerGas = encodeBig(draft.Gas.MaxFeePerGas)
		params.MaxPriorityFeePerGas = encodeBig(draft.Gas.MaxPriorityFeePerGas)

		// fall back to the legacy price when the max fee was never set, and
		// default the priority fee to the max fee
		if params.MaxFeePerGas == "0x0" {
			params.MaxFeePerGas = encodeBig(draft.Gas.Price)
		}
		if params.MaxPriorityFeePerGas == "0x0" {
			params.MaxPriorityFeePerGas = params.MaxFeePerGas
		}
	} else {
		params.Type = EnvelopeLegacy.TypeTag()
		params.GasPrice = encodeBig(draft.Gas.Price)
	}

	return params, nil
}
