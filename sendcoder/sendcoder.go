package sendcoder

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Calldata encoders for the token transfer methods used by the send flow.
// ERC-20 sends call transfer(address,uint256) on the token contract and
// ERC-721 sends call transferFrom(address,address,uint256), so the recipient
// and amount travel inside the data payload rather than the to/value fields.

var (
	addressType, _ = abi.NewType("address", "", nil)
	uint256Type, _ = abi.NewType("uint256", "", nil)

	transferArgs = abi.Arguments{
		{Name: "to", Type: addressType},
		{Name: "amount", Type: uint256Type},
	}
	transferFromArgs = abi.Arguments{
		{Name: "from", Type: addressType},
		{Name: "to", Type: addressType},
		{Name: "tokenId", Type: uint256Type},
	}

	transferSelector     = crypto.Keccak256([]byte("transfer(address,uint256)"))[:4]
	transferFromSelector = crypto.Keccak256([]byte("transferFrom(address,address,uint256)"))[:4]
)

// TransferMethod identifies which token transfer method a calldata payload
// encodes.
type TransferMethod uint8

const (
	MethodUnknown TransferMethod = iota
	MethodTransfer
	MethodTransferFrom
)

func (m TransferMethod) String() string {
	switch m {
	case MethodTransfer:
		return "transfer"
	case MethodTransferFrom:
		return "transferFrom"
	default:
		return "unknown"
	}
}

// EncodeERC20Transfer returns the calldata for transfer(to, amount).
func EncodeERC20Transfer(to common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil {
		amount = big.NewInt(0)
	}
	packed, err := transferArgs.Pack(to, amount)
	if err != nil {
		return nil, fmt.Errorf("sendcoder: failed to pack transfer args: %w", err)
	}
	return append(append([]byte{}, transferSelector...), packed...), nil
}

// EncodeERC721TransferFrom returns the calldata for
// transferFrom(from, to, tokenId).
func EncodeERC721TransferFrom(from, to common.Address, tokenID *big.Int) ([]byte, error) {
	if tokenID == nil {
		return nil, fmt.Errorf("sendcoder: tokenID is required")
	}
	packed, err := transferFromArgs.Pack(from, to, tokenID)
	if err != nil {
		return nil, fmt.Errorf("sendcoder: failed to pack transferFrom args: %w", err)
	}
	return append(append([]byte{}, transferFromSelector...), packed...), nil
}

// TransferData is the decoded form of a token transfer calldata payload.
// Value holds the token amount for transfer calls and the token id for
// transferFrom calls.
type TransferData struct {
	Method TransferMethod
	From   common.Address // transferFrom only
	To     common.Address
	Value  *big.Int
}

// DecodeTransferData parses calldata produced by either transfer method back
// into its recipient and value. Used when editing a pending token transaction
// whose recipient and amount only exist inside the data field.
func DecodeTransferData(data []byte) (*TransferData, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("sendcoder: calldata too short")
	}
	selector, payload := data[:4], data[4:]

	switch {
	case bytes.Equal(selector, transferSelector):
		values, err := transferArgs.UnpackValues(payload)
		if err != nil {
			return nil, fmt.Errorf("sendcoder: failed to unpack transfer args: %w", err)
		}
		return &TransferData{
			Method: MethodTransfer,
			To:     values[0].(common.Address),
			Value:  values[1].(*big.Int),
		}, nil

	case bytes.Equal(selector, transferFromSelector):
		values, err := transferFromArgs.UnpackValues(payload)
		if err != nil {
			return nil, fmt.Errorf("sendcoder: failed to unpack transferFrom args: %w", err)
		}
		return &TransferData{
			Method: MethodTransferFrom,
			From:   values[0].(common.Address),
			To:     values[1].(common.Address),
			Value:  values[2].(*big.Int),
		}, nil

	default:
		return nil, fmt.Errorf("sendcoder: unrecognized method selector 0x%x", selector)
	}
}
