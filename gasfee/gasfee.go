package gasfee

import (
	"context"
	"math/big"
)

// EstimateType identifies which estimation scheme produced a set of gas fee
// estimates. Networks fall back through the types in order: a fee market
// estimate when the network supports EIP-1559, a legacy low/medium/high
// estimate, a flat eth_gasPrice sample, or nothing at all.
type EstimateType uint8

const (
	EstimateNone EstimateType = iota
	EstimateLegacy
	EstimateEthGasPrice
	EstimateFeeMarket
)

func (t EstimateType) String() string {
	switch t {
	case EstimateLegacy:
		return "legacy"
	case EstimateEthGasPrice:
		return "eth_gasPrice"
	case EstimateFeeMarket:
		return "fee-market"
	default:
		return "none"
	}
}

// Level holds the fee values for one speed tier. Legacy estimates populate
// GasPrice, fee market estimates populate the max fee pair.
type Level struct {
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// Estimates is one snapshot of gas fee estimates. All values are in wei.
type Estimates struct {
	Type     EstimateType
	GasPrice *big.Int // populated for EstimateEthGasPrice
	Low      Level
	Medium   Level
	High     Level
}

// Source produces estimate snapshots for the poller, typically backed by a
// node RPC or a gas oracle API.
type Source interface {
	FetchEstimates(ctx context.Context) (*Estimates, error)
}

var oneGwei = big.NewInt(1e9)

// GweiToWei converts a whole-gwei quantity to wei.
func GweiToWei(gwei int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(gwei), oneGwei)
}

// RoundGasPrice rounds a wei gas price up to the nearest tenth of a gwei,
// matching how sampled eth_gasPrice values are presented to users. Values
// below 0.1 gwei are returned unchanged.
func RoundGasPrice(wei *big.Int) *big.Int {
	if wei == nil {
		return new(big.Int)
	}
	tenth := new(big.Int).Div(oneGwei, big.NewInt(10))
	if wei.Cmp(tenth) < 0 {
		return new(big.Int).Set(wei)
	}
	quo, rem := new(big.Int).QuoRem(wei, tenth, new(big.Int))
	if rem.Sign() > 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo.Mul(quo, tenth)
}
