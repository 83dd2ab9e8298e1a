package nameres

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// RegistryAddress is the ENS registry deployed on mainnet.
const RegistryAddress = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"

// ContractCaller is the subset of an Ethereum client the resolver needs.
// *ethclient.Client satisfies this interface.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var (
	resolverSelector = crypto.Keccak256([]byte("resolver(bytes32)"))[:4]
	addrSelector     = crypto.Keccak256([]byte("addr(bytes32)"))[:4]
)

// Resolver looks names up in the on-chain registry. Only the mainnet
// registry is supported.
type Resolver struct {
	caller   ContractCaller
	registry common.Address
}

func NewResolver(caller ContractCaller) *Resolver {
	return &Resolver{
		caller:   caller,
		registry: common.HexToAddress(RegistryAddress),
	}
}

// ResolveName resolves a domain name to the address its resolver record
// points at. A name with no resolver or a zero address record reports
// ok=false without an error.
func (r *Resolver) ResolveName(ctx context.Context, name string) (common.Address, bool, error) {
	hash, err := NameHash(name)
	if err != nil {
		return common.Address{}, false, fmt.Errorf("nameres: failed to hash name: %w", err)
	}

	resolverAddress, err := r.queryAddress(ctx, r.registry, resolverSelector, hash)
	if err != nil {
		return common.Address{}, false, fmt.Errorf("nameres: failed to query resolver address: %w", err)
	}
	if resolverAddress == (common.Address{}) {
		return common.Address{}, false, nil
	}

	resolved, err := r.queryAddress(ctx, resolverAddress, addrSelector, hash)
	if err != nil {
		return common.Address{}, false, fmt.Errorf("nameres: failed to query address record: %w", err)
	}
	if resolved == (common.Address{}) {
		return common.Address{}, false, nil
	}
	return resolved, true, nil
}

func (r *Resolver) queryAddress(ctx context.Context, to common.Address, selector []byte, arg [32]byte) (common.Address, error) {
	data := make([]byte, 0, len(selector)+len(arg))
	data = append(data, selector...)
	data = append(data, arg[:]...)

	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) < 32 {
		return common.Address{}, nil
	}
	return common.BytesToAddress(out[:32]), nil
}
