package sendflow_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/0xsequence/sendkit/gasfee"
	"github.com/0xsequence/sendkit/sendflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionParamsLegacy(t *testing.T) {
	env := newTestEnv(t)
	env.fees.estimates = legacyEstimates(1)
	env.limits.limit = big.NewInt(21000)
	env.startDraft(t, nil)
	env.flow.SetRecipient(context.Background(), recipientAddress, "")
	env.flow.Wait()
	env.flow.SetSendAmount(context.Background(), big.NewInt(5))
	env.flow.Wait()

	params, err := env.flow.TransactionParams()
	require.NoError(t, err)

	assert.Equal(t, senderAddress.Hex(), params.From)
	assert.Equal(t, recipientAddress, params.To)
	assert.Equal(t, "0x5", params.Value)
	assert.Equal(t, "0x5208", params.Gas)
	assert.Equal(t, "0x3b9aca00", params.GasPrice)
	assert.Equal(t, "0x0", params.Type)
	assert.Empty(t, params.MaxFeePerGas)
	assert.Empty(t, params.MaxPriorityFeePerGas)
}

func TestTransactionParamsFeeMarket(t *testing.T) {
	env := newTestEnv(t)
	env.network.EIP1559Support = true
	env.fees.estimates = gasfee.Estimates{
		Type: gasfee.EstimateFeeMarket,
		Medium: gasfee.Level{
			MaxFeePerGas:         gasfee.GweiToWei(3),
			MaxPriorityFeePerGas: gasfee.GweiToWei(1),
		},
	}
	env.startDraft(t, nil)
	env.flow.SetRecipient(context.Background(), recipientAddress, "")
	env.flow.Wait()

	params, err := env.flow.TransactionParams()
	require.NoError(t, err)

	assert.Equal(t, "0x2", params.Type)
	assert.Equal(t, "0xb2d05e00", params.MaxFeePerGas) // 3 gwei
	assert.Equal(t, "0x3b9aca00", params.MaxPriorityFeePerGas)
	assert.Empty(t, params.GasPrice)
}

func TestTransactionParamsFeeMarketDefaulting(t *testing.T) {
	env := newTestEnv(t)
	env.network.EIP1559Support = true
	env.fees.estimates = gasfee.Estimates{Type: gasfee.EstimateNone}
	env.startDraft(t, nil)
	env.flow.SetRecipient(context.Background(), recipientAddress, "")
	env.flow.Wait()

	// with no estimate available the fee fields stay zero until the user
	// or a fee estimate update fills them in
	params, err := env.flow.TransactionParams()
	require.NoError(t, err)
	assert.Equal(t, "0x2", params.Type)
	assert.Equal(t, "0x0", params.MaxFeePerGas)
	assert.Equal(t, "0x0", params.MaxPriorityFeePerGas)

	// a max fee without a priority fee pins the priority fee to the max fee
	env.flow.SetGasFees(gasfee.GweiToWei(4), nil)
	params, err = env.flow.TransactionParams()
	require.NoError(t, err)
	assert.Equal(t, "0xee6b2800", params.MaxFeePerGas) // 4 gwei
	assert.Equal(t, "0xee6b2800", params.MaxPriorityFeePerGas)
}

func TestTransactionParamsNoDraft(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.flow.TransactionParams()
	assert.ErrorIs(t, err, sendflow.ErrNoDraftTransaction)
}
