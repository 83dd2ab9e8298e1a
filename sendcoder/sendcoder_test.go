package sendcoder_test

import (
	"math/big"
	"testing"

	"github.com/0xsequence/sendkit/sendcoder"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeERC20Transfer(t *testing.T) {
	to := common.HexToAddress("0x2f318C334780961FB129D2a6c30D0763d9a5C970")
	data, err := sendcoder.EncodeERC20Transfer(to, big.NewInt(10000))
	require.NoError(t, err)

	expected := "0xa9059cbb" +
		"0000000000000000000000002f318c334780961fb129d2a6c30d0763d9a5c970" +
		"0000000000000000000000000000000000000000000000000000000000002710"
	assert.Equal(t, expected, sendcoder.HexEncode(data))
}

func TestEncodeERC721TransferFrom(t *testing.T) {
	from := common.HexToAddress("0x3535353535353535353535353535353535353535")
	to := common.HexToAddress("0x2f318C334780961FB129D2a6c30D0763d9a5C970")

	data, err := sendcoder.EncodeERC721TransferFrom(from, to, big.NewInt(7))
	require.NoError(t, err)
	require.Len(t, data, 4+3*32)

	expected := "0x23b872dd" +
		"0000000000000000000000003535353535353535353535353535353535353535" +
		"0000000000000000000000002f318c334780961fb129d2a6c30d0763d9a5c970" +
		"0000000000000000000000000000000000000000000000000000000000000007"
	assert.Equal(t, expected, sendcoder.HexEncode(data))
}

func TestEncodeERC721TransferFromRequiresTokenID(t *testing.T) {
	_, err := sendcoder.EncodeERC721TransferFrom(common.Address{}, common.Address{}, nil)
	assert.Error(t, err)
}

func TestDecodeTransferData(t *testing.T) {
	to := common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
	data, err := sendcoder.EncodeERC20Transfer(to, big.NewInt(123456789))
	require.NoError(t, err)

	decoded, err := sendcoder.DecodeTransferData(data)
	require.NoError(t, err)
	assert.Equal(t, sendcoder.MethodTransfer, decoded.Method)
	assert.Equal(t, to, decoded.To)
	assert.Equal(t, int64(123456789), decoded.Value.Int64())
}

func TestDecodeTransferFromData(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data, err := sendcoder.EncodeERC721TransferFrom(from, to, big.NewInt(42))
	require.NoError(t, err)

	decoded, err := sendcoder.DecodeTransferData(data)
	require.NoError(t, err)
	assert.Equal(t, sendcoder.MethodTransferFrom, decoded.Method)
	assert.Equal(t, from, decoded.From)
	assert.Equal(t, to, decoded.To)
	assert.Equal(t, int64(42), decoded.Value.Int64())
}

func TestDecodeTransferDataRejectsUnknownSelector(t *testing.T) {
	_, err := sendcoder.DecodeTransferData(sendcoder.MustHexDecode("0xdeadbeef"))
	assert.Error(t, err)

	_, err = sendcoder.DecodeTransferData([]byte{0x01})
	assert.Error(t, err)
}
