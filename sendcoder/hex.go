package sendcoder

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func HexEncode(b []byte) string {
	return hexutil.Encode(b)
}

func HexDecode(h string) ([]byte, error) {
	return hexutil.Decode(h)
}

func MustHexDecode(h string) []byte {
	b, err := HexDecode(h)
	if err != nil {
		panic(err)
	}
	return b
}
