package types

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// HexToBytes decodes a hex string with or without the 0x prefix.
func HexToBytes(hexStr string) ([]byte, error) {
	if !isHex(hexStr) {
		return nil, fmt.Errorf("invalid hex string: %q", hexStr)
	}
	return common.FromHex(hexStr), nil
}

type HexBytes []byte

func (hb HexBytes) String() string {
	return hexutil.Encode(hb)
}

func (hb HexBytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hexutil.Encode(hb) + `"`), nil
}

// UnmarshalJSON accepts hex (0x prefix optional) and falls back to base64.
func (hb *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid hex string: %s", data)
	}

	val := string(data[1 : len(data)-1])
	if isHex(val) {
		*hb = common.FromHex(val)
		return nil
	}

	bz, err := base64.StdEncoding.DecodeString(val)
	if err != nil {
		return err
	}
	*hb = bz
	return nil
}

func isHex(s string) bool {
	v := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(v)%2 != 0 {
		return false
	}
	for _, b := range []byte(v) {
		if !(b >= '0' && b <= '9' || b >= 'a' && b <= 'f' || b >= 'A' && b <= 'F') {
			return false
		}
	}
	return true
}
