package strings

import (
	"crypto/rand"
	"encoding/hex"
)

// return random Hex string (/[0-9a-f]*/)
func RandomHex(l uint) (string, error) {
	if l == 0 {
		return "", nil
	}

	// encoding from []byte to hex string is doubling its length.
	// in case of odd `l`, add extra 1 not to be short.
	buffer := make([]byte, l/2+1)
	if _, err := rand.Read(buffer); err != nil {
		return "", err
	}
	return hex.EncodeToString(buffer)[:l], nil
}
