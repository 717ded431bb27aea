package recovery

import (
	"fmt"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
)

// BlindingSize is the length, in bytes, of the random blinding factor
// appended to each share before it is committed and uploaded.
const BlindingSize = 32

// BlindShare draws a fresh random blinding factor and returns
// share || blind, along with its keccak256 commitment.
func BlindShare(share []byte) (blinded, commitment []byte, err error) {
	blind, err := kwcrypto.RandomBytes(BlindingSize)
	if err != nil {
		return nil, nil, fmt.Errorf("recovery: generating blinding factor: %w", err)
	}
	blinded = append(append([]byte{}, share...), blind...)
	commitment = kwcrypto.Keccak256(blinded)
	return blinded, commitment, nil
}

// UnblindShare strips the trailing blinding factor from a downloaded
// blinded share, returning the original share bytes.
func UnblindShare(blinded []byte) ([]byte, error) {
	if len(blinded) < BlindingSize {
		return nil, fmt.Errorf("recovery: blinded share shorter than blinding factor")
	}
	return blinded[:len(blinded)-BlindingSize], nil
}
