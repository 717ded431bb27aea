package codec

import (
	"fmt"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
	"github.com/idos-network/idos-sdk-go/signer"
	"github.com/idos-network/idos-sdk-go/types"
)

// Signature is the envelope's signature block. Sig is nil until the
// transaction is signed.
type Signature struct {
	Sig  *string              `json:"sig"`
	Type signer.SignatureType `json:"type"`
}

// TxBody is the envelope's signed body: the description, the base64
// action-execution payload, the fixed "execute" type, the fee (always "0"
// in this SDK -- fee markets are not in scope), the account nonce, and the
// chain id.
type TxBody struct {
	Desc    string `json:"desc"`
	Payload string `json:"payload"`
	Type    string `json:"type"`
	Fee     string `json:"fee"`
	Nonce   uint64 `json:"nonce"`
	ChainID string `json:"chain_id"`
}

// Transaction is the (unsigned or signed) transaction envelope.
type Transaction struct {
	Signature     Signature `json:"signature"`
	Body          TxBody    `json:"body"`
	Sender        string    `json:"sender"` // hex
	Serialization string    `json:"serialization"`
}

// IsSigned reports whether the envelope carries a signature.
func (t *Transaction) IsSigned() bool {
	return t.Signature.Sig != nil
}

// NewUnsignedTransaction builds an unsigned envelope around an
// already-encoded action-execution payload.
func NewUnsignedTransaction(desc string, payload []byte, nonce uint64, chainID string, sigType signer.SignatureType, senderHex string) *Transaction {
	return &Transaction{
		Signature: Signature{Sig: nil, Type: sigType},
		Body: TxBody{
			Desc:    desc,
			Payload: types.EncodeBase64(payload),
			Type:    "execute",
			Fee:     "0",
			Nonce:   nonce,
			ChainID: chainID,
		},
		Sender:        senderHex,
		Serialization: "concat",
	}
}

// SignableMessage builds the canonical text message the signer signs.
// Whitespace is normative; do not reformat.
func SignableMessage(tx *Transaction, payload []byte) string {
	digest := kwcrypto.PayloadDigest(payload)
	return fmt.Sprintf(
		"%s\n\nPayloadType: %s\nPayloadDigest: %s\nFee: %s\nNonce: %d\n\nKwil Chain ID: %s\n",
		tx.Body.Desc, tx.Body.Type, types.EncodeHex(digest), tx.Body.Fee, tx.Body.Nonce, tx.Body.ChainID,
	)
}

// Sign computes the canonical signable message for tx over payload, signs
// it with s, and attaches the base64 signature and signature type to tx. A
// transaction must be signed before it is broadcast.
func Sign(tx *Transaction, payload []byte, s signer.Signer) error {
	msg := SignableMessage(tx, payload)
	sig, err := s.Sign([]byte(msg))
	if err != nil {
		return fmt.Errorf("codec: signing transaction: %w", err)
	}
	encoded := types.EncodeBase64(sig)
	tx.Signature.Sig = &encoded
	tx.Signature.Type = s.GetSignatureType()
	return nil
}
