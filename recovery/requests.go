package recovery

import (
	"fmt"

	"github.com/idos-network/idos-sdk-go/signer"
	"github.com/idos-network/idos-sdk-go/types"
)

// TaggedAddress identifies a recovery address by signer scheme, e.g.
// "secp256k1_ep:0xabc...". Every recovery request that names an address
// (the recovering address itself, or an address passed to add/remove/
// update) uses this tagged form so the node can tell which signature
// scheme to expect from it.
type TaggedAddress string

// NewTaggedAddress builds the tagged-address form of s's own identifier.
func NewTaggedAddress(s signer.Signer) TaggedAddress {
	return TaggedAddress(fmt.Sprintf("%s:0x%s", s.GetSignatureType(), types.EncodeHex(s.GetIdentifier())))
}

// domain builds the EIP-712 domain every distributed-recovery request
// signs under: a fixed name/version, and a verifying contract derived
// from the last 20 bytes of the configured contract address.
func (c Config) domain() (signer.Domain, error) {
	addr, err := types.DecodeHex(c.ContractAddress)
	if err != nil {
		return signer.Domain{}, fmt.Errorf("recovery: invalid contract address: %w", err)
	}
	if len(addr) < 20 {
		return signer.Domain{}, fmt.Errorf("recovery: contract address shorter than 20 bytes")
	}
	last20 := addr[len(addr)-20:]
	return signer.Domain{
		Name:              "idOS secret store contract",
		Version:           "1",
		VerifyingContract: "0x" + types.EncodeHex(last20),
	}, nil
}

// uploadTypedData builds the typed-data structure for an Upload
// request: the share commitments and the recovering addresses that will
// own the uploaded secret.
func (c Config) uploadTypedData(shareCommitments [][]byte, recoveringAddresses []TaggedAddress) (signer.TypedData, error) {
	domain, err := c.domain()
	if err != nil {
		return signer.TypedData{}, err
	}

	commitments := make([]any, len(shareCommitments))
	for i, sc := range shareCommitments {
		commitments[i] = sc
	}
	addrs := make([]any, len(recoveringAddresses))
	for i, a := range recoveringAddresses {
		addrs[i] = string(a)
	}

	return signer.TypedData{
		Types: signer.Types{
			"Upload": {
				{Name: "shareCommitments", Type: "bytes32[]"},
				{Name: "recoveringAddresses", Type: "string[]"},
			},
		},
		PrimaryType: "Upload",
		Domain:      domain,
		Message: map[string]any{
			"shareCommitments":    commitments,
			"recoveringAddresses": addrs,
		},
	}, nil
}

// downloadTypedData builds the typed-data structure for a Download
// request: which address is recovering, a freshness timestamp, and the
// ephemeral public key the node should encrypt its share response to.
func (c Config) downloadTypedData(recoveringAddress TaggedAddress, timestampMs int64, ephemeralPub []byte) (signer.TypedData, error) {
	domain, err := c.domain()
	if err != nil {
		return signer.TypedData{}, err
	}

	return signer.TypedData{
		Types: signer.Types{
			"Download": {
				{Name: "recoveringAddress", Type: "string"},
				{Name: "timestamp", Type: "uint256"},
				{Name: "publicKey", Type: "string"},
			},
		},
		PrimaryType: "Download",
		Domain:      domain,
		Message: map[string]any{
			"recoveringAddress": string(recoveringAddress),
			"timestamp":         timestampMs,
			"publicKey":         "0x" + types.EncodeHex(ephemeralPub),
		},
	}, nil
}

// manageAddressTypedData covers add_address, remove_address, and the
// address-naming portion of update_wallets: all three sign the same
// {action, recoveringAddress, targetAddress} shape, distinguished by the
// signed action value and the transport verb the caller uses to submit
// them.
func (c Config) manageAddressTypedData(action string, recoveringAddress, targetAddress TaggedAddress) (signer.TypedData, error) {
	domain, err := c.domain()
	if err != nil {
		return signer.TypedData{}, err
	}

	return signer.TypedData{
		Types: signer.Types{
			"ManageAddress": {
				{Name: "action", Type: "string"},
				{Name: "recoveringAddress", Type: "string"},
				{Name: "targetAddress", Type: "string"},
			},
		},
		PrimaryType: "ManageAddress",
		Domain:      domain,
		Message: map[string]any{
			"action":            action,
			"recoveringAddress": string(recoveringAddress),
			"targetAddress":     string(targetAddress),
		},
	}, nil
}
