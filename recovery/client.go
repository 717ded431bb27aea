package recovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/idos-network/idos-sdk-go/kwcrypto"
	"github.com/idos-network/idos-sdk-go/signer"
	"github.com/idos-network/idos-sdk-go/types"
)

// Client drives the distributed-recovery protocol: per-operation node
// discovery, typed-data signing, and a concurrent fan-out across nodes
// that tolerates individual failures up to the configured threshold.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient builds a distributed-recovery Client. cfg is validated
// immediately so misconfiguration surfaces at construction, not on the
// first operation.
func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type ClientOption func(*Client)

func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = h }
}

// sharePath builds the per-node share endpoint for a given recovering
// address: /offchain/<contract>/shares/<id>, optionally with a sub-resource suffix
// ("/wallets", "/addresses").
func sharePath(cfg Config, id TaggedAddress, suffix string) string {
	return fmt.Sprintf("/offchain/%s/shares/%s%s", cfg.ContractAddress, id, suffix)
}

type uploadBody struct {
	ShareCommitments    []string `json:"share_commitments"`
	RecoveringAddresses []string `json:"recovering_addresses"`
	ShareData           string   `json:"share_data"`
}

// Upload splits secret into n Shamir shares, blinds each, and PUTs one
// per node. Success requires at least k+m nodes to accept with HTTP 201.
func (c *Client) Upload(ctx context.Context, s signer.TypedDataSigner, secret []byte, recoveringAddresses []TaggedAddress) error {
	nodes, err := DiscoverNodes(ctx, c.httpClient, c.cfg)
	if err != nil {
		return err
	}
	if len(nodes) < c.cfg.TotalNodes {
		return fmt.Errorf("recovery: discovered %d nodes, configured for %d", len(nodes), c.cfg.TotalNodes)
	}

	if len(recoveringAddresses) == 0 {
		return fmt.Errorf("recovery: upload requires at least one recovering address")
	}

	shares, err := ShamirSplit(secret, c.cfg.TotalNodes, c.cfg.Threshold)
	if err != nil {
		return err
	}

	blinded := make([][]byte, len(shares))
	commitments := make([][]byte, len(shares))
	for i, share := range shares {
		b, commitment, err := BlindShare(share)
		if err != nil {
			return err
		}
		blinded[i] = b
		commitments[i] = commitment
	}

	td, err := c.cfg.uploadTypedData(commitments, recoveringAddresses)
	if err != nil {
		return err
	}
	sig, err := s.SignTypedData(td)
	if err != nil {
		return fmt.Errorf("recovery: signing upload request: %w", err)
	}

	commitmentHex := make([]string, len(commitments))
	for i, com := range commitments {
		commitmentHex[i] = "0x" + types.EncodeHex(com)
	}
	addrStrs := make([]string, len(recoveringAddresses))
	for i, a := range recoveringAddresses {
		addrStrs[i] = string(a)
	}

	// The share is filed under the primary recovering address; additional
	// addresses in recoveringAddresses are registered as co-owners via the
	// same request body, not separate path entries.
	path := sharePath(c.cfg, recoveringAddresses[0], "")

	targetNodes := nodes[:c.cfg.TotalNodes]
	nodeErrs := make([]error, len(targetNodes))
	var eg errgroup.Group
	for i, node := range targetNodes {
		i, node := i, node
		eg.Go(func() error {
			body := uploadBody{
				ShareCommitments:    commitmentHex,
				RecoveringAddresses: addrStrs,
				ShareData:           "0x" + types.EncodeHex(blinded[i]),
			}
			nodeErrs[i] = c.putNode(ctx, node.URL, path, body, sig)
			return nil
		})
	}
	_ = eg.Wait() // per-node errors are collected in nodeErrs, not propagated here

	var failures []NodeFailure
	successes := 0
	for i, err := range nodeErrs {
		if err != nil {
			failures = append(failures, NodeFailure{NodeIndex: i, Error: err.Error()})
			continue
		}
		successes++
	}

	required := c.cfg.MinSuccesses()
	if successes < required {
		return &MpcUploadFailed{Success: successes, Required: required, Failures: failures}
	}
	return nil
}

type downloadRequestBody struct {
	RecoveringAddress string `json:"recovering_address"`
	Timestamp         int64  `json:"timestamp"`
	PublicKey         string `json:"public_key"`
}

type downloadResponseBody struct {
	EncryptedShare string `json:"encrypted_share"`
	Nonce          string `json:"nonce"`
	PublicKey      string `json:"public_key"`
}

// Download retrieves and reconstructs the secret for recoveringAddress
// from a quorum of at least k nodes.
func (c *Client) Download(ctx context.Context, s signer.TypedDataSigner, recoveringAddress TaggedAddress, nowMs int64) ([]byte, error) {
	nodes, err := DiscoverNodes(ctx, c.httpClient, c.cfg)
	if err != nil {
		return nil, err
	}
	if len(nodes) < c.cfg.TotalNodes {
		return nil, fmt.Errorf("recovery: discovered %d nodes, configured for %d", len(nodes), c.cfg.TotalNodes)
	}

	ephemeralPub, ephemeralSec, err := kwcrypto.GenerateBoxKeypair()
	if err != nil {
		return nil, fmt.Errorf("recovery: generating ephemeral keypair: %w", err)
	}

	td, err := c.cfg.downloadTypedData(recoveringAddress, nowMs, ephemeralPub[:])
	if err != nil {
		return nil, err
	}
	sig, err := s.SignTypedData(td)
	if err != nil {
		return nil, fmt.Errorf("recovery: signing download request: %w", err)
	}

	body := downloadRequestBody{
		RecoveringAddress: string(recoveringAddress),
		Timestamp:         nowMs,
		PublicKey:         "0x" + types.EncodeHex(ephemeralPub[:]),
	}

	path := sharePath(c.cfg, recoveringAddress, "")

	targetNodes := nodes[:c.cfg.TotalNodes]
	nodeShares := make([][]byte, len(targetNodes))
	nodeErrs := make([]error, len(targetNodes))
	var eg errgroup.Group
	for i, node := range targetNodes {
		i, node := i, node
		eg.Go(func() error {
			nodeShares[i], nodeErrs[i] = c.downloadFromNode(ctx, node.URL, path, body, sig, ephemeralSec)
			return nil
		})
	}
	_ = eg.Wait() // per-node errors are collected in nodeErrs, not propagated here

	var failures []NodeFailure
	var shares []Share
	var shareData [][]byte
	for i, err := range nodeErrs {
		if err != nil {
			failures = append(failures, NodeFailure{NodeIndex: i, Error: err.Error()})
			continue
		}
		shares = append(shares, Share{Index: byte(i + 1)})
		shareData = append(shareData, nodeShares[i])
	}

	if len(shares) < c.cfg.Threshold {
		return nil, &MpcNotEnoughShares{Obtained: len(shares), Required: c.cfg.Threshold, Failures: failures}
	}

	return ShamirCombine(shares[:c.cfg.Threshold], shareData[:c.cfg.Threshold])
}

func (c *Client) downloadFromNode(ctx context.Context, baseURL, path string, body downloadRequestBody, sig string, ephemeralSec *[32]byte) ([]byte, error) {
	respBody, err := c.postNode(ctx, baseURL, path, body, sig)
	if err != nil {
		return nil, err
	}

	var resp downloadResponseBody
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("recovery: decoding download response: %w", err)
	}

	encrypted, err := types.DecodeHex(resp.EncryptedShare)
	if err != nil {
		return nil, fmt.Errorf("recovery: invalid encrypted_share hex: %w", err)
	}
	nonce, err := types.DecodeHex(resp.Nonce)
	if err != nil {
		return nil, fmt.Errorf("recovery: invalid nonce hex: %w", err)
	}
	nodePub, err := types.DecodeHex(resp.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("recovery: invalid node public_key hex: %w", err)
	}
	if len(nodePub) != 32 {
		return nil, fmt.Errorf("recovery: node public key is %d bytes, want 32", len(nodePub))
	}

	sealed := append(append([]byte{}, nonce...), encrypted...)
	var nodePubArr [32]byte
	copy(nodePubArr[:], nodePub)

	blindedShare, err := kwcrypto.BoxOpen(sealed, &nodePubArr, ephemeralSec)
	if err != nil {
		return nil, fmt.Errorf("recovery: opening share response: %w", err)
	}
	return UnblindShare(blindedShare)
}

// AddAddress registers targetAddress as an additional owner of
// recoveringAddress's secret, via POST per-node.
func (c *Client) AddAddress(ctx context.Context, s signer.TypedDataSigner, recoveringAddress, targetAddress TaggedAddress) error {
	return c.manageAddress(ctx, s, "add_address", recoveringAddress, targetAddress, http.MethodPost, "/addresses")
}

// RemoveAddress revokes targetAddress's access to recoveringAddress's
// secret, via PATCH per-node.
func (c *Client) RemoveAddress(ctx context.Context, s signer.TypedDataSigner, recoveringAddress, targetAddress TaggedAddress) error {
	return c.manageAddress(ctx, s, "remove_address", recoveringAddress, targetAddress, http.MethodPatch, "/addresses")
}

// UpdateWallets replaces recoveringAddress's registered wallet set with
// targetAddress, via PATCH per-node.
func (c *Client) UpdateWallets(ctx context.Context, s signer.TypedDataSigner, recoveringAddress, targetAddress TaggedAddress) error {
	return c.manageAddress(ctx, s, "update_wallets", recoveringAddress, targetAddress, http.MethodPatch, "/wallets")
}

func (c *Client) manageAddress(ctx context.Context, s signer.TypedDataSigner, action string, recoveringAddress, targetAddress TaggedAddress, method, suffix string) error {
	nodes, err := DiscoverNodes(ctx, c.httpClient, c.cfg)
	if err != nil {
		return err
	}
	if len(nodes) < c.cfg.TotalNodes {
		return fmt.Errorf("recovery: discovered %d nodes, configured for %d", len(nodes), c.cfg.TotalNodes)
	}

	td, err := c.cfg.manageAddressTypedData(action, recoveringAddress, targetAddress)
	if err != nil {
		return err
	}
	sig, err := s.SignTypedData(td)
	if err != nil {
		return fmt.Errorf("recovery: signing %s request: %w", action, err)
	}

	body := map[string]string{
		"action":             action,
		"recovering_address": string(recoveringAddress),
		"target_address":     string(targetAddress),
	}

	path := sharePath(c.cfg, recoveringAddress, suffix)

	targetNodes := nodes[:c.cfg.TotalNodes]
	nodeErrs := make([]error, len(targetNodes))
	var eg errgroup.Group
	for i, node := range targetNodes {
		i, node := i, node
		eg.Go(func() error {
			nodeErrs[i] = c.doNode(ctx, method, node.URL, path, body, sig, http.StatusOK)
			return nil
		})
	}
	_ = eg.Wait() // per-node errors are collected in nodeErrs, not propagated here

	var failures []NodeFailure
	successes := 0
	for i, err := range nodeErrs {
		if err != nil {
			failures = append(failures, NodeFailure{NodeIndex: i, Error: err.Error()})
			continue
		}
		successes++
	}

	required := c.cfg.MinSuccesses()
	if successes < required {
		return &MpcUploadFailed{Success: successes, Required: required, Failures: failures}
	}
	return nil
}

func (c *Client) putNode(ctx context.Context, baseURL, path string, body any, sig string) error {
	return c.doNode(ctx, http.MethodPut, baseURL, path, body, sig, http.StatusCreated)
}

func (c *Client) postNode(ctx context.Context, baseURL, path string, body any, sig string) ([]byte, error) {
	return c.doNodeWithResponse(ctx, http.MethodPost, baseURL, path, body, sig, http.StatusOK)
}

func (c *Client) doNode(ctx context.Context, method, baseURL, path string, body any, sig string, wantStatus int) error {
	_, err := c.doNodeWithResponse(ctx, method, baseURL, path, body, sig, wantStatus)
	return err
}

func (c *Client) doNodeWithResponse(ctx context.Context, method, baseURL, path string, body any, sig string, wantStatus int) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("recovery: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("recovery: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", sig)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recovery: node request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("recovery: reading node response: %w", err)
	}

	if resp.StatusCode != wantStatus {
		return nil, fmt.Errorf("recovery: node returned status %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
