package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/idos-network/idos-sdk-go/enclave"
	"github.com/idos-network/idos-sdk-go/kwcrypto"
	"github.com/idos-network/idos-sdk-go/recovery"
	"github.com/idos-network/idos-sdk-go/signer"
	"github.com/idos-network/idos-sdk-go/types"
)

func newRecoverCmd() *cobra.Command {
	var mode string
	var addressesCSV string

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "back up or restore the enclave's key via distributed recovery",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := buildSigner()
			if err != nil {
				return err
			}
			if s == nil {
				return fmt.Errorf("recover: a signer is required, set signer.private_key or signer.encrypted_key_path")
			}
			tds, ok := s.(signer.TypedDataSigner)
			if !ok {
				return fmt.Errorf("recover: signer scheme %q cannot produce typed-data signatures", s.GetSignatureType())
			}

			client, err := recovery.NewClient(cfg.Recovery)
			if err != nil {
				return fmt.Errorf("recover: %w", err)
			}

			self := recovery.NewTaggedAddress(s)

			switch mode {
			case "upload":
				return runRecoverUpload(cmd, client, tds, self, addressesCSV)
			case "download":
				return runRecoverDownload(cmd, client, tds, self)
			default:
				return fmt.Errorf("recover: unknown --mode %q (valid: upload, download)", mode)
			}
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "upload or download")
	cmd.Flags().StringVar(&addressesCSV, "recovering-addresses", "", "additional tagged addresses to authorize on upload (comma-separated)")
	_ = cmd.MarkFlagRequired("mode")
	return cmd
}

func runRecoverUpload(cmd *cobra.Command, client *recovery.Client, tds signer.TypedDataSigner, self recovery.TaggedAddress, addressesCSV string) error {
	secrets, err := enclave.NewFileSecretStore(cfg.Enclave.StoragePath)
	if err != nil {
		return fmt.Errorf("recover upload: %w", err)
	}
	secret, err := secrets.Get(enclave.KindUser)
	if err != nil {
		return fmt.Errorf("recover upload: reading enclave secret: %w", err)
	}

	addrs := []recovery.TaggedAddress{self}
	for _, a := range splitCSV(addressesCSV) {
		addrs = append(addrs, recovery.TaggedAddress(a))
	}

	if err := client.Upload(cmd.Context(), tds, secret, addrs); err != nil {
		return fmt.Errorf("recover upload: %w", err)
	}
	fmt.Println("upload complete")
	return nil
}

func runRecoverDownload(cmd *cobra.Command, client *recovery.Client, tds signer.TypedDataSigner, self recovery.TaggedAddress) error {
	secret, err := client.Download(cmd.Context(), tds, self, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("recover download: %w", err)
	}

	secrets, err := enclave.NewFileSecretStore(cfg.Enclave.StoragePath)
	if err != nil {
		return fmt.Errorf("recover download: %w", err)
	}
	metadata, err := enclave.NewFileMetadataStore(cfg.Enclave.StoragePath)
	if err != nil {
		return fmt.Errorf("recover download: %w", err)
	}
	if err := secrets.Put(enclave.KindMPC, secret); err != nil {
		return fmt.Errorf("recover download: storing recovered secret: %w", err)
	}

	var secretArr [32]byte
	copy(secretArr[:], secret)
	pub := kwcrypto.DeriveCurve25519PublicKey(&secretArr)
	kwcrypto.ZeroArray32(&secretArr)

	now := time.Now().UnixMilli()
	meta := enclave.KeyMetadata{
		PublicKey:      types.EncodeHex(pub[:]),
		Type:           enclave.KindMPC,
		ExpirationType: enclave.ExpirationSession,
		CreatedAt:      now,
		LastUsedAt:     now,
	}
	if err := metadata.Put(enclave.KindMPC, meta); err != nil {
		return fmt.Errorf("recover download: storing recovered key metadata: %w", err)
	}

	fmt.Printf("public_key=%s\n", meta.PublicKey)
	return nil
}
