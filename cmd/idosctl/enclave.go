package main

import (
	"fmt"

	"github.com/idos-network/idos-sdk-go/enclave"
	"github.com/idos-network/idos-sdk-go/enclave/orchestrator"
)

// openOrchestrator builds a file-backed enclave of the given kind rooted
// at cfg.Enclave.StoragePath and wraps it in an Orchestrator.
func openOrchestrator(kind enclave.Kind) (*orchestrator.Orchestrator, enclave.MetadataStore, error) {
	secrets, err := enclave.NewFileSecretStore(cfg.Enclave.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening secret store: %w", err)
	}
	metadata, err := enclave.NewFileMetadataStore(cfg.Enclave.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening metadata store: %w", err)
	}
	e := enclave.New(kind, secrets, metadata)
	return orchestrator.New(e), metadata, nil
}
