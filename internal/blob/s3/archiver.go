package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/idos-network/idos-sdk-go/enclave"
	"github.com/idos-network/idos-sdk-go/internal/crypto"
	"github.com/idos-network/idos-sdk-go/internal/store/postgres"
)

// BlobWriter is the narrow upload surface the archiver requires.
type BlobWriter interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// AuditStore provides the broadcast records eligible for archival, and
// records the resulting archive event.
type AuditStore interface {
	ListBefore(ctx context.Context, before time.Time) ([]postgres.Entry, error)
	Log(ctx context.Context, e postgres.Entry, detail map[string]any) error
}

// Archiver copies broadcast audit records older than a cutoff from the
// primary store into S3 as newline-delimited JSON, so operators retain a
// full history in object storage.
//
// Deletion of the archived records from the primary store is intentionally
// NOT performed here -- that is a separate, explicit step to be executed
// after the archive has been verified.
type Archiver struct {
	writer BlobWriter
	audit  AuditStore
}

// NewArchiver creates an Archiver.
func NewArchiver(writer BlobWriter, auditStore AuditStore) *Archiver {
	return &Archiver{writer: writer, audit: auditStore}
}

// ArchiveBroadcasts queries all broadcast audit entries before the cutoff,
// serializes them to JSONL, and uploads the file to S3 at
// archive/broadcasts/YYYY-MM.jsonl. The archival event is itself recorded in
// the audit log and the count of archived records is returned.
func (a *Archiver) ArchiveBroadcasts(ctx context.Context, before time.Time) (int64, error) {
	entries, err := a.audit.ListBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive broadcasts query: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(entries)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive broadcasts marshal: %w", err)
	}

	path := archivePath("broadcasts", before)
	if err := a.writer.Put(ctx, path, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive broadcasts upload: %w", err)
	}

	count := int64(len(entries))

	if err := a.audit.Log(ctx, postgres.Entry{Action: "archive.broadcasts"}, map[string]any{
		"path":   path,
		"count":  count,
		"before": before.Format(time.RFC3339),
	}); err != nil {
		return count, fmt.Errorf("s3blob: archive broadcasts audit log: %w", err)
	}

	return count, nil
}

// ArchiveMetadata backs up the enclave's persisted KeyMetadata for kind to
// S3, encrypted at rest with password under the same PBKDF2 + AES-256-GCM
// recipe keymanager.go uses for encrypted private key files. The secret
// itself is never read or archived -- only the metadata record (public
// key, expiry policy, timestamps) a disaster-recovery operator needs to
// confirm what existed before reaching for distributed recovery. Returns
// the S3 key the backup was written to.
func (a *Archiver) ArchiveMetadata(ctx context.Context, metadata enclave.MetadataStore, kind enclave.Kind, password string) (string, error) {
	meta, err := metadata.Get(kind)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive metadata read: %w", err)
	}
	if meta == nil {
		return "", fmt.Errorf("s3blob: archive metadata: no metadata stored for kind %q", kind)
	}

	plaintext, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive metadata marshal: %w", err)
	}

	encrypted, err := crypto.EncryptBlob(plaintext, password)
	if err != nil {
		return "", fmt.Errorf("s3blob: archive metadata encrypt: %w", err)
	}

	path := fmt.Sprintf("archive/enclave-metadata/%s-%d.json", kind, time.Now().UnixMilli())
	if err := a.writer.Put(ctx, path, bytes.NewReader(encrypted), "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: archive metadata upload: %w", err)
	}
	return path, nil
}

// archivePath builds the S3 key for an archive file, partitioned by the
// year-month of the cutoff time.
//
//	archive/broadcasts/2025-01.jsonl
func archivePath(kind string, before time.Time) string {
	return fmt.Sprintf("archive/%s/%s.jsonl", kind, before.Format("2006-01"))
}

// marshalJSONL serialises a slice of values as newline-delimited JSON (JSONL).
// Each element is marshalled as a single compact JSON line followed by '\n'.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
