package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
)

// backupKeyPrefix names every snapshot record: digibook_backup_<reason>_<timestamp>.
const backupKeyPrefix = "digibook_backup_"

// DefaultBackupKeep is the retention count when none is configured.
const DefaultBackupKeep = 5

// compressThreshold is the snapshot size above which backups are gzipped.
const compressThreshold = 1024

// backupEnvelope is the on-disk backup record. Checksum covers the canonical
// JSON of the snapshot before compression.
type backupEnvelope struct {
	Timestamp    time.Time `json:"timestamp"`
	Reason       string    `json:"reason"`
	Checksum     string    `json:"checksum"`
	Data         []byte    `json:"data"`
	Version      int       `json:"version"`
	Size         int64     `json:"size"`
	OriginalSize int64     `json:"originalSize"`
	Compressed   bool      `json:"compressed"`
}

// BackupInfo describes one stored snapshot for listing.
type BackupInfo struct {
	Timestamp    time.Time
	Key          string
	Reason       string
	Size         int64
	OriginalSize int64
	Compressed   bool
}

// BackupManager creates, lists, restores, and prunes snapshot records kept
// alongside the database so they survive an emergency database reset.
type BackupManager struct {
	store *SQLiteStorage
	dir   string
	keep  int
}

// NewBackupManager creates a backup manager for the given store. keep <= 0
// uses DefaultBackupKeep.
func NewBackupManager(store *SQLiteStorage, keep int) *BackupManager {
	if keep <= 0 {
		keep = DefaultBackupKeep
	}
	return &BackupManager{
		store: store,
		dir:   filepath.Join(filepath.Dir(store.Path()), "backups"),
		keep:  keep,
	}
}

// Dir returns the backup directory.
func (m *BackupManager) Dir() string {
	return m.dir
}

// Create snapshots the full store under a new key and prunes old backups to
// the retention limit.
func (m *BackupManager) Create(ctx context.Context, reason string) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	reason = sanitizeReason(reason)

	snap, err := m.store.CollectSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot store: %w", err)
	}

	canonical, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	sum := sha256.Sum256(canonical)

	data := canonical
	compressed := false
	if len(canonical) > compressThreshold {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(canonical); err != nil {
			return nil, fmt.Errorf("failed to compress snapshot: %w", err)
		}
		if err := gz.Close(); err != nil {
			return nil, fmt.Errorf("failed to compress snapshot: %w", err)
		}
		data = buf.Bytes()
		compressed = true
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("%s%s_%s", backupKeyPrefix, reason, now.Format("20060102-150405"))
	env := backupEnvelope{
		Timestamp:    now,
		Reason:       reason,
		Checksum:     hex.EncodeToString(sum[:]),
		Data:         data,
		Version:      model.SnapshotVersion,
		Size:         int64(len(data)),
		OriginalSize: int64(len(canonical)),
		Compressed:   compressed,
	}

	if err := os.MkdirAll(m.dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	path := filepath.Join(m.dir, key+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0600); err != nil {
		return nil, fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("failed to finalize backup: %w", err)
	}

	if err := m.prune(); err != nil {
		slog.Warn("failed to prune old backups", "error", err)
	}

	slog.Info("Created backup", "key", key, "size", env.Size, "original_size", env.OriginalSize)
	return &BackupInfo{
		Timestamp:    env.Timestamp,
		Key:          key,
		Reason:       env.Reason,
		Size:         env.Size,
		OriginalSize: env.OriginalSize,
		Compressed:   env.Compressed,
	}, nil
}

// List returns all backups, newest first. Unreadable records are skipped.
func (m *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var infos []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, backupKeyPrefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		env, err := m.loadEnvelope(filepath.Join(m.dir, name))
		if err != nil {
			slog.Warn("skipping unreadable backup", "file", name, "error", err)
			continue
		}
		infos = append(infos, BackupInfo{
			Timestamp:    env.Timestamp,
			Key:          strings.TrimSuffix(name, ".json"),
			Reason:       env.Reason,
			Size:         env.Size,
			OriginalSize: env.OriginalSize,
			Compressed:   env.Compressed,
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})
	return infos, nil
}

// Restore applies the backup stored under key. The checksum is verified
// before any state changes; a mismatch is a hard failure.
func (m *BackupManager) Restore(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	snap, err := m.loadSnapshot(filepath.Join(m.dir, key+".json"))
	if err != nil {
		return err
	}

	if err := m.store.ApplySnapshot(ctx, snap); err != nil {
		return err
	}

	if err := m.store.AppendAudit(ctx, &model.AuditRecord{Kind: model.AuditRestore}); err != nil {
		slog.Warn("failed to record restore audit entry", "error", err)
	}
	return nil
}

// RestoreLatest restores the newest checksum-valid backup and returns its
// key, or an error when none is usable.
func (m *BackupManager) RestoreLatest(ctx context.Context) (string, error) {
	infos, err := m.List(ctx)
	if err != nil {
		return "", err
	}
	for _, info := range infos {
		if err := m.Restore(ctx, info.Key); err != nil {
			slog.Warn("backup not restorable, trying older one", "key", info.Key, "error", err)
			continue
		}
		return info.Key, nil
	}
	return "", fmt.Errorf("%w: no restorable backup", common.ErrNotFound)
}

func (m *BackupManager) loadEnvelope(path string) (*backupEnvelope, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}
	var env backupEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformed, err)
	}
	return &env, nil
}

func (m *BackupManager) loadSnapshot(path string) (*model.Snapshot, error) {
	env, err := m.loadEnvelope(path)
	if err != nil {
		return nil, err
	}

	canonical := env.Data
	if env.Compressed {
		gz, err := gzip.NewReader(bytes.NewReader(env.Data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformed, err)
		}
		canonical, err = io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformed, err)
		}
		if err := gz.Close(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrMalformed, err)
		}
	}

	sum := sha256.Sum256(canonical)
	if hex.EncodeToString(sum[:]) != env.Checksum {
		return nil, fmt.Errorf("%w: %s", common.ErrChecksum, filepath.Base(path))
	}

	var snap model.Snapshot
	if err := json.Unmarshal(canonical, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformed, err)
	}
	if snap.Version > model.SnapshotVersion {
		return nil, fmt.Errorf("%w: backup version %d", common.ErrSchemaTooNew, snap.Version)
	}
	return &snap, nil
}

// prune removes the oldest backups beyond the retention limit.
func (m *BackupManager) prune() error {
	infos, err := m.List(context.Background())
	if err != nil {
		return err
	}
	for _, info := range infos[min(m.keep, len(infos)):] {
		if err := os.Remove(filepath.Join(m.dir, info.Key+".json")); err != nil {
			return fmt.Errorf("failed to remove backup %s: %w", info.Key, err)
		}
		slog.Debug("pruned backup", "key", info.Key)
	}
	return nil
}

func sanitizeReason(reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "manual"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", "..", "-", " ", "-", "_", "-")
	return replacer.Replace(reason)
}
