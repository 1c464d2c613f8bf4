package storage

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/model"
)

func TestBackupRoundTrip(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := createTestAccount(t, store, "Checking", 800)

	mgr := store.NewBackupManager(5)
	info, err := mgr.Create(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}
	if info.Key == "" || info.Size == 0 {
		t.Errorf("Backup info incomplete: %+v", info)
	}

	// Mutate the store, then restore.
	account.CurrentBalance = 0
	if err := store.UpdateAccount(ctx, account); err != nil {
		t.Fatalf("Failed to update account: %v", err)
	}

	if err := mgr.Restore(ctx, info.Key); err != nil {
		t.Fatalf("Failed to restore backup: %v", err)
	}

	got, err := store.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if got.CurrentBalance != 800 {
		t.Errorf("Expected restored balance 800, got %v", got.CurrentBalance)
	}

	// The restore leaves an audit trail.
	records, err := store.GetAuditRecords(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get audit records: %v", err)
	}
	found := false
	for _, r := range records {
		if r.Kind == model.AuditRestore {
			found = true
		}
	}
	if !found {
		t.Error("Expected a restore audit record")
	}
}

func TestBackupChecksumMismatch(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	createTestAccount(t, store, "Checking", 100)

	mgr := store.NewBackupManager(5)
	info, err := mgr.Create(ctx, "corrupt")
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	// Tamper with the stored snapshot while keeping the envelope readable.
	path := filepath.Join(mgr.Dir(), info.Key+".json")
	payload, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read backup file: %v", err)
	}
	var env backupEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("Failed to decode envelope: %v", err)
	}
	env.Checksum = "0000000000000000000000000000000000000000000000000000000000000000"
	tampered, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("Failed to re-encode envelope: %v", err)
	}
	if err := os.WriteFile(path, tampered, 0600); err != nil {
		t.Fatalf("Failed to write tampered backup: %v", err)
	}

	if err := mgr.Restore(ctx, info.Key); !errors.Is(err, common.ErrChecksum) {
		t.Errorf("Expected ErrChecksum, got %v", err)
	}
}

func TestBackupRetention(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	createTestAccount(t, store, "Checking", 100)

	mgr := store.NewBackupManager(2)
	// Distinct reasons keep the second-resolution keys unique.
	for _, reason := range []string{"one", "two", "three", "four"} {
		if _, err := mgr.Create(ctx, reason); err != nil {
			t.Fatalf("Failed to create backup %q: %v", reason, err)
		}
	}

	infos, err := mgr.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list backups: %v", err)
	}
	if len(infos) != 2 {
		t.Errorf("Expected 2 retained backups, got %d", len(infos))
	}
}

func TestRestoreLatestSkipsBroken(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	account := createTestAccount(t, store, "Checking", 250)

	mgr := store.NewBackupManager(5)
	good, err := mgr.Create(ctx, "good")
	if err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}

	// A later, unreadable backup must not block recovery.
	broken := filepath.Join(mgr.Dir(), backupKeyPrefix+"zzz_29991231-235959.json")
	if err := os.WriteFile(broken, []byte("not json"), 0600); err != nil {
		t.Fatalf("Failed to write broken backup: %v", err)
	}

	account.CurrentBalance = 0
	if err := store.UpdateAccount(ctx, account); err != nil {
		t.Fatalf("Failed to update account: %v", err)
	}

	key, err := mgr.RestoreLatest(ctx)
	if err != nil {
		t.Fatalf("Failed to restore latest: %v", err)
	}
	if key != good.Key {
		t.Errorf("Expected restore of %s, got %s", good.Key, key)
	}

	got, err := store.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("Failed to get account: %v", err)
	}
	if got.CurrentBalance != 250 {
		t.Errorf("Expected restored balance 250, got %v", got.CurrentBalance)
	}
}

func TestOpenWithRecovery(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "digibook.db")
	ctx := context.Background()

	store, err := OpenWithRecovery(ctx, dbPath, 5)
	if err != nil {
		t.Fatalf("Failed to open fresh database: %v", err)
	}
	account := createTestAccount(t, store, "Checking", 42)
	mgr := store.NewBackupManager(5)
	if _, err := mgr.Create(ctx, "safety"); err != nil {
		t.Fatalf("Failed to create backup: %v", err)
	}
	_ = store.Close()

	// Corrupt the database file; recovery should rebuild and restore.
	if err := os.WriteFile(dbPath, []byte("garbage"), 0600); err != nil {
		t.Fatalf("Failed to corrupt database: %v", err)
	}

	store, err = OpenWithRecovery(ctx, dbPath, 5)
	if err != nil {
		t.Fatalf("Recovery failed: %v", err)
	}
	defer store.Close()

	got, err := store.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("Expected account restored from backup: %v", err)
	}
	if got.CurrentBalance != 42 {
		t.Errorf("Expected restored balance 42, got %v", got.CurrentBalance)
	}
}
