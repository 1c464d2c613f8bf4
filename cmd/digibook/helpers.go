package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/viper"

	"github.com/digibook/digibook/internal/cache"
	"github.com/digibook/digibook/internal/config"
	"github.com/digibook/digibook/internal/derive"
	"github.com/digibook/digibook/internal/engine"
	"github.com/digibook/digibook/internal/storage"
	"github.com/digibook/digibook/internal/validation"
)

// initStorage initializes the storage service with proper path expansion
// and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(databasePath())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func databasePath() string {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}
	return config.ExpandPath(dbPath)
}

func backupKeep() int {
	if keep := viper.GetInt("backup.keep"); keep > 0 {
		return keep
	}
	return storage.DefaultBackupKeep
}

// appContext bundles the store with the engine, bus, derivation memo, and
// category cache the commands share.
type appContext struct {
	store      *storage.SQLiteStorage
	engine     *engine.Engine
	bus        *derive.Bus
	memo       *derive.Memo
	categories *cache.CategoryCache
}

func initApp(ctx context.Context) (*appContext, error) {
	store, err := initStorage(ctx)
	if err != nil {
		return nil, err
	}

	bus := derive.NewBus()
	memo, err := derive.NewMemo(bus)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	categories := cache.NewCategoryCache(viper.GetDuration("cache.category_ttl"))
	bus.Subscribe(func(derive.Event) { categories.Invalidate() })

	return &appContext{
		store:      store,
		engine:     engine.New(store, bus),
		bus:        bus,
		memo:       memo,
		categories: categories,
	}, nil
}

func (a *appContext) Close() {
	a.memo.Close()
	_ = a.store.Close()
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func parseAmount(arg string) (float64, error) {
	amount, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", arg)
	}
	return amount, nil
}

func issueMessages(issues []validation.Issue) []string {
	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = issue.Message
	}
	return out
}
