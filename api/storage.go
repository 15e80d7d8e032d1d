package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// storage is the persistence boundary for all farm records. Lookups and
// mutations that miss return a nil record and a nil error; a missing record
// and a record owned by somebody else are deliberately indistinguishable.
type storage interface {
	createUser(username string, passwordHash []byte) (*user, error)
	getUserByUsername(username string) (*user, error)
	getUserByID(id int) (*user, error)

	createCrop(userID int, draft cropDraft) (*crop, error)
	cropsByUser(userID int) ([]crop, error)

	createInventoryItem(userID int, draft inventoryDraft) (*inventoryItem, error)
	inventoryByUser(userID int) ([]inventoryItem, error)

	createTask(userID int, draft taskDraft) (*task, error)
	tasksByUser(userID int) ([]task, error)

	// completeTask marks the task completed and returns it, or returns nil
	// if no task with that id is owned by userID. Completing an already
	// completed task succeeds.
	completeTask(userID, taskID int) (*task, error)
}

const (
	engineMemory   = "memory"
	engineSQLite   = "sqlite"
	enginePostgres = "postgres"
)

func newStorage(cfg config) (storage, error) {
	switch cfg.DB.Engine {
	case "", engineMemory:
		return newMemoryStorage(), nil
	case engineSQLite:
		db, err := openSQLite(cfg.DB.Path)
		if err != nil {
			return nil, err
		}
		return newSQLStorage(db, engineSQLite)
	case enginePostgres:
		db, err := openPostgres(cfg)
		if err != nil {
			return nil, err
		}
		return newSQLStorage(db, enginePostgres)
	default:
		return nil, fmt.Errorf("unknown db engine %q", cfg.DB.Engine)
	}
}

func openPostgres(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DB.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL for better behaviour under the concurrent request server.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	return db, nil
}
