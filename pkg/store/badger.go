package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/thadeu-ct/Mentor-Gradus/pkg/planner"
)

const sessionPrefix = "session/"

type Config struct {
	// Path of the database directory; empty keeps everything in memory
	Path string

	SyncWrites bool

	// GCInterval between value log collections; zero disables them
	GCInterval     time.Duration
	GCDiscardRatio float64
}

func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// badgerLogger routes badger's internal logging to zerolog
type badgerLogger struct {
	logger zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), args...)
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Trace().Msgf(strings.TrimSpace(format), args...)
}

// BadgerStore persists session states as JSON documents keyed by session id
type BadgerStore struct {
	db *badger.DB

	stop chan struct{}
	done chan struct{}
}

func Open(config Config) (*BadgerStore, error) {
	var options badger.Options
	if config.Path == "" {
		options = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(config.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", config.Path, err)
		}
		options = badger.DefaultOptions(config.Path).WithSyncWrites(config.SyncWrites)
	}
	options = options.
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{logger: log.With().Str("component", "badger").Logger()})

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	store := &BadgerStore{db: db}
	if config.Path != "" && config.GCInterval > 0 {
		store.stop = make(chan struct{})
		store.done = make(chan struct{})
		go store.collect(config.GCInterval, config.GCDiscardRatio)
	}
	return store, nil
}

// OpenInMemory opens a store that lives as long as the process
func OpenInMemory() (*BadgerStore, error) {
	return Open(Config{})
}

func (store *BadgerStore) Close() error {
	if store.stop != nil {
		close(store.stop)
		<-store.done
	}
	return store.db.Close()
}

func (store *BadgerStore) Save(_ context.Context, state planner.State) error {
	if state.ID == "" {
		return errors.New("session state without id")
	}
	value, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.ID, err)
	}
	return store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(state.ID), value)
	})
}

func (store *BadgerStore) Load(_ context.Context, id string) (planner.State, error) {
	var state planner.State
	err := store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &state)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return planner.State{}, fmt.Errorf("%w: %s", planner.ErrSessionNotFound, id)
	}
	if err != nil {
		return planner.State{}, fmt.Errorf("load session %s: %w", id, err)
	}
	return state, nil
}

func (store *BadgerStore) Delete(_ context.Context, id string) error {
	return store.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", planner.ErrSessionNotFound, id)
			}
			return err
		}
		return txn.Delete(key(id))
	})
}

// List returns the stored session ids in key order
func (store *BadgerStore) List(_ context.Context) ([]string, error) {
	var ids []string
	err := store.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		options.Prefix = []byte(sessionPrefix)

		iterator := txn.NewIterator(options)
		defer iterator.Close()

		for iterator.Rewind(); iterator.Valid(); iterator.Next() {
			ids = append(ids, strings.TrimPrefix(string(iterator.Item().Key()), sessionPrefix))
		}
		return nil
	})
	return ids, err
}

func (store *BadgerStore) collect(interval time.Duration, ratio float64) {
	defer close(store.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-store.stop:
			return
		case <-ticker.C:
			err := store.db.RunValueLogGC(ratio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				log.Warn().Err(err).Msg("badger value log GC failed")
			}
		}
	}
}

func key(id string) []byte {
	return []byte(sessionPrefix + id)
}
