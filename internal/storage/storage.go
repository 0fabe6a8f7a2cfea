// Package storage persists per-channel command history in a JSON datastore.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit = 20

type Storage struct {
	mu     sync.Mutex
	ds     *datastore.DataStore
	cancel context.CancelFunc
}

// CommandRecord is one dispatched command.
type CommandRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Args      []string  `json:"args"`
	Transport string    `json:"transport,omitempty"`
	Datetime  time.Time `json:"datetime"`
}

type channelRecord struct {
	CommandHistory []CommandRecord `json:"cmd_history"`
}

// New opens the datastore at filePath. Its background autosave runs until
// ctx is cancelled or Close is called.
func New(ctx context.Context, filePath string) (*Storage, error) {
	ctx, cancel := context.WithCancel(ctx)
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open datastore %s: %w", filePath, err)
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// Close stops the autosave loop and flushes to disk.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

func historyKey(channelID string) string {
	return "history:" + channelID
}

// getChannelRecord returns the stored record for a channel, or an empty one.
// Callers hold mu.
func (s *Storage) getChannelRecord(channelID string) (*channelRecord, error) {
	var record channelRecord
	exists, err := s.ds.Get(historyKey(channelID), &record)
	if err != nil {
		return nil, fmt.Errorf("get channel record: %w", err)
	}
	if !exists || record.CommandHistory == nil {
		record.CommandHistory = []CommandRecord{}
	}
	return &record, nil
}

// AppendCommand records a command for a channel, keeping the latest
// entries only.
func (s *Storage) AppendCommand(channelID string, rec CommandRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getChannelRecord(channelID)
	if err != nil {
		return err
	}

	record.CommandHistory = append(record.CommandHistory, rec)
	if n := len(record.CommandHistory); n > commandHistoryLimit {
		record.CommandHistory = record.CommandHistory[n-commandHistoryLimit:]
	}
	if err := s.ds.Set(historyKey(channelID), record); err != nil {
		return fmt.Errorf("save channel record: %w", err)
	}
	return nil
}

// CommandHistory returns a channel's recorded commands, oldest first.
func (s *Storage) CommandHistory(channelID string) ([]CommandRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getChannelRecord(channelID)
	if err != nil {
		return nil, err
	}
	return record.CommandHistory, nil
}
