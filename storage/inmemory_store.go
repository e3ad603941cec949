package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	ErrClosed = errors.New("Store has been closed")
)

type InmemoryStore struct {
	mu     sync.RWMutex
	values []byte

	// stop willl be closed when Close() is called
	stop chan struct{}
}

func NewInmemoryStore() *InmemoryStore {
	return &InmemoryStore{
		values: []byte(""),
		stop:   make(chan struct{}),
	}
}

func (i *InmemoryStore) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.isRunning() {
		close(i.stop)
	}

	return nil
}

func (i *InmemoryStore) Set(ctx context.Context, key []byte, value interface{}) (err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return ErrClosed
	}

	values, err := sjson.SetBytes(i.values, string(key), value)
	if err != nil {
		return err
	}

	i.values = values
	return nil
}

func (i *InmemoryStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	result := gjson.GetBytes(i.values, string(key))

	if result.Index == 0 {
		return []byte(result.Raw), nil
	}

	// Copy, the backing array is replaced on the next Set
	raw := make([]byte, len(result.Raw))
	copy(raw, i.values[result.Index:result.Index+len(result.Raw)])
	return raw, nil
}

func (i *InmemoryStore) Incr(ctx context.Context, key []byte) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return 0, ErrClosed
	}

	n := gjson.GetBytes(i.values, string(key)).Int() + 1

	values, err := sjson.SetBytes(i.values, string(key), n)
	if err != nil {
		return 0, err
	}

	i.values = values
	return n, nil
}

func (i *InmemoryStore) Restore(values []byte) error {
	if len(values) > 0 && !gjson.ValidBytes(values) {
		return errors.New("Restored values are not valid JSON")
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.values = append([]byte(nil), values...)
	return nil
}

func (i *InmemoryStore) Backup() ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if len(i.values) == 0 {
		return []byte("{}"), nil
	}

	return append([]byte(nil), i.values...), nil
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

var _ Store = (*InmemoryStore)(nil)
