package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
)

// Memory is an in-memory KV used by tests and for running without a
// database file.
type Memory struct {
	mu     sync.Mutex
	values map[string]string

	// FailWrites makes every Set call fail. Tests use it to exercise the
	// best-effort persistence paths.
	FailWrites bool
}

var _ KV = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *Memory) set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return fmt.Errorf("set %s: writes disabled", key)
	}
	m.values[key] = value
	return nil
}

func (m *Memory) GetInt(_ context.Context, key string, def int) (int, error) {
	raw, ok := m.get(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func (m *Memory) SetInt(_ context.Context, key string, value int) error {
	return m.set(key, strconv.Itoa(value))
}

func (m *Memory) GetBool(_ context.Context, key string, def bool) (bool, error) {
	raw, ok := m.get(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func (m *Memory) SetBool(_ context.Context, key string, value bool) error {
	return m.set(key, strconv.FormatBool(value))
}

func (m *Memory) GetString(_ context.Context, key string, def string) (string, error) {
	raw, ok := m.get(key)
	if !ok {
		return def, nil
	}
	return raw, nil
}

func (m *Memory) SetString(_ context.Context, key, value string) error {
	return m.set(key, value)
}

func (m *Memory) GetJSON(_ context.Context, key string, target any) (bool, error) {
	raw, ok := m.get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (m *Memory) SetJSON(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return m.set(key, string(data))
}
