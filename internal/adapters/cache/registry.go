package cache

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrDuplicateCacheName = errors.New("duplicate cache name")
	ErrUnknownCacheName   = errors.New("unknown cache name")
)

// Point in time view of a refresh-ahead record
type RecordStatus struct {
	Name        string
	Policy      Policy
	Populated   bool
	Refreshing  bool
	LastSuccess time.Time
	LastAttempt time.Time
}

type trackedRecord interface {
	Name() string
	Reset()
	Status() RecordStatus
}

// The named refresh-ahead records of the process.
//
// Created once at startup and passed to whatever needs to look up, inspect or reset
// the records.
type Registry struct {
	mu      sync.Mutex
	records map[string]trackedRecord
	names   []string
}

func NewRegistry() *Registry {
	return &Registry{
		records: make(map[string]trackedRecord),
	}
}

// Create a record and track it in the registry
func Register[T any](registry *Registry, name string, policy Policy, opts ...RecordOption) (*Record[T], error) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, ok := registry.records[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateCacheName, name)
	}

	record := NewRecord[T](name, policy, opts...)
	registry.records[name] = record
	registry.names = append(registry.names, name)

	return record, nil
}

// Names of all records, in registration order
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Reset every record to its empty state
func (r *Registry) Reset() {
	for _, record := range r.snapshot() {
		record.Reset()
	}
}

func (r *Registry) ResetNamed(name string) error {
	r.mu.Lock()
	record, ok := r.records[name]
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCacheName, name)
	}

	record.Reset()
	return nil
}

func (r *Registry) Status() []RecordStatus {
	records := r.snapshot()

	statuses := make([]RecordStatus, 0, len(records))
	for _, record := range records {
		statuses = append(statuses, record.Status())
	}
	return statuses
}

// The records are locked individually, never while holding the registry lock
func (r *Registry) snapshot() []trackedRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([]trackedRecord, 0, len(r.names))
	for _, name := range r.names {
		records = append(records, r.records[name])
	}
	return records
}
