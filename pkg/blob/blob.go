/*
 * Nuts esign
 * Copyright (C) 2020. Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/ioutil"
	"regexp"
	"sync"

	"github.com/nuts-foundation/nuts-esign/pkg/seal"
)

// Handle references a stored blob. Handles are the hex SHA-256 of the content.
type Handle string

// ErrNotFound is returned when no blob exists for a handle
var ErrNotFound = errors.New("blob not found")

// ErrInvalidHandle is returned for handles that are not a hex SHA-256
var ErrInvalidHandle = errors.New("invalid blob handle")

var handlePattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Store is a content-addressable blob store. Put is atomic: a blob is either fully readable or absent.
type Store interface {
	Put(ctx context.Context, data []byte) (Handle, error)
	Get(ctx context.Context, handle Handle) ([]byte, error)
	Open(ctx context.Context, handle Handle) (io.ReadCloser, error)
}

// HandleFor returns the handle under which data is stored
func HandleFor(data []byte) Handle {
	return Handle(seal.DigestBytes(data))
}

func (h Handle) validate() error {
	if !handlePattern.MatchString(string(h)) {
		return ErrInvalidHandle
	}
	return nil
}

// Compiler check
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps blobs in memory, it is meant for tests and single process development setups
type MemoryStore struct {
	mutex sync.RWMutex
	blobs map[Handle][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[Handle][]byte{}}
}

// Put stores a copy of data
func (m *MemoryStore) Put(_ context.Context, data []byte) (Handle, error) {
	h := HandleFor(data)
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, ok := m.blobs[h]; !ok {
		m.blobs[h] = append([]byte{}, data...)
	}
	return h, nil
}

// Get returns a copy of the blob
func (m *MemoryStore) Get(_ context.Context, handle Handle) ([]byte, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	data, ok := m.blobs[handle]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte{}, data...), nil
}

// Open returns a reader over a copy of the blob
func (m *MemoryStore) Open(ctx context.Context, handle Handle) (io.ReadCloser, error) {
	data, err := m.Get(ctx, handle)
	if err != nil {
		return nil, err
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}
