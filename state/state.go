// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/meshly/stakemesh/kv"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// storageKey localizes a storage slot to its owning component address.
type storageKey struct {
	addr mesh.Address
	key  mesh.Bytes32
}

// State is the keyed record store shared by all components. Every slot is
// owned by a component address and holds an RLP-encoded value. Writes are
// journaled through a stacked map so that a whole operation can be reverted
// to a checkpoint, and flushed to the backing kv store on Commit.
type State struct {
	store kv.GetPutter
	sm    *stackedmap.StackedMap
}

// New creates a state over the given kv store.
func New(store kv.GetPutter) *State {
	state := State{store: store}
	state.sm = stackedmap.New(func(key any) (any, bool, error) {
		return state.storeGetter(key)
	})
	// a baseline checkpoint so that Put is always legal
	state.sm.Push()
	return &state
}

// storeGetter implements stackedmap.MapGetter.
func (s *State) storeGetter(key any) (value any, exist bool, err error) {
	k, ok := key.(storageKey)
	if !ok {
		panic(fmt.Errorf("unexpected key type %+v", key))
	}
	raw, err := s.store.Get(storeKeyBytes(k))
	if err != nil {
		if s.store.IsNotFound(err) {
			return rlp.RawValue(nil), true, nil
		}
		return nil, false, &Error{err}
	}
	return rlp.RawValue(raw), true, nil
}

func storeKeyBytes(k storageKey) []byte {
	b := make([]byte, 0, mesh.AddressLength+32)
	b = append(b, k.addr.Bytes()...)
	return append(b, k.key.Bytes()...)
}

// GetRawStorage returns the raw RLP value of the slot. Empty if never written.
func (s *State) GetRawStorage(addr mesh.Address, key mesh.Bytes32) (rlp.RawValue, error) {
	v, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, err
	}
	return v.(rlp.RawValue), nil
}

// SetRawStorage sets the raw RLP value of the slot. An empty value clears the slot.
func (s *State) SetRawStorage(addr mesh.Address, key mesh.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage sets storage value encoded by given enc method.
// An empty returned value clears the slot.
func (s *State) EncodeStorage(addr mesh.Address, key mesh.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage gets and decodes storage value by given dec method.
// The raw slice passed to dec is empty if the slot was never written.
func (s *State) DecodeStorage(addr mesh.Address, key mesh.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// GetStorage returns the word-sized value of the slot, zero if unset.
func (s *State) GetStorage(addr mesh.Address, key mesh.Bytes32) (mesh.Bytes32, error) {
	var value mesh.Bytes32
	err := s.DecodeStorage(addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		var b []byte
		if err := rlp.DecodeBytes(raw, &b); err != nil {
			return err
		}
		value = mesh.BytesToBytes32(b)
		return nil
	})
	return value, err
}

// SetStorage sets the word-sized value of the slot. A zero value clears the slot.
func (s *State) SetStorage(addr mesh.Address, key, value mesh.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	trimmed := value.Bytes()
	for len(trimmed) > 0 && trimmed[0] == 0 {
		trimmed = trimmed[1:]
	}
	raw, _ := rlp.EncodeToBytes(trimmed)
	s.SetRawStorage(addr, key, raw)
}

// NewCheckpoint makes a checkpoint of the current state.
// It returns the checkpoint to be passed to RevertTo.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo reverts the state to the given checkpoint.
func (s *State) RevertTo(checkpoint int) {
	s.sm.PopTo(checkpoint)
}

// Commit flushes all journaled writes to the backing store. Batched if the
// store supports it. The journal is kept; a committed state remains usable.
func (s *State) Commit() error {
	var w kv.Putter = s.store
	if b, ok := s.store.(kv.Batcher); ok {
		w = b.NewBatch()
	}

	var err error
	s.sm.Journal(func(key, value any) bool {
		k := key.(storageKey)
		raw := value.(rlp.RawValue)
		if len(raw) == 0 {
			err = w.Delete(storeKeyBytes(k))
		} else {
			err = w.Put(storeKeyBytes(k), raw)
		}
		return err == nil
	})
	if err != nil {
		return &Error{err}
	}
	if batch, ok := w.(kv.Batch); ok {
		if err := batch.Write(); err != nil {
			return &Error{err}
		}
	}
	return nil
}
