// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshly/stakemesh/lvldb"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/state"
)

var (
	addr = mesh.BytesToAddress([]byte("component"))
	slot = mesh.Blake2b([]byte("slot"))
)

func newTestState(t *testing.T) (*state.State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	return state.New(db), db
}

func TestStorageRoundTrip(t *testing.T) {
	st, _ := newTestState(t)

	value, err := st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.True(t, value.IsZero())

	want := mesh.BytesToBytes32([]byte("value"))
	st.SetStorage(addr, slot, want)

	value, err = st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, want, value)
}

func TestStorageIsolatedByAddress(t *testing.T) {
	st, _ := newTestState(t)
	other := mesh.BytesToAddress([]byte("other"))

	st.SetStorage(addr, slot, mesh.BytesToBytes32([]byte("value")))

	value, err := st.GetStorage(other, slot)
	require.NoError(t, err)
	assert.True(t, value.IsZero())
}

func TestCheckpointRevert(t *testing.T) {
	st, _ := newTestState(t)
	st.SetStorage(addr, slot, mesh.BytesToBytes32([]byte("before")))

	cp := st.NewCheckpoint()
	st.SetStorage(addr, slot, mesh.BytesToBytes32([]byte("after")))

	value, err := st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, mesh.BytesToBytes32([]byte("after")), value)

	st.RevertTo(cp)
	value, err = st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, mesh.BytesToBytes32([]byte("before")), value)
}

func TestNestedCheckpoints(t *testing.T) {
	st, _ := newTestState(t)

	outer := st.NewCheckpoint()
	st.SetStorage(addr, slot, mesh.BytesToBytes32([]byte("outer")))

	inner := st.NewCheckpoint()
	st.SetStorage(addr, slot, mesh.BytesToBytes32([]byte("inner")))

	st.RevertTo(inner)
	value, err := st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, mesh.BytesToBytes32([]byte("outer")), value)

	st.RevertTo(outer)
	value, err = st.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.True(t, value.IsZero())
}

func TestCommitPersists(t *testing.T) {
	st, db := newTestState(t)

	st.SetStorage(addr, slot, mesh.BytesToBytes32([]byte("value")))
	require.NoError(t, st.Commit())

	// a fresh state over the same store sees the committed value
	reopened := state.New(db)
	value, err := reopened.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.Equal(t, mesh.BytesToBytes32([]byte("value")), value)
}

func TestCommitDeletesClearedSlots(t *testing.T) {
	st, db := newTestState(t)

	st.SetStorage(addr, slot, mesh.BytesToBytes32([]byte("value")))
	require.NoError(t, st.Commit())

	st.SetStorage(addr, slot, mesh.Bytes32{})
	require.NoError(t, st.Commit())

	reopened := state.New(db)
	value, err := reopened.GetStorage(addr, slot)
	require.NoError(t, err)
	assert.True(t, value.IsZero())
}
