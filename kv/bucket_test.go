// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshly/stakemesh/kv"
	"github.com/meshly/stakemesh/lvldb"
)

func TestBucket(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	b1 := kv.Bucket("b1-").NewGetPutter(db)
	b2 := kv.Bucket("b2-").NewGetPutter(db)

	require.NoError(t, b1.Put([]byte("key"), []byte("one")))
	require.NoError(t, b2.Put([]byte("key"), []byte("two")))

	got, err := b1.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	got, err = b2.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)

	// the raw store sees prefixed keys only
	has, err := db.Has([]byte("key"))
	require.NoError(t, err)
	assert.False(t, has)
	has, err = db.Has([]byte("b1-key"))
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, b1.Delete([]byte("key")))
	_, err = b1.Get([]byte("key"))
	assert.True(t, b1.IsNotFound(err))

	got, err = b2.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}
