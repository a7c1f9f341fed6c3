// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshly/stakemesh/lvldb"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/state"
)

var (
	alice = mesh.BytesToAddress([]byte("alice"))
	bob   = mesh.BytesToAddress([]byte("bob"))
	carol = mesh.BytesToAddress([]byte("carol"))
)

func newTestToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	return New(mesh.BytesToAddress([]byte("token")), state.New(db))
}

func (t *Token) mustBalance(test *testing.T, addr mesh.Address) int64 {
	balance, err := t.BalanceOf(addr)
	require.NoError(test, err)
	return balance.Int64()
}

func TestMint(t *testing.T) {
	tok := newTestToken(t)

	require.NoError(t, tok.Mint(alice, big.NewInt(1000)))
	assert.Equal(t, int64(1000), tok.mustBalance(t, alice))

	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, int64(1000), supply.Int64())
}

func TestTransfer(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(alice, big.NewInt(1000)))

	require.NoError(t, tok.Transfer(alice, bob, big.NewInt(400)))
	assert.Equal(t, int64(600), tok.mustBalance(t, alice))
	assert.Equal(t, int64(400), tok.mustBalance(t, bob))

	assert.Equal(t, ErrInsufficientBalance, tok.Transfer(alice, bob, big.NewInt(601)))
}

func TestTransferFrom(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(alice, big.NewInt(1000)))

	// no allowance yet
	assert.Equal(t, ErrInsufficientAllowance, tok.TransferFrom(bob, alice, carol, big.NewInt(100)))

	require.NoError(t, tok.Approve(alice, bob, big.NewInt(500)))
	require.NoError(t, tok.TransferFrom(bob, alice, carol, big.NewInt(300)))
	assert.Equal(t, int64(700), tok.mustBalance(t, alice))
	assert.Equal(t, int64(300), tok.mustBalance(t, carol))

	allowance, err := tok.Allowance(alice, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(200), allowance.Int64())

	assert.Equal(t, ErrInsufficientAllowance, tok.TransferFrom(bob, alice, carol, big.NewInt(201)))
}

func TestSelfTransferFrom(t *testing.T) {
	tok := newTestToken(t)
	require.NoError(t, tok.Mint(alice, big.NewInt(1000)))

	// the owner spending their own balance needs no allowance
	require.NoError(t, tok.TransferFrom(alice, alice, bob, big.NewInt(100)))
	assert.Equal(t, int64(100), tok.mustBalance(t, bob))
}

func TestDecimals(t *testing.T) {
	tok := newTestToken(t)
	assert.Equal(t, uint8(mesh.TokenDecimals), tok.Decimals())
}
