// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package penaltypot

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshly/stakemesh/lvldb"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/state"
	"github.com/meshly/stakemesh/storage"
)

var (
	alice = mesh.BytesToAddress([]byte("alice"))
	bob   = mesh.BytesToAddress([]byte("bob"))
)

func newTestService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)
	return New(storage.NewContext(mesh.BytesToAddress([]byte("staking")), st))
}

func TestDepositWithoutEligibleSupply(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Deposit(big.NewInt(100)))

	perUnit, err := svc.PerUnit()
	require.NoError(t, err)
	assert.Equal(t, int64(0), perUnit.Int64())

	remainder, err := svc.Remainder()
	require.NoError(t, err)
	assert.Equal(t, int64(100), remainder.Int64())

	balance, err := svc.Balance()
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance.Int64())
}

func TestDepositRemainderCarry(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.AddEligible(big.NewInt(400)))

	// 40 over 400 units: too small to move the accumulator, carried instead
	require.NoError(t, svc.Deposit(big.NewInt(40)))
	perUnit, err := svc.PerUnit()
	require.NoError(t, err)
	assert.Equal(t, int64(0), perUnit.Int64())
	remainder, err := svc.Remainder()
	require.NoError(t, err)
	assert.Equal(t, int64(40), remainder.Int64())

	// 360 more: the carry joins in, 400 over 400 pays out exactly one per unit
	require.NoError(t, svc.Deposit(big.NewInt(360)))
	perUnit, err = svc.PerUnit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), perUnit.Int64())
	remainder, err = svc.Remainder()
	require.NoError(t, err)
	assert.Equal(t, int64(0), remainder.Int64())
}

func TestShareProRata(t *testing.T) {
	svc := newTestService(t)

	// alice 300, bob 100
	require.NoError(t, svc.Activate(alice))
	require.NoError(t, svc.AddEligible(big.NewInt(300)))
	require.NoError(t, svc.Activate(bob))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))

	require.NoError(t, svc.Deposit(big.NewInt(400)))

	share, err := svc.ShareOf(alice, big.NewInt(300))
	require.NoError(t, err)
	assert.Equal(t, int64(300), share.Int64())

	share, err = svc.ShareOf(bob, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(100), share.Int64())
}

func TestActivateSkipsPriorGrowth(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Activate(alice))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))
	require.NoError(t, svc.Deposit(big.NewInt(500)))

	// bob joins after the deposit and must not share in it
	require.NoError(t, svc.Activate(bob))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))

	share, err := svc.ShareOf(bob, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(0), share.Int64())

	share, err = svc.ShareOf(alice, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(500), share.Int64())
}

func TestSettleAnchorsSnapshot(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Activate(alice))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))
	require.NoError(t, svc.Deposit(big.NewInt(200)))

	// settle under the old stake, then double it
	require.NoError(t, svc.Settle(alice, big.NewInt(100)))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))
	require.NoError(t, svc.Deposit(big.NewInt(400)))

	// 200 from the first round plus 200×2 units from the second
	share, err := svc.ShareOf(alice, big.NewInt(200))
	require.NoError(t, err)
	assert.Equal(t, int64(600), share.Int64())
}

func TestPenalize(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Activate(alice))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))
	require.NoError(t, svc.Deposit(big.NewInt(300)))

	// exit 25 of 100: a quarter of the buffered share forfeits
	slice, err := svc.Penalize(alice, big.NewInt(25), big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(75), slice.Int64())

	share, err := svc.ShareOf(alice, big.NewInt(75))
	require.NoError(t, err)
	assert.Equal(t, int64(225), share.Int64())

	balance, err := svc.Balance()
	require.NoError(t, err)
	assert.Equal(t, int64(225), balance.Int64())
}

func TestPenalizeFullExit(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Activate(alice))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))
	require.NoError(t, svc.Deposit(big.NewInt(300)))

	slice, err := svc.Penalize(alice, big.NewInt(100), big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(300), slice.Int64())

	share, err := svc.ShareOf(alice, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, int64(0), share.Int64())
}

func TestRedeem(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Activate(alice))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))
	require.NoError(t, svc.Deposit(big.NewInt(300)))

	share, err := svc.Redeem(alice, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(300), share.Int64())

	// position fully reset, nothing left to redeem
	share, err = svc.Redeem(alice, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, int64(0), share.Int64())

	balance, err := svc.Balance()
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.Int64())
}

func TestBalanceConservation(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Activate(alice))
	require.NoError(t, svc.AddEligible(big.NewInt(300)))
	require.NoError(t, svc.Activate(bob))
	require.NoError(t, svc.AddEligible(big.NewInt(100)))

	require.NoError(t, svc.Deposit(big.NewInt(1001)))

	aliceShare, err := svc.Redeem(alice, big.NewInt(300))
	require.NoError(t, err)
	bobShare, err := svc.Redeem(bob, big.NewInt(100))
	require.NoError(t, err)

	remainder, err := svc.Remainder()
	require.NoError(t, err)
	balance, err := svc.Balance()
	require.NoError(t, err)

	// every deposited unit is either paid out or still carried
	total := new(big.Int).Add(aliceShare, bobShare)
	total.Add(total, remainder)
	assert.Equal(t, int64(1001), total.Int64())
	assert.Equal(t, remainder.Int64(), balance.Int64())
}
