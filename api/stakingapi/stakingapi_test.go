// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingapi

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshly/stakemesh/authority"
	"github.com/meshly/stakemesh/lvldb"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/staking"
	"github.com/meshly/stakemesh/state"
	"github.com/meshly/stakemesh/token"
)

var (
	admin = mesh.BytesToAddress([]byte("admin"))
	alice = mesh.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")

	t0 = uint64(1000)
)

func newTestServer(t *testing.T) (*httptest.Server, *staking.Staking) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	st := state.New(db)

	tok := token.New(mesh.BytesToAddress([]byte("token")), st)
	auth := authority.New(mesh.BytesToAddress([]byte("authority")), st)
	require.NoError(t, auth.Init(admin))
	eng := staking.New(mesh.BytesToAddress([]byte("staking")), st, tok, auth)

	require.NoError(t, tok.Mint(alice, big.NewInt(10_000)))
	require.NoError(t, tok.Approve(alice, eng.Address(), big.NewInt(10_000)))

	api := New(eng)
	api.nowFunc = func() uint64 { return t0 }

	router := mux.NewRouter()
	api.Mount(router, "/staking")

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, eng
}

func httpGetJSON(t *testing.T, url string, out any) int {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res.StatusCode
}

func TestGetOverview(t *testing.T) {
	srv, eng := newTestServer(t)
	require.NoError(t, eng.Stake(alice, t0, big.NewInt(1000)))

	var overview Overview
	status := httpGetJSON(t, srv.URL+"/staking", &overview)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1000), (*big.Int)(overview.TotalStaked).Int64())
}

func TestGetStakeholder(t *testing.T) {
	srv, eng := newTestServer(t)
	require.NoError(t, eng.Stake(alice, t0, big.NewInt(1000)))

	var sh Stakeholder
	status := httpGetJSON(t, srv.URL+"/staking/stakeholders/"+alice.String(), &sh)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1000), (*big.Int)(sh.ActiveStake).Int64())
	assert.Equal(t, t0+6*mesh.CheckpointPeriod, sh.NextCheckpointAt)
	assert.False(t, sh.Superstaker)
	assert.False(t, sh.CheckpointDue)
}

func TestGetStakeholderBadAddress(t *testing.T) {
	srv, _ := newTestServer(t)

	status := httpGetJSON(t, srv.URL+"/staking/stakeholders/nonsense", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetRewards(t *testing.T) {
	srv, eng := newTestServer(t)
	require.NoError(t, eng.Stake(alice, t0, big.NewInt(1000)))

	var rewards Rewards
	status := httpGetJSON(t, srv.URL+"/staking/stakeholders/"+alice.String()+"/rewards", &rewards)
	require.Equal(t, http.StatusOK, status)
	// empty funding pool clamps accrual to zero
	assert.Equal(t, int64(0), (*big.Int)(rewards.BaseRate).Int64())
	assert.Equal(t, int64(0), (*big.Int)(rewards.Claimable).Int64())
}

func TestGetExitLoss(t *testing.T) {
	srv, eng := newTestServer(t)
	require.NoError(t, eng.Stake(alice, t0, big.NewInt(1000)))

	var out struct {
		Loss *Amount `json:"loss"`
	}
	status := httpGetJSON(t, srv.URL+"/staking/stakeholders/"+alice.String()+"/exit-loss?amount=400", &out)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(0), (*big.Int)(out.Loss).Int64())

	status = httpGetJSON(t, srv.URL+"/staking/stakeholders/"+alice.String()+"/exit-loss?amount=nope", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetTiers(t *testing.T) {
	srv, eng := newTestServer(t)
	require.NoError(t, eng.SetTierThresholds(admin, []*big.Int{big.NewInt(100), big.NewInt(500)}))

	var tiers Tiers
	status := httpGetJSON(t, srv.URL+"/staking/tiers", &tiers)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, tiers.Thresholds, 2)
	assert.Equal(t, int64(100), (*big.Int)(tiers.Thresholds[0]).Int64())
}
