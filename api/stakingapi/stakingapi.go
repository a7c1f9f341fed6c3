// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingapi

import (
	"math/big"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/meshly/stakemesh/api/restutil"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/staking"
)

// StakingAPI exposes the read-only views of the staking engine.
type StakingAPI struct {
	staking *staking.Staking
	nowFunc func() uint64
}

func New(eng *staking.Staking) *StakingAPI {
	return &StakingAPI{
		staking: eng,
		nowFunc: func() uint64 { return uint64(time.Now().Unix()) },
	}
}

func (s *StakingAPI) handleGetOverview(w http.ResponseWriter, _ *http.Request) error {
	totalStaked, err := s.staking.TotalStaked()
	if err != nil {
		return err
	}
	rewardsPool, err := s.staking.RewardsPoolBalance()
	if err != nil {
		return err
	}
	penaltyPot, err := s.staking.TotalPenaltyPot()
	if err != nil {
		return err
	}
	eligible, err := s.staking.EligibleSupply()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Overview{
		TotalStaked:    amount(totalStaked),
		RewardsPool:    amount(rewardsPool),
		PenaltyPot:     amount(penaltyPot),
		EligibleSupply: amount(eligible),
	})
}

func (s *StakingAPI) handleGetTiers(w http.ResponseWriter, _ *http.Request) error {
	thresholds, err := s.staking.TierThresholds()
	if err != nil {
		return err
	}
	out := make([]*Amount, len(thresholds))
	for i, threshold := range thresholds {
		out[i] = amount(threshold)
	}
	return restutil.WriteJSON(w, &Tiers{Thresholds: out})
}

func (s *StakingAPI) handleGetStakeholder(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return err
	}
	now := s.nowFunc()

	h, err := s.staking.Stakeholder(addr)
	if err != nil {
		return err
	}
	superstaker, err := s.staking.IsSuperstaker(addr)
	if err != nil {
		return err
	}
	days, err := s.staking.DaysStreaked(addr, now)
	if err != nil {
		return err
	}
	nextAt, err := s.staking.NextCheckpointAt(addr)
	if err != nil {
		return err
	}
	period, err := s.staking.CurrentPeriodLength(addr)
	if err != nil {
		return err
	}
	due, err := s.staking.CanCrossCheckpoint(addr, now)
	if err != nil {
		return err
	}

	return restutil.WriteJSON(w, &Stakeholder{
		Status:             h.Status,
		ActiveStake:        amount(h.ActiveStake),
		UnstakingAmount:    amount(h.UnstakingAmount),
		UnstakingReleaseAt: h.UnstakingReleaseAt,
		Tier:               h.Tier,
		Superstaker:        superstaker,
		DaysStreaked:       days,
		NextCheckpointAt:   nextAt,
		PeriodLength:       period,
		CheckpointDue:      due,
	})
}

func (s *StakingAPI) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return err
	}
	breakdown, err := s.staking.RewardsBreakdownOf(addr)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Rewards{
		BaseRate:   amount(breakdown.BaseRate),
		Airdrop:    amount(breakdown.Airdrop),
		PenaltyPot: amount(breakdown.PenaltyPot),
		Claimable:  amount(breakdown.Claimable),
	})
}

func (s *StakingAPI) handleGetMaturedUnstake(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return err
	}
	matured, err := s.staking.MaturedUnstake(addr, s.nowFunc())
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"matured": amount(matured)})
}

func (s *StakingAPI) handleGetExitLoss(w http.ResponseWriter, req *http.Request) error {
	addr, err := s.parseAddress(req)
	if err != nil {
		return err
	}
	exit, ok := new(big.Int).SetString(req.URL.Query().Get("amount"), 10)
	if !ok {
		return restutil.BadRequest(errors.New("amount: malformed decimal"))
	}
	loss, err := s.staking.EstimatedExitLoss(addr, exit)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{"loss": amount(loss)})
}

func (s *StakingAPI) parseAddress(req *http.Request) (mesh.Address, error) {
	addr, err := mesh.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return mesh.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return *addr, nil
}

// Mount attaches the endpoints under the path root of the router.
func (s *StakingAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetOverview))
	sub.Path("/tiers").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetTiers))
	sub.Path("/stakeholders/{address}").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetStakeholder))
	sub.Path("/stakeholders/{address}/rewards").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRewards))
	sub.Path("/stakeholders/{address}/matured-unstake").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetMaturedUnstake))
	sub.Path("/stakeholders/{address}/exit-loss").
		Methods(http.MethodGet).
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetExitLoss))
}
