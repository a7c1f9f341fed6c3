// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/staking/holder"
)

// RewardsBreakdown is the per-source view of a user's unvested rewards.
type RewardsBreakdown struct {
	BaseRate   *big.Int
	Airdrop    *big.Int
	PenaltyPot *big.Int
	Claimable  *big.Int
}

// Stakeholder returns a copy of the user's full record, an empty record with
// StatusUnknown if none exists.
func (s *Staking) Stakeholder(user mesh.Address) (*holder.Holder, error) {
	return s.holders.Get(user)
}

// StakedBalance returns the user's active principal.
func (s *Staking) StakedBalance(user mesh.Address) (*big.Int, error) {
	h, err := s.holders.Get(user)
	if err != nil {
		return nil, err
	}
	return h.ActiveStake, nil
}

// Status returns the lifecycle status of the user's record.
func (s *Staking) Status(user mesh.Address) (holder.Status, error) {
	h, err := s.holders.Get(user)
	if err != nil {
		return holder.StatusUnknown, err
	}
	return h.Status, nil
}

// RewardsBreakdownOf returns the user's reward ledgers split by source. The
// penalty-pot figure includes unsettled accrual; for a non-superstaker it is
// zero.
func (s *Staking) RewardsBreakdownOf(user mesh.Address) (*RewardsBreakdown, error) {
	h, err := s.holders.Get(user)
	if err != nil {
		return nil, err
	}
	breakdown := &RewardsBreakdown{
		BaseRate:   h.BaseRateAccrued,
		Airdrop:    h.AirdropBalance,
		PenaltyPot: new(big.Int),
		Claimable:  h.ClaimableBalance,
	}

	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return nil, err
	}
	if sched.IsSuperstaker() {
		if breakdown.PenaltyPot, err = s.penaltyPot.ShareOf(user, h.ActiveStake); err != nil {
			return nil, err
		}
	}
	return breakdown, nil
}

// MaturedUnstake returns the exit tranche that has cleared the lock, zero
// while the lock is still running.
func (s *Staking) MaturedUnstake(user mesh.Address, now uint64) (*big.Int, error) {
	h, err := s.holders.Get(user)
	if err != nil {
		return nil, err
	}
	if h.UnstakingAmount.Sign() == 0 || now < h.UnstakingReleaseAt {
		return new(big.Int), nil
	}
	return h.UnstakingAmount, nil
}

// EstimatedExitLoss returns the total rewards the user would forfeit by
// unstaking amount right now, using the same proportional truncating math as
// the real exit.
func (s *Staking) EstimatedExitLoss(user mesh.Address, amount *big.Int) (*big.Int, error) {
	h, err := s.holders.Get(user)
	if err != nil {
		return nil, err
	}
	if h.ActiveStake.Sign() == 0 || amount.Sign() <= 0 || amount.Cmp(h.ActiveStake) > 0 {
		return new(big.Int), nil
	}

	loss := proportion(h.AirdropBalance, amount, h.ActiveStake)
	loss.Add(loss, proportion(h.BaseRateAccrued, amount, h.ActiveStake))

	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return nil, err
	}
	if sched.IsSuperstaker() {
		share, err := s.penaltyPot.ShareOf(user, h.ActiveStake)
		if err != nil {
			return nil, err
		}
		loss.Add(loss, proportion(share, amount, h.ActiveStake))
	}
	return loss, nil
}

// TotalPenaltyPot returns the undistributed value held by the pot.
func (s *Staking) TotalPenaltyPot() (*big.Int, error) {
	return s.penaltyPot.Balance()
}

// NextCheckpointAt returns the user's next due timestamp, zero if no schedule.
func (s *Staking) NextCheckpointAt(user mesh.Address) (uint64, error) {
	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return 0, err
	}
	return sched.NextAt, nil
}

// CurrentPeriodLength returns the user's checkpoint period in seconds, the
// base length if no schedule exists yet.
func (s *Staking) CurrentPeriodLength(user mesh.Address) (uint64, error) {
	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return 0, err
	}
	return sched.PeriodLength(), nil
}

// CanCrossCheckpoint returns whether the user's checkpoint is due.
func (s *Staking) CanCrossCheckpoint(user mesh.Address, now uint64) (bool, error) {
	return s.checkpoints.CanCross(user, now)
}

// DaysStreaked returns the whole days of the user's unbroken staking streak.
func (s *Staking) DaysStreaked(user mesh.Address, now uint64) (uint64, error) {
	return s.checkpoints.DaysStreaked(user, now)
}

// IsSuperstaker returns whether the user has crossed at least one checkpoint
// with stake and kept the streak alive.
func (s *Staking) IsSuperstaker(user mesh.Address) (bool, error) {
	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return false, err
	}
	return sched.IsSuperstaker(), nil
}

// TierOf returns the user's cached tier.
func (s *Staking) TierOf(user mesh.Address) (uint8, error) {
	h, err := s.holders.Get(user)
	if err != nil {
		return 0, err
	}
	return h.Tier, nil
}

// TierThresholds returns the configured threshold table.
func (s *Staking) TierThresholds() ([]*big.Int, error) {
	return s.tiers.Thresholds()
}

// ThresholdOf returns the minimum balance of the given tier, nil for tier 0.
func (s *Staking) ThresholdOf(tier uint8) (*big.Int, error) {
	return s.tiers.ThresholdOf(tier)
}

// TotalStaked returns the sum of all active principal.
func (s *Staking) TotalStaked() (*big.Int, error) {
	return s.totalStaked.Get()
}

// RewardsPoolBalance returns the undisbursed base-rate funding.
func (s *Staking) RewardsPoolBalance() (*big.Int, error) {
	return s.rewardsPool.Get()
}

// EligibleSupply returns the combined stake of all superstakers.
func (s *Staking) EligibleSupply() (*big.Int, error) {
	return s.penaltyPot.EligibleSupply()
}
