// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/meshly/stakemesh/authority"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/staking/holder"
	"github.com/meshly/stakemesh/staking/reverts"
)

// BatchStakeOnBehalf stakes caller-funded amounts for several users in one
// atomic operation. Requires the operator role; all entries succeed or none do.
func (s *Staking) BatchStakeOnBehalf(caller mesh.Address, now uint64, users []mesh.Address, amounts []*big.Int) error {
	logger.Debug("batch staking on behalf", "caller", caller, "count", len(users))

	err := s.atomic(func() error {
		if err := s.auth.Require(caller, authority.RoleOperator); err != nil {
			return err
		}
		if len(users) != len(amounts) {
			return reverts.ErrArrayLengthMismatch
		}
		for i, user := range users {
			if err := s.stake(caller, user, now, amounts[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Info("batch stake failed", "caller", caller, "error", err)
		return err
	}

	metricOps().AddWithLabel(int64(len(users)), map[string]string{"op": "stake"})
	logger.Info("batch staked", "caller", caller, "count", len(users))
	return nil
}

// BatchAirdrop grants caller-funded reward amounts to several users, lazily
// initializing anyone not yet known. The grants stay unvested until each
// user's next checkpoint crossing. Requires the airdropper role.
func (s *Staking) BatchAirdrop(caller mesh.Address, now uint64, users []mesh.Address, amounts []*big.Int) error {
	logger.Debug("airdropping", "caller", caller, "count", len(users))

	err := s.atomic(func() error {
		if err := s.auth.Require(caller, authority.RoleAirdropper); err != nil {
			return err
		}
		if len(users) != len(amounts) {
			return reverts.ErrArrayLengthMismatch
		}

		total := new(big.Int)
		for i, user := range users {
			if err := s.airdrop(user, now, amounts[i]); err != nil {
				return err
			}
			total.Add(total, amounts[i])
		}
		return s.token.TransferFrom(s.addr, caller, s.addr, total)
	})
	if err != nil {
		logger.Info("airdrop failed", "caller", caller, "error", err)
		return err
	}

	metricOps().AddWithLabel(int64(len(users)), map[string]string{"op": "airdrop"})
	logger.Info("airdropped", "caller", caller, "count", len(users))
	return nil
}

func (s *Staking) airdrop(user mesh.Address, now uint64, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}

	h, err := s.holders.Get(user)
	if err != nil {
		return err
	}
	if h.IsEmpty() {
		h = holder.NewRecord()
	}
	h.Status = holder.StatusActive

	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return err
	}
	if sched.IsEmpty() {
		if _, err := s.checkpoints.Initialize(user, now); err != nil {
			return err
		}
	}

	h.AirdropBalance.Add(h.AirdropBalance, amount)
	return s.holders.Set(user, h)
}

// CrossCheckpointOnBehalf performs a due checkpoint crossing for the user.
// Requires the operator role; the outcome is identical to the user crossing
// themselves.
func (s *Staking) CrossCheckpointOnBehalf(caller, user mesh.Address, now uint64) error {
	logger.Debug("crossing checkpoint on behalf", "caller", caller, "user", user)

	err := s.atomic(func() error {
		if err := s.auth.Require(caller, authority.RoleOperator); err != nil {
			return err
		}
		return s.crossCheckpoint(user, now)
	})
	if err != nil {
		logger.Info("checkpoint cross on behalf failed", "caller", caller, "user", user, "error", err)
		return err
	}

	metricOps().AddWithLabel(1, map[string]string{"op": "cross"})
	logger.Info("crossed checkpoint on behalf", "caller", caller, "user", user)
	return nil
}

// FundRewardsPool pulls tokens from the caller into the base-rate funding
// pool. Open to anyone.
func (s *Staking) FundRewardsPool(caller mesh.Address, amount *big.Int) error {
	logger.Debug("funding rewards pool", "caller", caller, "amount", amount)

	err := s.atomic(func() error {
		if amount == nil || amount.Sign() <= 0 {
			return reverts.ErrInvalidAmount
		}
		if err := s.rewardsPool.Add(amount); err != nil {
			return err
		}
		return s.token.TransferFrom(s.addr, caller, s.addr, amount)
	})
	if err != nil {
		logger.Info("funding failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("rewards pool funded", "caller", caller, "amount", amount)
	return nil
}

// SetTierThresholds replaces the tier threshold table. Requires the admin
// role. Cached tiers are not retroactively recomputed; each user's tier
// refreshes at their next operation.
func (s *Staking) SetTierThresholds(caller mesh.Address, thresholds []*big.Int) error {
	logger.Debug("setting tier thresholds", "caller", caller, "count", len(thresholds))

	err := s.atomic(func() error {
		if err := s.auth.Require(caller, authority.RoleAdmin); err != nil {
			return err
		}
		return s.tiers.SetThresholds(thresholds)
	})
	if err != nil {
		logger.Info("setting tier thresholds failed", "caller", caller, "error", err)
		return err
	}

	logger.Info("tier thresholds set", "caller", caller, "count", len(thresholds))
	return nil
}
