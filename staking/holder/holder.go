// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package holder

import (
	"math/big"
)

type Status = uint8

const (
	StatusUnknown  = Status(iota) // 0 -> default value, no record exists
	StatusActive                  // holds active stake
	StatusFinished                // fully exited; residual claims may survive
)

// Holder is the per-stakeholder record: principal and the three reward
// ledgers. Checkpoint schedule and penalty-pot position live with their own
// components, keyed by the same address.
type Holder struct {
	Status Status

	ActiveStake        *big.Int // principal currently earning rewards
	UnstakingAmount    *big.Int // principal inside the exit lock
	UnstakingReleaseAt uint64   // when the exit lock opens

	BaseRateAccrued  *big.Int // base-rate rewards of the current period, unvested
	AirdropBalance   *big.Int // granted rewards, unvested until the next cross
	ClaimableBalance *big.Int // vested, withdrawable total

	Tier uint8 // cached tier evaluation
}

// NewRecord returns a zeroed active record.
func NewRecord() *Holder {
	return &Holder{
		Status:           StatusActive,
		ActiveStake:      new(big.Int),
		UnstakingAmount:  new(big.Int),
		BaseRateAccrued:  new(big.Int),
		AirdropBalance:   new(big.Int),
		ClaimableBalance: new(big.Int),
	}
}

// IsEmpty returns whether no record exists for the address.
func (h *Holder) IsEmpty() bool {
	return h.Status == StatusUnknown
}

// normalize backfills nil amounts after decoding.
func (h *Holder) normalize() {
	if h.ActiveStake == nil {
		h.ActiveStake = new(big.Int)
	}
	if h.UnstakingAmount == nil {
		h.UnstakingAmount = new(big.Int)
	}
	if h.BaseRateAccrued == nil {
		h.BaseRateAccrued = new(big.Int)
	}
	if h.AirdropBalance == nil {
		h.AirdropBalance = new(big.Int)
	}
	if h.ClaimableBalance == nil {
		h.ClaimableBalance = new(big.Int)
	}
}
