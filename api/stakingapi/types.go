// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakingapi

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// Amount is a token amount rendered as hex or decimal in JSON.
type Amount = math.HexOrDecimal256

func amount(v *big.Int) *Amount {
	if v == nil {
		v = new(big.Int)
	}
	return (*Amount)(v)
}

// Overview is the engine-wide accounting snapshot.
type Overview struct {
	TotalStaked    *Amount `json:"totalStaked"`
	RewardsPool    *Amount `json:"rewardsPool"`
	PenaltyPot     *Amount `json:"penaltyPot"`
	EligibleSupply *Amount `json:"eligibleSupply"`
}

// Tiers is the configured threshold table, ascending, 1-based by position.
type Tiers struct {
	Thresholds []*Amount `json:"thresholds"`
}

// Stakeholder is the public view of one staking position.
type Stakeholder struct {
	Status             uint8   `json:"status"`
	ActiveStake        *Amount `json:"activeStake"`
	UnstakingAmount    *Amount `json:"unstakingAmount"`
	UnstakingReleaseAt uint64  `json:"unstakingReleaseAt"`
	Tier               uint8   `json:"tier"`
	Superstaker        bool    `json:"superstaker"`
	DaysStreaked       uint64  `json:"daysStreaked"`
	NextCheckpointAt   uint64  `json:"nextCheckpointAt"`
	PeriodLength       uint64  `json:"periodLength"`
	CheckpointDue      bool    `json:"checkpointDue"`
}

// Rewards is the per-source reward breakdown of one position.
type Rewards struct {
	BaseRate   *Amount `json:"baseRate"`
	Airdrop    *Amount `json:"airdrop"`
	PenaltyPot *Amount `json:"penaltyPot"`
	Claimable  *Amount `json:"claimable"`
}
