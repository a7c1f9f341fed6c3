// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/metrics"
)

var (
	metricOps           = metrics.LazyLoadCounterVec("staking_ops_total", []string{"op"})
	metricMissedPayouts = metrics.LazyLoadCounter("staking_missed_payouts_total")
	metricTierChanges   = metrics.LazyLoadCounter("staking_tier_changes_total")
	metricPenaltyVolume = metrics.LazyLoadCounter("staking_penalty_volume_total")
)

var tokenUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(mesh.TokenDecimals), nil)

// scaledDown converts a token amount to whole units for metric reporting.
func scaledDown(amount *big.Int) int64 {
	return new(big.Int).Quo(amount, tokenUnit).Int64()
}
