// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mesh

// Protocol-wide constants. All durations are in seconds, all rates in basis
// points against BasisPoints.
const (
	// BasisPoints is the denominator for all basis-point rates.
	BasisPoints = 10_000

	// BaseRateBPS is the annual base-rate reward, 5.5%.
	BaseRateBPS = 550

	// Day in seconds.
	Day uint64 = 24 * 60 * 60

	// Year is the accrual denominator period.
	Year = 365 * Day

	// CheckpointPeriod is the atomic unit of the checkpoint schedule.
	CheckpointPeriod = 30 * Day

	// BasePeriodCount is the number of checkpoint periods in an unshrunk schedule.
	BasePeriodCount = 6

	// MaxShrinkCount caps how far a schedule can shorten. At the cap the
	// schedule is a single CheckpointPeriod long.
	MaxShrinkCount = 5

	// UnstakeLockPeriod is how long principal stays locked after unstaking.
	UnstakeLockPeriod = 15 * Day

	// TokenDecimals is the decimals of the staked token.
	TokenDecimals = 18
)
