// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoint

import (
	"github.com/meshly/stakemesh/mesh"
)

// Schedule is the per-user checkpoint state. A zero NextAt means the user has
// no active schedule.
type Schedule struct {
	NextAt          uint64 // timestamp of the next mandatory checkpoint
	ShrinkCount     uint8  // completed shrink steps, [0, MaxShrinkCount]
	StreakStartedAt uint64 // timestamp of the first stake of the current streak
}

// IsEmpty returns whether the schedule was never initialized (or was reset).
func (s *Schedule) IsEmpty() bool {
	return s.NextAt == 0
}

// IsSuperstaker reports superstaker status. It is equivalent to having
// crossed at least one checkpoint since the schedule was (re)initialized.
func (s *Schedule) IsSuperstaker() bool {
	return s.ShrinkCount > 0
}

// PeriodLength returns the current checkpoint period length of the schedule.
func (s *Schedule) PeriodLength() uint64 {
	return PeriodLength(s.ShrinkCount)
}

// PeriodLength returns the checkpoint period length after the given number of
// shrink steps, flooring at a single period.
func PeriodLength(shrinkCount uint8) uint64 {
	if shrinkCount > mesh.MaxShrinkCount {
		shrinkCount = mesh.MaxShrinkCount
	}
	return (mesh.BasePeriodCount - uint64(shrinkCount)) * mesh.CheckpointPeriod
}
