// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package checkpoint

import (
	"github.com/meshly/stakemesh/log"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/storage"
)

var (
	logger = log.WithContext("pkg", "checkpoint")

	slotSchedules = mesh.Blake2b([]byte("checkpoint-schedules"))
)

// Advance is the outcome of moving a schedule forward.
type Advance struct {
	PrevNextAt uint64 // the due timestamp before the move
	NextAt     uint64 // the due timestamp after the move
	// RewardPeriod is the accrual interval granted by the move. When several
	// periods were missed, only the first one is granted; the skipped ones
	// earn nothing.
	RewardPeriod uint64
}

// Service tracks the per-user checkpoint schedules.
type Service struct {
	schedules *storage.Mapping[mesh.Address, *Schedule]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		schedules: storage.NewMapping[mesh.Address, *Schedule](sctx, slotSchedules),
	}
}

// Get returns the schedule of the user, empty if never initialized.
func (s *Service) Get(user mesh.Address) (*Schedule, error) {
	return s.schedules.Get(user)
}

// Initialize starts a fresh schedule: first checkpoint one full base period
// away, streak anchored at now.
func (s *Service) Initialize(user mesh.Address, now uint64) (*Schedule, error) {
	sched := &Schedule{
		NextAt:          now + PeriodLength(0),
		StreakStartedAt: now,
	}
	logger.Debug("schedule initialized", "user", user, "nextAt", sched.NextAt)
	return sched, s.schedules.Set(user, sched)
}

// CanCross returns whether the user's checkpoint is due.
func (s *Service) CanCross(user mesh.Address, now uint64) (bool, error) {
	sched, err := s.schedules.Get(user)
	if err != nil {
		return false, err
	}
	return !sched.IsEmpty() && now > sched.NextAt, nil
}

// Advance moves the schedule past now. If shrink is set, the period shortens
// once per compounded step until the shrink cap. A never-initialized schedule
// is initialized instead.
//
// Several missed periods compound into one move, but only the first period's
// length is reported as RewardPeriod. Callers must base accrual on it, not on
// NextAt − PrevNextAt.
func (s *Service) Advance(user mesh.Address, now uint64, shrink bool) (*Advance, error) {
	sched, err := s.schedules.Get(user)
	if err != nil {
		return nil, err
	}
	if sched.IsEmpty() {
		sched, err = s.Initialize(user, now)
		if err != nil {
			return nil, err
		}
		return &Advance{NextAt: sched.NextAt, RewardPeriod: sched.PeriodLength()}, nil
	}

	adv := &Advance{PrevNextAt: sched.NextAt}
	for sched.NextAt < now {
		if shrink && sched.ShrinkCount < mesh.MaxShrinkCount {
			sched.ShrinkCount++
		}
		sched.NextAt += sched.PeriodLength()
		if adv.RewardPeriod == 0 {
			adv.RewardPeriod = sched.PeriodLength()
		}
	}
	adv.NextAt = sched.NextAt

	logger.Debug("schedule advanced",
		"user", user,
		"nextAt", sched.NextAt,
		"shrinkCount", sched.ShrinkCount,
	)
	return adv, s.schedules.Set(user, sched)
}

// ExtendWithoutShrink adds one period at the current length without consuming
// a shrink step. Used for voluntary early relock.
func (s *Service) ExtendWithoutShrink(user mesh.Address) (*Advance, error) {
	sched, err := s.schedules.Get(user)
	if err != nil {
		return nil, err
	}
	if sched.IsEmpty() {
		return nil, nil
	}
	adv := &Advance{PrevNextAt: sched.NextAt, RewardPeriod: sched.PeriodLength()}
	sched.NextAt += sched.PeriodLength()
	adv.NextAt = sched.NextAt
	return adv, s.schedules.Set(user, sched)
}

// Reset clears the schedule, ending the streak and superstaker status.
func (s *Service) Reset(user mesh.Address) error {
	logger.Debug("schedule reset", "user", user)
	return s.schedules.Delete(user)
}

// DaysStreaked returns the whole days since the streak started, zero if the
// schedule was never initialized.
func (s *Service) DaysStreaked(user mesh.Address, now uint64) (uint64, error) {
	sched, err := s.schedules.Get(user)
	if err != nil {
		return 0, err
	}
	if sched.IsEmpty() || now < sched.StreakStartedAt {
		return 0, nil
	}
	return (now - sched.StreakStartedAt) / mesh.Day, nil
}
