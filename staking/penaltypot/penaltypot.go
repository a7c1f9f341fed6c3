// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package penaltypot

import (
	"math/big"

	"github.com/meshly/stakemesh/log"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/storage"
)

var (
	logger = log.WithContext("pkg", "penaltypot")

	slotPerUnit   = mesh.Blake2b([]byte("penaltypot-per-unit"))
	slotRemainder = mesh.Blake2b([]byte("penaltypot-remainder"))
	slotEligible  = mesh.Blake2b([]byte("penaltypot-eligible-supply"))
	slotBalance   = mesh.Blake2b([]byte("penaltypot-balance"))
	slotPositions = mesh.Blake2b([]byte("penaltypot-positions"))
)

// Position is the per-user accumulator bookkeeping. Snapshot is the per-unit
// value at the last settlement; Buffer holds the value settled so far.
type Position struct {
	Snapshot *big.Int
	Buffer   *big.Int
}

func (p *Position) normalize() {
	if p.Snapshot == nil {
		p.Snapshot = new(big.Int)
	}
	if p.Buffer == nil {
		p.Buffer = new(big.Int)
	}
}

// Service is the streaming pro-rata distributor of forfeited rewards.
// Deposits spread over the eligible staked supply through a monotonically
// growing per-unit accumulator; integer-division remainders carry forward so
// no value is lost to rounding. Per-user bookkeeping is O(1) regardless of
// how many deposits happened in between.
type Service struct {
	perUnit   *storage.Uint256
	remainder *storage.Uint256
	eligible  *storage.Uint256
	balance   *storage.Uint256
	positions *storage.Mapping[mesh.Address, *Position]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		perUnit:   storage.NewUint256(sctx, slotPerUnit),
		remainder: storage.NewUint256(sctx, slotRemainder),
		eligible:  storage.NewUint256(sctx, slotEligible),
		balance:   storage.NewUint256(sctx, slotBalance),
		positions: storage.NewMapping[mesh.Address, *Position](sctx, slotPositions),
	}
}

// Deposit spreads amount over the eligible supply. With no eligible supply
// the whole amount parks in the remainder until someone becomes eligible.
func (s *Service) Deposit(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.balance.Add(amount); err != nil {
		return err
	}

	eligible, err := s.eligible.Get()
	if err != nil {
		return err
	}
	if eligible.Sign() == 0 {
		return s.remainder.Add(amount)
	}

	remainder, err := s.remainder.Get()
	if err != nil {
		return err
	}
	total := new(big.Int).Add(amount, remainder)
	perUnitDelta, carry := new(big.Int).QuoRem(total, eligible, new(big.Int))
	s.remainder.Set(carry)
	if err := s.perUnit.Add(perUnitDelta); err != nil {
		return err
	}

	logger.Debug("penalty deposited", "amount", amount, "perUnitDelta", perUnitDelta, "carry", carry)
	return nil
}

// Settle captures the accrual earned under the user's current stake into the
// buffer and re-anchors the snapshot. Must run before the user's stake or the
// eligible supply changes, or pre-change accrual gets misattributed.
func (s *Service) Settle(user mesh.Address, userStake *big.Int) error {
	pos, err := s.positions.Get(user)
	if err != nil {
		return err
	}
	pos.normalize()

	perUnit, err := s.perUnit.Get()
	if err != nil {
		return err
	}
	owed := new(big.Int).Sub(perUnit, pos.Snapshot)
	owed.Mul(owed, userStake)
	pos.Buffer.Add(pos.Buffer, owed)
	pos.Snapshot = perUnit
	return s.positions.Set(user, pos)
}

// ShareOf returns the user's total unsettled plus buffered share. Read-only.
func (s *Service) ShareOf(user mesh.Address, userStake *big.Int) (*big.Int, error) {
	pos, err := s.positions.Get(user)
	if err != nil {
		return nil, err
	}
	pos.normalize()

	perUnit, err := s.perUnit.Get()
	if err != nil {
		return nil, err
	}
	share := new(big.Int).Sub(perUnit, pos.Snapshot)
	share.Mul(share, userStake)
	return share.Add(share, pos.Buffer), nil
}

// Penalize settles, then forfeits the slice of the buffered share
// proportional to the exiting fraction of stake. The forfeited slice is
// returned for redistribution.
func (s *Service) Penalize(user mesh.Address, exitAmount, userStakeBeforeExit *big.Int) (*big.Int, error) {
	if err := s.Settle(user, userStakeBeforeExit); err != nil {
		return nil, err
	}
	pos, err := s.positions.Get(user)
	if err != nil {
		return nil, err
	}
	pos.normalize()

	slice := new(big.Int).Mul(pos.Buffer, exitAmount)
	slice.Quo(slice, userStakeBeforeExit)
	pos.Buffer.Sub(pos.Buffer, slice)
	if err := s.positions.Set(user, pos); err != nil {
		return nil, err
	}
	if err := s.balance.Sub(slice); err != nil {
		return nil, err
	}
	return slice, nil
}

// Redeem pays out the user's whole share and resets their position. Used at
// checkpoint crossing to move the share into the vested ledger.
func (s *Service) Redeem(user mesh.Address, userStake *big.Int) (*big.Int, error) {
	share, err := s.ShareOf(user, userStake)
	if err != nil {
		return nil, err
	}

	perUnit, err := s.perUnit.Get()
	if err != nil {
		return nil, err
	}
	pos := &Position{Snapshot: perUnit, Buffer: new(big.Int)}
	if err := s.positions.Set(user, pos); err != nil {
		return nil, err
	}
	if err := s.balance.Sub(share); err != nil {
		return nil, err
	}
	return share, nil
}

// Activate re-anchors the user's snapshot at the current per-unit value.
// Must run right before the user first enters the eligible supply, so that
// pre-eligibility growth is not attributed to them.
func (s *Service) Activate(user mesh.Address) error {
	pos, err := s.positions.Get(user)
	if err != nil {
		return err
	}
	pos.normalize()

	perUnit, err := s.perUnit.Get()
	if err != nil {
		return err
	}
	pos.Snapshot = perUnit
	return s.positions.Set(user, pos)
}

// AddEligible grows the eligible supply. The affected user must be settled
// (or activated) immediately beforehand.
func (s *Service) AddEligible(amount *big.Int) error {
	return s.eligible.Add(amount)
}

// RemoveEligible shrinks the eligible supply. The affected user must be
// settled immediately beforehand.
func (s *Service) RemoveEligible(amount *big.Int) error {
	return s.eligible.Sub(amount)
}

// EligibleSupply returns the stake of all current superstakers.
func (s *Service) EligibleSupply() (*big.Int, error) {
	return s.eligible.Get()
}

// PerUnit returns the accumulator value. It never decreases.
func (s *Service) PerUnit() (*big.Int, error) {
	return s.perUnit.Get()
}

// Remainder returns the carried integer-division remainder.
func (s *Service) Remainder() (*big.Int, error) {
	return s.remainder.Get()
}

// Balance returns the undistributed value held by the pot.
func (s *Service) Balance() (*big.Int, error) {
	return s.balance.Get()
}
