// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tiers

import (
	"errors"
	"math/big"

	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/storage"
)

var (
	slotThresholds = mesh.Blake2b([]byte("tier-thresholds"))

	// ErrNotAscending rejects a threshold table that is not strictly ascending.
	ErrNotAscending = errors.New("tier thresholds must be strictly ascending")
)

// Evaluate maps a staked balance to a tier against an ascending threshold
// table. Tier 0 if the balance is below the first threshold, otherwise the
// largest 1-based index whose threshold the balance meets.
func Evaluate(balance *big.Int, thresholds []*big.Int) uint8 {
	tier := uint8(0)
	for i, threshold := range thresholds {
		if balance.Cmp(threshold) < 0 {
			break
		}
		tier = uint8(i + 1)
	}
	return tier
}

// Service holds the admin-configured threshold table.
type Service struct {
	thresholds *storage.Record[[]*big.Int]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		thresholds: storage.NewRecord[[]*big.Int](sctx, slotThresholds),
	}
}

// SetThresholds replaces the threshold table.
// A table that is not strictly ascending is rejected.
func (s *Service) SetThresholds(thresholds []*big.Int) error {
	for i, threshold := range thresholds {
		if threshold == nil || threshold.Sign() < 0 {
			return ErrNotAscending
		}
		if i > 0 && thresholds[i-1].Cmp(threshold) >= 0 {
			return ErrNotAscending
		}
	}
	return s.thresholds.Set(thresholds)
}

// Thresholds returns the current threshold table.
func (s *Service) Thresholds() ([]*big.Int, error) {
	return s.thresholds.Get()
}

// ThresholdOf returns the minimum balance of the given tier, nil for tier 0
// or a tier beyond the table.
func (s *Service) ThresholdOf(tier uint8) (*big.Int, error) {
	thresholds, err := s.thresholds.Get()
	if err != nil {
		return nil, err
	}
	if tier == 0 || int(tier) > len(thresholds) {
		return nil, nil
	}
	return thresholds[tier-1], nil
}

// Evaluate maps the balance to a tier using the stored table.
func (s *Service) Evaluate(balance *big.Int) (uint8, error) {
	thresholds, err := s.thresholds.Get()
	if err != nil {
		return 0, err
	}
	return Evaluate(balance, thresholds), nil
}
