// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package holder

import (
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/storage"
)

var slotHolders = mesh.Blake2b([]byte("stakeholders"))

// Service is the keyed store of stakeholder records. One record per address,
// written back atomically as a whole.
type Service struct {
	holders *storage.Mapping[mesh.Address, *Holder]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		holders: storage.NewMapping[mesh.Address, *Holder](sctx, slotHolders),
	}
}

// Get returns the record of the address, empty (StatusUnknown) if none.
func (s *Service) Get(user mesh.Address) (*Holder, error) {
	h, err := s.holders.Get(user)
	if err != nil {
		return nil, err
	}
	h.normalize()
	return h, nil
}

// Set writes the whole record back.
func (s *Service) Set(user mesh.Address, h *Holder) error {
	return s.holders.Set(user, h)
}
