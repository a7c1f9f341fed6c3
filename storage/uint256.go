// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/meshly/stakemesh/mesh"
)

// Uint256 is a wrapper for storage and retrieval of an unsigned 256-bit
// number held in a single slot. If the provided value exceeds 256 bits it is
// truncated to fit into mesh.Bytes32.
type Uint256 struct {
	context *Context
	pos     mesh.Bytes32
}

func NewUint256(context *Context, slot mesh.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) Get() (*big.Int, error) {
	stored, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(stored.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, mesh.BytesToBytes32(value.Bytes()))
}

func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	stored.Add(stored, value)
	u.Set(stored)
	return nil
}

func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	if stored.Cmp(value) < 0 {
		return errors.Errorf("uint256 underflow at slot %s", u.pos.String())
	}
	stored.Sub(stored, value)
	u.Set(stored)
	return nil
}
