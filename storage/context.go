// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/state"
)

// Context scopes storage access to a single component address, so that
// independently developed components never collide on slots.
type Context struct {
	address mesh.Address
	state   *state.State
}

func NewContext(address mesh.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() mesh.Address {
	return c.address
}
