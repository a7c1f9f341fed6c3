// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"errors"

	"github.com/meshly/stakemesh/log"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/state"
	"github.com/meshly/stakemesh/storage"
)

// Role gates a group of privileged operations.
type Role = uint8

const (
	// RoleAdmin manages roles and tier thresholds. Held by the deployer.
	RoleAdmin = Role(iota)
	// RoleOperator may stake and cross checkpoints on behalf of users.
	RoleOperator
	// RoleAirdropper may grant airdrop rewards in batches.
	RoleAirdropper
)

var (
	logger = log.WithContext("pkg", "authority")

	slotAdmin = mesh.Blake2b([]byte("authority-admin"))
	slotRoles = mesh.Blake2b([]byte("authority-roles"))

	// ErrDenied is returned when the caller lacks the required role.
	ErrDenied = errors.New("authorization denied")
)

type roleKey struct {
	role Role
	addr mesh.Address
}

func (k roleKey) Bytes() []byte {
	return append([]byte{k.role}, k.addr.Bytes()...)
}

// Authority is the role registry gating privileged staking operations.
type Authority struct {
	admin *storage.Record[*mesh.Address]
	roles *storage.Mapping[roleKey, bool]
}

// New creates an authority registry bound to the given component address.
func New(addr mesh.Address, state *state.State) *Authority {
	sctx := storage.NewContext(addr, state)
	return &Authority{
		admin: storage.NewRecord[*mesh.Address](sctx, slotAdmin),
		roles: storage.NewMapping[roleKey, bool](sctx, slotRoles),
	}
}

// Init records the deploying identity as the default admin. It is a no-op if
// an admin is already set.
func (a *Authority) Init(deployer mesh.Address) error {
	admin, err := a.admin.Get()
	if err != nil {
		return err
	}
	if admin != nil && !admin.IsZero() {
		return nil
	}
	logger.Info("authority initialized", "admin", deployer)
	return a.admin.Set(&deployer)
}

// Admin returns the default admin identity.
func (a *Authority) Admin() (mesh.Address, error) {
	admin, err := a.admin.Get()
	if err != nil {
		return mesh.Address{}, err
	}
	if admin == nil {
		return mesh.Address{}, nil
	}
	return *admin, nil
}

// HasRole returns whether the address holds the role. The admin implicitly
// holds every role.
func (a *Authority) HasRole(addr mesh.Address, role Role) (bool, error) {
	admin, err := a.Admin()
	if err != nil {
		return false, err
	}
	if addr == admin && !admin.IsZero() {
		return true, nil
	}
	return a.roles.Get(roleKey{role, addr})
}

// Require returns ErrDenied unless the address holds the role.
func (a *Authority) Require(addr mesh.Address, role Role) error {
	ok, err := a.HasRole(addr, role)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDenied
	}
	return nil
}

// Grant gives the role to the grantee. Caller must be the admin.
func (a *Authority) Grant(caller mesh.Address, role Role, grantee mesh.Address) error {
	if err := a.requireAdmin(caller); err != nil {
		return err
	}
	logger.Info("role granted", "role", role, "grantee", grantee)
	return a.roles.Set(roleKey{role, grantee}, true)
}

// Revoke removes the role from the holder. Caller must be the admin.
func (a *Authority) Revoke(caller mesh.Address, role Role, holder mesh.Address) error {
	if err := a.requireAdmin(caller); err != nil {
		return err
	}
	logger.Info("role revoked", "role", role, "holder", holder)
	return a.roles.Delete(roleKey{role, holder})
}

func (a *Authority) requireAdmin(caller mesh.Address) error {
	admin, err := a.Admin()
	if err != nil {
		return err
	}
	if admin.IsZero() || caller != admin {
		return ErrDenied
	}
	return nil
}
