// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"errors"
	"math/big"

	"github.com/meshly/stakemesh/log"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/state"
	"github.com/meshly/stakemesh/storage"
)

var (
	logger = log.WithContext("pkg", "token")

	slotTotalSupply = mesh.Blake2b([]byte("token-total-supply"))
	slotBalances    = mesh.Blake2b([]byte("token-balances"))
	slotAllowances  = mesh.Blake2b([]byte("token-allowances"))

	ErrInsufficientBalance   = errors.New("insufficient token balance")
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
)

// allowanceKey addresses the allowance granted by an owner to a spender.
type allowanceKey struct {
	owner   mesh.Address
	spender mesh.Address
}

func (k allowanceKey) Bytes() []byte {
	b := make([]byte, 0, mesh.AddressLength*2)
	b = append(b, k.owner.Bytes()...)
	return append(b, k.spender.Bytes()...)
}

// Token is the fungible ledger used to move value in and out of the staking
// engine. It lives at its own component address inside the shared state.
type Token struct {
	balances    *storage.Mapping[mesh.Address, *big.Int]
	allowances  *storage.Mapping[allowanceKey, *big.Int]
	totalSupply *storage.Uint256
}

// New creates a token ledger bound to the given component address.
func New(addr mesh.Address, state *state.State) *Token {
	sctx := storage.NewContext(addr, state)
	return &Token{
		balances:    storage.NewMapping[mesh.Address, *big.Int](sctx, slotBalances),
		allowances:  storage.NewMapping[allowanceKey, *big.Int](sctx, slotAllowances),
		totalSupply: storage.NewUint256(sctx, slotTotalSupply),
	}
}

// Decimals returns the token's decimals.
func (t *Token) Decimals() uint8 {
	return mesh.TokenDecimals
}

// TotalSupply returns the minted supply.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

// BalanceOf returns the balance of an account.
func (t *Token) BalanceOf(addr mesh.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

// Allowance returns the amount the spender may move out of the owner's balance.
func (t *Token) Allowance(owner, spender mesh.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey{owner, spender})
}

// Mint credits newly created tokens to an account. Bootstrap only.
func (t *Token) Mint(to mesh.Address, amount *big.Int) error {
	if err := t.add(to, amount); err != nil {
		return err
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	logger.Debug("minted", "to", to, "amount", amount)
	return nil
}

// Approve sets the spender's allowance over the owner's balance.
func (t *Token) Approve(owner, spender mesh.Address, amount *big.Int) error {
	return t.allowances.Set(allowanceKey{owner, spender}, amount)
}

// Transfer moves amount from one account to another.
// It fails with ErrInsufficientBalance if the sender's balance is short.
func (t *Token) Transfer(from, to mesh.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := t.sub(from, amount); err != nil {
		return err
	}
	return t.add(to, amount)
}

// TransferFrom moves amount from the owner to the recipient on behalf of the
// spender, consuming the spender's allowance.
func (t *Token) TransferFrom(spender, owner, to mesh.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if spender != owner {
		key := allowanceKey{owner, spender}
		allowance, err := t.allowances.Get(key)
		if err != nil {
			return err
		}
		if allowance.Cmp(amount) < 0 {
			return ErrInsufficientAllowance
		}
		if err := t.allowances.Set(key, new(big.Int).Sub(allowance, amount)); err != nil {
			return err
		}
	}
	return t.Transfer(owner, to, amount)
}

func (t *Token) add(addr mesh.Address, amount *big.Int) error {
	balance, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	return t.balances.Set(addr, balance.Add(balance, amount))
}

func (t *Token) sub(addr mesh.Address, amount *big.Int) error {
	balance, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	return t.balances.Set(addr, balance.Sub(balance, amount))
}
