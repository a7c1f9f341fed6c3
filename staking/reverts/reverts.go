// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a domain failure that aborts the whole operation with no
// partial state change. It is distinct from infrastructure errors, which
// indicate a broken store rather than a rejected request.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

var (
	// ErrInvalidAmount rejects a zero amount where a positive one is required.
	ErrInvalidAmount = New("invalid amount")

	// ErrInsufficientStake rejects an unstake larger than the active stake.
	ErrInsufficientStake = New("insufficient stake")

	// ErrNothingToClaim rejects a claim with no claimable and no pending unstake.
	ErrNothingToClaim = New("nothing to claim")

	// ErrCheckpointNotYetDue rejects a checkpoint cross before its due time.
	ErrCheckpointNotYetDue = New("checkpoint not yet due")

	// ErrUnknownStakeholder rejects an operation requiring an existing record.
	ErrUnknownStakeholder = New("unknown stakeholder")

	// ErrArrayLengthMismatch rejects batch inputs of differing lengths.
	ErrArrayLengthMismatch = New("array length mismatch")
)
