// Copyright (c) 2026 The StakeMesh developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/meshly/stakemesh/authority"
	"github.com/meshly/stakemesh/log"
	"github.com/meshly/stakemesh/mesh"
	"github.com/meshly/stakemesh/staking/checkpoint"
	"github.com/meshly/stakemesh/staking/holder"
	"github.com/meshly/stakemesh/staking/penaltypot"
	"github.com/meshly/stakemesh/staking/reverts"
	"github.com/meshly/stakemesh/staking/tiers"
	"github.com/meshly/stakemesh/state"
	"github.com/meshly/stakemesh/storage"
	"github.com/meshly/stakemesh/token"
)

var (
	logger = log.WithContext("pkg", "staking")

	slotTotalStaked = mesh.Blake2b([]byte("total-staked"))
	slotRewardsPool = mesh.Blake2b([]byte("rewards-funding-pool"))
)

// Staking is the orchestrator. It owns the per-user principal and reward
// ledgers and sequences the tier, checkpoint and penalty-pot engines to
// implement stake, unstake, claim, relock and checkpoint crossing.
//
// Operations are serialized by the caller: one logical operation at a time,
// run to completion. Every mutating operation runs inside a state checkpoint
// and reverts wholesale on error, and moves tokens only after all internal
// state is settled.
type Staking struct {
	addr  mesh.Address
	state *state.State
	token *token.Token
	auth  *authority.Authority

	holders     *holder.Service
	tiers       *tiers.Service
	checkpoints *checkpoint.Service
	penaltyPot  *penaltypot.Service

	totalStaked *storage.Uint256
	rewardsPool *storage.Uint256
}

// New creates the orchestrator bound to its component address. The address
// doubles as the vault identity holding staked tokens.
func New(addr mesh.Address, st *state.State, tok *token.Token, auth *authority.Authority) *Staking {
	sctx := storage.NewContext(addr, st)

	return &Staking{
		addr:  addr,
		state: st,
		token: tok,
		auth:  auth,

		holders:     holder.New(sctx),
		tiers:       tiers.New(sctx),
		checkpoints: checkpoint.New(sctx),
		penaltyPot:  penaltypot.New(sctx),

		totalStaked: storage.NewUint256(sctx, slotTotalStaked),
		rewardsPool: storage.NewUint256(sctx, slotRewardsPool),
	}
}

// Address returns the vault identity.
func (s *Staking) Address() mesh.Address {
	return s.addr
}

// atomic runs fn inside a state checkpoint, reverting every write if it fails.
func (s *Staking) atomic(fn func() error) error {
	cp := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(cp)
		return err
	}
	return nil
}

// Stake locks amount of the user's tokens as active principal.
func (s *Staking) Stake(user mesh.Address, now uint64, amount *big.Int) error {
	logger.Debug("staking", "user", user, "amount", amount)

	if err := s.atomic(func() error { return s.stake(user, user, now, amount) }); err != nil {
		logger.Info("stake failed", "user", user, "error", err)
		return err
	}

	metricOps().AddWithLabel(1, map[string]string{"op": "stake"})
	logger.Info("staked", "user", user, "amount", amount)
	return nil
}

func (s *Staking) stake(payer, user mesh.Address, now uint64, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}

	h, err := s.holders.Get(user)
	if err != nil {
		return err
	}
	if h.IsEmpty() {
		h = holder.NewRecord()
	}
	// a finished stakeholder re-enters from scratch, residual claims intact
	h.Status = holder.StatusActive

	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return err
	}
	if sched.IsEmpty() {
		if sched, err = s.checkpoints.Initialize(user, now); err != nil {
			return err
		}
	}

	if sched.IsSuperstaker() {
		// settle under the old stake before the eligible base grows
		if err := s.penaltyPot.Settle(user, h.ActiveStake); err != nil {
			return err
		}
		if err := s.penaltyPot.AddEligible(amount); err != nil {
			return err
		}
	}

	h.ActiveStake.Add(h.ActiveStake, amount)
	if err := s.totalStaked.Add(amount); err != nil {
		return err
	}

	// accrual on the newly staked amount only, until the next checkpoint;
	// the existing stake's accrual was locked in at the last event
	var interval uint64
	if sched.NextAt > now {
		interval = sched.NextAt - now
	}
	granted, err := s.grantAccrual(user, amount, interval)
	if err != nil {
		return err
	}
	h.BaseRateAccrued.Add(h.BaseRateAccrued, granted)

	if err := s.applyTier(user, h, false); err != nil {
		return err
	}
	if err := s.holders.Set(user, h); err != nil {
		return err
	}

	// token movement strictly after all state mutation
	return s.token.TransferFrom(s.addr, payer, s.addr, amount)
}

// Unstake moves amount of active principal into the 15-day exit lock,
// forfeiting the proportional slice of every unvested reward ledger to the
// penalty pot.
func (s *Staking) Unstake(user mesh.Address, now uint64, amount *big.Int) error {
	logger.Debug("unstaking", "user", user, "amount", amount)

	if err := s.atomic(func() error { return s.unstake(user, now, amount) }); err != nil {
		logger.Info("unstake failed", "user", user, "error", err)
		return err
	}

	metricOps().AddWithLabel(1, map[string]string{"op": "unstake"})
	logger.Info("unstaked", "user", user, "amount", amount)
	return nil
}

func (s *Staking) unstake(user mesh.Address, now uint64, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return reverts.ErrInvalidAmount
	}

	h, err := s.holders.Get(user)
	if err != nil {
		return err
	}
	if h.IsEmpty() || h.Status != holder.StatusActive {
		return reverts.ErrUnknownStakeholder
	}
	if amount.Cmp(h.ActiveStake) > 0 {
		return reverts.ErrInsufficientStake
	}

	activeBefore := new(big.Int).Set(h.ActiveStake)

	// proportional forfeit of the unvested ledgers
	airdropPenalty := proportion(h.AirdropBalance, amount, activeBefore)
	basePenalty := proportion(h.BaseRateAccrued, amount, activeBefore)
	h.AirdropBalance.Sub(h.AirdropBalance, airdropPenalty)
	h.BaseRateAccrued.Sub(h.BaseRateAccrued, basePenalty)
	penalty := new(big.Int).Add(airdropPenalty, basePenalty)

	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return err
	}
	if sched.IsSuperstaker() {
		slice, err := s.penaltyPot.Penalize(user, amount, activeBefore)
		if err != nil {
			return err
		}
		// shrink the eligible base before redistributing, so the exiting
		// amount gets no share of its own penalty
		if err := s.penaltyPot.RemoveEligible(amount); err != nil {
			return err
		}
		penalty.Add(penalty, slice)
	}

	if err := s.penaltyPot.Deposit(penalty); err != nil {
		return err
	}
	metricPenaltyVolume().Add(scaledDown(penalty))

	if err := s.totalStaked.Sub(amount); err != nil {
		return err
	}
	h.ActiveStake.Sub(h.ActiveStake, amount)
	h.UnstakingAmount.Add(h.UnstakingAmount, amount)
	h.UnstakingReleaseAt = now + mesh.UnstakeLockPeriod

	if h.ActiveStake.Sign() == 0 {
		// full exit: the stakeholder is finished, streak and superstaker
		// status are gone; claimable and the exit tranche survive
		h.Status = holder.StatusFinished
		if err := s.checkpoints.Reset(user); err != nil {
			return err
		}
	}
	// tier may only drop on unstake
	if err := s.applyTier(user, h, true); err != nil {
		return err
	}
	return s.holders.Set(user, h)
}

// Claim transfers out the vested balance plus any pending exit tranche.
func (s *Staking) Claim(user mesh.Address) (*big.Int, error) {
	logger.Debug("claiming", "user", user)

	total := new(big.Int)
	err := s.atomic(func() error {
		h, err := s.holders.Get(user)
		if err != nil {
			return err
		}
		total.Add(h.ClaimableBalance, h.UnstakingAmount)
		if total.Sign() == 0 {
			return reverts.ErrNothingToClaim
		}

		h.ClaimableBalance.SetUint64(0)
		h.UnstakingAmount.SetUint64(0)
		h.UnstakingReleaseAt = 0
		if err := s.holders.Set(user, h); err != nil {
			return err
		}
		return s.token.Transfer(s.addr, user, total)
	})
	if err != nil {
		logger.Info("claim failed", "user", user, "error", err)
		return nil, err
	}

	metricOps().AddWithLabel(1, map[string]string{"op": "claim"})
	logger.Info("claimed", "user", user, "amount", total)
	return total, nil
}

// Relock voluntarily extends the checkpoint by one period at the current
// length without consuming a shrink step, earning accrual for the added
// interval.
func (s *Staking) Relock(user mesh.Address) error {
	logger.Debug("relocking", "user", user)

	if err := s.atomic(func() error { return s.relock(user) }); err != nil {
		logger.Info("relock failed", "user", user, "error", err)
		return err
	}

	metricOps().AddWithLabel(1, map[string]string{"op": "relock"})
	logger.Info("relocked", "user", user)
	return nil
}

func (s *Staking) relock(user mesh.Address) error {
	h, err := s.holders.Get(user)
	if err != nil {
		return err
	}
	if h.IsEmpty() || h.Status != holder.StatusActive {
		return reverts.ErrUnknownStakeholder
	}

	if err := s.applyTier(user, h, false); err != nil {
		return err
	}

	adv, err := s.checkpoints.ExtendWithoutShrink(user)
	if err != nil {
		return err
	}
	if adv == nil {
		return reverts.ErrUnknownStakeholder
	}

	granted, err := s.grantAccrual(user, h.ActiveStake, adv.NextAt-adv.PrevNextAt)
	if err != nil {
		return err
	}
	h.BaseRateAccrued.Add(h.BaseRateAccrued, granted)
	return s.holders.Set(user, h)
}

// CrossCheckpoint vests the three reward ledgers into the claimable balance,
// promotes a first-time crosser to superstaker, shrinks the period and seeds
// the next period's accrual.
func (s *Staking) CrossCheckpoint(user mesh.Address, now uint64) error {
	logger.Debug("crossing checkpoint", "user", user)

	if err := s.atomic(func() error { return s.crossCheckpoint(user, now) }); err != nil {
		logger.Info("checkpoint cross failed", "user", user, "error", err)
		return err
	}

	metricOps().AddWithLabel(1, map[string]string{"op": "cross"})
	logger.Info("crossed checkpoint", "user", user)
	return nil
}

func (s *Staking) crossCheckpoint(user mesh.Address, now uint64) error {
	can, err := s.checkpoints.CanCross(user, now)
	if err != nil {
		return err
	}
	if !can {
		return reverts.ErrCheckpointNotYetDue
	}

	h, err := s.holders.Get(user)
	if err != nil {
		return err
	}
	if h.IsEmpty() || h.Status != holder.StatusActive {
		return reverts.ErrUnknownStakeholder
	}

	sched, err := s.checkpoints.Get(user)
	if err != nil {
		return err
	}
	wasSuperstaker := sched.IsSuperstaker()
	hasStake := h.ActiveStake.Sign() > 0

	share := new(big.Int)
	if wasSuperstaker {
		if share, err = s.penaltyPot.Redeem(user, h.ActiveStake); err != nil {
			return err
		}
	} else if hasStake {
		// first cross with stake promotes to superstaker
		if err := s.penaltyPot.Activate(user); err != nil {
			return err
		}
		if err := s.penaltyPot.AddEligible(h.ActiveStake); err != nil {
			return err
		}
	}

	// vest everything accrued over the finished period
	h.ClaimableBalance.Add(h.ClaimableBalance, h.BaseRateAccrued)
	h.ClaimableBalance.Add(h.ClaimableBalance, h.AirdropBalance)
	h.ClaimableBalance.Add(h.ClaimableBalance, share)
	h.AirdropBalance.SetUint64(0)

	// the shrink step only happens for crossings backed by stake
	adv, err := s.checkpoints.Advance(user, now, hasStake)
	if err != nil {
		return err
	}

	// seed the next period's accrual fresh at the current stake
	granted, err := s.grantAccrual(user, h.ActiveStake, adv.RewardPeriod)
	if err != nil {
		return err
	}
	h.BaseRateAccrued.Set(granted)

	if err := s.applyTier(user, h, false); err != nil {
		return err
	}
	return s.holders.Set(user, h)
}

// grantAccrual computes base-rate accrual for the interval and debits the
// funding pool. An underfunded pool clamps the payout and signals a missed
// payout instead of failing.
func (s *Staking) grantAccrual(user mesh.Address, stake *big.Int, interval uint64) (*big.Int, error) {
	accrual := computeAccrual(stake, interval)
	if accrual.Sign() == 0 {
		return accrual, nil
	}

	pool, err := s.rewardsPool.Get()
	if err != nil {
		return nil, err
	}
	if accrual.Cmp(pool) > 0 {
		logger.Warn("rewards pool underfunded, payout clamped",
			"user", user,
			"accrual", accrual,
			"pool", pool,
		)
		metricMissedPayouts().Add(1)
		accrual = pool
	}
	if err := s.rewardsPool.Sub(accrual); err != nil {
		return nil, err
	}
	return accrual, nil
}

// computeAccrual returns stake × BaseRateBPS × interval / (BasisPoints × Year),
// truncated.
func computeAccrual(stake *big.Int, interval uint64) *big.Int {
	accrual := new(big.Int).Mul(stake, big.NewInt(mesh.BaseRateBPS))
	accrual.Mul(accrual, new(big.Int).SetUint64(interval))
	denominator := new(big.Int).Mul(big.NewInt(mesh.BasisPoints), new(big.Int).SetUint64(mesh.Year))
	return accrual.Quo(accrual, denominator)
}

// applyTier re-evaluates the cached tier against the active stake. With
// lowerOnly set, an evaluation above the cached tier is ignored. The change
// is only recorded (and announced) when the value actually differs.
func (s *Staking) applyTier(user mesh.Address, h *holder.Holder, lowerOnly bool) error {
	computed, err := s.tiers.Evaluate(h.ActiveStake)
	if err != nil {
		return err
	}
	if lowerOnly && computed >= h.Tier {
		return nil
	}
	if computed != h.Tier {
		logger.Info("tier changed", "user", user, "from", h.Tier, "to", computed)
		metricTierChanges().Add(1)
		h.Tier = computed
	}
	return nil
}

// proportion returns balance × amount / total, truncated.
func proportion(balance, amount, total *big.Int) *big.Int {
	p := new(big.Int).Mul(balance, amount)
	return p.Quo(p, total)
}
