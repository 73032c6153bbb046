package models

import "github.com/atpar/actus-core/pkg/fixedpoint"

// State is the mutable condition of a contract at a point in time. It is
// produced by an engine's ComputeInitialState and replaced — never merged —
// by every ComputeStateForEvent call. The caller owns persistence and must
// feed events in canonical order; the engines do not version states.
type State struct {
	ContractPerformance ContractPerformance `json:"contract_performance"`

	StatusDate        int64 `json:"status_date"`
	NonPerformingDate int64 `json:"non_performing_date,omitempty"`
	MaturityDate      int64 `json:"maturity_date,omitempty"`
	ExerciseDate      int64 `json:"exercise_date,omitempty"`
	TerminationDate   int64 `json:"termination_date,omitempty"`

	NotionalPrincipal   *fixedpoint.Int `json:"notional_principal,omitempty"`
	AccruedInterest     *fixedpoint.Int `json:"accrued_interest,omitempty"`
	FeeAccrued          *fixedpoint.Int `json:"fee_accrued,omitempty"`
	NominalInterestRate *fixedpoint.Int `json:"nominal_interest_rate,omitempty"`

	InterestScalingMultiplier *fixedpoint.Int `json:"interest_scaling_multiplier,omitempty"`
	NotionalScalingMultiplier *fixedpoint.Int `json:"notional_scaling_multiplier,omitempty"`

	NextPrincipalRedemptionPayment *fixedpoint.Int `json:"next_principal_redemption_payment,omitempty"`
	ExerciseAmount                 *fixedpoint.Int `json:"exercise_amount,omitempty"`

	// Certificate and stock extensions.
	Quantity          *fixedpoint.Int `json:"quantity,omitempty"`
	CouponAmountFixed *fixedpoint.Int `json:"coupon_amount_fixed,omitempty"`
	ExerciseQuantity  *fixedpoint.Int `json:"exercise_quantity,omitempty"`
	DividendAmount    *fixedpoint.Int `json:"dividend_amount,omitempty"`
	SplitRatio        *fixedpoint.Int `json:"split_ratio,omitempty"`
}

// Clone returns a deep copy of the state. STFs operate on a clone so the
// prior state handed in by the caller is never mutated.
func (s *State) Clone() *State {
	c := *s
	c.NotionalPrincipal = s.NotionalPrincipal.Clone()
	c.AccruedInterest = s.AccruedInterest.Clone()
	c.FeeAccrued = s.FeeAccrued.Clone()
	c.NominalInterestRate = s.NominalInterestRate.Clone()
	c.InterestScalingMultiplier = s.InterestScalingMultiplier.Clone()
	c.NotionalScalingMultiplier = s.NotionalScalingMultiplier.Clone()
	c.NextPrincipalRedemptionPayment = s.NextPrincipalRedemptionPayment.Clone()
	c.ExerciseAmount = s.ExerciseAmount.Clone()
	c.Quantity = s.Quantity.Clone()
	c.CouponAmountFixed = s.CouponAmountFixed.Clone()
	c.ExerciseQuantity = s.ExerciseQuantity.Clone()
	c.DividendAmount = s.DividendAmount.Clone()
	c.SplitRatio = s.SplitRatio.Clone()
	return &c
}
