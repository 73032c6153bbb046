package models

import "github.com/atpar/actus-core/pkg/fixedpoint"

// ContractReference links a contract to an external object: the covered
// contract of a guarantee, the underlying of a certificate, a market index.
// The object payload is an opaque identifier resolved by the caller.
type ContractReference struct {
	Object string                `json:"object"`
	Type   ContractReferenceType `json:"type"`
	Role   ContractReferenceRole `json:"role"`
}

// Terms is the immutable record of all static parameters of one contract.
// It is created once by the caller and never mutated by an engine. Dates
// are Unix timestamps; zero means "not set". Numeric fields are 18-decimal
// fixed point; a nil pointer reads as zero.
type Terms struct {
	ContractType ContractType `json:"contract_type"`
	ContractID   string       `json:"contract_id,omitempty"`
	Currency     string       `json:"currency,omitempty"`
	ContractRole ContractRole `json:"contract_role"`

	// Conventions.
	Calendar              Calendar              `json:"calendar"`
	BusinessDayConvention BusinessDayConvention `json:"business_day_convention"`
	EndOfMonthConvention  EndOfMonthConvention  `json:"end_of_month_convention"`
	DayCountConvention    DayCountConvention    `json:"day_count_convention"`
	FeeBasis              FeeBasis              `json:"fee_basis"`
	PenaltyType           PenaltyType           `json:"penalty_type"`
	ScalingEffect         ScalingEffect         `json:"scaling_effect"`

	// Dates.
	ContractDealDate      int64 `json:"contract_deal_date,omitempty"`
	StatusDate            int64 `json:"status_date"`
	InitialExchangeDate   int64 `json:"initial_exchange_date,omitempty"`
	MaturityDate          int64 `json:"maturity_date,omitempty"`
	PurchaseDate          int64 `json:"purchase_date,omitempty"`
	TerminationDate       int64 `json:"termination_date,omitempty"`
	CapitalizationEndDate int64 `json:"capitalization_end_date,omitempty"`
	IssueDate             int64 `json:"issue_date,omitempty"`

	// Cycle anchors. A zero anchor for a set cycle defaults to the initial
	// exchange date (or issue date for certificates and stock).
	CycleAnchorDateOfInterestPayment     int64 `json:"cycle_anchor_date_of_interest_payment,omitempty"`
	CycleAnchorDateOfRateReset           int64 `json:"cycle_anchor_date_of_rate_reset,omitempty"`
	CycleAnchorDateOfScalingIndex        int64 `json:"cycle_anchor_date_of_scaling_index,omitempty"`
	CycleAnchorDateOfFee                 int64 `json:"cycle_anchor_date_of_fee,omitempty"`
	CycleAnchorDateOfPrincipalRedemption int64 `json:"cycle_anchor_date_of_principal_redemption,omitempty"`
	CycleAnchorDateOfCoupon              int64 `json:"cycle_anchor_date_of_coupon,omitempty"`
	CycleAnchorDateOfRedemption          int64 `json:"cycle_anchor_date_of_redemption,omitempty"`
	CycleAnchorDateOfDividend            int64 `json:"cycle_anchor_date_of_dividend,omitempty"`

	// Recurrence cycles.
	CycleOfInterestPayment     Cycle `json:"cycle_of_interest_payment,omitempty"`
	CycleOfRateReset           Cycle `json:"cycle_of_rate_reset,omitempty"`
	CycleOfScalingIndex        Cycle `json:"cycle_of_scaling_index,omitempty"`
	CycleOfFee                 Cycle `json:"cycle_of_fee,omitempty"`
	CycleOfPrincipalRedemption Cycle `json:"cycle_of_principal_redemption,omitempty"`
	CycleOfCoupon              Cycle `json:"cycle_of_coupon,omitempty"`
	CycleOfRedemption          Cycle `json:"cycle_of_redemption,omitempty"`
	CycleOfDividend            Cycle `json:"cycle_of_dividend,omitempty"`

	// Settlement lag between an exercise and its settlement event.
	SettlementPeriod Cycle `json:"settlement_period,omitempty"`

	// Economics.
	NotionalPrincipal              *fixedpoint.Int `json:"notional_principal,omitempty"`
	NominalInterestRate            *fixedpoint.Int `json:"nominal_interest_rate,omitempty"`
	NextPrincipalRedemptionPayment *fixedpoint.Int `json:"next_principal_redemption_payment,omitempty"`
	AccruedInterest                *fixedpoint.Int `json:"accrued_interest,omitempty"`
	RateMultiplier                 *fixedpoint.Int `json:"rate_multiplier,omitempty"`
	RateSpread                     *fixedpoint.Int `json:"rate_spread,omitempty"`
	NextResetRate                  *fixedpoint.Int `json:"next_reset_rate,omitempty"`
	FeeRate                        *fixedpoint.Int `json:"fee_rate,omitempty"`
	FeeAccrued                     *fixedpoint.Int `json:"fee_accrued,omitempty"`
	PenaltyRate                    *fixedpoint.Int `json:"penalty_rate,omitempty"`
	PremiumDiscountAtIED           *fixedpoint.Int `json:"premium_discount_at_ied,omitempty"`
	PriceAtPurchaseDate            *fixedpoint.Int `json:"price_at_purchase_date,omitempty"`
	PriceAtTerminationDate         *fixedpoint.Int `json:"price_at_termination_date,omitempty"`
	LifeCap                        *fixedpoint.Int `json:"life_cap,omitempty"`
	LifeFloor                      *fixedpoint.Int `json:"life_floor,omitempty"`
	PeriodCap                      *fixedpoint.Int `json:"period_cap,omitempty"`
	PeriodFloor                    *fixedpoint.Int `json:"period_floor,omitempty"`

	// Scaling.
	ScalingIndexAtContractDealDate *fixedpoint.Int `json:"scaling_index_at_contract_deal_date,omitempty"`

	// Credit enhancement.
	CoverageOfCreditEnhancement *fixedpoint.Int `json:"coverage_of_credit_enhancement,omitempty"`

	// Certificates and stock.
	Quantity     *fixedpoint.Int `json:"quantity,omitempty"`
	IssuePrice   *fixedpoint.Int `json:"issue_price,omitempty"`
	NominalPrice *fixedpoint.Int `json:"nominal_price,omitempty"`
	CouponRate   *fixedpoint.Int `json:"coupon_rate,omitempty"`

	// Linked objects (covered contract, underlying). At most two.
	ContractReferences []ContractReference `json:"contract_references,omitempty"`
}

// HasCaps reports whether any rate cap or floor is configured.
func (t *Terms) HasCaps() bool {
	return t.LifeCap != nil || t.LifeFloor != nil ||
		t.PeriodCap != nil || t.PeriodFloor != nil
}

// ScheduleAnchor returns the anchor date for a cycle, falling back to the
// supplied default when the configured anchor is unset.
func ScheduleAnchor(anchor, fallback int64) int64 {
	if anchor != 0 {
		return anchor
	}
	return fallback
}
