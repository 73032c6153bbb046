// Package models defines the data model shared by every contract engine:
// the closed dictionary of ACTUS enumerations, the Terms and State records,
// the packed Event token with its canonical ordering, and the Cycle
// recurrence value.
//
// The enumerations are fixed integer codes with their ACTUS acronyms as the
// textual form. Engines branch on the integer codes; the acronym tables are
// the serialization dictionary and are never mutated at runtime.
package models

import "fmt"

// invert builds the acronym -> code lookup for an enum name table.
func invert[E comparable](names map[E]string) map[string]E {
	m := make(map[string]E, len(names))
	for code, name := range names {
		m[name] = code
	}
	return m
}

// ════════════════════════════════════════════════════════════════════
// Contract Types
// ════════════════════════════════════════════════════════════════════

// ContractType identifies which engine governs a contract.
type ContractType uint8

const (
	ContractTypePAM   ContractType = iota // principal at maturity
	ContractTypeANN                       // annuity
	ContractTypeCEG                       // guarantee credit enhancement
	ContractTypeCEC                       // collateral credit enhancement
	ContractTypeCERTF                     // certificate
	ContractTypeSTK                       // stock
	ContractTypeCOLLA                     // collateralized loan
)

var contractTypeNames = map[ContractType]string{
	ContractTypePAM: "PAM", ContractTypeANN: "ANN",
	ContractTypeCEG: "CEG", ContractTypeCEC: "CEC",
	ContractTypeCERTF: "CERTF", ContractTypeSTK: "STK",
	ContractTypeCOLLA: "COLLA",
}

var contractTypeCodes = invert(contractTypeNames)

func (ct ContractType) String() string {
	if s, ok := contractTypeNames[ct]; ok {
		return s
	}
	return fmt.Sprintf("ContractType(%d)", uint8(ct))
}

// ParseContractType resolves an ACTUS contract-type acronym.
func ParseContractType(s string) (ContractType, error) {
	if ct, ok := contractTypeCodes[s]; ok {
		return ct, nil
	}
	return 0, fmt.Errorf("unknown contract type %q", s)
}

func (ct ContractType) MarshalText() ([]byte, error) { return []byte(ct.String()), nil }

func (ct *ContractType) UnmarshalText(b []byte) error {
	v, err := ParseContractType(string(b))
	if err != nil {
		return err
	}
	*ct = v
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Event Types
// ════════════════════════════════════════════════════════════════════

// EventType is a contractual event class. The numeric order of the codes is
// the same-instant priority used by the canonical event ordering: events
// that seed a contract (issue, initial exchange) sort before accrual and
// payment events, which sort before exercise, settlement, and terminal
// events at the same schedule time.
type EventType uint8

const (
	EventISS  EventType = iota + 1 // issue
	EventIED                       // initial exchange
	EventPRD                       // purchase
	EventPR                        // principal redemption (before interest at the same instant)
	EventPP                        // principal prepayment
	EventPY                        // penalty payment
	EventFP                        // fee payment
	EventIPCI                      // interest capitalization
	EventIP                        // interest payment
	EventRR                        // rate reset with external fixing
	EventRRF                       // rate reset with fixed rate
	EventSC                        // scaling index fixing
	EventCOF                       // coupon fixing
	EventCOP                       // coupon payment
	EventREF                       // redemption fixing
	EventREP                       // redemption payment
	EventDIF                       // dividend fixing
	EventDIP                       // dividend payment
	EventSPF                       // split fixing
	EventSPS                       // split settlement
	EventXD                        // exercise / execution
	EventSTD                       // settlement
	EventMD                        // maturity
	EventTD                        // termination
	EventCE                        // credit event
)

var eventTypeNames = map[EventType]string{
	EventISS: "ISS", EventIED: "IED", EventPRD: "PRD", EventIPCI: "IPCI",
	EventIP: "IP", EventFP: "FP", EventPR: "PR", EventPY: "PY",
	EventPP: "PP", EventRR: "RR", EventRRF: "RRF", EventSC: "SC",
	EventCOF: "COF", EventCOP: "COP", EventREF: "REF", EventREP: "REP",
	EventDIF: "DIF", EventDIP: "DIP", EventSPF: "SPF", EventSPS: "SPS",
	EventXD: "XD", EventSTD: "STD", EventMD: "MD", EventTD: "TD",
	EventCE: "CE",
}

var eventTypeCodes = invert(eventTypeNames)

func (et EventType) String() string {
	if s, ok := eventTypeNames[et]; ok {
		return s
	}
	return fmt.Sprintf("EventType(%d)", uint8(et))
}

// ParseEventType resolves an ACTUS event acronym such as "IP" or "MD".
func ParseEventType(s string) (EventType, error) {
	if et, ok := eventTypeCodes[s]; ok {
		return et, nil
	}
	return 0, fmt.Errorf("unknown event type %q", s)
}

func (et EventType) MarshalText() ([]byte, error) { return []byte(et.String()), nil }

func (et *EventType) UnmarshalText(b []byte) error {
	v, err := ParseEventType(string(b))
	if err != nil {
		return err
	}
	*et = v
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Date Conventions
// ════════════════════════════════════════════════════════════════════

// Calendar decides which days count as business days.
type Calendar uint8

const (
	CalendarNone          Calendar = iota // every day is a business day
	CalendarMondayToFriday                // Saturday and Sunday are non-business
)

var calendarNames = map[Calendar]string{
	CalendarNone: "NC", CalendarMondayToFriday: "MF",
}

var calendarCodes = invert(calendarNames)

func (c Calendar) String() string {
	if s, ok := calendarNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Calendar(%d)", uint8(c))
}

func (c Calendar) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Calendar) UnmarshalText(b []byte) error {
	v, ok := calendarCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown calendar %q", string(b))
	}
	*c = v
	return nil
}

// BusinessDayConvention is the rule for shifting dates that fall on a
// non-business day.
type BusinessDayConvention uint8

const (
	BDCNull              BusinessDayConvention = iota // no shifting
	BDCFollowing                                      // next business day
	BDCModifiedFollowing                              // next business day unless it crosses a month boundary, then previous
)

var bdcNames = map[BusinessDayConvention]string{
	BDCNull: "NULL", BDCFollowing: "SCF", BDCModifiedFollowing: "SCMF",
}

var bdcCodes = invert(bdcNames)

func (b BusinessDayConvention) String() string {
	if s, ok := bdcNames[b]; ok {
		return s
	}
	return fmt.Sprintf("BusinessDayConvention(%d)", uint8(b))
}

func (b BusinessDayConvention) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BusinessDayConvention) UnmarshalText(data []byte) error {
	v, ok := bdcCodes[string(data)]
	if !ok {
		return fmt.Errorf("unknown business day convention %q", string(data))
	}
	*b = v
	return nil
}

// EndOfMonthConvention controls month-end anchoring of cycle rollouts.
type EndOfMonthConvention uint8

const (
	EOMSameDay EndOfMonthConvention = iota // keep the anchor's day of month
	EOMEndOfMonth                          // roll on the last day of each month
)

var eomNames = map[EndOfMonthConvention]string{
	EOMSameDay: "SD", EOMEndOfMonth: "EOM",
}

var eomCodes = invert(eomNames)

func (e EndOfMonthConvention) String() string {
	if s, ok := eomNames[e]; ok {
		return s
	}
	return fmt.Sprintf("EndOfMonthConvention(%d)", uint8(e))
}

func (e EndOfMonthConvention) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *EndOfMonthConvention) UnmarshalText(b []byte) error {
	v, ok := eomCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown end of month convention %q", string(b))
	}
	*e = v
	return nil
}

// DayCountConvention is the rule converting a date span into a year
// fraction for accrual.
type DayCountConvention uint8

const (
	DCCActualActual   DayCountConvention = iota // A/A
	DCCActual360                                // A/360
	DCCActual365                                // A/365
	DCCThirtyE360                               // 30E/360
)

var dccNames = map[DayCountConvention]string{
	DCCActualActual: "AA", DCCActual360: "A360",
	DCCActual365: "A365", DCCThirtyE360: "30E360",
}

var dccCodes = invert(dccNames)

func (d DayCountConvention) String() string {
	if s, ok := dccNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DayCountConvention(%d)", uint8(d))
}

func (d DayCountConvention) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *DayCountConvention) UnmarshalText(b []byte) error {
	v, ok := dccCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown day count convention %q", string(b))
	}
	*d = v
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Roles, Bases, Performance
// ════════════════════════════════════════════════════════════════════

// ContractRole states which side of the contract the subject party holds.
// It determines the sign of every payoff.
type ContractRole uint8

const (
	RoleRPA ContractRole = iota // real position asset (long, +1)
	RoleRPL                     // real position liability (short, -1)
)

var roleNames = map[ContractRole]string{RoleRPA: "RPA", RoleRPL: "RPL"}

var roleCodes = invert(roleNames)

// Sign returns +1 for the asset side and -1 for the liability side.
func (r ContractRole) Sign() int64 {
	if r == RoleRPL {
		return -1
	}
	return 1
}

func (r ContractRole) String() string {
	if s, ok := roleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ContractRole(%d)", uint8(r))
}

func (r ContractRole) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *ContractRole) UnmarshalText(b []byte) error {
	v, ok := roleCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown contract role %q", string(b))
	}
	*r = v
	return nil
}

// FeeBasis selects how fee payments are computed.
type FeeBasis uint8

const (
	FeeBasisAbsolute FeeBasis = iota // "A": flat fee amount
	FeeBasisNotional                 // "N": proportional to notional over elapsed time
)

var feeBasisNames = map[FeeBasis]string{FeeBasisAbsolute: "A", FeeBasisNotional: "N"}

var feeBasisCodes = invert(feeBasisNames)

func (f FeeBasis) String() string {
	if s, ok := feeBasisNames[f]; ok {
		return s
	}
	return fmt.Sprintf("FeeBasis(%d)", uint8(f))
}

func (f FeeBasis) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *FeeBasis) UnmarshalText(b []byte) error {
	v, ok := feeBasisCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown fee basis %q", string(b))
	}
	*f = v
	return nil
}

// PenaltyType selects how prepayment penalties are computed.
type PenaltyType uint8

const (
	PenaltyNone         PenaltyType = iota // "O": no penalty
	PenaltyAbsolute                        // "A": flat penalty amount
	PenaltyNominalRate                     // "N": penalty rate applied to notional
	PenaltyInterestDiff                    // "I": rate differential applied to notional
)

var penaltyNames = map[PenaltyType]string{
	PenaltyNone: "O", PenaltyAbsolute: "A",
	PenaltyNominalRate: "N", PenaltyInterestDiff: "I",
}

var penaltyCodes = invert(penaltyNames)

func (p PenaltyType) String() string {
	if s, ok := penaltyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("PenaltyType(%d)", uint8(p))
}

func (p PenaltyType) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PenaltyType) UnmarshalText(b []byte) error {
	v, ok := penaltyCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown penalty type %q", string(b))
	}
	*p = v
	return nil
}

// ScalingEffect states which quantities the scaling index applies to.
type ScalingEffect uint8

const (
	Scaling000 ScalingEffect = iota // no scaling
	ScalingI00                      // interest payments scale
	Scaling0N0                      // notional scales
	ScalingIN0                      // both scale
)

var scalingNames = map[ScalingEffect]string{
	Scaling000: "000", ScalingI00: "I00", Scaling0N0: "0N0", ScalingIN0: "IN0",
}

var scalingCodes = invert(scalingNames)

// ScalesInterest reports whether interest payments are index-scaled.
func (s ScalingEffect) ScalesInterest() bool { return s == ScalingI00 || s == ScalingIN0 }

// ScalesNotional reports whether the notional is index-scaled.
func (s ScalingEffect) ScalesNotional() bool { return s == Scaling0N0 || s == ScalingIN0 }

func (s ScalingEffect) String() string {
	if n, ok := scalingNames[s]; ok {
		return n
	}
	return fmt.Sprintf("ScalingEffect(%d)", uint8(s))
}

func (s ScalingEffect) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ScalingEffect) UnmarshalText(b []byte) error {
	v, ok := scalingCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown scaling effect %q", string(b))
	}
	*s = v
	return nil
}

// ContractPerformance is the contract's standing at a point in time.
type ContractPerformance uint8

const (
	PerformancePerformant ContractPerformance = iota // "PF"
	PerformanceDelayed                               // "DL": payment delayed within grace period
	PerformanceDelinquent                            // "DQ": payment delayed beyond grace period
	PerformanceDefaulted                             // "DF"
	PerformanceMatured                               // "MD"
	PerformanceTerminated                            // "TD"
)

var performanceNames = map[ContractPerformance]string{
	PerformancePerformant: "PF", PerformanceDelayed: "DL",
	PerformanceDelinquent: "DQ", PerformanceDefaulted: "DF",
	PerformanceMatured: "MD", PerformanceTerminated: "TD",
}

var performanceCodes = invert(performanceNames)

func (p ContractPerformance) String() string {
	if s, ok := performanceNames[p]; ok {
		return s
	}
	return fmt.Sprintf("ContractPerformance(%d)", uint8(p))
}

func (p ContractPerformance) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *ContractPerformance) UnmarshalText(b []byte) error {
	v, ok := performanceCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown contract performance %q", string(b))
	}
	*p = v
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Contract References
// ════════════════════════════════════════════════════════════════════

// ContractReferenceType classifies the object a contract reference points at.
type ContractReferenceType uint8

const (
	ReferenceContract   ContractReferenceType = iota // another contract
	ReferenceMarketObject                            // a market-observed object (index, price series)
)

var refTypeNames = map[ContractReferenceType]string{
	ReferenceContract: "CNT", ReferenceMarketObject: "MOC",
}

var refTypeCodes = invert(refTypeNames)

func (r ContractReferenceType) String() string {
	if s, ok := refTypeNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ContractReferenceType(%d)", uint8(r))
}

func (r ContractReferenceType) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *ContractReferenceType) UnmarshalText(b []byte) error {
	v, ok := refTypeCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown contract reference type %q", string(b))
	}
	*r = v
	return nil
}

// ContractReferenceRole states what the referenced object is to this contract.
type ContractReferenceRole uint8

const (
	ReferenceRoleUnderlying      ContractReferenceRole = iota // "UDL"
	ReferenceRoleCoveredContract                              // "COVE"
	ReferenceRoleCoveringContract                             // "COVI"
)

var refRoleNames = map[ContractReferenceRole]string{
	ReferenceRoleUnderlying:       "UDL",
	ReferenceRoleCoveredContract:  "COVE",
	ReferenceRoleCoveringContract: "COVI",
}

var refRoleCodes = invert(refRoleNames)

func (r ContractReferenceRole) String() string {
	if s, ok := refRoleNames[r]; ok {
		return s
	}
	return fmt.Sprintf("ContractReferenceRole(%d)", uint8(r))
}

func (r ContractReferenceRole) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *ContractReferenceRole) UnmarshalText(b []byte) error {
	v, ok := refRoleCodes[string(b)]
	if !ok {
		return fmt.Errorf("unknown contract reference role %q", string(b))
	}
	*r = v
	return nil
}
