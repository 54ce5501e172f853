package domain

// SettlementState tracks a payment or payout request through the workflow.
type SettlementState string

const (
	SettlementValidating      SettlementState = "VALIDATING"
	SettlementChargeRequested SettlementState = "CHARGE_REQUESTED"
	SettlementChargeConfirmed SettlementState = "CHARGE_CONFIRMED"
	SettlementPayoutRequested SettlementState = "PAYOUT_REQUESTED"
	SettlementPayoutConfirmed SettlementState = "PAYOUT_CONFIRMED"
	SettlementLedgerCommitted SettlementState = "LEDGER_COMMITTED"
	SettlementFailed          SettlementState = "FAILED"
)

// IsTerminal returns true if no further transition is possible.
func (s SettlementState) IsTerminal() bool {
	return s == SettlementLedgerCommitted || s == SettlementFailed
}
