package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	// Game transactions
	TransactionTypeBetPlaced TransactionType = "bet_placed"
	TransactionTypeBetPayout TransactionType = "bet_payout"
	TransactionTypeBetRefund TransactionType = "bet_refund"

	// System transactions
	TransactionTypeInitial         TransactionType = "initial"
	TransactionTypeAdminAdjustment TransactionType = "admin_adjustment"
)

// IsGameRelated returns true if the transaction was caused by game play
func (tt TransactionType) IsGameRelated() bool {
	return tt == TransactionTypeBetPlaced ||
		tt == TransactionTypeBetPayout ||
		tt == TransactionTypeBetRefund
}

// IsSystemGenerated returns true if the transaction type is system-generated
func (tt TransactionType) IsSystemGenerated() bool {
	return tt == TransactionTypeInitial ||
		tt == TransactionTypeAdminAdjustment
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
