package logging

// Standardized field names for structured logging.
// These constants ensure consistency across the application's log output,
// making logs easier to parse, filter, and analyze.
const (
	FieldAccountID     = "account_id"
	FieldTransactionID = "transaction_id"
	FieldCategory      = "category"
	FieldStrategy      = "strategy"
	FieldCurrencyFrom  = "currency_from"
	FieldCurrencyTo    = "currency_to"
	FieldRate          = "rate"
	FieldRunID         = "run_id"
	FieldReason        = "reason"
	FieldCount         = "count"
)
