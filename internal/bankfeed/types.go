package bankfeed

import (
	"fmt"

	"fjacquet/finsync/internal/models"
)

// Balance is one balance entry of an account, typed per the upstream
// balanceType vocabulary.
type Balance struct {
	Type   string
	Amount models.Money
}

type balanceEntry struct {
	BalanceAmount struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"balanceAmount"`
	BalanceType string `json:"balanceType"`
}

func (b balanceEntry) toBalance() (Balance, error) {
	money, err := models.NewMoneyFromString(b.BalanceAmount.Amount, b.BalanceAmount.Currency)
	if err != nil {
		return Balance{}, fmt.Errorf("balance amount %q: %w", b.BalanceAmount.Amount, err)
	}
	return Balance{Type: b.BalanceType, Amount: money}, nil
}

// balancePreference orders balance types from most to least representative of
// the spendable balance.
var balancePreference = []string{
	"interimAvailable",
	"closingBooked",
	"interimBooked",
	"openingBooked",
}

// PreferredBalance picks the balance entry to persist for an account. It
// walks the preference order and falls back to the first entry when no
// preferred type is present. The boolean is false only for an empty slice.
func PreferredBalance(balances []Balance) (Balance, bool) {
	if len(balances) == 0 {
		return Balance{}, false
	}
	for _, want := range balancePreference {
		for _, b := range balances {
			if b.Type == want {
				return b, true
			}
		}
	}
	return balances[0], true
}

// FeedTransaction is one booked transaction as delivered by the upstream.
type FeedTransaction struct {
	TransactionID         string `json:"transactionId"`
	InternalTransactionID string `json:"internalTransactionId"`
	BookingDate           string `json:"bookingDate"`
	ValueDate             string `json:"valueDate"`
	TransactionAmount     struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"transactionAmount"`
	RemittanceInformation string `json:"remittanceInformationUnstructured"`
	CreditorName          string `json:"creditorName"`
	DebtorName            string `json:"debtorName"`
}

// EffectiveID returns the upstream identifier, preferring transactionId over
// internalTransactionId. Empty when the upstream delivered neither.
func (t FeedTransaction) EffectiveID() string {
	if t.TransactionID != "" {
		return t.TransactionID
	}
	return t.InternalTransactionID
}

// EffectiveDate returns the booking date, falling back to the value date.
func (t FeedTransaction) EffectiveDate() string {
	if t.BookingDate != "" {
		return t.BookingDate
	}
	return t.ValueDate
}

// Description returns the human-readable transaction text: the remittance
// information, or the counterparty name when the remittance text is absent.
func (t FeedTransaction) Description() string {
	if t.RemittanceInformation != "" {
		return t.RemittanceInformation
	}
	if t.CreditorName != "" {
		return t.CreditorName
	}
	return t.DebtorName
}
