// Package match reconciles a month's budget line items against the imported
// expense transactions.
package match

import (
	"fmt"
	"time"

	"fjacquet/finsync/cmd/root"
	"fjacquet/finsync/internal/export"
	"fjacquet/finsync/internal/matcher"
	"fjacquet/finsync/internal/models"
	"fjacquet/finsync/internal/store"

	"github.com/spf13/cobra"
)

var (
	month  string
	output string
)

// reportRow is one line of the CSV match report.
type reportRow struct {
	LineItem    string `csv:"line_item"`
	Expected    string `csv:"expected_amount"`
	Strategy    string `csv:"strategy"`
	Transaction string `csv:"transaction_id"`
	Description string `csv:"description"`
	Amount      string `csv:"amount"`
}

// Cmd represents the match command.
var Cmd = &cobra.Command{
	Use:   "match",
	Short: "Match expected expenses against imported transactions",
	Long: `Match the unpaid budget line items of a month against that month's expense
transactions. Each matched item is marked paid and records the transaction
that settled it.`,
	RunE: matchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&month, "month", "m", "", "Budget month as YYYY-MM (default: current month)")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "Write a CSV report of the assignments")
}

// monthWindow returns the [from, to) day bounds of a YYYY-MM period.
func monthWindow(period string) (string, string, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q, expected YYYY-MM", period)
	}
	return start.Format("2006-01-02"), start.AddDate(0, 1, 0).Format("2006-01-02"), nil
}

func matchFunc(cmd *cobra.Command, args []string) error {
	if month == "" {
		month = time.Now().Format("2006-01")
	}
	dateFrom, dateTo, err := monthWindow(month)
	if err != nil {
		return err
	}

	s, err := root.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	items, err := s.ListLineItems(month)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Printf("No budget line items for %s\n", month)
		return nil
	}

	candidates, err := s.ListTransactions(store.TransactionFilter{
		DateFrom:     dateFrom,
		DateTo:       dateTo,
		AccountKind:  models.AccountKindBank,
		OnlyExpenses: true,
	})
	if err != nil {
		return err
	}

	result := matcher.New(root.Log).Match(items, candidates)
	for _, a := range result.Assignments {
		if err := s.SaveLineItemMatch(a.LineItemID, a.TransactionID); err != nil {
			return fmt.Errorf("saving match for item %d: %w", a.LineItemID, err)
		}
	}

	fmt.Printf("Matched %d of %d line items for %s\n", result.Matched(), len(items), month)
	fmt.Printf("  by pattern:  %d\n", result.ByPattern)
	fmt.Printf("  by amount:   %d\n", result.ByAmount)
	fmt.Printf("  by category: %d\n", result.ByCategory)

	if output != "" {
		return export.WriteCSVFile(output, reportRows(result, items, candidates))
	}
	return nil
}

func reportRows(result matcher.Result, items []models.BudgetLineItem, candidates []models.Transaction) []reportRow {
	itemsByID := make(map[int64]models.BudgetLineItem, len(items))
	for _, li := range items {
		itemsByID[li.ID] = li
	}
	txByID := make(map[string]models.Transaction, len(candidates))
	for _, tx := range candidates {
		txByID[tx.ID] = tx
	}

	rows := make([]reportRow, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		li := itemsByID[a.LineItemID]
		tx := txByID[a.TransactionID]
		rows = append(rows, reportRow{
			LineItem:    li.Name,
			Expected:    li.MyAmount().StringFixed(2),
			Strategy:    a.Strategy,
			Transaction: tx.ID,
			Description: tx.Description,
			Amount:      tx.Amount.String(),
		})
	}
	return rows
}
