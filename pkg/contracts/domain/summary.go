package domain

import (
	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
)

// AccountSummary is one group-by-account aggregation row: every numeric
// column summed over the account's holdings. It backs the per-account
// metric widgets on the dashboard.
type AccountSummary struct {
	AccountName         string  `json:"account_name"`
	CurrentValue        float64 `json:"current_value"`
	TotalGainLossDollar float64 `json:"total_gain_loss_dollar"`
}

// PortfolioSummary is the aggregation served to the dashboard: one summary
// per selected account, plus a grand total when more than one account is in
// the selection.
type PortfolioSummary struct {
	Accounts []AccountSummary `json:"accounts"`
	Total    *GrandTotal      `json:"total,omitempty"`
}

// GrandTotal is the sum of current value and total gain/loss dollars across
// all selected accounts.
type GrandTotal struct {
	CurrentValue        float64 `json:"current_value"`
	TotalGainLossDollar float64 `json:"total_gain_loss_dollar"`
}

// SummaryFromDataset materializes a PortfolioSummary from a per-account
// summary dataset produced by holdings.SummarizeByAccount. The grand total
// is included only when the summary covers more than one account.
func SummaryFromDataset(summary *holdings.Dataset) (*PortfolioSummary, error) {
	accountIdx, err := summary.RequireColumn(holdings.ColumnAccountName)
	if err != nil {
		return nil, err
	}
	valueIdx, err := summary.RequireColumn(holdings.ColumnCurrentValue)
	if err != nil {
		return nil, err
	}
	gainIdx, err := summary.RequireColumn(holdings.ColumnTotalGainDollar)
	if err != nil {
		return nil, err
	}

	out := &PortfolioSummary{Accounts: make([]AccountSummary, 0, summary.Len())}
	for _, row := range summary.Rows {
		out.Accounts = append(out.Accounts, AccountSummary{
			AccountName:         row[accountIdx].String(),
			CurrentValue:        row[valueIdx].Number,
			TotalGainLossDollar: row[gainIdx].Number,
		})
	}
	if len(out.Accounts) > 1 {
		value, gain, err := holdings.GrandTotal(summary)
		if err != nil {
			return nil, err
		}
		out.Total = &GrandTotal{CurrentValue: value, TotalGainLossDollar: gain}
	}
	return out, nil
}
