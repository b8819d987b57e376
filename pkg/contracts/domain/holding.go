package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gerardrbentley/fidelity-account-overview/internal/holdings"
)

// Holding is one account/symbol position from a cleaned brokerage export.
// This is the wire shape served to the dashboard; the generic
// holdings.Dataset remains the authority on column order.
type Holding struct {
	AccountName          string  `json:"account_name" csv:"Account Name" validate:"required"`
	Symbol               string  `json:"symbol" csv:"Symbol" validate:"required"`
	Description          string  `json:"description" csv:"Description"`
	Quantity             float64 `json:"quantity" csv:"Quantity"`
	LastPrice            float64 `json:"last_price" csv:"Last Price"`
	LastPriceChange      float64 `json:"last_price_change" csv:"Last Price Change"`
	CurrentValue         float64 `json:"current_value" csv:"Current Value"`
	TodaysGainLossDollar float64 `json:"todays_gain_loss_dollar" csv:"Today's Gain/Loss Dollar"`
	TodaysGainLossPct    float64 `json:"todays_gain_loss_percent" csv:"Today's Gain/Loss Percent"`
	TotalGainLossDollar  float64 `json:"total_gain_loss_dollar" csv:"Total Gain/Loss Dollar"`
	TotalGainLossPct     float64 `json:"total_gain_loss_percent" csv:"Total Gain/Loss Percent"`
	PercentOfAccount     float64 `json:"percent_of_account" csv:"Percent Of Account"`
	CostBasisTotal       float64 `json:"cost_basis_total" csv:"Cost Basis Total"`
	CostBasisPerShare    float64 `json:"cost_basis_per_share" csv:"Cost Basis Per Share"`
	Type                 string  `json:"type" csv:"Type"`
}

// Cleaned-dataset column names used when materializing holdings.
const (
	colDescription       = "description"
	colLastPriceChange   = "last_price_change"
	colTodaysGainDollar  = "today's_gain_loss_dollar"
	colTodaysGainPercent = "today's_gain_loss_percent"
	colTotalGainPercent  = "total_gain_loss_percent"
	colPercentOfAccount  = "percent_of_account"
	colCostBasisTotal    = "cost_basis_total"
)

// HoldingsFromDataset materializes typed holdings from a cleaned dataset.
// Lookups are by normalized column name; a missing column is an input-format
// error, consistent with the cleaner's contract.
func HoldingsFromDataset(ds *holdings.Dataset) ([]Holding, error) {
	idx := func(name string) (int, error) { return ds.RequireColumn(name) }

	accountIdx, err := idx(holdings.ColumnAccountName)
	if err != nil {
		return nil, err
	}
	symbolIdx, err := idx(holdings.ColumnSymbol)
	if err != nil {
		return nil, err
	}
	quantityIdx, err := idx(holdings.ColumnQuantity)
	if err != nil {
		return nil, err
	}
	typeIdx, err := idx(holdings.ColumnType)
	if err != nil {
		return nil, err
	}

	out := make([]Holding, 0, ds.Len())
	for i, row := range ds.Rows {
		quantity, err := numericValue(row[quantityIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: quantity: %w", i, err)
		}
		h := Holding{
			AccountName: row[accountIdx].String(),
			Symbol:      row[symbolIdx].String(),
			Quantity:    quantity,
			Type:        row[typeIdx].String(),
		}
		if j, ok := ds.ColumnIndex(colDescription); ok {
			h.Description = row[j].String()
		}
		for _, field := range []struct {
			column string
			dst    *float64
		}{
			{holdings.ColumnLastPrice, &h.LastPrice},
			{colLastPriceChange, &h.LastPriceChange},
			{holdings.ColumnCurrentValue, &h.CurrentValue},
			{colTodaysGainDollar, &h.TodaysGainLossDollar},
			{colTodaysGainPercent, &h.TodaysGainLossPct},
			{holdings.ColumnTotalGainDollar, &h.TotalGainLossDollar},
			{colTotalGainPercent, &h.TotalGainLossPct},
			{colPercentOfAccount, &h.PercentOfAccount},
			{colCostBasisTotal, &h.CostBasisTotal},
			{holdings.ColumnCostBasisPerShare, &h.CostBasisPerShare},
		} {
			j, ok := ds.ColumnIndex(field.column)
			if !ok {
				continue
			}
			v, err := numericValue(row[j])
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", i, field.column, err)
			}
			*field.dst = v
		}
		out = append(out, h)
	}
	return out, nil
}

// numericValue reads a cell that is expected to carry a number. Raw text
// numbers (quantity is outside the cleaner's coercion range) are parsed here.
func numericValue(cell holdings.Cell) (float64, error) {
	if cell.Numeric {
		return cell.Number, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell.Text), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not numeric", cell.Text)
	}
	return v, nil
}
