package holdings

// Selection is the pair of user-chosen account and symbol subsets used to
// narrow the displayed holdings.
type Selection struct {
	Accounts []string `json:"accounts" validate:"required"`
	Symbols  []string `json:"symbols" validate:"required"`
}

// Filter returns the rows of a cleaned dataset whose account name is in the
// account selection AND whose symbol is in the symbol selection. Empty
// selections yield an empty result, not the full dataset. Relative row
// order is preserved and the input is never mutated, so filtering an
// already-filtered result with the same selections is a no-op.
func Filter(ds *Dataset, sel Selection) (*Dataset, error) {
	accountIdx, err := ds.RequireColumn(ColumnAccountName)
	if err != nil {
		return nil, err
	}
	symbolIdx, err := ds.RequireColumn(ColumnSymbol)
	if err != nil {
		return nil, err
	}

	accounts := toSet(sel.Accounts)
	symbols := toSet(sel.Symbols)

	out := NewDataset(ds.Columns)
	for _, row := range ds.Rows {
		if _, ok := accounts[row[accountIdx].String()]; !ok {
			continue
		}
		if _, ok := symbols[row[symbolIdx].String()]; !ok {
			continue
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// SymbolsForAccounts lists the distinct symbols held by the given accounts,
// in first-appearance order. The symbol picker offers only symbols the
// chosen accounts actually hold.
func SymbolsForAccounts(ds *Dataset, accounts []string) ([]string, error) {
	accountIdx, err := ds.RequireColumn(ColumnAccountName)
	if err != nil {
		return nil, err
	}
	symbolIdx, err := ds.RequireColumn(ColumnSymbol)
	if err != nil {
		return nil, err
	}

	set := toSet(accounts)
	seen := make(map[string]struct{})
	var out []string
	for _, row := range ds.Rows {
		if _, ok := set[row[accountIdx].String()]; !ok {
			continue
		}
		symbol := row[symbolIdx].String()
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	return out, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
