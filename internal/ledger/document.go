package ledger

import (
	"fmt"

	"moneysaver/internal/core"
)

// document is the persisted ledger shape: metadata plus five parallel
// arrays under items. Older files carry the author under
// "name_of_author", newer ones under "author"; both are accepted.
type document struct {
	NameOfAuthor string `json:"name_of_author,omitempty"`
	Author       string `json:"author,omitempty"`
	FileName     string `json:"file_name"`
	Datetime     string `json:"datetime"`
	Items        items  `json:"items"`
}

type items struct {
	Index             []int    `json:"index"`
	Date              []string `json:"date"`
	Type              []string `json:"type"`
	Price             []string `json:"price"`
	IncomeExpenditure []string `json:"income_expenditure"`
}

// toLedger zips the parallel arrays into records. The arrays must have
// equal length and every date must parse; either violation corrupts the
// whole load rather than silently dropping records. Non-numeric prices
// pass through flagged invalid. File order is insertion order; the
// returned working copy is reversed so the freshest record comes first.
func (doc *document) toLedger() (*core.Ledger, error) {
	n := len(doc.Items.Index)
	if len(doc.Items.Date) != n || len(doc.Items.Type) != n ||
		len(doc.Items.Price) != n || len(doc.Items.IncomeExpenditure) != n {
		return nil, fmt.Errorf("%w: items arrays have unequal lengths", core.ErrCorrupt)
	}

	author := doc.Author
	if author == "" {
		author = doc.NameOfAuthor
	}

	led := &core.Ledger{
		Author:    author,
		FileName:  doc.FileName,
		CreatedAt: doc.Datetime,
	}
	for i := n - 1; i >= 0; i-- {
		date, err := core.ParseDate(doc.Items.Date[i])
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", core.ErrCorrupt, doc.Items.Index[i], err)
		}
		flag, err := core.ParseFlag(doc.Items.IncomeExpenditure[i])
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", core.ErrCorrupt, doc.Items.Index[i], err)
		}
		led.Records = append(led.Records, core.Record{
			Index:    doc.Items.Index[i],
			Date:     date,
			Category: doc.Items.Type[i],
			Amount:   core.ParseAmount(doc.Items.Price[i]),
			Flag:     flag,
		})
	}
	return led, nil
}

// fromLedger reverses the working order back to insertion order and
// reindexes records 0..N-1, so the file always reads oldest first with
// contiguous indexes.
func fromLedger(led *core.Ledger) *document {
	n := len(led.Records)
	doc := &document{
		Author:   led.Author,
		FileName: led.FileName,
		Datetime: led.CreatedAt,
		Items: items{
			Index:             make([]int, 0, n),
			Date:              make([]string, 0, n),
			Type:              make([]string, 0, n),
			Price:             make([]string, 0, n),
			IncomeExpenditure: make([]string, 0, n),
		},
	}
	for i := n - 1; i >= 0; i-- {
		r := led.Records[i]
		doc.Items.Index = append(doc.Items.Index, n-1-i)
		doc.Items.Date = append(doc.Items.Date, r.Date.String())
		doc.Items.Type = append(doc.Items.Type, r.Category)
		doc.Items.Price = append(doc.Items.Price, r.Amount.String())
		doc.Items.IncomeExpenditure = append(doc.Items.IncomeExpenditure, string(r.Flag))
	}
	return doc
}
