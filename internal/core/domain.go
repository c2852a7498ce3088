package core

import (
	"errors"
	"strings"
)

const (
	FlagExpenditure Flag = "0"
	FlagIncome      Flag = "1"
)

// CategoryIncome is the fixed category label carried by every income record.
const CategoryIncome = "Income"

// CategoryAll is the filter directive that selects every expenditure record.
const CategoryAll = "ALL"

// CreatedAtLayout is the ledger creation timestamp format (DDMMYYYYhhmmss).
const CreatedAtLayout = "02012006150405"

type (
	// Flag partitions records into income ("1") and expenditure ("0").
	Flag string

	// Record is one dated, categorized, signed monetary entry.
	// Index is assigned at insertion time as the count of records already
	// present and is re-derived on every save; it is not a stable ID.
	Record struct {
		Index    int
		Date     Date
		Category string
		Amount   Amount
		Flag     Flag
	}

	// Ledger is a named collection of records plus metadata, the unit of
	// load/save. Records are held in working order, newest first; the
	// persistence layer reverses back to insertion order on save.
	Ledger struct {
		Author    string
		FileName  string
		CreatedAt string
		Records   []Record
	}
)

var (
	ErrNotFound      = errors.New("ledger not found")
	ErrCorrupt       = errors.New("ledger corrupt")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidFlag   = errors.New("invalid flag")
	ErrNoData        = errors.New("no data")
	ErrEmptyCategory = errors.New("empty category")
)

// expenditureCategories is the closed set offered by the entry surface.
// Records carrying other labels still aggregate, as their own group.
var expenditureCategories = []string{"Food", "Clothes", "Party", "Fuel", "Rent", "Sport"}

// ExpenditureCategories returns the known expenditure category labels.
func ExpenditureCategories() []string {
	return append([]string(nil), expenditureCategories...)
}

// KnownCategory reports whether the label belongs to the closed
// expenditure set or is the income label.
func KnownCategory(label string) bool {
	if label == CategoryIncome {
		return true
	}
	for _, c := range expenditureCategories {
		if c == label {
			return true
		}
	}
	return false
}

func ParseFlag(s string) (Flag, error) {
	switch Flag(s) {
	case FlagIncome:
		return FlagIncome, nil
	case FlagExpenditure:
		return FlagExpenditure, nil
	}
	return "", ErrInvalidFlag
}

func (f Flag) Valid() bool {
	return f == FlagIncome || f == FlagExpenditure
}

func (r Record) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if !r.Flag.Valid() {
		return ErrInvalidFlag
	}
	if r.Flag == FlagIncome && r.Category != CategoryIncome {
		return errors.New("income records must use the Income category")
	}
	return nil
}

// Insert prepends the record so the freshest entry is first in working
// order. The index is the count of records present at insertion time.
func (l *Ledger) Insert(r Record) {
	r.Index = len(l.Records)
	l.Records = append([]Record{r}, l.Records...)
}
