package ledger

import (
	"fmt"
)

// Posting validation codes
const (
	CodeEmptyLines          = "GL-EMPTY-LINES"
	CodeLineBothDebitCredit = "GL-LINE-BOTH-DEBIT-CREDIT"
	CodeLineNoAmount        = "GL-LINE-NO-AMOUNT"
	CodeLineNegativeAmount  = "GL-LINE-NEGATIVE-AMOUNT"
	CodeAccountNotFound     = "GL-ACCOUNT-NOT-FOUND"
	CodeAccountNotPosting   = "GL-ACCOUNT-NOT-POSTING"
	CodeImbalanced          = "GL-IMBALANCED"
	CodePeriodNotFound      = "GL-PERIOD-NOT-FOUND"
	CodePeriodNotOpen       = "GL-PERIOD-NOT-OPEN"
)

// LinePath returns the report path of a field on the i-th draft line
func LinePath(i int, field string) string {
	return fmt.Sprintf("lines[%d].%s", i, field)
}

// Paths of draft header fields
const (
	PathLines       = "lines"
	PathJournalDate = "journalDate"
)
