package ledger

import (
	"github.com/google/uuid"
)

// AccountType classifies a GL account
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeIncome    AccountType = "INCOME"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// IsValid checks if the account type is valid
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// NormalBalance returns the side on which the account type normally carries its balance
func (t AccountType) NormalBalance() BalanceSide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return BalanceSideDebit
	default:
		return BalanceSideCredit
	}
}

// BalanceSide is the debit or credit side of an account
type BalanceSide string

const (
	BalanceSideDebit  BalanceSide = "DEBIT"
	BalanceSideCredit BalanceSide = "CREDIT"
)

// SubLedgerType binds a control account to the sub-ledger it summarises
type SubLedgerType string

const (
	SubLedgerNone SubLedgerType = ""
	SubLedgerAR   SubLedgerType = "AR"
	SubLedgerAP   SubLedgerType = "AP"
)

// Account is a chart-of-accounts entry. The kernel only reads accounts;
// they are owned by chart-of-accounts administration.
type Account struct {
	ID               uuid.UUID
	TenantID         uuid.UUID
	Code             string
	Name             string
	Type             AccountType
	NormalBalance    BalanceSide
	IsPostingAllowed bool
	IsControlAccount bool
	SubLedgerType    SubLedgerType
}

// NewAccount creates a posting account whose normal balance follows its type
func NewAccount(tenantID uuid.UUID, id uuid.UUID, code, name string, accountType AccountType) *Account {
	return &Account{
		ID:               id,
		TenantID:         tenantID,
		Code:             code,
		Name:             name,
		Type:             accountType,
		NormalBalance:    accountType.NormalBalance(),
		IsPostingAllowed: true,
	}
}

// AsControl marks the account as the control account of a sub-ledger
func (a *Account) AsControl(subLedger SubLedgerType) *Account {
	a.IsControlAccount = true
	a.SubLedgerType = subLedger
	return a
}
