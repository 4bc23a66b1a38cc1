package entity

import "time"

// AccountType categoría contable de una cuenta.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeRevenue   AccountType = "revenue"
	AccountTypeExpense   AccountType = "expense"
)

// Valid informa si t pertenece al conjunto cerrado de tipos.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// Códigos de las cuentas de sistema usadas por los asientos automáticos.
const (
	AccountCodeCash       = "1-1000"
	AccountCodeReceivable = "1-1200"
	AccountCodeDuesIncome = "4-1000"
)

// ChartOfAccount cuenta del plan de cuentas de un cluster. Code es único por cluster.
type ChartOfAccount struct {
	ID        string
	ClusterID string
	Code      string
	Name      string
	Type      AccountType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultAccount plantilla de cuenta de sistema.
type DefaultAccount struct {
	Code string
	Name string
	Type AccountType
}

// DefaultAccounts cuentas mínimas para postear tagihan, pagos y anulaciones.
var DefaultAccounts = []DefaultAccount{
	{Code: AccountCodeCash, Name: "Kas", Type: AccountTypeAsset},
	{Code: AccountCodeReceivable, Name: "Piutang Iuran", Type: AccountTypeAsset},
	{Code: AccountCodeDuesIncome, Name: "Pendapatan Iuran", Type: AccountTypeRevenue},
}

// LookupDefaultAccount busca la plantilla por código.
func LookupDefaultAccount(code string) (DefaultAccount, bool) {
	for _, a := range DefaultAccounts {
		if a.Code == code {
			return a, true
		}
	}
	return DefaultAccount{}, false
}
