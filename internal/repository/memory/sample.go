package memory

import (
	"fmt"
	"time"

	"github.com/honeynil/finboard/internal/models"
	pkgerrors "github.com/honeynil/finboard/pkg/errors"
	"github.com/shopspring/decimal"
)

// SampleData is the fixed dataset the dashboard ships with.
type SampleData struct {
	Accounts      []models.Account
	Transactions  []models.Transaction
	Cards         []models.Card
	Beneficiaries []models.Beneficiary
	Billers       []models.Biller
	Payments      []models.PaymentRecord
}

type rawTx struct {
	id, account, card, date, desc, amount string
	typ                                   models.TransactionType
	status                                models.StatusType
	category, currency                    string
}

var sampleTransactions = []rawTx{
	{id: "txn_001", account: "acc_chk_001", date: "2024-07-22", desc: "Grocery Store Purchase", amount: "75.20", typ: models.TypeDebit, status: models.StatusCompleted, category: "Groceries"},
	{id: "txn_002", account: "acc_chk_001", date: "2024-07-21", desc: "Salary Deposit", amount: "2500.00", typ: models.TypeCredit, status: models.StatusCompleted, category: "Income"},
	{id: "txn_003", account: "acc_chk_001", date: "2024-07-20", desc: "Online Subscription", amount: "15.00", typ: models.TypeDebit, status: models.StatusCompleted, category: "Subscription"},
	{id: "txn_004", account: "acc_chk_001", date: "2024-07-19", desc: "ATM Withdrawal", amount: "100.00", typ: models.TypeDebit, status: models.StatusCompleted, category: "Cash"},
	{id: "txn_005", account: "acc_chk_001", date: "2024-07-18", desc: "Restaurant Bill", amount: "45.50", typ: models.TypeDebit, status: models.StatusPending, category: "Food"},
	{id: "txn_011", account: "acc_chk_001", date: "2024-07-17", desc: "Utility Bill Payment - Electricity", amount: "120.00", typ: models.TypeDebit, status: models.StatusCompleted, category: "Utilities"},
	{id: "txn_012", account: "acc_chk_001", date: "2024-07-16", desc: "Transfer to Savings", amount: "500.00", typ: models.TypeDebit, status: models.StatusCompleted, category: "Transfer"},
	{id: "txn_006", account: "acc_sav_002", date: "2024-07-21", desc: "Interest Earned", amount: "25.34", typ: models.TypeCredit, status: models.StatusCompleted, category: "Interest"},
	{id: "txn_007", account: "acc_sav_002", date: "2024-07-15", desc: "Initial Deposit", amount: "10000.00", typ: models.TypeCredit, status: models.StatusCompleted, category: "Deposit"},
	{id: "txn_013", account: "acc_sav_002", date: "2024-07-16", desc: "Transfer from Checking", amount: "500.00", typ: models.TypeCredit, status: models.StatusCompleted, category: "Transfer"},
	{id: "txn_008", account: "acc_cc_003", date: "2024-07-20", desc: "Amazon Purchase", amount: "120.99", typ: models.TypeDebit, status: models.StatusCompleted, category: "Shopping"},
	{id: "txn_009", account: "acc_cc_003", date: "2024-07-18", desc: "Gas Station", amount: "55.30", typ: models.TypeDebit, status: models.StatusCompleted, category: "Transport"},
	{id: "txn_010", account: "acc_cc_003", date: "2024-07-15", desc: "Payment Received", amount: "500.00", typ: models.TypeCredit, status: models.StatusCompleted, category: "Payment"},
	{id: "t1", card: "1", date: "2024-07-15", desc: "Amazon Marketplace Purchase", amount: "75.99", typ: models.TypeDebit, currency: "USD"},
	{id: "t2", card: "1", date: "2024-07-14", desc: "Starbucks Coffee", amount: "5.25", typ: models.TypeDebit, currency: "USD"},
	{id: "t3", card: "1", date: "2024-07-12", desc: "Refund from Zappos", amount: "22.50", typ: models.TypeCredit, currency: "USD"},
	{id: "t4", card: "2", date: "2024-07-16", desc: "United Airlines Ticket", amount: "450.00", typ: models.TypeDebit, currency: "USD"},
	{id: "t5", card: "2", date: "2024-07-13", desc: "The French Laundry", amount: "220.70", typ: models.TypeDebit, currency: "USD"},
	{id: "t6", card: "3", date: "2024-07-15", desc: "ATM Withdrawal - Main St", amount: "100.00", typ: models.TypeDebit, currency: "USD"},
	{id: "t7", card: "3", date: "2024-07-14", desc: "Whole Foods Market", amount: "65.70", typ: models.TypeDebit, currency: "USD"},
	{id: "t8", card: "1", date: "2024-07-10", desc: "Netflix Subscription", amount: "15.49", typ: models.TypeDebit, currency: "USD"},
}

// ParseDate parses a calendar date, rejecting anything that is not YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", pkgerrors.ErrInvalidDate, s)
	}
	return d, nil
}

func buildTransaction(r rawTx) (models.Transaction, error) {
	date, err := ParseDate(r.date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", r.id, err)
	}
	amount, err := decimal.NewFromString(r.amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", r.id, err)
	}
	if amount.IsNegative() {
		return models.Transaction{}, fmt.Errorf("transaction %s: %w", r.id, pkgerrors.ErrNegativeAmount)
	}
	return models.Transaction{
		ID:          r.id,
		AccountID:   r.account,
		CardID:      r.card,
		Date:        date,
		Description: r.desc,
		Amount:      amount,
		Type:        r.typ,
		Status:      r.status,
		Category:    r.category,
		Currency:    r.currency,
	}, nil
}

// LoadSampleData builds the sample dataset, validating every transaction.
func LoadSampleData() (*SampleData, error) {
	seen := make(map[string]bool, len(sampleTransactions))
	txs := make([]models.Transaction, 0, len(sampleTransactions))
	for _, r := range sampleTransactions {
		if seen[r.id] {
			return nil, fmt.Errorf("duplicate transaction id %s", r.id)
		}
		seen[r.id] = true
		t, err := buildTransaction(r)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}

	payments := []models.PaymentRecord{
		{ID: "hist1", Date: mustDate("2024-07-15"), Kind: models.PaymentBill, Description: "City Water Dept.", Amount: decimal.RequireFromString("75.50"), Status: "Completed"},
		{ID: "hist2", Date: mustDate("2024-07-12"), Kind: models.PaymentTransfer, Description: "To John Smith", Amount: decimal.RequireFromString("500.00"), Status: "Completed"},
		{ID: "hist3", Date: mustDate("2024-07-10"), Kind: models.PaymentBill, Description: "Speedy Internet Inc.", Amount: decimal.RequireFromString("59.99"), Status: "Completed"},
		{ID: "hist4", Date: mustDate("2024-07-05"), Kind: models.PaymentTransfer, Description: "External Fund Transfer", Amount: decimal.RequireFromString("1200.00"), Status: "Pending"},
	}

	return &SampleData{
		Accounts: []models.Account{
			{ID: "acc_chk_001", Name: "Primary Checking", Type: "Checking Account", Number: "123456789012", CurrentBalance: decimal.RequireFromString("5210.75"), CurrencyCode: "USD"},
			{ID: "acc_sav_002", Name: "High-Yield Savings", Type: "Savings Account", Number: "987654321098", CurrentBalance: decimal.RequireFromString("25340.12"), CurrencyCode: "USD"},
			{ID: "acc_cc_003", Name: "Platinum Rewards Card", Type: "Credit Card", Number: "456789012345", CurrentBalance: decimal.RequireFromString("-750.50"), CurrencyCode: "USD"},
		},
		Transactions: txs,
		Cards: []models.Card{
			{ID: "1", Name: "Visa Signature Rewards", Last4: "1234", Expiry: "12/25", Network: models.NetworkVisa, StatusText: models.CardStatusActive, AvailableCredit: "$10,000.00", CardHolder: "John Doe", IssueDate: "12/21"},
			{ID: "2", Name: "Mastercard World Elite", Last4: "5678", Expiry: "06/27", Network: models.NetworkMastercard, StatusText: models.CardStatusFrozen, Locked: true, AvailableCredit: "$14,500.00", CardHolder: "John Doe", IssueDate: "06/23"},
			{ID: "3", Name: "Checking Account Debit Card", Last4: "9012", Expiry: "03/26", Network: models.NetworkDebit, StatusText: models.CardStatusActive, Balance: "$2,500.75", CardHolder: "John Doe", IssueDate: "03/22"},
		},
		Beneficiaries: []models.Beneficiary{
			{ID: "ben1", Name: "John Smith (Savings)", Details: "Bank ABC - Acct 987654321"},
			{ID: "ben2", Name: "Utility Power Co.", Details: "Biller ID 100200"},
			{ID: "ben3", Name: "Alice Brown (External)", Details: "XYZ Bank - Acct 112233445"},
		},
		Billers: []models.Biller{
			{ID: "bill1", Name: "City Water Dept.", Category: "Utilities"},
			{ID: "bill2", Name: "Speedy Internet Inc.", Category: "Internet"},
			{ID: "bill3", Name: "Global Credit Card", Category: "Credit Card"},
		},
		Payments: payments,
	}, nil
}

func mustDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
