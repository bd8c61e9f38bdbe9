package expenses

import "time"

// Expense is one operating cost not tied to a specific order.
type Expense struct {
	ExpenseID   int64     `json:"expense_id"`
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Category    *string   `json:"category"`
	Vendor      *string   `json:"vendor"`
	Notes       *string   `json:"notes"`
	ReceiptPath *string   `json:"receipt_path"`
	DropID      *int64    `json:"drop_id"`
	DropName    *string   `json:"drop_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ExpenseInput is the write shape for expenses.
type ExpenseInput struct {
	Date        string   `json:"date"`
	Amount      float64  `json:"amount" validate:"required,gt=0"`
	Category    *string  `json:"category"`
	Vendor      *string  `json:"vendor"`
	Notes       *string  `json:"notes"`
	ReceiptPath *string  `json:"receipt_path"`
	DropID      *int64   `json:"drop_id"`
}

// ListFilter narrows the expense list.
type ListFilter struct {
	DropID   *int64
	Category string
}
