package core

import (
	"strings"
	"time"
)

const (
	Income     TransactionType = "Income"
	Expense    TransactionType = "Expense"
	Investment TransactionType = "Investment"
)

type (
	TransactionType string

	// Transaction is a single income, expense or investment record owned by one user.
	Transaction struct {
		ID        string          `json:"id" dynamodbav:"id"`
		UserID    string          `json:"userId" dynamodbav:"userId"`
		Type      TransactionType `json:"type" dynamodbav:"type"`
		Category  string          `json:"category" dynamodbav:"category"`
		Amount    Amount          `json:"amount" dynamodbav:"amount"`
		Date      string          `json:"date" dynamodbav:"date"`
		Notes     string          `json:"notes" dynamodbav:"notes"`
		CreatedAt time.Time       `json:"createdAt" dynamodbav:"createdAt"`
		UpdatedAt *time.Time      `json:"updatedAt,omitempty" dynamodbav:"updatedAt,omitempty"`
	}

	// TransactionInput is the body of a create or partial update request.
	// Nil fields were not supplied by the caller.
	TransactionInput struct {
		Type     *string `json:"type,omitempty"`
		Category *string `json:"category,omitempty"`
		Amount   *Amount `json:"amount,omitempty"`
		Date     *string `json:"date,omitempty"`
		Notes    *string `json:"notes,omitempty"`
	}
)

// TransactionTypes lists the closed set of types in display order.
var TransactionTypes = []TransactionType{Income, Expense, Investment}

const (
	msgRequired    = "Type, category, amount, and date are required."
	msgInvalidType = "Type must be 'Income', 'Expense', or 'Investment'."
	msgAmount      = "Amount must be a positive number."
	msgDate        = "Invalid date format."
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Investment:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType matches s against the closed set, ignoring case and
// surrounding spaces.
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.TrimSpace(s)
	for _, t := range TransactionTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", NewValidationError(msgInvalidType)
}

// Time returns the parsed economic date. ok is false when the stored date
// cannot be parsed, in which case the Unix epoch is returned.
func (t Transaction) Time() (time.Time, bool) {
	ts, err := ParseDate(t.Date)
	if err != nil {
		return Epoch, false
	}
	return ts, true
}

// Owned reports whether the record belongs to userID.
func (t Transaction) Owned(userID string) bool {
	return t.UserID != "" && t.UserID == userID
}

// Validate checks a create request and returns the record it describes.
// The caller assigns ID, UserID and CreatedAt.
func (in TransactionInput) Validate() (Transaction, error) {
	typ := strings.TrimSpace(deref(in.Type))
	cat := strings.TrimSpace(deref(in.Category))
	date := strings.TrimSpace(deref(in.Date))
	if typ == "" || cat == "" || in.Amount == nil || *in.Amount == 0 || date == "" {
		return Transaction{}, NewValidationError(msgRequired)
	}
	if !TransactionType(typ).Valid() {
		return Transaction{}, NewValidationError(msgInvalidType)
	}
	if !in.Amount.Positive() {
		return Transaction{}, NewValidationError(msgAmount)
	}
	ts, err := ParseDate(date)
	if err != nil {
		return Transaction{}, NewValidationError(msgDate)
	}
	return Transaction{
		Type:     TransactionType(typ),
		Category: cat,
		Amount:   *in.Amount,
		Date:     FormatDate(ts),
		Notes:    deref(in.Notes),
	}, nil
}

// ValidatePatch checks the supplied fields of a partial update.
// Empty type, category and date values are ignored, matching the create form
// which sends every field.
func (in TransactionInput) ValidatePatch() error {
	if typ := strings.TrimSpace(deref(in.Type)); typ != "" && !TransactionType(typ).Valid() {
		return NewValidationError(msgInvalidType)
	}
	if in.Amount != nil && !in.Amount.Positive() {
		return NewValidationError(msgAmount)
	}
	if date := strings.TrimSpace(deref(in.Date)); date != "" {
		if _, err := ParseDate(date); err != nil {
			return NewValidationError(msgDate)
		}
	}
	return nil
}

// Apply returns t with the supplied fields of in applied and UpdatedAt set.
// in must have passed ValidatePatch.
func (in TransactionInput) Apply(t Transaction, now time.Time) Transaction {
	if typ := strings.TrimSpace(deref(in.Type)); typ != "" {
		t.Type = TransactionType(typ)
	}
	if cat := strings.TrimSpace(deref(in.Category)); cat != "" {
		t.Category = cat
	}
	if in.Amount != nil {
		t.Amount = *in.Amount
	}
	if date := strings.TrimSpace(deref(in.Date)); date != "" {
		if ts, err := ParseDate(date); err == nil {
			t.Date = FormatDate(ts)
		}
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
	}
	updated := now.UTC()
	t.UpdatedAt = &updated
	return t
}

// Empty reports whether no field was supplied.
func (in TransactionInput) Empty() bool {
	return in.Type == nil && in.Category == nil && in.Amount == nil && in.Date == nil && in.Notes == nil
}

// InputFrom builds a fully populated input from a record, used by clients
// that edit an existing transaction.
func InputFrom(t Transaction) TransactionInput {
	typ := string(t.Type)
	amount := t.Amount
	return TransactionInput{
		Type:     &typ,
		Category: &t.Category,
		Amount:   &amount,
		Date:     &t.Date,
		Notes:    &t.Notes,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
