package api

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The server binds amounts to BigDecimal/Long; send them as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Location is the zone assumed for the server's zone-less timestamps.
// Set it once at startup, before any request is made.
var Location = time.Local

const (
	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
)

// DateTime is a wall-clock timestamp as the server exchanges it
// (2006-01-02T15:04:05, optional fraction, optional zone on input).
type DateTime struct {
	time.Time
}

// NewDateTime wraps t.
func NewDateTime(t time.Time) DateTime { return DateTime{Time: t} }

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.In(Location).Format(dateTimeLayout))), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("datetime: %w", err)
	}
	t, err := parseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(Location), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", dateTimeLayout, "2006-01-02T15:04", dateLayout} {
		if t, err := time.ParseInLocation(layout, s, Location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("datetime: unrecognised value %q", s)
}

// Date is a calendar day (2006-01-02) anchored at midnight in Location.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	t = t.In(Location)
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)}
}

// ParseDate parses 2006-01-02.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), Location)
	if err != nil {
		return Date{}, fmt.Errorf("date: %w", err)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	// some endpoints send a full timestamp where a day is meant
	t, err := parseDateTime(s)
	if err != nil {
		return err
	}
	*d = NewDate(t)
	return nil
}

// TransactionType separates income from expense.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// Valid reports whether t is a known type.
func (t TransactionType) Valid() bool { return t == Income || t == Expense }

// ParseTransactionType accepts the wire names case-insensitively, plus the
// short forms "in" and "out".
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INCOME", "IN":
		return Income, nil
	case "EXPENSE", "OUT":
		return Expense, nil
	}
	return "", fmt.Errorf("unknown transaction type %q (want INCOME or EXPENSE)", s)
}

// User is the signed-in person.
type User struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Age       int      `json:"age"`
	CreatedAt DateTime `json:"createdAt"`
	UpdatedAt DateTime `json:"updatedAt"`
}

// UserUpdateRequest changes profile fields; nil fields are left alone.
type UserUpdateRequest struct {
	Name *string `json:"name,omitempty"`
	Age  *int    `json:"age,omitempty"`
}

// Account is a bank account with its server-maintained balance.
type Account struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"userId"`
	BankName  string          `json:"bankName"`
	Alias     string          `json:"alias"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt DateTime        `json:"createdAt"`
	UpdatedAt DateTime        `json:"updatedAt"`
}

// DisplayName prefers the alias.
func (a Account) DisplayName() string {
	if strings.TrimSpace(a.Alias) != "" {
		return a.Alias
	}
	return a.BankName
}

// AccountCreateRequest opens an account. Balance defaults to zero server-side.
type AccountCreateRequest struct {
	BankName string           `json:"bankName"`
	Alias    string           `json:"alias,omitempty"`
	Balance  *decimal.Decimal `json:"balance,omitempty"`
}

// Category labels transactions of one type.
type Category struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Type TransactionType `json:"type"`
	Icon string          `json:"icon"`
}

// CategoryCreateRequest adds a category.
type CategoryCreateRequest struct {
	Name string          `json:"name"`
	Type TransactionType `json:"type"`
	Icon string          `json:"icon,omitempty"`
}

// CategoryUpdateRequest renames or re-icons a category.
type CategoryUpdateRequest struct {
	Name *string `json:"name,omitempty"`
	Icon *string `json:"icon,omitempty"`
}

// Transaction is one income or expense entry.
type Transaction struct {
	ID              int64           `json:"id"`
	AccountID       int64           `json:"accountId"`
	AccountAlias    string          `json:"accountAlias"`
	AccountBankName string          `json:"accountBankName"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      int64           `json:"categoryId"`
	CategoryName    string          `json:"categoryName"`
	Memo            string          `json:"memo,omitempty"`
	TransactionDate DateTime        `json:"transactionDate"`
	CreatedAt       DateTime        `json:"createdAt"`
	UpdatedAt       DateTime        `json:"updatedAt"`
}

// TransactionCreateRequest records a transaction.
type TransactionCreateRequest struct {
	AccountID       int64           `json:"accountId"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	CategoryID      int64           `json:"categoryId"`
	Memo            string          `json:"memo,omitempty"`
	TransactionDate DateTime        `json:"transactionDate"`
}

// TransactionUpdateRequest is a partial update.
type TransactionUpdateRequest struct {
	AccountID       *int64           `json:"accountId,omitempty"`
	Type            *TransactionType `json:"type,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	CategoryID      *int64           `json:"categoryId,omitempty"`
	Memo            *string          `json:"memo,omitempty"`
	TransactionDate *DateTime        `json:"transactionDate,omitempty"`
}

// TransactionPage is one page of the paginated listing.
type TransactionPage struct {
	Content       []Transaction `json:"content"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	Size          int           `json:"size"`
	Number        int           `json:"number"`
}

// HasNext reports whether another page follows.
func (p TransactionPage) HasNext() bool { return p.Number+1 < p.TotalPages }

// CategoryAmount is a category's share of a period total.
type CategoryAmount struct {
	CategoryID   int64           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Amount       decimal.Decimal `json:"amount"`
	Percentage   float64         `json:"percentage"`
}

// WeeklyExpense is one week row of a month.
type WeeklyExpense struct {
	Week      int             `json:"week"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	Balance   decimal.Decimal `json:"balance"`
}

// MonthlyStatistics summarises one month.
type MonthlyStatistics struct {
	Year             int              `json:"year"`
	Month            int              `json:"month"`
	TotalIncome      decimal.Decimal  `json:"totalIncome"`
	TotalExpense     decimal.Decimal  `json:"totalExpense"`
	Balance          decimal.Decimal  `json:"balance"`
	CategoryExpenses []CategoryAmount `json:"categoryExpenses"`
	CategoryIncomes  []CategoryAmount `json:"categoryIncomes"`
	WeeklyExpenses   []WeeklyExpense  `json:"weeklyExpenses"`
}

// DailyExpense is one day row of a week.
type DailyExpense struct {
	Date    Date            `json:"date"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// WeeklyStatistics summarises one week.
type WeeklyStatistics struct {
	StartDate        Date             `json:"startDate"`
	EndDate          Date             `json:"endDate"`
	TotalIncome      decimal.Decimal  `json:"totalIncome"`
	TotalExpense     decimal.Decimal  `json:"totalExpense"`
	Balance          decimal.Decimal  `json:"balance"`
	DailyExpenses    []DailyExpense   `json:"dailyExpenses"`
	CategoryExpenses []CategoryAmount `json:"categoryExpenses"`
	CategoryIncomes  []CategoryAmount `json:"categoryIncomes"`
}

// MonthlyExpense is one month row of a year.
type MonthlyExpense struct {
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// YearlyStatistics summarises one year.
type YearlyStatistics struct {
	Year             int              `json:"year"`
	TotalIncome      decimal.Decimal  `json:"totalIncome"`
	TotalExpense     decimal.Decimal  `json:"totalExpense"`
	Balance          decimal.Decimal  `json:"balance"`
	MonthlyExpenses  []MonthlyExpense `json:"monthlyExpenses"`
	CategoryExpenses []CategoryAmount `json:"categoryExpenses"`
	CategoryIncomes  []CategoryAmount `json:"categoryIncomes"`
}

// ParseResult is the assistant's reading of a free-text prompt.
type ParseResult struct {
	Type         TransactionType `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	CategoryName string          `json:"categoryName"`
	CategoryID   *int64          `json:"categoryId"`
	Memo         string          `json:"memo"`
	Confidence   float64         `json:"confidence"`
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"errorMessage"`
}

// CategoryData is a category the chat assistant proposes to create.
type CategoryData struct {
	Name string          `json:"name"`
	Type TransactionType `json:"type"`
	Icon string          `json:"icon,omitempty"`
}

// AccountData is an account the chat assistant proposes to create.
type AccountData struct {
	BankName string          `json:"bankName"`
	Alias    string          `json:"alias,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
}

// Chat action types.
const (
	ActionChat        = "CHAT"
	ActionTransaction = "TRANSACTION"
	ActionCategory    = "CATEGORY"
	ActionAccount     = "ACCOUNT"
	ActionHelp        = "HELP"
)

// ChatReply is the assistant's answer to a chat message.
type ChatReply struct {
	Message        string        `json:"message"`
	ActionType     string        `json:"actionType"`
	HasTransaction bool          `json:"hasTransaction"`
	Transaction    *ParseResult  `json:"transaction,omitempty"`
	Category       *CategoryData `json:"category,omitempty"`
	Account        *AccountData  `json:"account,omitempty"`
}

// Chat roles.
const (
	RoleUser      = "USER"
	RoleAssistant = "ASSISTANT"
)

// ChatMessage is a stored line of the conversation.
type ChatMessage struct {
	ID          int64         `json:"id,omitempty"`
	Role        string        `json:"role"`
	Content     string        `json:"content"`
	ActionType  string        `json:"actionType,omitempty"`
	Transaction *ParseResult  `json:"transaction,omitempty"`
	Category    *CategoryData `json:"category,omitempty"`
	Account     *AccountData  `json:"account,omitempty"`
	Timestamp   DateTime      `json:"timestamp"`
}

// LoginRequest signs in with email and password.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest registers a user.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// TokenResponse is issued by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// EmailAvailability answers check-email.
type EmailAvailability struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}
