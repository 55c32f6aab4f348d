package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionIncome  = "income"
	TransactionExpense = "expense"
)

const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Emotion     string          `json:"emotion,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// Budget's Spent field is persisted for backwards compatibility with older
// saved state but is never trusted for display; spent amounts are recomputed
// from same-category expense transactions in the current period.
type Budget struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Spent    decimal.Decimal `json:"spent"`
	Period   string          `json:"period"`
}

type Goal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      time.Time       `json:"deadline"`
	Category      string          `json:"category"`
	Priority      string          `json:"priority"`
}

// Progress reports currentAmount/targetAmount as a percentage, clamped to
// [0, 100] for display. Storage keeps the unclamped amounts.
func (g Goal) Progress() float64 {
	if g.TargetAmount.IsZero() {
		return 0
	}
	ratio, _ := g.CurrentAmount.Div(g.TargetAmount).Float64()
	progress := ratio * 100
	if progress > 100 {
		return 100
	}
	if progress < 0 {
		return 0
	}
	return progress
}

type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

type Challenge struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	Participants []string  `json:"participants"`
}

// SocialCircle members are denormalized name records, not references to other
// user accounts.
type SocialCircle struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Members    []Member    `json:"members"`
	Challenges []Challenge `json:"challenges"`
}

const (
	MessageSuggestion  = "suggestion"
	MessageWarning     = "warning"
	MessageCelebration = "celebration"
	MessageReminder    = "reminder"
)

const (
	SyncPending   = "pending"
	SyncConfirmed = "confirmed"
	SyncFailed    = "failed"
)

// CompanionMessage is one turn of the AI companion conversation. SyncStatus
// tracks whether the message has reached the server-side chat log.
type CompanionMessage struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Type       string    `json:"type,omitempty"`
	SyncStatus string    `json:"syncStatus,omitempty"`
}

type AICompanion struct {
	Personality string             `json:"personality"`
	Messages    []CompanionMessage `json:"messages"`
}
