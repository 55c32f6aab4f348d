package model

import (
	"github.com/shopspring/decimal"
)

const (
	PersonalitySupportive = "supportive"
	PersonalityStrict     = "strict"
	PersonalityAnalytical = "analytical"
)

// Preferences is the per-user settings bundle kept client-side.
type Preferences struct {
	Currency      string `json:"currency"`
	Notifications bool   `json:"notifications"`
	DarkMode      bool   `json:"darkMode"`
	AIPersonality string `json:"aiPersonality"`
}

// Profile is the session record: the client-side view of the logged-in user.
// The financial health score is derived and recomputed, never authoritative.
type Profile struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Email                string          `json:"email"`
	FinancialHealthScore int             `json:"financialHealthScore"`
	MonthlyIncome        decimal.Decimal `json:"monthlyIncome"`
	Preferences          Preferences     `json:"preferences"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Currency:      "IDR",
		Notifications: true,
		DarkMode:      false,
		AIPersonality: PersonalitySupportive,
	}
}
