// Package store holds the client-side state of a MoneyWise session: the
// active user's domain collections, their persistence to a key-value storage
// namespace, and the gateway calls to the backend services. It is the Go
// rendition of the SPA's reactive store, built as an injected object so
// independent sessions can coexist in one process.
package store

import (
	"github.com/moneywise/moneywise/internal/model"
)

// PersistedState is the bundle of domain collections scoped to one user.
// This is exactly what gets serialized into the user's storage namespace.
type PersistedState struct {
	Transactions  []model.Transaction
	Budgets       []model.Budget
	Goals         []model.Goal
	SocialCircles []model.SocialCircle
	AICompanion   model.AICompanion
}

// DefaultState is the well-formed baseline every first-time user starts from.
func DefaultState() PersistedState {
	return PersistedState{
		Transactions:  []model.Transaction{},
		Budgets:       []model.Budget{},
		Goals:         []model.Goal{},
		SocialCircles: []model.SocialCircle{},
		AICompanion: model.AICompanion{
			Personality: model.PersonalitySupportive,
			Messages:    []model.CompanionMessage{},
		},
	}
}

// DefaultHealthScore is the score shown before any budgets or goals exist.
const DefaultHealthScore = 75

func NewProfile(id, name, email string) *model.Profile {
	return &model.Profile{
		ID:                   id,
		Name:                 name,
		Email:                email,
		FinancialHealthScore: DefaultHealthScore,
		Preferences:          model.DefaultPreferences(),
	}
}
