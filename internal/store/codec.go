package store

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneywise/moneywise/internal/model"
)

// The storage shape mirrors the domain shape except that every date-bearing
// field is an ISO-8601 string; the storage format has no native date type.
// Field names match the keys the SPA historically wrote, so existing blobs
// deserialize cleanly.

type serializedTransaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
	Type        string          `json:"type"`
	Emotion     string          `json:"emotion,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

type serializedBudget struct {
	ID       string          `json:"id"`
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Spent    decimal.Decimal `json:"spent"`
	Period   string          `json:"period"`
}

type serializedGoal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Deadline      string          `json:"deadline"`
	Category      string          `json:"category"`
	Priority      string          `json:"priority"`
}

type serializedChallenge struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Participants []string `json:"participants"`
}

type serializedCircle struct {
	ID         string                `json:"id"`
	Name       string                `json:"name"`
	Members    []model.Member        `json:"members"`
	Challenges []serializedChallenge `json:"challenges"`
}

type serializedMessage struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	Type       string `json:"type,omitempty"`
	SyncStatus string `json:"syncStatus,omitempty"`
}

type serializedCompanion struct {
	Personality string              `json:"personality"`
	Messages    []serializedMessage `json:"messages"`
}

// SerializedState is the storage-safe form of PersistedState.
type SerializedState struct {
	Transactions  []serializedTransaction `json:"transactions"`
	Budgets       []serializedBudget      `json:"budgets"`
	Goals         []serializedGoal        `json:"goals"`
	SocialCircles []serializedCircle      `json:"socialCircles"`
	AICompanion   serializedCompanion     `json:"aiCompanion"`
}

// Serialize maps the domain state to its storage shape. Timestamps are
// truncated to whole seconds by the string format; everything else passes
// through unchanged.
func Serialize(state PersistedState) SerializedState {
	out := SerializedState{
		Transactions:  make([]serializedTransaction, 0, len(state.Transactions)),
		Budgets:       make([]serializedBudget, 0, len(state.Budgets)),
		Goals:         make([]serializedGoal, 0, len(state.Goals)),
		SocialCircles: make([]serializedCircle, 0, len(state.SocialCircles)),
		AICompanion: serializedCompanion{
			Personality: state.AICompanion.Personality,
			Messages:    make([]serializedMessage, 0, len(state.AICompanion.Messages)),
		},
	}

	for _, t := range state.Transactions {
		out.Transactions = append(out.Transactions, serializedTransaction{
			ID:          t.ID,
			Amount:      t.Amount,
			Description: t.Description,
			Category:    t.Category,
			Date:        formatDate(t.Date),
			Type:        t.Type,
			Emotion:     t.Emotion,
			Tags:        t.Tags,
		})
	}

	for _, b := range state.Budgets {
		out.Budgets = append(out.Budgets, serializedBudget(b))
	}

	for _, g := range state.Goals {
		out.Goals = append(out.Goals, serializedGoal{
			ID:            g.ID,
			Name:          g.Name,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			Deadline:      formatDate(g.Deadline),
			Category:      g.Category,
			Priority:      g.Priority,
		})
	}

	for _, c := range state.SocialCircles {
		circle := serializedCircle{
			ID:         c.ID,
			Name:       c.Name,
			Members:    c.Members,
			Challenges: make([]serializedChallenge, 0, len(c.Challenges)),
		}
		for _, ch := range c.Challenges {
			circle.Challenges = append(circle.Challenges, serializedChallenge{
				ID:           ch.ID,
				Title:        ch.Title,
				Description:  ch.Description,
				StartDate:    formatDate(ch.StartDate),
				EndDate:      formatDate(ch.EndDate),
				Participants: ch.Participants,
			})
		}
		out.SocialCircles = append(out.SocialCircles, circle)
	}

	for _, m := range state.AICompanion.Messages {
		out.AICompanion.Messages = append(out.AICompanion.Messages, serializedMessage{
			ID:         m.ID,
			Role:       m.Role,
			Content:    m.Content,
			Timestamp:  formatDate(m.Timestamp),
			Type:       m.Type,
			SyncStatus: m.SyncStatus,
		})
	}

	return out
}

// Deserialize is the inverse of Serialize with a deliberate leniency policy:
// an absent or unparsable date becomes the current time, a missing collection
// becomes an empty one, and a missing personality falls back to supportive.
// Corrupted or partially written storage degrades to defaults, never errors.
func Deserialize(s SerializedState) PersistedState {
	state := DefaultState()

	for _, t := range s.Transactions {
		state.Transactions = append(state.Transactions, model.Transaction{
			ID:          t.ID,
			Amount:      t.Amount,
			Description: t.Description,
			Category:    t.Category,
			Date:        parseDate(t.Date),
			Type:        t.Type,
			Emotion:     t.Emotion,
			Tags:        t.Tags,
		})
	}

	for _, b := range s.Budgets {
		state.Budgets = append(state.Budgets, model.Budget(b))
	}

	for _, g := range s.Goals {
		state.Goals = append(state.Goals, model.Goal{
			ID:            g.ID,
			Name:          g.Name,
			TargetAmount:  g.TargetAmount,
			CurrentAmount: g.CurrentAmount,
			Deadline:      parseDate(g.Deadline),
			Category:      g.Category,
			Priority:      g.Priority,
		})
	}

	for _, c := range s.SocialCircles {
		circle := model.SocialCircle{
			ID:         c.ID,
			Name:       c.Name,
			Members:    c.Members,
			Challenges: []model.Challenge{},
		}
		if circle.Members == nil {
			circle.Members = []model.Member{}
		}
		for _, ch := range c.Challenges {
			circle.Challenges = append(circle.Challenges, model.Challenge{
				ID:           ch.ID,
				Title:        ch.Title,
				Description:  ch.Description,
				StartDate:    parseDate(ch.StartDate),
				EndDate:      parseDate(ch.EndDate),
				Participants: ch.Participants,
			})
		}
		state.SocialCircles = append(state.SocialCircles, circle)
	}

	if s.AICompanion.Personality != "" {
		state.AICompanion.Personality = s.AICompanion.Personality
	}
	for _, m := range s.AICompanion.Messages {
		state.AICompanion.Messages = append(state.AICompanion.Messages, model.CompanionMessage{
			ID:         m.ID,
			Role:       m.Role,
			Content:    m.Content,
			Timestamp:  parseDate(m.Timestamp),
			Type:       m.Type,
			SyncStatus: m.SyncStatus,
		})
	}

	return state
}

func formatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now()
	}
	return t
}
