package store

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneywise/moneywise/internal/model"
)

// lowSpendingThreshold separates frugal recent spending from the rest when
// the supportive personality looks for something to celebrate. Amounts are
// in the user's base currency (IDR by default).
var lowSpendingThreshold = decimal.NewFromInt(100000)

type insight struct {
	Content string
	Type    string
}

// generateInsight produces a scripted, personality-flavored observation from
// the last five transactions, the budgets, and the goals. No AI service is
// involved; the output is deterministic for a given state.
func generateInsight(state PersistedState) insight {
	recent := state.Transactions
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}

	switch state.AICompanion.Personality {
	case model.PersonalityStrict:
		return strictInsight(state, recent)
	case model.PersonalityAnalytical:
		return analyticalInsight(recent)
	default:
		return supportiveInsight(state, recent)
	}
}

func supportiveInsight(state PersistedState, recent []model.Transaction) insight {
	for _, g := range state.Goals {
		if g.Progress() > 50 {
			return insight{
				Content: "Great progress on your goals! You're doing amazing. Keep up the consistent effort! 🌟",
				Type:    model.MessageCelebration,
			}
		}
	}

	total, count := recentExpenses(recent)
	if count > 0 {
		avg := total.Div(decimal.NewFromInt(int64(count)))
		if avg.LessThan(lowSpendingThreshold) {
			return insight{
				Content: "I noticed you've been spending wisely lately. Your financial discipline is really paying off! 💪",
				Type:    model.MessageCelebration,
			}
		}
	}

	return insight{
		Content: "Every small step counts! Consider setting a daily spending limit to help reach your goals faster.",
		Type:    model.MessageSuggestion,
	}
}

func strictInsight(state PersistedState, recent []model.Transaction) insight {
	overspent := 0
	now := time.Now()
	for _, b := range state.Budgets {
		if budgetSpent(b, state.Transactions, now).GreaterThan(b.Limit) {
			overspent++
		}
	}
	if overspent > 0 {
		return insight{
			Content: fmt.Sprintf("You've overspent on %d budget categories. Time to tighten up and get back on track.", overspent),
			Type:    model.MessageWarning,
		}
	}

	for _, g := range state.Goals {
		if g.Progress() < 20 {
			return insight{
				Content: "Your goals are barely progressing. You need to increase your savings rate immediately.",
				Type:    model.MessageWarning,
			}
		}
	}

	return insight{
		Content: "Good discipline. Now push harder - you can save even more than you think.",
		Type:    model.MessageSuggestion,
	}
}

func analyticalInsight(recent []model.Transaction) insight {
	byCategory := map[string]decimal.Decimal{}
	total := decimal.Zero
	for _, t := range recent {
		if t.Type != model.TransactionExpense {
			continue
		}
		byCategory[t.Category] = byCategory[t.Category].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	if len(byCategory) == 0 || total.IsZero() {
		return insight{
			Content: "Insufficient data for analysis. Please add more transactions to get personalized insights.",
			Type:    model.MessageReminder,
		}
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	// Sort by descending amount, name as tiebreak so the result is stable
	sort.Slice(categories, func(i, j int) bool {
		a, b := byCategory[categories[i]], byCategory[categories[j]]
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return categories[i] < categories[j]
	})

	top := categories[0]
	share, _ := byCategory[top].Div(total).Mul(decimal.NewFromInt(100)).Float64()
	return insight{
		Content: fmt.Sprintf("Analysis: %s accounts for %.1f%% of your spending. Consider optimizing this category for better financial efficiency.", top, share),
		Type:    model.MessageSuggestion,
	}
}

func recentExpenses(transactions []model.Transaction) (decimal.Decimal, int) {
	total := decimal.Zero
	count := 0
	for _, t := range transactions {
		if t.Type == model.TransactionExpense {
			total = total.Add(t.Amount)
			count++
		}
	}
	return total, count
}
