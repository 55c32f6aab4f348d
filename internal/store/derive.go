package store

import (
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneywise/moneywise/internal/model"
)

// BudgetSpent recomputes what a budget has consumed: the sum of expense
// transactions in the budget's category whose date falls in the current
// period. The stored Spent field is ignored.
func (s *Store) BudgetSpent(b model.Budget) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return budgetSpent(b, s.state.Transactions, time.Now())
}

func budgetSpent(b model.Budget, transactions []model.Transaction, now time.Time) decimal.Decimal {
	spent := decimal.Zero
	for _, t := range transactions {
		if t.Type != model.TransactionExpense || t.Category != b.Category {
			continue
		}
		if samePeriod(b.Period, t.Date, now) {
			spent = spent.Add(t.Amount)
		}
	}
	return spent
}

// samePeriod reports whether date falls in the same weekly, monthly, or
// yearly window as now. Weeks start on Monday.
func samePeriod(period string, date, now time.Time) bool {
	switch period {
	case model.PeriodWeekly:
		y1, w1 := date.ISOWeek()
		y2, w2 := now.ISOWeek()
		return y1 == y2 && w1 == w2
	case model.PeriodMonthly:
		return date.Year() == now.Year() && date.Month() == now.Month()
	case model.PeriodYearly:
		return date.Year() == now.Year()
	default:
		return date.Year() == now.Year() && date.Month() == now.Month()
	}
}

// FinancialHealthScore blends budget adherence and goal progress, each worth
// half the score. With no budgets adherence defaults to perfect, and with no
// goals progress defaults to half, so a brand-new user starts at 75.
func (s *Store) FinancialHealthScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return healthScore(s.state, time.Now())
}

func healthScore(state PersistedState, now time.Time) int {
	adherence := 1.0
	if len(state.Budgets) > 0 {
		within := 0
		for _, b := range state.Budgets {
			spent := budgetSpent(b, state.Transactions, now)
			if b.Limit.IsZero() || spent.LessThanOrEqual(b.Limit) {
				within++
			}
		}
		adherence = float64(within) / float64(len(state.Budgets))
	}

	progress := 0.5
	if len(state.Goals) > 0 {
		total := 0.0
		for _, g := range state.Goals {
			total += g.Progress() / 100
		}
		progress = total / float64(len(state.Goals))
	}

	return int(math.Round(50*adherence + 50*progress))
}

// RefreshHealthScore recomputes the score onto the session profile and
// persists the updated session record.
func (s *Store) RefreshHealthScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	score := healthScore(s.state, time.Now())
	if s.profile != nil {
		s.profile.FinancialHealthScore = score
		err := s.ns.SaveSession(s.profile)
		if err != nil {
			slog.Warn("failed to persist session record", "error", err, "user_id", s.profile.ID)
		}
	}
	return score
}
