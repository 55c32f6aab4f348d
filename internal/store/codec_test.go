package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/moneywise/moneywise/internal/model"
)

func TestSerializeRoundTrip(t *testing.T) {
	date := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	state := PersistedState{
		Transactions: []model.Transaction{
			{
				ID:          "t1",
				Amount:      decimal.NewFromInt(50000),
				Description: "Lunch",
				Category:    "Food",
				Date:        date,
				Type:        model.TransactionExpense,
				Emotion:     "happy",
				Tags:        []string{"work", "weekday"},
			},
		},
		Budgets: []model.Budget{
			{ID: "b1", Category: "Food", Limit: decimal.NewFromInt(2000000), Spent: decimal.NewFromInt(500000), Period: model.PeriodMonthly},
		},
		Goals: []model.Goal{
			{ID: "g1", Name: "Emergency Fund", TargetAmount: decimal.NewFromInt(10000000), CurrentAmount: decimal.NewFromInt(2500000), Deadline: date, Category: "savings", Priority: model.PriorityHigh},
		},
		SocialCircles: []model.SocialCircle{
			{
				ID:      "c1",
				Name:    "Family",
				Members: []model.Member{{ID: "m1", Name: "Ana"}},
				Challenges: []model.Challenge{
					{ID: "ch1", Title: "No-spend week", StartDate: date, EndDate: date.AddDate(0, 0, 7), Participants: []string{"m1"}},
				},
			},
		},
		AICompanion: model.AICompanion{
			Personality: model.PersonalityAnalytical,
			Messages: []model.CompanionMessage{
				{ID: "msg1", Role: model.RoleUser, Content: "hi", Timestamp: date, SyncStatus: model.SyncConfirmed},
			},
		},
	}

	got := Deserialize(Serialize(state))

	if len(got.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(got.Transactions))
	}
	tx := got.Transactions[0]
	if !tx.Amount.Equal(state.Transactions[0].Amount) {
		t.Errorf("amount changed in round trip: %s", tx.Amount)
	}
	if !tx.Date.Equal(date) {
		t.Errorf("date changed in round trip: %s", tx.Date)
	}
	if tx.Emotion != "happy" || len(tx.Tags) != 2 {
		t.Errorf("optional fields lost: emotion=%q tags=%v", tx.Emotion, tx.Tags)
	}

	if len(got.Budgets) != 1 || !got.Budgets[0].Limit.Equal(state.Budgets[0].Limit) {
		t.Errorf("budget did not survive round trip: %+v", got.Budgets)
	}
	if len(got.Goals) != 1 || !got.Goals[0].Deadline.Equal(date) {
		t.Errorf("goal did not survive round trip: %+v", got.Goals)
	}
	if len(got.SocialCircles) != 1 || len(got.SocialCircles[0].Challenges) != 1 {
		t.Fatalf("social circle did not survive round trip: %+v", got.SocialCircles)
	}
	if !got.SocialCircles[0].Challenges[0].EndDate.Equal(date.AddDate(0, 0, 7)) {
		t.Errorf("challenge end date changed: %s", got.SocialCircles[0].Challenges[0].EndDate)
	}

	if got.AICompanion.Personality != model.PersonalityAnalytical {
		t.Errorf("personality changed: %q", got.AICompanion.Personality)
	}
	if len(got.AICompanion.Messages) != 1 || got.AICompanion.Messages[0].SyncStatus != model.SyncConfirmed {
		t.Errorf("messages did not survive round trip: %+v", got.AICompanion.Messages)
	}
}

func TestSerializeDatesAreStrings(t *testing.T) {
	state := DefaultState()
	state.Transactions = append(state.Transactions, model.Transaction{
		ID:     "t1",
		Amount: decimal.NewFromInt(100),
		Date:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Type:   model.TransactionExpense,
	})

	raw, err := json.Marshal(Serialize(state))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	err = json.Unmarshal(raw, &decoded)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	transactions := decoded["transactions"].([]any)
	first := transactions[0].(map[string]any)
	date, ok := first["date"].(string)
	if !ok {
		t.Fatalf("expected date to serialize as string, got %T", first["date"])
	}
	if date != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected date format: %q", date)
	}
}

func TestDeserializeLeniency(t *testing.T) {
	t.Run("bad date becomes current time", func(t *testing.T) {
		before := time.Now()
		got := Deserialize(SerializedState{
			Transactions: []serializedTransaction{{ID: "t1", Date: "not-a-date"}},
		})
		after := time.Now()

		if len(got.Transactions) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(got.Transactions))
		}
		d := got.Transactions[0].Date
		if d.Before(before) || d.After(after) {
			t.Errorf("bad date should default to now, got %s", d)
		}
	})

	t.Run("missing collections become empty", func(t *testing.T) {
		got := Deserialize(SerializedState{})
		if got.Transactions == nil || got.Budgets == nil || got.Goals == nil || got.SocialCircles == nil {
			t.Errorf("missing collections must deserialize to empty slices, got %+v", got)
		}
	})

	t.Run("missing personality falls back to supportive", func(t *testing.T) {
		got := Deserialize(SerializedState{})
		if got.AICompanion.Personality != model.PersonalitySupportive {
			t.Errorf("expected supportive fallback, got %q", got.AICompanion.Personality)
		}
	})

	t.Run("nil circle members become empty slice", func(t *testing.T) {
		got := Deserialize(SerializedState{
			SocialCircles: []serializedCircle{{ID: "c1", Name: "Friends"}},
		})
		if got.SocialCircles[0].Members == nil {
			t.Error("nil members should deserialize to empty slice")
		}
		if got.SocialCircles[0].Challenges == nil {
			t.Error("nil challenges should deserialize to empty slice")
		}
	})
}
