package store

import (
	"encoding/json"
	"fmt"

	"github.com/moneywise/moneywise/internal/model"
)

// The session record lives under a fixed key; each user's domain data lives
// under a key derived from the user id. The prefixes guarantee the session
// key can never collide with a data key, and two distinct user ids can never
// map to the same data key.
const sessionKey = "moneywise_session"

func dataKey(userID string) string {
	return "moneywise_data_" + userID
}

// Namespace is the per-user storage area over a KV backend.
type Namespace struct {
	kv KV
}

func NewNamespace(kv KV) *Namespace {
	return &Namespace{kv: kv}
}

// LoadSession returns the current session user, or nil if no session is
// stored. A corrupt session record is treated as absent, never as an error.
func (n *Namespace) LoadSession() *model.Profile {
	data, ok, err := n.kv.Get(sessionKey)
	if err != nil || !ok {
		return nil
	}

	var profile model.Profile
	err = json.Unmarshal(data, &profile)
	if err != nil || profile.ID == "" {
		return nil
	}

	return &profile
}

func (n *Namespace) SaveSession(profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return n.kv.Set(sessionKey, data)
}

func (n *Namespace) ClearSession() error {
	return n.kv.Delete(sessionKey)
}

// LoadUserData returns the persisted state for userID. A user never seen
// before gets an empty default state that is written back immediately, so the
// persisted baseline always matches what later saves will overwrite.
// Corrupt stored data degrades to the same default.
func (n *Namespace) LoadUserData(userID string) (PersistedState, error) {
	data, ok, err := n.kv.Get(dataKey(userID))
	if err != nil {
		return DefaultState(), fmt.Errorf("failed to read user data: %w", err)
	}

	if !ok {
		state := DefaultState()
		err = n.SaveUserData(userID, state)
		if err != nil {
			return state, fmt.Errorf("failed to write baseline state: %w", err)
		}
		return state, nil
	}

	var serialized SerializedState
	err = json.Unmarshal(data, &serialized)
	if err != nil {
		// Corrupted blob: degrade to defaults rather than fail
		return DefaultState(), nil
	}

	return Deserialize(serialized), nil
}

// SaveUserData serializes and fully overwrites the user's stored state.
// There is no merging, partial update, or versioning.
func (n *Namespace) SaveUserData(userID string, state PersistedState) error {
	data, err := json.Marshal(Serialize(state))
	if err != nil {
		return fmt.Errorf("failed to encode user data: %w", err)
	}
	return n.kv.Set(dataKey(userID), data)
}
