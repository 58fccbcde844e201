package postgres

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/greenloop/recycle-league/internal/domain/goal"
)

type goalTableModel struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Kind         string    `db:"kind"`
	Difficulty   string    `db:"difficulty"`
	Frequency    string    `db:"frequency"`
	Status       string    `db:"status"`
	Progress     float64   `db:"progress"`
	Multiplier   float64   `db:"multiplier"`
	NextCheck    time.Time `db:"next_check"`
	SkipDaysLeft int       `db:"skip_days_left"`
	Items        []byte    `db:"items"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type goalInsertModel struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	Kind         string    `db:"kind"`
	Difficulty   string    `db:"difficulty"`
	Frequency    string    `db:"frequency"`
	Status       string    `db:"status"`
	Progress     float64   `db:"progress"`
	Multiplier   float64   `db:"multiplier"`
	NextCheck    time.Time `db:"next_check"`
	SkipDaysLeft int       `db:"skip_days_left"`
	Items        []byte    `db:"items"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// goalItemPayload is the JSONB shape of one reduce-goal item.
type goalItemPayload struct {
	Material       string `json:"material"`
	TargetQuantity int    `json:"target_quantity"`
	ActualQuantity int    `json:"actual_quantity"`
}

func encodeGoalItems(items []goal.Item) ([]byte, error) {
	payload := make([]goalItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, goalItemPayload{
			Material:       item.Material,
			TargetQuantity: item.TargetQuantity,
			ActualQuantity: item.ActualQuantity,
		})
	}

	raw, err := jsoniter.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode goal items: %w", err)
	}
	return raw, nil
}

func decodeGoalItems(raw []byte) ([]goal.Item, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var payload []goalItemPayload
	if err := jsoniter.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode goal items: %w", err)
	}

	items := make([]goal.Item, 0, len(payload))
	for _, p := range payload {
		items = append(items, goal.Item{
			Material:       p.Material,
			TargetQuantity: p.TargetQuantity,
			ActualQuantity: p.ActualQuantity,
		})
	}
	return items, nil
}

func goalFromRow(row goalTableModel) (goal.Goal, error) {
	items, err := decodeGoalItems(row.Items)
	if err != nil {
		return goal.Goal{}, err
	}

	return goal.Goal{
		ID:           row.ID,
		UserID:       row.UserID,
		Kind:         goal.Kind(row.Kind),
		Difficulty:   goal.Difficulty(row.Difficulty),
		Frequency:    goal.Frequency(row.Frequency),
		Status:       goal.Status(row.Status),
		Progress:     row.Progress,
		Multiplier:   row.Multiplier,
		NextCheck:    row.NextCheck,
		SkipDaysLeft: row.SkipDaysLeft,
		Items:        items,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func goalToInsertModel(g goal.Goal) (goalInsertModel, error) {
	items, err := encodeGoalItems(g.Items)
	if err != nil {
		return goalInsertModel{}, err
	}

	return goalInsertModel{
		ID:           g.ID,
		UserID:       g.UserID,
		Kind:         string(g.Kind),
		Difficulty:   string(g.Difficulty),
		Frequency:    string(g.Frequency),
		Status:       string(g.Status),
		Progress:     g.Progress,
		Multiplier:   g.Multiplier,
		NextCheck:    g.NextCheck,
		SkipDaysLeft: g.SkipDaysLeft,
		Items:        items,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}, nil
}
