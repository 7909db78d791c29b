package positions

import (
	"context"
	"fmt"
	"sync"

	"github.com/challengelist/listd/internal/models"
	"gorm.io/gorm"
)

// RangeError reports a requested position outside the valid range. Max is
// the highest position the operation would have accepted.
type RangeError struct {
	Position int
	Max      int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	if e.Position < 1 {
		return "Position must be greater than or equal to 1."
	}
	return fmt.Sprintf("Position must be less than or equal to %d.", e.Max)
}

// Engine maintains the list ordering invariant: at any quiescent point the
// positions of all challenges are exactly 1..N with no gaps or duplicates.
//
// Every operation re-reads the current ordering, mutates it in memory, and
// rewrites changed rows inside a single transaction. The mutex serializes
// operations so the multi-row renumber never interleaves with another
// writer; it is the only component allowed to renumber.
type Engine struct {
	db *gorm.DB
	mu sync.Mutex
}

// NewEngine constructs an Engine over the challenge table.
func NewEngine(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// Insert persists a new challenge at the requested 1-based position and
// shifts every successor down by one. Valid positions are 1..N+1, where N
// is the current list size; N+1 appends.
func (e *Engine) Insert(ctx context.Context, challenge *models.Challenge, position int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ordered, errFetch := fetchOrdered(tx)
		if errFetch != nil {
			return errFetch
		}
		if position < 1 || position > len(ordered)+1 {
			return &RangeError{Position: position, Max: len(ordered) + 1}
		}

		challenge.Position = position
		if errCreate := tx.Create(challenge).Error; errCreate != nil {
			return fmt.Errorf("positions: create challenge: %w", errCreate)
		}

		ordered = splice(ordered, position-1, *challenge)
		return renumber(tx, ordered)
	})
}

// Reposition moves an existing challenge to newPosition, renumbering the
// rest of the list around it. Valid positions are 1..N. Moving a challenge
// to its current position is a no-op.
func (e *Engine) Reposition(ctx context.Context, challengeID uint64, newPosition int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ordered, errFetch := fetchOrdered(tx)
		if errFetch != nil {
			return errFetch
		}

		index := -1
		for i := range ordered {
			if ordered[i].ID == challengeID {
				index = i
				break
			}
		}
		if index < 0 {
			return gorm.ErrRecordNotFound
		}
		if newPosition < 1 || newPosition > len(ordered) {
			return &RangeError{Position: newPosition, Max: len(ordered)}
		}
		if newPosition == ordered[index].Position {
			return nil
		}

		moved := ordered[index]
		ordered = append(ordered[:index], ordered[index+1:]...)
		ordered = splice(ordered, newPosition-1, moved)
		return renumber(tx, ordered)
	})
}

// Remove deletes a challenge and its dependent records, then closes the gap
// by renumbering the remaining list to 1..N-1.
func (e *Engine) Remove(ctx context.Context, challengeID uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errRecords := tx.Where("challenge_id = ?", challengeID).
			Delete(&models.Record{}).Error; errRecords != nil {
			return fmt.Errorf("positions: delete records: %w", errRecords)
		}

		res := tx.Delete(&models.Challenge{}, challengeID)
		if res.Error != nil {
			return fmt.Errorf("positions: delete challenge: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		ordered, errFetch := fetchOrdered(tx)
		if errFetch != nil {
			return errFetch
		}
		return renumber(tx, ordered)
	})
}

// fetchOrdered reads the full list sorted by current position.
func fetchOrdered(tx *gorm.DB) ([]models.Challenge, error) {
	var ordered []models.Challenge
	if errFind := tx.Order("position ASC").Find(&ordered).Error; errFind != nil {
		return nil, fmt.Errorf("positions: fetch list: %w", errFind)
	}
	return ordered, nil
}

// renumber rewrites positions to match sequence order, touching only rows
// whose position actually changed.
func renumber(tx *gorm.DB, ordered []models.Challenge) error {
	for index := range ordered {
		want := index + 1
		if ordered[index].Position == want {
			continue
		}
		if errUpdate := tx.Model(&models.Challenge{}).
			Where("id = ?", ordered[index].ID).
			Update("position", want).Error; errUpdate != nil {
			return fmt.Errorf("positions: renumber challenge %d: %w", ordered[index].ID, errUpdate)
		}
	}
	return nil
}

// splice inserts item into list at index, shifting the tail right.
func splice(list []models.Challenge, index int, item models.Challenge) []models.Challenge {
	list = append(list, models.Challenge{})
	copy(list[index+1:], list[index:])
	list[index] = item
	return list
}
