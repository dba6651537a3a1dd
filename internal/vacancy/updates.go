// internal/vacancy/updates.go
package vacancy

import (
	"errors"
	"fmt"

	"vacancy-workers/internal/models"
)

var ErrInvalidWindow = errors.New("target move-in precedes vacancy start")

// ValidateWindow rejects a move-in date earlier than the vacancy start. The
// instance itself accepts any pair; callers taking external input check first.
func ValidateWindow(vacancyStart, targetMoveIn models.Date) error {
	if targetMoveIn.Before(vacancyStart) {
		return fmt.Errorf("%w: %s < %s", ErrInvalidWindow, targetMoveIn, vacancyStart)
	}
	return nil
}

// TaskUpdate is one status change from the task feed.
type TaskUpdate struct {
	Key         string       `json:"key" yaml:"key"`
	Status      TaskStatus   `json:"status" yaml:"status"`
	CompletedOn *models.Date `json:"completedOn,omitempty" yaml:"completed_on,omitempty"`
}

// ApplyUpdates applies updates in order and stops at the first unknown key.
func (w *WorkflowInstance) ApplyUpdates(updates []TaskUpdate) error {
	for _, u := range updates {
		if _, err := ParseTaskStatus(string(u.Status)); err != nil {
			return err
		}
		if err := w.SetStatus(u.Key, u.Status, u.CompletedOn); err != nil {
			return err
		}
	}
	return nil
}
