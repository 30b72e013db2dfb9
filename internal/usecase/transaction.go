package usecase

import (
	"context"
	"fmt"
	"log/slog"
)

// Transaction runs a sequence of writes against a store without transactions.
// When a step fails, the undo functions of the steps already applied run in
// reverse order. An undo that fails leaves the rows inconsistent and is logged.
type Transaction struct {
	steps  []step
	logger *slog.Logger
}

type step struct {
	name string
	do   func(context.Context) error
	undo func(context.Context) error
}

func NewTransaction(logger *slog.Logger) *Transaction {
	return &Transaction{logger: orDefault(logger)}
}

// Add appends a step. undo may be nil when the step has nothing to revert.
func (t *Transaction) Add(name string, do, undo func(context.Context) error) {
	t.steps = append(t.steps, step{name: name, do: do, undo: undo})
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.do(ctx); err != nil {
			t.rollback(ctx, i)
			return fmt.Errorf("step %q failed: %w (rolled back %d steps)", s.name, err, i)
		}
	}
	return nil
}

func (t *Transaction) rollback(ctx context.Context, failedAt int) {
	for i := failedAt - 1; i >= 0; i-- {
		s := t.steps[i]
		if s.undo == nil {
			continue
		}
		if err := s.undo(ctx); err != nil {
			t.logger.Error("compensation failed, rows may be inconsistent", "step", s.name, "error", err)
		}
	}
}
