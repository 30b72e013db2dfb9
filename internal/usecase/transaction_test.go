package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionRollsBackAppliedSteps(t *testing.T) {
	var log []string
	tx := NewTransaction(nil)
	tx.Add("a",
		func(context.Context) error { log = append(log, "do a"); return nil },
		func(context.Context) error { log = append(log, "undo a"); return nil },
	)
	tx.Add("b",
		func(context.Context) error { log = append(log, "do b"); return nil },
		nil,
	)
	tx.Add("c",
		func(context.Context) error { return errors.New("boom") },
		func(context.Context) error { log = append(log, "undo c"); return nil },
	)

	err := tx.Execute(context.Background())
	assert.ErrorContains(t, err, `step "c" failed`)
	assert.Equal(t, []string{"do a", "do b", "undo a"}, log)
}

func TestTransactionSucceeds(t *testing.T) {
	calls := 0
	tx := NewTransaction(nil)
	tx.Add("only", func(context.Context) error { calls++; return nil }, nil)

	assert.NoError(t, tx.Execute(context.Background()))
	assert.Equal(t, 1, calls)
}
