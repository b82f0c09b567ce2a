package importer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pharmaevents/user"
)

// UserStore is the persistence side of an import.
type UserStore interface {
	// ExistingEmails returns the lower-cased emails of all stored accounts.
	ExistingEmails(ctx context.Context) (map[string]struct{}, error)
	// InsertUsers stores all users in one transaction or none of them.
	InsertUsers(ctx context.Context, users []user.NewUser) error
}

// ChunkOutcome records whether one batch was committed or rolled back.
type ChunkOutcome struct {
	Index     int
	Users     []ValidatedUser
	Committed bool
	Err       error
}

// RowErrors returns one persistence error per user of a rolled-back chunk.
func (o ChunkOutcome) RowErrors() []RowError {
	if o.Committed {
		return nil
	}
	out := make([]RowError, 0, len(o.Users))
	for _, u := range o.Users {
		out = append(out, *newRowError(u.Row, PersistenceError,
			"Could not be saved (batch %d rolled back): %v", o.Index, o.Err))
	}
	return out
}

// Commit hashes and stores users in chunks of opts.BatchSize. Each chunk is
// independent: a failed chunk does not undo the chunks before it.
func Commit(ctx context.Context, store UserStore, users []ValidatedUser, opts Options) []ChunkOutcome {
	opts = opts.withDefaults()
	logger := opts.Logger

	outcomes := make([]ChunkOutcome, 0, (len(users)+opts.BatchSize-1)/opts.BatchSize)
	for start := 0; start < len(users); start += opts.BatchSize {
		end := min(start+opts.BatchSize, len(users))
		outcome := ChunkOutcome{Index: len(outcomes) + 1, Users: users[start:end]}

		if err := ctx.Err(); err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		records, err := hashUsers(outcome.Users, opts.Hash)
		if err == nil {
			err = store.InsertUsers(ctx, records)
		}
		if err != nil {
			outcome.Err = err
			logger.Warn("import batch rolled back",
				zap.Int("batch", outcome.Index),
				zap.Int("users", len(outcome.Users)),
				zap.Error(err),
			)
		} else {
			outcome.Committed = true
			logger.Info("import batch committed",
				zap.Int("batch", outcome.Index),
				zap.Int("users", len(outcome.Users)),
			)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func hashUsers(users []ValidatedUser, hash func(string) (string, error)) ([]user.NewUser, error) {
	records := make([]user.NewUser, 0, len(users))
	for _, u := range users {
		hashed, err := hash(u.Password)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", u.Row, err)
		}
		records = append(records, user.NewUser{Email: u.Email, PasswordHash: hashed, Role: u.Role})
	}
	return records, nil
}
