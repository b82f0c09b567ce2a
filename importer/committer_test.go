package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"pharmaevents/user"
)

func validatedUsers(n int) []ValidatedUser {
	users := make([]ValidatedUser, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, ValidatedUser{
			Row:      i,
			Email:    fmt.Sprintf("user%d@x.com", i),
			Role:     user.RoleMedicalRep,
			Password: "pw",
		})
	}
	return users
}

func TestCommit_ChunksAreIndependent(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	store.failBatch = 2

	opts := testOptions()
	opts.BatchSize = 2
	outcomes := Commit(context.Background(), store, validatedUsers(5), opts)

	if len(outcomes) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(outcomes))
	}
	if !outcomes[0].Committed || outcomes[1].Committed || !outcomes[2].Committed {
		t.Fatalf("unexpected outcomes: %+v", outcomes)
	}
	if len(store.users) != 3 {
		t.Fatalf("expected 3 stored users, got %d", len(store.users))
	}
	if store.users[0].PasswordHash != "hashed:pw" {
		t.Fatalf("expected hashed password, got %q", store.users[0].PasswordHash)
	}

	rowErrs := outcomes[1].RowErrors()
	if len(rowErrs) != 2 {
		t.Fatalf("expected 2 persistence errors, got %d", len(rowErrs))
	}
	if rowErrs[0].Kind != PersistenceError || !strings.HasPrefix(rowErrs[0].Message, "Row 3: Could not be saved (batch 2 rolled back)") {
		t.Fatalf("unexpected persistence error: %+v", rowErrs[0])
	}
}

func TestCommit_HashFailureRollsBackChunk(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	opts := testOptions()
	opts.Hash = func(password string) (string, error) {
		if password == "bad" {
			return "", fmt.Errorf("hash failed")
		}
		return fakeHash(password)
	}

	users := validatedUsers(2)
	users[1].Password = "bad"
	outcomes := Commit(context.Background(), store, users, opts)
	if len(outcomes) != 1 || outcomes[0].Committed {
		t.Fatalf("expected single rolled back chunk, got %+v", outcomes)
	}
	if len(store.users) != 0 {
		t.Fatalf("expected nothing stored, got %d", len(store.users))
	}
}

func TestCommit_CanceledContextSkipsChunks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := newMemoryStore()
	outcomes := Commit(ctx, store, validatedUsers(3), testOptions())
	if len(outcomes) != 1 || outcomes[0].Committed || outcomes[0].Err == nil {
		t.Fatalf("expected canceled chunk, got %+v", outcomes)
	}
	if store.batches != 0 {
		t.Fatalf("expected no insert calls, got %d", store.batches)
	}
}
