package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pharmaevents/user"
)

type memoryStore struct {
	emails  map[string]struct{}
	users   []user.NewUser
	batches int
	// failBatch makes the n-th InsertUsers call fail (1-based).
	failBatch int
}

func newMemoryStore(emails ...string) *memoryStore {
	store := &memoryStore{emails: make(map[string]struct{})}
	for _, email := range emails {
		store.emails[email] = struct{}{}
	}
	return store
}

func (s *memoryStore) ExistingEmails(context.Context) (map[string]struct{}, error) {
	snapshot := make(map[string]struct{}, len(s.emails))
	for email := range s.emails {
		snapshot[email] = struct{}{}
	}
	return snapshot, nil
}

func (s *memoryStore) InsertUsers(_ context.Context, users []user.NewUser) error {
	s.batches++
	if s.batches == s.failBatch {
		return errors.New("constraint failed")
	}
	for _, u := range users {
		s.emails[u.Email] = struct{}{}
		s.users = append(s.users, u)
	}
	return nil
}

func fakeHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Hash = fakeHash
	return opts
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	return path
}
