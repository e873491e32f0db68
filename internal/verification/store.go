// Package verification keeps the outstanding email verification codes in
// process memory. One live entry per email; entries expire lazily on the next
// lookup, there is no background sweeper.
package verification

import (
	"hash/fnv"
	"sync"
	"time"

	"github.com/taskhive/auth-service/internal/codegen"
)

const shardCount = 32

type entry struct {
	code      string
	issuedAt  time.Time
	expiresAt time.Time
}

type shard struct {
	mu      sync.Mutex
	entries map[string]entry
}

// Store is a sharded email -> code map. Operations on different emails only
// contend when they hash to the same shard.
type Store struct {
	shards [shardCount]*shard
	now    func() time.Time
}

func NewStore() *Store {
	s := &Store{now: time.Now}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]entry)}
	}
	return s
}

func (s *Store) shardFor(email string) *shard {
	h := fnv.New32a()
	h.Write([]byte(email))
	return s.shards[h.Sum32()%shardCount]
}

// Issue generates a numeric code of the given length and stores it for email
// with the given TTL, replacing any previous entry for that email.
func (s *Store) Issue(email string, length int, ttl time.Duration) (string, error) {
	code, err := codegen.NumericCode(length)
	if err != nil {
		return "", err
	}
	now := s.now()
	sh := s.shardFor(email)
	sh.mu.Lock()
	sh.entries[email] = entry{code: code, issuedAt: now, expiresAt: now.Add(ttl)}
	sh.mu.Unlock()
	return code, nil
}

// Verify reports whether submitted matches the live code for email. An expired
// entry is evicted and reported as a miss. A mismatch leaves the entry intact,
// and a match does not consume it; callers clear explicitly after signup.
func (s *Store) Verify(email, submitted string) bool {
	sh := s.shardFor(email)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[email]
	if !ok {
		return false
	}
	if !s.now().Before(e.expiresAt) {
		delete(sh.entries, email)
		return false
	}
	return e.code == submitted
}

// Clear removes the entry for email, if any.
func (s *Store) Clear(email string) {
	sh := s.shardFor(email)
	sh.mu.Lock()
	delete(sh.entries, email)
	sh.mu.Unlock()
}
