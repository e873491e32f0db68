package verification

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	s := NewStore()
	code, err := s.Issue("a@x.com", 4, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if len(code) != 4 {
		t.Fatalf("code length = %d, want 4", len(code))
	}
	if !s.Verify("a@x.com", code) {
		t.Fatal("fresh code must verify")
	}
	// Verify is read-only: the entry survives both a mismatch and a match.
	if s.Verify("a@x.com", "nope") {
		t.Fatal("wrong code must not verify")
	}
	if !s.Verify("a@x.com", code) {
		t.Fatal("entry must survive a mismatched attempt")
	}
	if !s.Verify("a@x.com", code) {
		t.Fatal("entry must survive a successful verify")
	}
}

func TestVerifyUnknownEmail(t *testing.T) {
	s := NewStore()
	if s.Verify("nobody@x.com", "0000") {
		t.Fatal("verify without an entry must be false")
	}
}

func TestReissueReplaces(t *testing.T) {
	s := NewStore()
	first, _ := s.Issue("a@x.com", 6, time.Minute)
	second, _ := s.Issue("a@x.com", 6, time.Minute)
	if first != second && s.Verify("a@x.com", first) {
		t.Fatal("old code must be dead after reissue")
	}
	if !s.Verify("a@x.com", second) {
		t.Fatal("newest code must verify")
	}
}

func TestExpiryEvictsLazily(t *testing.T) {
	s := NewStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	code, _ := s.Issue("a@x.com", 4, 3*time.Minute)
	now = now.Add(3 * time.Minute) // exactly at expiry counts as expired
	if s.Verify("a@x.com", code) {
		t.Fatal("expired code must not verify")
	}
	sh := s.shardFor("a@x.com")
	sh.mu.Lock()
	_, alive := sh.entries["a@x.com"]
	sh.mu.Unlock()
	if alive {
		t.Fatal("expired entry must be evicted on lookup")
	}
	// A later issue for the same email starts clean.
	again, _ := s.Issue("a@x.com", 4, 3*time.Minute)
	if !s.Verify("a@x.com", again) {
		t.Fatal("reissue after eviction must verify")
	}
}

func TestClear(t *testing.T) {
	s := NewStore()
	code, _ := s.Issue("a@x.com", 4, time.Minute)
	s.Clear("a@x.com")
	if s.Verify("a@x.com", code) {
		t.Fatal("cleared code must not verify")
	}
	s.Clear("a@x.com") // clearing an absent entry is a no-op
}

func TestConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := fmt.Sprintf("user%d@x.com", i%8)
			for j := 0; j < 50; j++ {
				code, err := s.Issue(email, 4, time.Minute)
				if err != nil {
					t.Errorf("issue: %v", err)
					return
				}
				s.Verify(email, code)
				if j%10 == 0 {
					s.Clear(email)
				}
			}
		}(i)
	}
	wg.Wait()
}
