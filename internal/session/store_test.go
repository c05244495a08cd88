package session

import (
	"errors"
	"regexp"
	"sync"
	"testing"
)

var codePattern = regexp.MustCompile(`^#[a-z0-9-]+-\d{5}$`)

func TestGetOrCreateNewUser(t *testing.T) {
	s := NewStore()

	u, isNew := s.GetOrCreate("fb-1")
	if !isNew {
		t.Fatal("expected new user")
	}
	if u.ID != "fb-1" {
		t.Errorf("expected id fb-1, got %s", u.ID)
	}
	if u.Status != StatusPending || u.Accepted {
		t.Errorf("expected pending unaccepted user, got status=%s accepted=%v", u.Status, u.Accepted)
	}
	if !codePattern.MatchString(u.ReferenceCode) {
		t.Errorf("reference code %q does not match expected format", u.ReferenceCode)
	}
	if u.RegisteredAt.IsZero() {
		t.Error("expected RegisteredAt to be set")
	}

	again, isNew := s.GetOrCreate("fb-1")
	if isNew {
		t.Fatal("expected existing user on second call")
	}
	if again.ReferenceCode != u.ReferenceCode {
		t.Error("reference code changed between calls")
	}
}

func TestReferenceCodesUnique(t *testing.T) {
	s := NewStore()

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		u, _ := s.GetOrCreate("user-" + string(rune('a'+i%26)) + string(rune('0'+i/26)))
		if seen[u.ReferenceCode] {
			t.Fatalf("duplicate reference code issued: %s", u.ReferenceCode)
		}
		seen[u.ReferenceCode] = true
	}
}

func TestAcceptTerms(t *testing.T) {
	s := NewStore()
	s.GetOrCreate("fb-2")

	u, err := s.AcceptTerms("fb-2")
	if err != nil {
		t.Fatal(err)
	}
	if !u.Accepted || u.Status != StatusActive {
		t.Errorf("expected active accepted user, got status=%s accepted=%v", u.Status, u.Accepted)
	}

	// Idempotent.
	u, err = s.AcceptTerms("fb-2")
	if err != nil {
		t.Fatal(err)
	}
	if !u.Accepted || u.Status != StatusActive {
		t.Error("second accept should leave user active")
	}
}

func TestAcceptTermsUnknownUser(t *testing.T) {
	s := NewStore()
	if _, err := s.AcceptTerms("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveByReferenceCode(t *testing.T) {
	s := NewStore()
	u, _ := s.GetOrCreate("fb-3")

	got, err := s.ResolveByReferenceCode(u.ReferenceCode)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "fb-3" {
		t.Errorf("expected fb-3, got %s", got.ID)
	}

	if _, err := s.ResolveByReferenceCode("#nope-00000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown code, got %v", err)
	}
}

func TestCompleteOutOfBand(t *testing.T) {
	s := NewStore()
	u, _ := s.GetOrCreate("fb-4")

	// Not accepted yet.
	if _, err := s.CompleteOutOfBand(u.ReferenceCode); !errors.Is(err, ErrNotAccepted) {
		t.Fatalf("expected ErrNotAccepted, got %v", err)
	}

	s.AcceptTerms("fb-4")

	got, err := s.CompleteOutOfBand(u.ReferenceCode)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "fb-4" {
		t.Errorf("expected fb-4, got %s", got.ID)
	}

	// One-shot: the index entry is gone.
	if _, err := s.CompleteOutOfBand(u.ReferenceCode); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second completion, got %v", err)
	}
	if _, err := s.ResolveByReferenceCode(u.ReferenceCode); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after completion, got %v", err)
	}

	// The user record itself persists.
	if _, isNew := s.GetOrCreate("fb-4"); isNew {
		t.Error("user record should persist after completion")
	}
}

func TestConcurrentGetOrCreateSingleUser(t *testing.T) {
	s := NewStore()

	const n = 50
	codes := make([]string, n)
	news := make([]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			release := s.Guard("fb-race")
			u, isNew := s.GetOrCreate("fb-race")
			release()
			codes[i] = u.ReferenceCode
			news[i] = isNew
		}(i)
	}
	wg.Wait()

	created := 0
	for i := 0; i < n; i++ {
		if news[i] {
			created++
		}
		if codes[i] != codes[0] {
			t.Fatalf("concurrent calls observed different users: %s vs %s", codes[i], codes[0])
		}
	}
	if created != 1 {
		t.Errorf("expected exactly one creation, got %d", created)
	}
	if s.Count() != 1 {
		t.Errorf("expected one user in store, got %d", s.Count())
	}
}

func TestGuardSerializesPerUser(t *testing.T) {
	s := NewStore()

	var inCritical, maxInCritical int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := s.Guard("same-user")
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxInCritical > 1 {
		t.Errorf("expected at most one goroutine in the guarded section, saw %d", maxInCritical)
	}
}

func TestReferenceCodeFormatEdgeCases(t *testing.T) {
	code := referenceCode("")
	if !codePattern.MatchString(code) {
		t.Errorf("empty name produced bad code %q", code)
	}
	code = referenceCode("Ünïcode Näme!!")
	if !codePattern.MatchString(code) {
		t.Errorf("unicode name produced bad code %q", code)
	}
}
