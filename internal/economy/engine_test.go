package economy

import (
	"errors"
	"testing"
	"time"

	"breadbot/internal/domain"
)

// scriptRand replays a fixed sequence of draws.
type scriptRand struct {
	ints    []int
	chances []bool
}

func (s *scriptRand) IntN(int) int {
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *scriptRand) Chance(float64) bool {
	v := s.chances[0]
	s.chances = s.chances[1:]
	return v
}

func newEngine(r domain.RandomSource) *Engine {
	if r == nil {
		r = &scriptRand{}
	}
	return New(DefaultRules(), r)
}

const scope = domain.ScopeID("group-1")

// Unix 10000 is Thursday 1970-01-01, safely past the 5400s cooldown for
// a fresh account.
var weekday = time.Unix(10000, 0).UTC()

// A Saturday.
var weekend = time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)

func seeded(accts ...domain.Account) domain.Ledger {
	l := domain.Ledger{}
	for _, a := range accts {
		l[a.ExternalID] = a
	}
	return l
}

func TestClaimRegistersButStaysOnCooldown(t *testing.T) {
	// Scenario A: registration commits even though the claim itself is
	// still cooling down (elapsed 100 < 5400).
	e := newEngine(nil)
	now := time.Unix(100, 0).UTC()

	l, rep := e.Claim(domain.Ledger{}, "u1", scope, now, []string{"Alice"})

	if !errors.Is(rep.Err, domain.ErrOnCooldown) {
		t.Fatalf("Err = %v, want ErrOnCooldown", rep.Err)
	}
	if !rep.Changed {
		t.Error("Changed = false, want true (registration must commit)")
	}
	a, ok := l["u1"]
	if !ok {
		t.Fatal("account was not created")
	}
	if a.Nickname != "Alice" || a.Balance != 0 || a.LastClaimAt != 0 {
		t.Errorf("account = %+v, want Alice with zero balance and timestamps", a)
	}
	if rep.Text != "no bread for you yet, try again in 1h28m" {
		t.Errorf("Text = %q, want the 5300s wait message", rep.Text)
	}
}

func TestClaimWeekdayReward(t *testing.T) {
	// Scenario A': now=10000 (a Thursday), reward drawn from {1,2}.
	e := newEngine(&scriptRand{ints: []int{1}})

	l, rep := e.Claim(domain.Ledger{}, "u1", scope, weekday, []string{"Alice"})

	if rep.Err != nil {
		t.Fatalf("Err = %v, want nil", rep.Err)
	}
	a := l["u1"]
	if a.Balance != 2 {
		t.Errorf("Balance = %d, want 2", a.Balance)
	}
	if a.LastClaimAt != 10000 {
		t.Errorf("LastClaimAt = %d, want 10000", a.LastClaimAt)
	}
	if rep.Text != "bought 2 bread, you now have 2" {
		t.Errorf("Text = %q", rep.Text)
	}
}

func TestClaimWeekendReward(t *testing.T) {
	e := newEngine(&scriptRand{ints: []int{2}})
	seed := seeded(domain.Account{ExternalID: "u1", Nickname: "Alice", Scope: scope})

	l, rep := e.Claim(seed, "u1", scope, weekend, nil)

	if rep.Err != nil {
		t.Fatalf("Err = %v, want nil", rep.Err)
	}
	if got := l["u1"].Balance; got != 4 {
		t.Errorf("Balance = %d, want 4 (weekend range 2-4, draw 2)", got)
	}
}

func TestClaimCooldownBlocksSecondClaim(t *testing.T) {
	e := newEngine(&scriptRand{ints: []int{0}})
	l, rep := e.Claim(domain.Ledger{}, "u1", scope, weekday, []string{"Alice"})
	if rep.Err != nil {
		t.Fatalf("first claim: %v", rep.Err)
	}

	later := weekday.Add(5399 * time.Second)
	l2, rep2 := e.Claim(l, "u1", scope, later, nil)

	if !errors.Is(rep2.Err, domain.ErrOnCooldown) {
		t.Fatalf("Err = %v, want ErrOnCooldown", rep2.Err)
	}
	if rep2.Changed {
		t.Error("Changed = true, want false")
	}
	if l2["u1"].Balance != l["u1"].Balance {
		t.Error("balance changed during a cooldown reply")
	}
}

func TestClaimRegistrationFailures(t *testing.T) {
	seed := seeded(domain.Account{ExternalID: "u2", Nickname: "Taken", Scope: scope})

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"missing nickname", nil, domain.ErrInvalidArgument},
		{"too long", []string{"a-very-long-nickname"}, domain.ErrInvalidArgument},
		{"already taken", []string{"Taken"}, domain.ErrNicknameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(nil)
			l, rep := e.Claim(seed, "u1", scope, weekday, tt.args)
			if !errors.Is(rep.Err, tt.want) {
				t.Errorf("Err = %v, want %v", rep.Err, tt.want)
			}
			if rep.Changed {
				t.Error("Changed = true, want false")
			}
			if _, created := l["u1"]; created {
				t.Error("account was created despite the failure")
			}
			if len(l) != len(seed) {
				t.Error("ledger size changed")
			}
		})
	}
}

func TestRobSuccess(t *testing.T) {
	// Scenario B.
	seed := seeded(
		domain.Account{ExternalID: "ua", Nickname: "Alice", Scope: scope},
		domain.Account{ExternalID: "ub", Nickname: "Bob", Balance: 5, Scope: scope},
	)
	e := newEngine(&scriptRand{ints: []int{1}, chances: []bool{true}}) // amount 2, success

	l, rep := e.Rob(seed, "ua", scope, weekday, []string{"Bob"})

	if rep.Err != nil {
		t.Fatalf("Err = %v, want nil", rep.Err)
	}
	alice, bob := l["ua"], l["ub"]
	if alice.Balance != 2 || bob.Balance != 3 {
		t.Errorf("balances = %d/%d, want 2/3", alice.Balance, bob.Balance)
	}
	if alice.LastRobAt != 10000 {
		t.Errorf("LastRobAt = %d, want 10000", alice.LastRobAt)
	}
	// Conservation.
	if alice.Balance+bob.Balance != 5 {
		t.Errorf("total = %d, want 5", alice.Balance+bob.Balance)
	}
	// The input ledger must not have been touched.
	if seed["ua"].Balance != 0 || seed["ub"].Balance != 5 {
		t.Error("input ledger was mutated in place")
	}
}

func TestRobFailureDoesNotConsumeCooldown(t *testing.T) {
	seed := seeded(
		domain.Account{ExternalID: "ua", Nickname: "Alice", Scope: scope},
		domain.Account{ExternalID: "ub", Nickname: "Bob", Balance: 5, Scope: scope},
	)
	e := newEngine(&scriptRand{ints: []int{0, 0}, chances: []bool{false, true}})

	l, rep := e.Rob(seed, "ua", scope, weekday, []string{"Bob"})
	if rep.Err != nil || rep.Changed {
		t.Fatalf("failed rob: Err=%v Changed=%v, want nil/false", rep.Err, rep.Changed)
	}
	if l["ua"].LastRobAt != 0 {
		t.Error("failed rob advanced LastRobAt")
	}

	// Cooldown was not consumed: the very next attempt may succeed.
	l2, rep2 := e.Rob(l, "ua", scope, weekday.Add(time.Second), []string{"Bob"})
	if rep2.Err != nil {
		t.Fatalf("retry: %v", rep2.Err)
	}
	if l2["ua"].Balance != 1 || l2["ub"].Balance != 4 {
		t.Errorf("balances = %d/%d, want 1/4", l2["ua"].Balance, l2["ub"].Balance)
	}
}

func TestRobErrors(t *testing.T) {
	seed := seeded(
		domain.Account{ExternalID: "ua", Nickname: "Alice", Scope: scope, LastRobAt: 9000},
		domain.Account{ExternalID: "ub", Nickname: "Bob", Balance: 5, Scope: scope},
		domain.Account{ExternalID: "uc", Nickname: "Eve", Balance: 9, Scope: "group-2"},
		domain.Account{ExternalID: "ud", Nickname: "Poor", Balance: 0, Scope: scope},
	)

	tests := []struct {
		name  string
		actor domain.ExternalID
		now   time.Time
		args  []string
		want  error
	}{
		{"unregistered", "nobody", weekday, []string{"Bob"}, domain.ErrNotRegistered},
		{"missing target", "ua", weekday.Add(5400 * time.Second), nil, domain.ErrInvalidArgument},
		{"target not found", "ua", weekday.Add(5400 * time.Second), []string{"Carol"}, domain.ErrTargetNotFound},
		{"scope mismatch", "ua", weekday.Add(5400 * time.Second), []string{"Eve"}, domain.ErrScopeMismatch},
		{"on cooldown", "ua", weekday, []string{"Bob"}, domain.ErrOnCooldown},
		{"target empty", "ua", weekday.Add(5400 * time.Second), []string{"Poor"}, domain.ErrTargetEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(&scriptRand{ints: []int{0}, chances: []bool{true}})
			l, rep := e.Rob(seed, tt.actor, scope, tt.now, tt.args)
			if !errors.Is(rep.Err, tt.want) {
				t.Errorf("Err = %v, want %v", rep.Err, tt.want)
			}
			if rep.Changed {
				t.Error("Changed = true, want false")
			}
			if l["ub"].Balance != 5 {
				t.Error("ledger changed on a failed rob")
			}
		})
	}
}

func TestRobSelfConservesBalance(t *testing.T) {
	seed := seeded(domain.Account{ExternalID: "ua", Nickname: "Alice", Balance: 5, Scope: scope})
	e := newEngine(&scriptRand{ints: []int{1}, chances: []bool{true}}) // amount 2, success

	l, rep := e.Rob(seed, "ua", scope, weekday, []string{"Alice"})

	if rep.Err != nil {
		t.Fatalf("Err = %v, want nil", rep.Err)
	}
	if !rep.Changed {
		t.Error("Changed = false, want true (the cooldown must commit)")
	}
	a := l["ua"]
	if a.Balance != 5 {
		t.Errorf("Balance = %d, want 5 (robbing yourself must not create or destroy bread)", a.Balance)
	}
	if a.LastRobAt != 10000 {
		t.Errorf("LastRobAt = %d, want 10000", a.LastRobAt)
	}
}

func TestRobClampsToTargetBalance(t *testing.T) {
	seed := seeded(
		domain.Account{ExternalID: "ua", Nickname: "Alice", Scope: scope},
		domain.Account{ExternalID: "ub", Nickname: "Bob", Balance: 1, Scope: scope},
	)
	e := newEngine(&scriptRand{ints: []int{2}, chances: []bool{true}}) // amount 3

	l, rep := e.Rob(seed, "ua", scope, weekday, []string{"Bob"})
	if rep.Err != nil {
		t.Fatalf("Err = %v", rep.Err)
	}
	if l["ua"].Balance != 1 || l["ub"].Balance != 0 {
		t.Errorf("balances = %d/%d, want 1/0", l["ua"].Balance, l["ub"].Balance)
	}
	if l["ub"].Balance < 0 {
		t.Error("target balance went negative")
	}
}

func TestRankFiltersAndSortsByScope(t *testing.T) {
	// Scenario D.
	seed := seeded(
		domain.Account{ExternalID: "u1", Nickname: "Mid", Balance: 3, Scope: scope, CreatedAt: 3},
		domain.Account{ExternalID: "u2", Nickname: "Rich", Balance: 5, Scope: scope, CreatedAt: 1},
		domain.Account{ExternalID: "u3", Nickname: "Poor", Balance: 1, Scope: scope, CreatedAt: 2},
		domain.Account{ExternalID: "u4", Nickname: "Other", Balance: 100, Scope: "group-2", CreatedAt: 1},
	)
	e := newEngine(nil)

	_, rep := e.Rank(seed, "u1", scope, weekday, nil)

	want := "bread ranking:\n1. Rich — 5\n2. Mid — 3\n3. Poor — 1"
	if rep.Text != want {
		t.Errorf("Text = %q, want %q", rep.Text, want)
	}
}

func TestRankTieBreaksByRegistrationOrder(t *testing.T) {
	seed := seeded(
		domain.Account{ExternalID: "u1", Nickname: "Later", Balance: 2, Scope: scope, CreatedAt: 20},
		domain.Account{ExternalID: "u2", Nickname: "First", Balance: 2, Scope: scope, CreatedAt: 10},
	)
	e := newEngine(nil)

	_, rep := e.Rank(seed, "u1", scope, weekday, nil)

	want := "bread ranking:\n1. First — 2\n2. Later — 2"
	if rep.Text != want {
		t.Errorf("Text = %q, want %q", rep.Text, want)
	}
}

func TestCheck(t *testing.T) {
	seed := seeded(domain.Account{ExternalID: "u1", Nickname: "Alice", Balance: 7, Scope: scope})
	e := newEngine(nil)

	_, rep := e.Check(seed, "u1", scope, weekday, nil)
	if rep.Text != "Alice has 7 bread" {
		t.Errorf("Text = %q", rep.Text)
	}

	_, rep = e.Check(seed, "nobody", scope, weekday, nil)
	if rep.Text != "" || rep.Err != nil {
		t.Errorf("unregistered check = %+v, want silent no-op", rep)
	}
}

func TestFmtWait(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0s"},
		{45, "45s"},
		{60, "1m"},
		{5300, "1h28m"},
		{7200, "2h"},
	}
	for _, tt := range tests {
		if got := fmtWait(tt.secs); got != tt.want {
			t.Errorf("fmtWait(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
