// Package economy implements the pure state-transition logic of the
// bread economy: registration, claim, rob, rank and balance check.
// Operations never mutate the ledger they are given; each returns a new
// ledger value (or the unchanged input on failure) so the dispatcher
// can keep a single-writer commit discipline.
package economy

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"breadbot/internal/domain"
)

// Rules holds the tunable economy constants. Defaults match the bot's
// long-standing behavior; the config file may override them.
type Rules struct {
	ClaimCooldown time.Duration
	RobCooldown   time.Duration

	WeekdayRewardMin int64
	WeekdayRewardMax int64
	WeekendRewardMin int64
	WeekendRewardMax int64

	RobAmountMax int64
	RobChance    float64
}

// DefaultRules returns the production economy constants.
func DefaultRules() Rules {
	return Rules{
		ClaimCooldown:    5400 * time.Second,
		RobCooldown:      5400 * time.Second,
		WeekdayRewardMin: 1,
		WeekdayRewardMax: 2,
		WeekendRewardMin: 2,
		WeekendRewardMax: 4,
		RobAmountMax:     3,
		RobChance:        0.85,
	}
}

// Reply is the outcome of one engine operation. Text is the user-facing
// reply ("" means stay silent), Err classifies a failure using the
// domain sentinels, and Changed reports whether the returned ledger
// differs from the input and must be saved.
type Reply struct {
	Text    string
	Err     error
	Changed bool
}

// Engine evaluates economy operations. It is pure with respect to the
// ledger and draws randomness only from the injected source.
type Engine struct {
	rules Rules
	rand  domain.RandomSource
}

func New(rules Rules, src domain.RandomSource) *Engine {
	return &Engine{rules: rules, rand: src}
}

// Claim registers the caller on first contact (args[0] is the desired
// nickname) and then attempts a claim. A freshly registered account has
// zero timestamps, so it is immediately eligible once the wall clock is
// past the cooldown.
func (e *Engine) Claim(l domain.Ledger, actor domain.ExternalID, scope domain.ScopeID, now time.Time, args []string) (domain.Ledger, Reply) {
	acct, registered := l[actor]
	if !registered {
		if len(args) < 1 {
			return l, Reply{Text: "first claim needs a nickname: claim <name> (no spaces)", Err: domain.ErrInvalidArgument}
		}
		nick := args[0]
		if strings.IndexFunc(nick, unicode.IsSpace) >= 0 {
			return l, Reply{Text: "nicknames cannot contain spaces", Err: domain.ErrInvalidArgument}
		}
		if utf8.RuneCountInString(nick) > domain.NicknameMaxLen {
			return l, Reply{Text: fmt.Sprintf("nicknames can be at most %d characters", domain.NicknameMaxLen), Err: domain.ErrInvalidArgument}
		}
		if _, taken := l.ByNickname(nick); taken {
			return l, Reply{Text: fmt.Sprintf("the name %s is already taken", nick), Err: domain.ErrNicknameTaken}
		}
		acct = domain.Account{
			ExternalID: actor,
			Nickname:   nick,
			Scope:      scope,
			CreatedAt:  now.Unix(),
		}
		l = l.Clone()
		l[actor] = acct
	}

	elapsed := now.Unix() - acct.LastClaimAt
	cooldown := int64(e.rules.ClaimCooldown / time.Second)
	if elapsed < cooldown {
		// Registration above may still need committing.
		return l, Reply{
			Text:    fmt.Sprintf("no bread for you yet, try again in %s", fmtWait(cooldown-elapsed)),
			Err:     domain.ErrOnCooldown,
			Changed: !registered,
		}
	}

	reward := e.drawReward(now)
	if registered {
		l = l.Clone()
	}
	acct.Balance += reward
	acct.LastClaimAt = now.Unix()
	l[actor] = acct
	return l, Reply{
		Text:    fmt.Sprintf("bought %d bread, you now have %d", reward, acct.Balance),
		Changed: true,
	}
}

// drawReward picks the claim reward. Weekends (local wall clock) pay
// more than weekdays.
func (e *Engine) drawReward(now time.Time) int64 {
	min, max := e.rules.WeekdayRewardMin, e.rules.WeekdayRewardMax
	if wd := now.Weekday(); wd == time.Saturday || wd == time.Sunday {
		min, max = e.rules.WeekendRewardMin, e.rules.WeekendRewardMax
	}
	return min + int64(e.rand.IntN(int(max-min)+1))
}

// Rob attempts to steal bread from the account with the given nickname
// (args[0]). Only a successful rob consumes the rob cooldown.
func (e *Engine) Rob(l domain.Ledger, actor domain.ExternalID, scope domain.ScopeID, now time.Time, args []string) (domain.Ledger, Reply) {
	caller, ok := l[actor]
	if !ok {
		return l, Reply{Text: "you need a nickname first: claim <name>", Err: domain.ErrNotRegistered}
	}
	if len(args) < 1 {
		return l, Reply{Text: "usage: rob <nickname>", Err: domain.ErrInvalidArgument}
	}
	target, ok := l.ByNickname(args[0])
	if !ok {
		return l, Reply{Text: fmt.Sprintf("no player named %s", args[0]), Err: domain.ErrTargetNotFound}
	}
	if target.Scope != scope {
		return l, Reply{Text: fmt.Sprintf("%s plays in another group", target.Nickname), Err: domain.ErrScopeMismatch}
	}
	elapsed := now.Unix() - caller.LastRobAt
	cooldown := int64(e.rules.RobCooldown / time.Second)
	if elapsed < cooldown {
		return l, Reply{
			Text: fmt.Sprintf("you cannot rob again yet, wait %s", fmtWait(cooldown-elapsed)),
			Err:  domain.ErrOnCooldown,
		}
	}
	if target.Balance <= 0 {
		return l, Reply{Text: fmt.Sprintf("%s is too poor, rob someone else", target.Nickname), Err: domain.ErrTargetEmpty}
	}

	amount := 1 + int64(e.rand.IntN(int(e.rules.RobAmountMax)))
	if !e.rand.Chance(e.rules.RobChance) {
		return l, Reply{Text: fmt.Sprintf("got nothing, and %s beat you up", target.Nickname)}
	}
	if target.ExternalID == caller.ExternalID {
		// Robbing your own nickname moves nothing but still spends
		// the cooldown.
		l = l.Clone()
		caller.LastRobAt = now.Unix()
		l[caller.ExternalID] = caller
		return l, Reply{
			Text:    fmt.Sprintf("you robbed your own pocket, still %d bread", caller.Balance),
			Changed: true,
		}
	}
	stolen := amount
	if target.Balance < stolen {
		stolen = target.Balance
	}
	l = l.Clone()
	caller.Balance += stolen
	caller.LastRobAt = now.Unix()
	target.Balance -= stolen
	l[caller.ExternalID] = caller
	l[target.ExternalID] = target
	return l, Reply{
		Text:    fmt.Sprintf("stole %d bread, you now have %d\n%s has %d left", stolen, caller.Balance, target.Nickname, target.Balance),
		Changed: true,
	}
}

// Rank lists the accounts in the caller's scope by balance, richest
// first. Ties go to the earlier registration.
func (e *Engine) Rank(l domain.Ledger, _ domain.ExternalID, scope domain.ScopeID, _ time.Time, _ []string) (domain.Ledger, Reply) {
	var accts []domain.Account
	for _, a := range l {
		if a.Scope == scope {
			accts = append(accts, a)
		}
	}
	if len(accts) == 0 {
		return l, Reply{Text: "no one here owns any bread yet"}
	}
	sort.SliceStable(accts, func(i, j int) bool {
		if accts[i].Balance != accts[j].Balance {
			return accts[i].Balance > accts[j].Balance
		}
		if accts[i].CreatedAt != accts[j].CreatedAt {
			return accts[i].CreatedAt < accts[j].CreatedAt
		}
		return accts[i].Nickname < accts[j].Nickname
	})
	var b strings.Builder
	b.WriteString("bread ranking:")
	for i, a := range accts {
		fmt.Fprintf(&b, "\n%d. %s — %d", i+1, a.Nickname, a.Balance)
	}
	return l, Reply{Text: b.String()}
}

// Check reports the caller's own balance. An unregistered caller gets
// no reply at all.
func (e *Engine) Check(l domain.Ledger, actor domain.ExternalID, _ domain.ScopeID, _ time.Time, _ []string) (domain.Ledger, Reply) {
	acct, ok := l[actor]
	if !ok {
		return l, Reply{}
	}
	return l, Reply{Text: fmt.Sprintf("%s has %d bread", acct.Nickname, acct.Balance)}
}

// fmtWait renders a remaining-wait in seconds as a compact h/m/s string.
func fmtWait(secs int64) string {
	if secs <= 0 {
		return "0s"
	}
	h := secs / 3600
	m := secs % 3600 / 60
	s := secs % 60
	var b strings.Builder
	if h > 0 {
		fmt.Fprintf(&b, "%dh", h)
	}
	if m > 0 {
		fmt.Fprintf(&b, "%dm", m)
	}
	if h == 0 && m == 0 {
		fmt.Fprintf(&b, "%ds", s)
	}
	return b.String()
}
