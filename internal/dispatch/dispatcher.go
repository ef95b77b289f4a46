// Package dispatch parses inbound chat commands, routes them to the
// economy engine and serializes every ledger-touching command behind a
// single mutex. The reload-before-every-command policy means each
// command observes the most recently committed ledger, and the global
// critical section (reload → compute → save) rules out lost updates.
package dispatch

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"breadbot/internal/domain"
	"breadbot/internal/economy"
)

// Verb is the closed set of commands the bot understands. Anything else
// is silently ignored.
type Verb int

const (
	VerbUnknown Verb = iota
	VerbClaim
	VerbRob
	VerbRank
	VerbCheck
	VerbPlayers
)

var verbNames = map[string]Verb{
	"claim":   VerbClaim,
	"rob":     VerbRob,
	"rank":    VerbRank,
	"check":   VerbCheck,
	"players": VerbPlayers,
	"list":    VerbPlayers, // alias
}

func (v Verb) String() string {
	switch v {
	case VerbClaim:
		return "claim"
	case VerbRob:
		return "rob"
	case VerbRank:
		return "rank"
	case VerbCheck:
		return "check"
	case VerbPlayers:
		return "players"
	default:
		return "unknown"
	}
}

// Command is one inbound chat message addressed to the bot.
type Command struct {
	ID    string // correlation id; assigned when empty
	From  domain.ExternalID
	Scope domain.ScopeID
	Text  string
}

const storageTroubleReply = "the bakery is having trouble, try again in a bit"

// Dispatcher owns the ledger critical section. The engine never sees
// the lock; it only transforms the ledger value it is handed.
type Dispatcher struct {
	mu      sync.Mutex
	store   domain.Store
	engine  *economy.Engine
	sink    domain.ReplySink
	players domain.PlayerLister
	now     func() time.Time
}

func New(store domain.Store, engine *economy.Engine, sink domain.ReplySink, players domain.PlayerLister) *Dispatcher {
	return &Dispatcher{
		store:   store,
		engine:  engine,
		sink:    sink,
		players: players,
		now:     time.Now,
	}
}

// Handle processes one inbound command end to end and emits at most one
// reply through the sink. Safe for concurrent use.
func (d *Dispatcher) Handle(ctx context.Context, cmd Command) {
	fields := strings.Fields(cmd.Text)
	if len(fields) == 0 {
		return
	}
	verb, ok := verbNames[fields[0]]
	if !ok {
		ignoredCommands.Inc()
		return
	}
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	args := fields[1:]

	commandsTotal.WithLabelValues(verb.String()).Inc()
	timer := prometheus.NewTimer(commandDuration.WithLabelValues(verb.String()))
	defer timer.ObserveDuration()
	log.Printf("dispatch: cmd=%s verb=%s from=%s scope=%s", cmd.ID, verb, cmd.From, cmd.Scope)

	// The player lookup never touches the ledger and runs outside the
	// critical section.
	if verb == VerbPlayers {
		d.reply(ctx, cmd, d.playersReply(ctx))
		return
	}

	d.reply(ctx, cmd, d.runLedgerOp(ctx, verb, cmd, args))
}

func (d *Dispatcher) reply(ctx context.Context, cmd Command, text string) {
	if text == "" {
		return
	}
	d.sink.Reply(ctx, cmd.Scope, cmd.ID, text)
}

// runLedgerOp holds the global critical section: reload the ledger,
// apply the engine, save if anything changed. The reply is emitted by
// the caller after the lock is released.
func (d *Dispatcher) runLedgerOp(ctx context.Context, verb Verb, cmd Command, args []string) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ledger, err := d.store.Load(ctx)
	if err != nil {
		log.Printf("dispatch: cmd=%s ledger load failed: %v", cmd.ID, err)
		storageErrors.WithLabelValues("load").Inc()
		commandFailures.WithLabelValues(failureReason(domain.ErrStorageUnavailable)).Inc()
		return storageTroubleReply
	}

	var op func(domain.Ledger, domain.ExternalID, domain.ScopeID, time.Time, []string) (domain.Ledger, economy.Reply)
	switch verb {
	case VerbClaim:
		op = d.engine.Claim
	case VerbRob:
		op = d.engine.Rob
	case VerbRank:
		op = d.engine.Rank
	case VerbCheck:
		op = d.engine.Check
	default:
		return ""
	}

	next, rep := op(ledger, cmd.From, cmd.Scope, d.now(), args)
	if rep.Err != nil {
		commandFailures.WithLabelValues(failureReason(rep.Err)).Inc()
	}
	if rep.Changed {
		if err := d.store.Save(ctx, next); err != nil {
			log.Printf("dispatch: cmd=%s ledger save failed: %v", cmd.ID, err)
			storageErrors.WithLabelValues("save").Inc()
			commandFailures.WithLabelValues(failureReason(domain.ErrStorageUnavailable)).Inc()
			return storageTroubleReply
		}
		accountsGauge.Set(float64(len(next)))
	}
	return rep.Text
}

func (d *Dispatcher) playersReply(ctx context.Context) string {
	if d.players == nil {
		return ""
	}
	names, err := d.players.Online(ctx)
	if err != nil {
		log.Printf("dispatch: player lookup failed: %v", err)
		return "no player data right now"
	}
	if len(names) == 0 {
		return "nobody is online"
	}
	var b strings.Builder
	b.WriteString("online players:")
	for _, n := range names {
		b.WriteString("\n- ")
		b.WriteString(n)
	}
	return b.String()
}

// failureReason maps a domain sentinel to a stable metric label.
func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, domain.ErrNicknameTaken):
		return "nickname_taken"
	case errors.Is(err, domain.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, domain.ErrTargetNotFound):
		return "target_not_found"
	case errors.Is(err, domain.ErrScopeMismatch):
		return "scope_mismatch"
	case errors.Is(err, domain.ErrTargetEmpty):
		return "target_empty"
	case errors.Is(err, domain.ErrOnCooldown):
		return "on_cooldown"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "other"
	}
}
