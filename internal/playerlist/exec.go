// Package playerlist implements the external online-player lookup by
// shelling out to a configured command and scraping its output. It is a
// side collaborator: it never touches the ledger, and any failure is
// reported as "no data" rather than raised.
package playerlist

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Exec runs argv with a deadline and returns one player name per
// non-empty output line.
type Exec struct {
	argv    []string
	timeout time.Duration
}

func NewExec(argv []string, timeout time.Duration) *Exec {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Exec{argv: argv, timeout: timeout}
}

func (e *Exec) Online(ctx context.Context) ([]string, error) {
	if len(e.argv) == 0 {
		return nil, errors.New("playerlist: no lookup command configured")
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.argv[0], e.argv[1:]...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("playerlist: %s: %w", e.argv[0], err)
	}
	return parseLines(string(out)), nil
}

func parseLines(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names
}
