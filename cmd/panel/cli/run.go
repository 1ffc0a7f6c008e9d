// Package cli holds the operational subcommands of the panel binary.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fabrica-erp/panel/internal/gateway"
	"github.com/fabrica-erp/panel/jobs"
)

// Deps are the resources subcommands may need.
type Deps struct {
	API       *gateway.Client
	Account   jobs.ServiceAccount
	RedisAddr string
	Stdout    io.Writer
	Stderr    io.Writer
}

// IsCommand reports whether args start with a known subcommand.
func IsCommand(args []string) bool {
	return len(args) > 0 && (args[0] == "jobs" || args[0] == "export")
}

// Run executes a subcommand and returns the process exit code.
func Run(ctx context.Context, args []string, deps Deps) int {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if len(args) == 0 {
		usage(deps.Stderr)
		return 2
	}
	switch args[0] {
	case "jobs":
		return runJobs(ctx, args[1:], deps)
	case "export":
		return runExport(ctx, args[1:], deps)
	default:
		usage(deps.Stderr)
		return 2
	}
}

func usage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage:")
	_, _ = fmt.Fprintf(w, "  panel jobs trigger <%s>\n", strings.Join(JobNames, "|"))
	_, _ = fmt.Fprintln(w, "  panel jobs inspect [-json] [-scheduled N]")
	_, _ = fmt.Fprintf(w, "  panel export <%s> <file.xlsx|file.csv>\n", strings.Join(Entities, "|"))
}

func runJobs(ctx context.Context, args []string, deps Deps) int {
	if len(args) == 0 {
		usage(deps.Stderr)
		return 2
	}
	c := NewJobsCLI(deps.RedisAddr)
	defer func() { _ = c.Close() }()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			usage(deps.Stderr)
			return 2
		}
		info, err := c.Trigger(ctx, args[1])
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "jobs trigger: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(deps.Stdout, "enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
		return 0
	case "inspect":
		fs := flag.NewFlagSet("jobs inspect", flag.ContinueOnError)
		fs.SetOutput(deps.Stderr)
		asJSON := fs.Bool("json", false, "print JSON")
		scheduled := fs.Int("scheduled", 0, "also list up to N scheduled tasks")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		status, err := c.InspectQueue()
		if err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "jobs inspect: %v\n", err)
			return 1
		}
		if *asJSON {
			if err := json.NewEncoder(deps.Stdout).Encode(status); err != nil {
				_, _ = fmt.Fprintf(deps.Stderr, "jobs inspect: encode json: %v\n", err)
				return 1
			}
		} else {
			renderStatus(deps.Stdout, status)
		}
		if *scheduled > 0 {
			tasks, err := c.ListScheduled(*scheduled)
			if err != nil {
				_, _ = fmt.Fprintf(deps.Stderr, "jobs inspect: %v\n", err)
				return 1
			}
			for _, t := range tasks {
				_, _ = fmt.Fprintf(deps.Stdout, "scheduled %s at %s\n", t.Type, t.NextProcessAt.Format("2006-01-02 15:04:05"))
			}
		}
		return 0
	default:
		usage(deps.Stderr)
		return 2
	}
}

func renderStatus(w io.Writer, s jobs.QueueStatus) {
	_, _ = fmt.Fprintf(w, "queue:     %s\n", s.Queue)
	_, _ = fmt.Fprintf(w, "pending:   %d\n", s.Pending)
	_, _ = fmt.Fprintf(w, "active:    %d\n", s.Active)
	_, _ = fmt.Fprintf(w, "scheduled: %d\n", s.Scheduled)
	_, _ = fmt.Fprintf(w, "retry:     %d\n", s.Retry)
	_, _ = fmt.Fprintf(w, "archived:  %d\n", s.Archived)
	_, _ = fmt.Fprintf(w, "failed today: %d, processed today: %d\n", s.Failed, s.Processed)
}

func runExport(ctx context.Context, args []string, deps Deps) int {
	if len(args) != 2 {
		usage(deps.Stderr)
		return 2
	}
	entity, path := args[0], args[1]
	if deps.API == nil {
		_, _ = fmt.Fprintln(deps.Stderr, "export: api client not configured")
		return 1
	}
	tokens, err := deps.API.Login(ctx, deps.Account.Username, deps.Account.Password)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "export: login with API_SERVICE_USER: %v\n", err)
		return 1
	}
	gw := deps.API.WithSession(gateway.NewMemoryStore(tokens))

	f, err := os.Create(path)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "export: %v\n", err)
		return 1
	}
	n, err := Export(ctx, gw, entity, FormatFor(path), f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		_, _ = fmt.Fprintf(deps.Stderr, "%v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(deps.Stdout, "exported %d %s to %s\n", n, entity, path)
	return 0
}
