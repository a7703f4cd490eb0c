package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskly/internal/client/client"
	"github.com/dmitrijs2005/taskly/internal/client/config"
	"github.com/dmitrijs2005/taskly/internal/client/lifecycle"
	"github.com/dmitrijs2005/taskly/internal/client/reminders"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/dmitrijs2005/taskly/internal/client/services"
	"github.com/dmitrijs2005/taskly/internal/client/session"
	"github.com/dmitrijs2005/taskly/internal/client/store"
	"github.com/dmitrijs2005/taskly/internal/logging"
)

type App struct {
	gw      *services.Gateway
	tasks   *lifecycle.Manager
	sched   *reminders.Scheduler
	watcher *services.Watcher
	log     logging.Logger
	reader  *bufio.Reader

	outMu sync.Mutex
	out   io.Writer

	db *sql.DB
}

// NewApp opens the local database and wires every client component.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, cfg.LogLevel)

	db, err := store.OpenDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "err", err)
		return nil, err
	}

	sess := session.New()
	api := client.NewHTTPClient(cfg.ServerBaseURL, cfg.RequestTimeout, sess)

	a := assemble(api, store.New(db), sess, cfg.OnlineCheckInterval, log, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

// assemble builds an App around an already constructed client and store.
func assemble(api client.Client, st *store.Store, sess *session.Session, interval time.Duration,
	log logging.Logger, in io.Reader, out io.Writer) *App {

	a := &App{
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
	}
	a.watcher = services.NewWatcher(api, interval, log)
	a.watcher.OnChange(func(m services.Mode) {
		a.printf("Switched to %s mode\n", m)
	})
	a.gw = services.NewGateway(api, st, sess,
		services.WithConnectivity(a.watcher),
		services.WithNotifier(a),
		services.WithLogger(log),
	)
	a.sched = reminders.New(a.onReminder,
		reminders.WithPersister(a.gw),
		reminders.WithLogger(log),
	)
	a.tasks = lifecycle.NewManager(a.gw, a.sched,
		lifecycle.WithRefresh(a.refresh),
		lifecycle.WithLogger(log),
	)
	return a
}

// Run blocks until the user exits or stdin is closed.
func (a *App) Run(ctx context.Context) {
	defer a.close()

	a.printf("Welcome to Taskly CLI (type 'help' for commands)\n")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.watcher.Check(ctx)
	go a.watcher.Run(ctx)

	a.restore(ctx)
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) close() {
	a.sched.Stop()
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error(context.Background(), "error closing database", "err", err)
		}
	}
}

// restore resumes the previous session, if any, and arms its reminders.
func (a *App) restore(ctx context.Context) {
	r := a.gw.RestoreSession(ctx)
	if !r.OK {
		if !r.Is(result.KindSessionExpired) {
			a.log.Warn(ctx, "could not restore session", "err", r.Err)
		}
		a.printf("Please login or register.\n")
		return
	}
	a.printf("Welcome back, %s!\n", r.Payload.DisplayName())
	a.loadTasks(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.gw.Session().Authenticated()
}

func (a *App) status() string {
	s := ""
	if u, ok := a.gw.Session().User(); ok {
		s = u.Email + " "
	}
	return fmt.Sprintf("(%s%s)", s, a.watcher.Mode())
}

// SessionExpired implements services.Notifier. The REPL reports the failed
// command; here only the timers of the old session are dropped.
func (a *App) SessionExpired() {
	a.sched.Stop()
}

func (a *App) onReminder(e reminders.Event) {
	a.printf("\nReminder: %s (at %s)\n", e.Title, e.FiresAt.Local().Format("2006-01-02 15:04"))
}

// refresh re-renders the active list after a mutation.
func (a *App) refresh() {
	a.printTasks(a.tasks.Active())
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// failed converts a failed result into an error for the REPL to report.
func failed(e *result.Error) error {
	if e == nil {
		return nil
	}
	return e
}

// userMessage is the text shown for err.
func userMessage(err error) string {
	var re *result.Error
	if errors.As(err, &re) {
		return result.Result[struct{}]{Err: re}.Message()
	}
	return err.Error()
}
