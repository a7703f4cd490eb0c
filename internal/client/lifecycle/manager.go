package lifecycle

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/dmitrijs2005/taskly/internal/logging"
)

// SwipeThreshold is the horizontal distance past which a swipe commits.
const SwipeThreshold = 80

// Gateway is the task half of the Sync Gateway.
type Gateway interface {
	ListTasks(ctx context.Context) result.Result[[]models.Task]
	ListArchived(ctx context.Context) result.Result[[]models.Task]
	CreateTask(ctx context.Context, in models.TaskInput) result.Result[models.Task]
	UpdateTask(ctx context.Context, id string, in models.TaskInput) result.Result[models.Task]
	DeleteTask(ctx context.Context, id string) result.Result[struct{}]
	ArchiveTask(ctx context.Context, id string) result.Result[models.Task]
	RestoreTask(ctx context.Context, id string) result.Result[models.Task]
}

// Rearmer rebuilds reminder timers from the active set.
type Rearmer interface {
	Rebuild(ctx context.Context, tasks []models.Task) (int, error)
}

type Manager struct {
	gw      Gateway
	sched   Rearmer
	refresh func()
	loc     *time.Location
	log     logging.Logger

	mu       sync.Mutex
	active   []models.Task
	inflight map[string]bool
}

type Option func(*Manager)

// WithRefresh sets the collaborator notified after every mutation.
func WithRefresh(fn func()) Option {
	return func(m *Manager) { m.refresh = fn }
}

// WithLocation sets the zone task dates and times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func NewManager(gw Gateway, sched Rearmer, opts ...Option) *Manager {
	m := &Manager{
		gw:       gw,
		sched:    sched,
		refresh:  func() {},
		loc:      time.Local,
		log:      logging.Nop(),
		inflight: make(map[string]bool),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Load fetches the active set and arms its reminders. It is the startup path.
func (m *Manager) Load(ctx context.Context) result.Result[[]models.Task] {
	r := m.gw.ListTasks(ctx)
	if !r.OK {
		return r
	}
	m.setActive(r.Payload)
	m.rearm(ctx, r.Payload)
	return r
}

// Active is the last loaded active set.
func (m *Manager) Active() []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Task(nil), m.active...)
}

func (m *Manager) Archived(ctx context.Context) result.Result[[]models.Task] {
	return m.gw.ListArchived(ctx)
}

// Search filters the active set by a case-insensitive substring of the
// title or description.
func (m *Manager) Search(q string) []models.Task {
	var out []models.Task
	for _, t := range m.Active() {
		if t.Matches(q) {
			out = append(out, t)
		}
	}
	return out
}

func (m *Manager) Create(ctx context.Context, form TaskForm) result.Result[models.Task] {
	in, verr := form.Input(m.loc)
	if verr != nil {
		return result.Result[models.Task]{Err: verr}
	}
	return mutate(ctx, m, "create", func(ctx context.Context) result.Result[models.Task] {
		return m.gw.CreateTask(ctx, in)
	})
}

// Edit replaces the editable fields of an active task and recomputes its
// reminder.
func (m *Manager) Edit(ctx context.Context, id string, form TaskForm) result.Result[models.Task] {
	in, verr := form.Input(m.loc)
	if verr != nil {
		return result.Result[models.Task]{Err: verr}
	}
	return mutate(ctx, m, "edit:"+id, func(ctx context.Context) result.Result[models.Task] {
		return m.gw.UpdateTask(ctx, id, in)
	})
}

func (m *Manager) Archive(ctx context.Context, id string) result.Result[models.Task] {
	return mutate(ctx, m, "archive:"+id, func(ctx context.Context) result.Result[models.Task] {
		return m.gw.ArchiveTask(ctx, id)
	})
}

func (m *Manager) Restore(ctx context.Context, id string) result.Result[models.Task] {
	return mutate(ctx, m, "restore:"+id, func(ctx context.Context) result.Result[models.Task] {
		return m.gw.RestoreTask(ctx, id)
	})
}

// Delete is irreversible and works on active and archived tasks alike.
func (m *Manager) Delete(ctx context.Context, id string) result.Result[struct{}] {
	return mutate(ctx, m, "delete:"+id, func(ctx context.Context) result.Result[struct{}] {
		return m.gw.DeleteTask(ctx, id)
	})
}

// EmptyArchive permanently deletes every archived task and reports how many
// went. It stops at the first failed delete; tasks deleted before that stay
// deleted and are counted in the payload.
func (m *Manager) EmptyArchive(ctx context.Context) result.Result[int] {
	if !m.acquire("empty-archive") {
		return result.Fail[int](result.KindBusy, "")
	}
	defer m.release("empty-archive")

	list := m.gw.ListArchived(ctx)
	if !list.OK {
		return result.Result[int]{Err: list.Err}
	}
	n := 0
	var failed *result.Error
	for _, t := range list.Payload {
		if r := m.gw.DeleteTask(ctx, t.ID); !r.OK {
			failed = r.Err
			break
		}
		n++
	}
	if n > 0 {
		m.afterMutation(ctx)
	}
	if failed != nil {
		return result.Result[int]{Payload: n, Err: failed}
	}
	return result.Ok(n)
}

type SwipeAction int

const (
	SwipeCancel SwipeAction = iota
	SwipeArchive
	SwipeDelete
)

func (a SwipeAction) String() string {
	switch a {
	case SwipeArchive:
		return "archive"
	case SwipeDelete:
		return "delete"
	default:
		return "cancel"
	}
}

// ResolveSwipe maps a horizontal drag to an action: left archives, right
// deletes, anything within the threshold snaps back.
func ResolveSwipe(dx float64) SwipeAction {
	if math.Abs(dx) <= SwipeThreshold {
		return SwipeCancel
	}
	if dx < 0 {
		return SwipeArchive
	}
	return SwipeDelete
}

// Swipe resolves dx and applies the resulting action to id.
func (m *Manager) Swipe(ctx context.Context, id string, dx float64) (SwipeAction, *result.Error) {
	action := ResolveSwipe(dx)
	switch action {
	case SwipeArchive:
		return action, m.Archive(ctx, id).Err
	case SwipeDelete:
		return action, m.Delete(ctx, id).Err
	}
	return action, nil
}

// mutate runs op under the in-flight guard for key and, on success, reloads
// the active set, rebuilds reminders and refreshes the collaborator.
func mutate[T any](ctx context.Context, m *Manager, key string, op func(ctx context.Context) result.Result[T]) result.Result[T] {
	if !m.acquire(key) {
		return result.Fail[T](result.KindBusy, "")
	}
	defer m.release(key)

	r := op(ctx)
	if !r.OK {
		return r
	}
	m.afterMutation(ctx)
	return r
}

func (m *Manager) afterMutation(ctx context.Context) {
	list := m.gw.ListTasks(ctx)
	if list.OK {
		m.setActive(list.Payload)
		m.rearm(ctx, list.Payload)
	} else {
		m.log.Warn(ctx, "could not reload tasks after mutation", "err", list.Err)
	}
	m.refresh()
}

func (m *Manager) rearm(ctx context.Context, tasks []models.Task) {
	if m.sched == nil {
		return
	}
	if _, err := m.sched.Rebuild(ctx, tasks); err != nil {
		m.log.Error(ctx, "failed to persist reminders", "err", err)
	}
}

func (m *Manager) setActive(tasks []models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = append([]models.Task(nil), tasks...)
}

func (m *Manager) acquire(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inflight[key] {
		return false
	}
	m.inflight[key] = true
	return true
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inflight, key)
}
