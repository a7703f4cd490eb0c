package store

import (
	"context"

	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/repositories/records"
	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/dbx"
)

// sets is the pair of collections a task can live in, loaded inside one tx.
type sets struct {
	repo    records.Repository
	owner   string
	active  []models.Task
	archive []models.Task
}

func (s *Store) loadSets(ctx context.Context, tx dbx.DBTX, owner string) (*sets, error) {
	repo := s.recordsRepo(tx)
	active, err := getJSON(ctx, repo, key(records.PurposeTasks, owner), []models.Task{})
	if err != nil {
		return nil, err
	}
	archive, err := getJSON(ctx, repo, key(records.PurposeArchive, owner), []models.Task{})
	if err != nil {
		return nil, err
	}
	return &sets{repo: repo, owner: owner, active: active, archive: archive}, nil
}

func (st *sets) saveActive(ctx context.Context) error {
	return putJSON(ctx, st.repo, key(records.PurposeTasks, st.owner), nonNil(st.active))
}

func (st *sets) saveArchive(ctx context.Context) error {
	return putJSON(ctx, st.repo, key(records.PurposeArchive, st.owner), nonNil(st.archive))
}

func remove(tasks []models.Task, i int) []models.Task {
	return append(tasks[:i:i], tasks[i+1:]...)
}

// AddTask appends a new active task with a local id.
func (s *Store) AddTask(ctx context.Context, owner string, in models.TaskInput) (models.Task, error) {
	t := models.Task{ID: s.newID(), CreatedAt: s.now().UTC(), Pending: true}
	in.ApplyTo(&t)

	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (models.Task, error) {
		st, err := s.loadSets(ctx, tx, owner)
		if err != nil {
			return models.Task{}, err
		}
		st.active = append(st.active, t)
		return t, st.saveActive(ctx)
	})
}

// UpdateTask overwrites the editable fields of an active task.
func (s *Store) UpdateTask(ctx context.Context, owner, id string, in models.TaskInput) (models.Task, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (models.Task, error) {
		st, err := s.loadSets(ctx, tx, owner)
		if err != nil {
			return models.Task{}, err
		}
		i := models.FindTask(st.active, id)
		if i < 0 {
			return models.Task{}, common.ErrorNotFound
		}
		in.ApplyTo(&st.active[i])
		st.active[i].Pending = true
		return st.active[i], st.saveActive(ctx)
	})
}

// DeleteTask removes id from whichever set holds it.
func (s *Store) DeleteTask(ctx context.Context, owner, id string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		st, err := s.loadSets(ctx, tx, owner)
		if err != nil {
			return err
		}
		if i := models.FindTask(st.active, id); i >= 0 {
			st.active = remove(st.active, i)
			return st.saveActive(ctx)
		}
		if i := models.FindTask(st.archive, id); i >= 0 {
			st.archive = remove(st.archive, i)
			return st.saveArchive(ctx)
		}
		return common.ErrorNotFound
	})
}

// ArchiveTask moves id from the active set to the archive and stamps it.
func (s *Store) ArchiveTask(ctx context.Context, owner, id string) (models.Task, error) {
	at := s.now().UTC()
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (models.Task, error) {
		st, err := s.loadSets(ctx, tx, owner)
		if err != nil {
			return models.Task{}, err
		}
		i := models.FindTask(st.active, id)
		if i < 0 {
			return models.Task{}, common.ErrorNotFound
		}
		t := st.active[i]
		t.Archived = true
		t.ArchivedAt = &at
		t.Pending = true

		st.active = remove(st.active, i)
		st.archive = append(st.archive, t)
		if err := st.saveActive(ctx); err != nil {
			return models.Task{}, err
		}
		return t, st.saveArchive(ctx)
	})
}

// RestoreTask moves id from the archive back to the active set.
func (s *Store) RestoreTask(ctx context.Context, owner, id string) (models.Task, error) {
	return dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) (models.Task, error) {
		st, err := s.loadSets(ctx, tx, owner)
		if err != nil {
			return models.Task{}, err
		}
		i := models.FindTask(st.archive, id)
		if i < 0 {
			return models.Task{}, common.ErrorNotFound
		}
		t := st.archive[i]
		t.Archived = false
		t.ArchivedAt = nil
		t.Pending = true

		st.archive = remove(st.archive, i)
		st.active = append(st.active, t)
		if err := st.saveArchive(ctx); err != nil {
			return models.Task{}, err
		}
		return t, st.saveActive(ctx)
	})
}

// PutTask mirrors a task the server returned: it lands in the set matching
// its Archived flag and is removed from the other one.
func (s *Store) PutTask(ctx context.Context, owner string, t models.Task) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		st, err := s.loadSets(ctx, tx, owner)
		if err != nil {
			return err
		}
		if i := models.FindTask(st.active, t.ID); i >= 0 {
			st.active = remove(st.active, i)
		}
		if i := models.FindTask(st.archive, t.ID); i >= 0 {
			st.archive = remove(st.archive, i)
		}
		t.Pending = false
		if t.Archived {
			if t.ArchivedAt == nil {
				at := s.now().UTC()
				t.ArchivedAt = &at
			}
			st.archive = append(st.archive, t)
		} else {
			t.ArchivedAt = nil
			st.active = append(st.active, t)
		}
		if err := st.saveActive(ctx); err != nil {
			return err
		}
		return st.saveArchive(ctx)
	})
}

// ReplaceTasks overwrites the active set with the authoritative list and
// drops any of those ids from the archive. Pending tasks are kept where they
// are and win over a server copy with the same id.
func (s *Store) ReplaceTasks(ctx context.Context, owner string, tasks []models.Task) error {
	return s.replace(ctx, owner, tasks, false)
}

// ReplaceArchive is ReplaceTasks for the archive set.
func (s *Store) ReplaceArchive(ctx context.Context, owner string, tasks []models.Task) error {
	return s.replace(ctx, owner, tasks, true)
}

func filterTasks(in []models.Task, keep func(models.Task) bool) []models.Task {
	out := make([]models.Task, 0, len(in))
	for _, t := range in {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func isPending(t models.Task) bool { return t.Pending }

func (s *Store) replace(ctx context.Context, owner string, tasks []models.Task, archived bool) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		st, err := s.loadSets(ctx, tx, owner)
		if err != nil {
			return err
		}

		pending := make(map[string]struct{})
		for _, t := range append(filterTasks(st.active, isPending), filterTasks(st.archive, isPending)...) {
			pending[t.ID] = struct{}{}
		}
		listed := make(map[string]struct{}, len(tasks))
		fresh := make([]models.Task, 0, len(tasks))
		for _, t := range tasks {
			listed[t.ID] = struct{}{}
			if _, ok := pending[t.ID]; ok {
				continue
			}
			t.Pending = false
			fresh = append(fresh, t)
		}

		target, other := &st.active, &st.archive
		if archived {
			target, other = &st.archive, &st.active
		}
		*target = append(fresh, filterTasks(*target, isPending)...)
		*other = filterTasks(*other, func(t models.Task) bool {
			if t.Pending {
				return true
			}
			_, dup := listed[t.ID]
			return !dup
		})

		if err := st.saveActive(ctx); err != nil {
			return err
		}
		return st.saveArchive(ctx)
	})
}
