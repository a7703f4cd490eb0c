package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/dmitrijs2005/taskly/internal/client/client"
	"github.com/dmitrijs2005/taskly/internal/client/models"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome flattens a Result so results of different payload types can be
// compared in one table.
type outcome struct {
	OK      bool
	Kind    result.Kind
	Payload any
}

func outcomeOf[T any](r result.Result[T]) outcome {
	o := outcome{OK: r.OK, Payload: r.Payload}
	if r.Err != nil {
		o.Kind = r.Err.Kind
	}
	return o
}

// seeded registers alice online and writes two tasks locally, archiving
// the second: loc1 is active, loc2 is archived.
func seeded(t *testing.T) *fixture {
	t.Helper()
	f := setup(t)
	f.register(t)
	ctx := context.Background()

	f.conn.online = false
	require.True(t, f.gw.CreateTask(ctx, taskInput("first")).OK)
	require.True(t, f.gw.CreateTask(ctx, taskInput("second")).OK)
	require.True(t, f.gw.ArchiveTask(ctx, "loc2").OK)
	f.conn.online = true
	f.remote.calls = nil
	return f
}

func TestUnavailable_MatchesOfflineResult(t *testing.T) {
	bio := "offline bio"
	bob := models.Registration{Email: "bob@b.com", Password: "secret2", FirstName: "Bob", LastName: "C"}

	tests := []struct {
		name   string
		remote string
		run    func(ctx context.Context, g *Gateway) outcome
	}{
		{"register", "Register", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.Register(ctx, bob))
		}},
		{"login", "Login", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.Login(ctx, models.Credentials{Email: alice.Email, Password: alice.Password}))
		}},
		{"login with wrong password", "Login", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.Login(ctx, models.Credentials{Email: alice.Email, Password: "nope123"}))
		}},
		{"get profile", "GetProfile", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.GetProfile(ctx))
		}},
		{"update profile", "UpdateProfile", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.UpdateProfile(ctx, models.ProfilePatch{Bio: &bio}))
		}},
		{"change password", "ChangePassword", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.ChangePassword(ctx, models.PasswordChange{CurrentPassword: alice.Password, NewPassword: "next12"}))
		}},
		{"list tasks", "ListTasks", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.ListTasks(ctx))
		}},
		{"update task", "UpdateTask", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.UpdateTask(ctx, "loc1", taskInput("renamed")))
		}},
		{"update missing task", "UpdateTask", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.UpdateTask(ctx, "nope", taskInput("renamed")))
		}},
		{"delete task", "DeleteTask", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.DeleteTask(ctx, "loc1"))
		}},
		{"archive task", "ArchiveTask", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.ArchiveTask(ctx, "loc1"))
		}},
		{"list archived", "ListArchived", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.ListArchived(ctx))
		}},
		{"restore task", "RestoreTask", func(ctx context.Context, g *Gateway) outcome {
			return outcomeOf(g.RestoreTask(ctx, "loc2"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()

			offline := seeded(t)
			offline.conn.online = false
			want := tt.run(ctx, offline.gw)

			unreachable := seeded(t)
			unreachable.remote.err = fmt.Errorf("dial tcp: %w", client.ErrUnavailable)
			got := tt.run(ctx, unreachable.gw)

			assert.Equal(t, want, got)
			assert.Equal(t, 1, unreachable.remote.called(tt.remote), "remote is tried first")
			assert.Zero(t, offline.remote.called(tt.remote), "offline skips the remote")
			assert.Zero(t, unreachable.notify.n, "unreachable never expires the session")
		})
	}
}

func TestUnavailable_OfflineWritesSurviveOnlineList(t *testing.T) {
	f := setup(t)
	f.register(t)
	ctx := context.Background()
	f.remote.tasks = []models.Task{{ID: "srv1", Title: "on server"}}

	f.remote.err = fmt.Errorf("dial tcp: %w", client.ErrUnavailable)
	c := f.gw.CreateTask(ctx, taskInput("written offline"))
	require.True(t, c.OK, c.Message())
	assert.True(t, c.Payload.Pending)

	f.remote.err = nil
	online := f.gw.ListTasks(ctx)
	require.True(t, online.OK)
	assert.Equal(t, []models.Task{{ID: "srv1", Title: "on server"}}, online.Payload)

	tasks, err := f.local.Tasks(ctx, alice.Email)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "srv1", tasks[0].ID)
	assert.Equal(t, c.Payload.ID, tasks[1].ID)

	f.conn.online = false
	local := f.gw.ListTasks(ctx)
	require.True(t, local.OK)
	assert.Len(t, local.Payload, 2)
}
