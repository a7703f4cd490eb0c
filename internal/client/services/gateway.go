package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/taskly/internal/client/client"
	"github.com/dmitrijs2005/taskly/internal/client/result"
	"github.com/dmitrijs2005/taskly/internal/client/session"
	"github.com/dmitrijs2005/taskly/internal/client/store"
	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/logging"
)

// Notifier receives the session-expired signal.
type Notifier interface {
	SessionExpired()
}

// Connectivity reports whether the server is believed reachable.
type Connectivity interface {
	Online() bool
}

type alwaysOnline struct{}

func (alwaysOnline) Online() bool { return true }

type nopNotifier struct{}

func (nopNotifier) SessionExpired() {}

type Gateway struct {
	remote client.Client
	local  *store.Store
	sess   *session.Session
	conn   Connectivity
	notify Notifier
	log    logging.Logger
	now    func() time.Time
}

type GatewayOption func(*Gateway)

func WithConnectivity(c Connectivity) GatewayOption {
	return func(g *Gateway) { g.conn = c }
}

func WithNotifier(n Notifier) GatewayOption {
	return func(g *Gateway) { g.notify = n }
}

func WithLogger(l logging.Logger) GatewayOption {
	return func(g *Gateway) { g.log = l }
}

func WithClock(now func() time.Time) GatewayOption {
	return func(g *Gateway) { g.now = now }
}

func NewGateway(remote client.Client, local *store.Store, sess *session.Session, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		remote: remote,
		local:  local,
		sess:   sess,
		conn:   alwaysOnline{},
		notify: nopNotifier{},
		log:    logging.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Session exposes the process-scoped session the Gateway owns.
func (g *Gateway) Session() *session.Session {
	return g.sess
}

// call describes one remote-first operation.
type call[T any] struct {
	op string
	// anonymous marks register/login: a 401 there means bad credentials,
	// not an expired session.
	anonymous bool
	remote    func(ctx context.Context) (T, error)
	// mirror runs after remote success; its failures are only logged.
	mirror func(ctx context.Context, v T) error
	local  func(ctx context.Context) (T, error)
}

func run[T any](ctx context.Context, g *Gateway, c call[T]) result.Result[T] {
	if !g.conn.Online() {
		g.log.Debug(ctx, "offline, using local store", "op", c.op)
		return runLocal(ctx, c)
	}

	v, err := c.remote(ctx)
	switch {
	case err == nil:
		if c.mirror != nil {
			if merr := c.mirror(ctx, v); merr != nil {
				g.log.Error(ctx, "local mirror update failed", "op", c.op, "err", merr)
			}
		}
		return result.Ok(v)

	case errors.Is(err, client.ErrUnauthorized):
		if c.anonymous {
			return result.Fail[T](result.KindInvalidCredentials, "Invalid email or password")
		}
		g.expire(ctx, c.op)
		return result.Fail[T](result.KindSessionExpired, "session expired, please log in again")

	case errors.Is(err, client.ErrUnavailable):
		g.log.Warn(ctx, "server unreachable, falling back to local store", "op", c.op, "err", err)
		return runLocal(ctx, c)

	default:
		return fromRemoteError[T](err)
	}
}

func runLocal[T any](ctx context.Context, c call[T]) result.Result[T] {
	if c.local == nil {
		return result.Fail[T](result.KindUnreachable, "server unreachable")
	}
	v, err := c.local(ctx)
	if err != nil {
		return fromLocalError[T](err)
	}
	return result.Ok(v)
}

// expire drops the session everywhere and tells the collaborator.
func (g *Gateway) expire(ctx context.Context, op string) {
	g.log.Warn(ctx, "session expired", "op", op)
	g.sess.Clear()
	if err := g.local.ClearSession(ctx); err != nil {
		g.log.Error(ctx, "failed to clear stored session", "err", err)
	}
	g.notify.SessionExpired()
}

// owner is the current user's email, or a SessionExpired failure.
func (g *Gateway) owner() (string, *result.Error) {
	email := g.sess.Email()
	if email == "" {
		return "", &result.Error{Kind: result.KindSessionExpired, Detail: "not logged in"}
	}
	return email, nil
}

func fromRemoteError[T any](err error) result.Result[T] {
	var rf *client.RequestFailedError
	if !errors.As(err, &rf) {
		return result.Fail[T](result.KindInternal, err.Error())
	}
	kind := result.KindRequestFailed
	switch rf.Status {
	case http.StatusNotFound:
		kind = result.KindTaskNotFound
	case http.StatusConflict:
		kind = result.KindConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		kind = result.KindValidationFailed
	}
	detail := rf.Message
	if detail == "" {
		detail = http.StatusText(rf.Status)
	}
	return result.Result[T]{Err: &result.Error{Kind: kind, Detail: detail, Status: rf.Status}}
}

func fromLocalError[T any](err error) result.Result[T] {
	var re *result.Error
	switch {
	case errors.As(err, &re):
		return result.Result[T]{Err: re}
	case errors.Is(err, common.ErrorNotFound):
		return result.Fail[T](result.KindTaskNotFound, "Task not found")
	case errors.Is(err, common.ErrorAlreadyExists):
		return result.Fail[T](result.KindConflict, "User already exists")
	case errors.Is(err, common.ErrorUnauthorized):
		return result.Fail[T](result.KindInvalidCredentials, "Invalid email or password")
	case errors.Is(err, common.ErrorValidation):
		return result.Fail[T](result.KindValidationFailed, err.Error())
	default:
		return result.Fail[T](result.KindInternal, err.Error())
	}
}
