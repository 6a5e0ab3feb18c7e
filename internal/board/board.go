// Package board keeps the client-side model of a project board and applies
// drag-and-drop status moves optimistically, reconciling them against the
// server as responses arrive.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"taskboard/internal/models"
)

// Gateway is the server side of the board.
type Gateway interface {
	UpdateTaskStatus(ctx context.Context, id int64, status models.TaskStatus) error
	DeleteTask(ctx context.Context, id int64) error
}

// Notice reports a failed mutation to the user.
type Notice struct {
	TaskID int64
	Op     string // "move" or "delete"
	Err    error
}

func (n Notice) String() string {
	return fmt.Sprintf("failed to %s task %d: %v", n.Op, n.TaskID, n.Err)
}

var ErrUnknownTask = errors.New("task is not on the board")

// pending tracks the unsettled moves of one task.
type pending struct {
	confirmed    models.TaskStatus // last status the server acknowledged
	confirmedSeq uint64
	latest       uint64 // seq of the newest move issued
	inflight     int
	failedLatest bool
}

type Board struct {
	gw     Gateway
	logger *slog.Logger
	notify func(Notice)

	mu      sync.Mutex
	tasks   []models.Task
	active  int64
	pending map[int64]*pending
	notices []Notice

	wg sync.WaitGroup
}

type Option func(*Board)

// WithNotify registers a callback for failure notices. It runs outside the
// board lock, on the goroutine that settled the request.
func WithNotify(fn func(Notice)) Option { return func(b *Board) { b.notify = fn } }

func WithLogger(l *slog.Logger) Option { return func(b *Board) { b.logger = l } }

func New(gw Gateway, tasks []models.Task, opts ...Option) *Board {
	b := &Board{
		gw:      gw,
		logger:  slog.Default(),
		tasks:   append([]models.Task(nil), tasks...),
		pending: make(map[int64]*pending),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// DragStart records the dragged task. Nothing changes until Drop.
func (b *Board) DragStart(id int64) {
	b.mu.Lock()
	b.active = id
	b.mu.Unlock()
}

// Active returns the task being dragged, 0 when none.
func (b *Board) Active() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Drop releases activeID over target. When the resolved status differs from
// the task's current one, the status is changed locally at once and the
// update is sent in the background. It reports whether a request was issued.
//
// Dropping over nothing, over the task itself or over the task's own column
// (directly or through a sibling) is a no-op.
func (b *Board) Drop(ctx context.Context, activeID int64, target Target) (bool, error) {
	b.mu.Lock()
	if b.active == activeID {
		b.active = 0
	}
	if target.IsZero() || target.taskID == activeID {
		b.mu.Unlock()
		return false, nil
	}

	i := b.indexOf(activeID)
	if i < 0 {
		b.mu.Unlock()
		return false, fmt.Errorf("%w: %d", ErrUnknownTask, activeID)
	}

	to := target.column
	if target.taskID != 0 {
		j := b.indexOf(target.taskID)
		if j < 0 {
			b.mu.Unlock()
			return false, fmt.Errorf("%w: drop target %d", ErrUnknownTask, target.taskID)
		}
		to = b.tasks[j].Status
	}
	if !to.Valid() {
		b.mu.Unlock()
		return false, fmt.Errorf("%w: %q", ErrBadTarget, to)
	}

	from := b.tasks[i].Status
	if from == to {
		b.mu.Unlock()
		return false, nil
	}

	p, ok := b.pending[activeID]
	if !ok {
		p = &pending{confirmed: from}
		b.pending[activeID] = p
	}
	p.latest++
	p.inflight++
	p.failedLatest = false
	seq := p.latest

	b.tasks[i].Status = to
	b.wg.Add(1)
	b.mu.Unlock()

	b.logger.Debug("move issued", "task_id", activeID, "from", from, "to", to, "seq", seq)

	// Once sent a request is never cancelled; it always settles.
	reqCtx := context.WithoutCancel(ctx)
	go func() {
		defer b.wg.Done()
		err := b.gw.UpdateTaskStatus(reqCtx, activeID, to)
		b.settle(activeID, seq, to, err)
	}()
	return true, nil
}

func (b *Board) settle(id int64, seq uint64, to models.TaskStatus, err error) {
	b.mu.Lock()
	p := b.pending[id]
	if p == nil {
		b.mu.Unlock()
		return
	}
	p.inflight--

	var notice *Notice
	if err == nil {
		if seq > p.confirmedSeq {
			p.confirmed = to
			p.confirmedSeq = seq
		}
	} else if seq == p.latest {
		p.failedLatest = true
		notice = &Notice{TaskID: id, Op: "move", Err: err}
	}

	// The newest move failed: show whatever the server last acknowledged.
	// Replies to older moves may still arrive and refine that.
	if p.failedLatest {
		if i := b.indexOf(id); i >= 0 {
			b.tasks[i].Status = p.confirmed
		}
	}
	if p.inflight == 0 {
		delete(b.pending, id)
	}
	if notice != nil {
		b.notices = append(b.notices, *notice)
	}
	b.mu.Unlock()

	if err != nil {
		b.logger.Warn("move failed", "task_id", id, "seq", seq, "to", to, "err", err)
	}
	if notice != nil && b.notify != nil {
		b.notify(*notice)
	}
}

// Delete asks confirm, deletes the task on the server and only then removes
// it from the board. On failure the task stays in its column and a notice is
// raised. A declined confirmation returns (false, nil).
func (b *Board) Delete(ctx context.Context, id int64, confirm func(models.Task) bool) (bool, error) {
	t, ok := b.Task(id)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownTask, id)
	}
	if confirm != nil && !confirm(t) {
		return false, nil
	}

	if err := b.gw.DeleteTask(ctx, id); err != nil {
		n := Notice{TaskID: id, Op: "delete", Err: err}
		b.mu.Lock()
		b.notices = append(b.notices, n)
		b.mu.Unlock()
		b.logger.Warn("delete failed", "task_id", id, "err", err)
		if b.notify != nil {
			b.notify(n)
		}
		return false, err
	}

	b.mu.Lock()
	if i := b.indexOf(id); i >= 0 {
		b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
	}
	if b.active == id {
		b.active = 0
	}
	b.mu.Unlock()
	return true, nil
}

// Wait blocks until every issued move has settled.
func (b *Board) Wait() { b.wg.Wait() }

// Tasks returns a copy of the board's tasks in their original order.
func (b *Board) Tasks() []models.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Task(nil), b.tasks...)
}

func (b *Board) Task(id int64) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		return b.tasks[i], true
	}
	return models.Task{}, false
}

func (b *Board) Columns() []Column { return Group(b.Tasks()) }

// InFlight reports whether a move of the task is still unsettled.
func (b *Board) InFlight(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.pending[id]
	return ok && p.inflight > 0
}

// Notices returns and clears the failure notices collected so far.
func (b *Board) Notices() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}

func (b *Board) indexOf(id int64) int {
	for i := range b.tasks {
		if b.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
