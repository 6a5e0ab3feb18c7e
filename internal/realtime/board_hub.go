package realtime

import (
	"log/slog"
	"sync"
	"time"

	"taskboard/internal/models"
)

// Event is what board subscribers receive after a task change is stored.
type Event struct {
	Type      string       `json:"type"`
	ProjectID int64        `json:"project_id"`
	Task      *models.Task `json:"task"`
	At        time.Time    `json:"at"`
}

// Sink is the write side of a subscriber connection.
type Sink interface {
	WriteJSON(v interface{}) error
	Close() error
}

const subscriberBuffer = 32

type subscriber struct {
	sink Sink
	out  chan Event
	done chan struct{}
}

// BoardHub fans task events out to the subscribers of each project.
// A subscriber whose buffer is full misses events instead of blocking publishers.
type BoardHub struct {
	mu     sync.RWMutex
	boards map[int64]map[*subscriber]struct{}
	logger *slog.Logger
}

func NewBoardHub(logger *slog.Logger) *BoardHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardHub{
		boards: make(map[int64]map[*subscriber]struct{}),
		logger: logger.With("component", "realtime"),
	}
}

// Subscribe starts delivering events of projectID to sink. The returned func
// unsubscribes and closes the sink; it is safe to call more than once.
func (h *BoardHub) Subscribe(projectID int64, sink Sink) (unsubscribe func()) {
	s := &subscriber{sink: sink, out: make(chan Event, subscriberBuffer), done: make(chan struct{})}

	h.mu.Lock()
	if h.boards[projectID] == nil {
		h.boards[projectID] = make(map[*subscriber]struct{})
	}
	h.boards[projectID][s] = struct{}{}
	h.mu.Unlock()

	go h.pump(projectID, s)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.boards[projectID]; ok {
				delete(subs, s)
				if len(subs) == 0 {
					delete(h.boards, projectID)
				}
			}
			h.mu.Unlock()
			close(s.done)
		})
	}
}

func (h *BoardHub) pump(projectID int64, s *subscriber) {
	defer s.sink.Close()
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.out:
			if err := s.sink.WriteJSON(ev); err != nil {
				h.logger.Debug("subscriber write failed", "project_id", projectID, "err", err)
				return
			}
		}
	}
}

// PublishTaskEvent implements the task service's event publisher.
func (h *BoardHub) PublishTaskEvent(projectID int64, kind string, task *models.Task) {
	ev := Event{Type: kind, ProjectID: projectID, At: time.Now().UTC()}
	if task != nil {
		t := *task
		ev.Task = &t
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.boards[projectID] {
		select {
		case s.out <- ev:
		default:
			h.logger.Warn("subscriber too slow, event dropped", "project_id", projectID, "type", kind)
		}
	}
}

// Subscribers returns the number of live subscribers of a project.
func (h *BoardHub) Subscribers(projectID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.boards[projectID])
}
