// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zedarvates/StoryCore-Engine-sub001/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// origin policy is delegated to the fronting proxy
		return true
	},
}

// TaskEvent is one message on a task's progress stream. Exactly one
// terminal event (Done=true) closes the stream.
type TaskEvent struct {
	TaskID   string                     `json:"task_id"`
	Progress *models.GenerationProgress `json:"progress,omitempty"`
	Result   *models.CreationResult     `json:"result,omitempty"`
	Done     bool                       `json:"done"`
	Time     time.Time                  `json:"time"`
}

// taskStream buffers the latest event and fans new ones out to every
// subscriber.
type taskStream struct {
	subscribers map[chan []byte]struct{}
	lastEvent   []byte
	finalResult *models.CreationResult
	done        bool
}

// TaskHub tracks asynchronous creation tasks and relays their progress to
// websocket subscribers. Finished tasks are retained for late status reads
// and expired on a timer.
type TaskHub struct {
	mu     sync.RWMutex
	tasks  map[string]*taskStream
	logger *zap.Logger
}

func NewTaskHub(logger *zap.Logger) *TaskHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHub{
		tasks:  make(map[string]*taskStream),
		logger: logger,
	}
}

// StartTask registers a new task stream.
func (h *TaskHub) StartTask(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tasks[id] = &taskStream{subscribers: make(map[chan []byte]struct{})}
}

// PublishProgress relays one progress snapshot to every subscriber.
func (h *TaskHub) PublishProgress(id string, progress models.GenerationProgress) {
	h.publish(id, TaskEvent{TaskID: id, Progress: &progress, Time: time.Now()})
}

// FinishTask publishes the terminal event, closes all subscriber channels
// and schedules the task record for expiry.
func (h *TaskHub) FinishTask(id string, result *models.CreationResult) {
	h.mu.Lock()
	stream, ok := h.tasks[id]
	if !ok {
		h.mu.Unlock()
		return
	}
	stream.done = true
	stream.finalResult = result
	payload, _ := json.Marshal(TaskEvent{TaskID: id, Result: result, Done: true, Time: time.Now()})
	stream.lastEvent = payload
	for ch := range stream.subscribers {
		select {
		case ch <- payload:
		default:
		}
		close(ch)
	}
	stream.subscribers = make(map[chan []byte]struct{})
	h.mu.Unlock()

	time.AfterFunc(10*time.Minute, func() {
		h.mu.Lock()
		delete(h.tasks, id)
		h.mu.Unlock()
	})
}

// TaskResult returns the terminal result of a task, with ok=false while
// the task is unknown or still running.
func (h *TaskHub) TaskResult(id string) (*models.CreationResult, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	stream, ok := h.tasks[id]
	if !ok || !stream.done {
		return nil, false
	}
	return stream.finalResult, true
}

// KnownTask reports whether the hub is tracking the id at all.
func (h *TaskHub) KnownTask(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.tasks[id]
	return ok
}

func (h *TaskHub) publish(id string, event TaskEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	stream, ok := h.tasks[id]
	if !ok || stream.done {
		return
	}
	stream.lastEvent = payload
	for ch := range stream.subscribers {
		select {
		case ch <- payload:
		default:
			// slow subscriber drops intermediate snapshots
		}
	}
}

// subscribe attaches a channel to the stream and replays the last event.
// The returned cancel func is safe to call after FinishTask.
func (h *TaskHub) subscribe(id string) (chan []byte, func(), bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stream, ok := h.tasks[id]
	if !ok {
		return nil, nil, false
	}
	ch := make(chan []byte, 16)
	if stream.lastEvent != nil {
		ch <- stream.lastEvent
	}
	if stream.done {
		close(ch)
		return ch, func() {}, true
	}
	stream.subscribers[ch] = struct{}{}
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, exists := h.tasks[id]; exists {
			if _, subscribed := s.subscribers[ch]; subscribed {
				delete(s.subscribers, ch)
				close(ch)
			}
		}
	}
	return ch, cancel, true
}

// ServeTask upgrades the connection and streams task events until the
// terminal event or client disconnect.
func (h *TaskHub) ServeTask(w http.ResponseWriter, r *http.Request, taskID string) {
	events, cancel, ok := h.subscribe(taskID)
	if !ok {
		http.Error(w, "unknown task", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	defer cancel()

	// drain client frames so close messages are noticed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for payload := range events {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "task finished"))
}
