package store

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/promptctx/promptctx/schema"
)

var (
	ErrNoActiveSession  = errors.New("store: no active session")
	ErrNoActiveActivity = errors.New("store: no active activity")
	ErrNoActiveTask     = errors.New("store: no active task")
)

type taskNode struct {
	id        string
	name      string
	startedAt time.Time
	endedAt   time.Time
}

type activityNode struct {
	id        string
	name      string
	startedAt time.Time
	endedAt   time.Time
	tasks     []*taskNode
}

type sessionNode struct {
	id         string
	name       string
	startedAt  time.Time
	endedAt    time.Time
	activities []*activityNode
}

// Workflow is an explicit handle over one caller's current
// session/activity/task pointers. Each workflow instance owns its own
// pointers; there is no process-wide "current" state. Pointer updates and
// the hierarchy they touch are guarded by the store's writer lock, so a
// concurrent reader never observes an activity attached to an
// already-replaced session.
type Workflow struct {
	store *Store

	sessionID  string
	activityID string
	taskID     string
}

// NewWorkflow creates a workflow handle bound to a store.
func NewWorkflow(s *Store) *Workflow {
	return &Workflow{store: s}
}

// BeginSession starts a new session and makes it current. Any previous
// session pointer (with its activity and task) is replaced, not stacked.
// The session is also recorded as a context item so retrieval can surface
// it.
func (w *Workflow) BeginSession(name string, tags ...string) (string, error) {
	s := w.store

	s.mu.Lock()
	node := &sessionNode{
		id:        uuid.NewString(),
		name:      name,
		startedAt: time.Now().UTC(),
	}
	s.sessions[node.id] = node
	w.sessionID = node.id
	w.activityID = ""
	w.taskID = ""
	s.mu.Unlock()

	if _, err := s.AddItem(schema.CategorySession, name, tags); err != nil {
		return "", err
	}
	return node.id, nil
}

// BeginActivity starts a new activity under the current session and makes
// it current, replacing any previous activity pointer along with its task.
func (w *Workflow) BeginActivity(name string, tags ...string) (string, error) {
	s := w.store

	s.mu.Lock()
	sess, ok := s.sessions[w.sessionID]
	if !ok {
		s.mu.Unlock()
		return "", ErrNoActiveSession
	}
	node := &activityNode{
		id:        uuid.NewString(),
		name:      name,
		startedAt: time.Now().UTC(),
	}
	sess.activities = append(sess.activities, node)
	w.activityID = node.id
	w.taskID = ""
	s.mu.Unlock()

	if _, err := s.AddItem(schema.CategoryActivity, name, tags,
		WithActivityID(node.id)); err != nil {
		return "", err
	}
	return node.id, nil
}

// BeginTask starts a new task under the current activity and makes it
// current.
func (w *Workflow) BeginTask(name string, tags ...string) (string, error) {
	s := w.store

	s.mu.Lock()
	act := w.currentActivityLocked()
	if act == nil {
		s.mu.Unlock()
		return "", ErrNoActiveActivity
	}
	node := &taskNode{
		id:        uuid.NewString(),
		name:      name,
		startedAt: time.Now().UTC(),
	}
	act.tasks = append(act.tasks, node)
	w.taskID = node.id
	s.mu.Unlock()

	if _, err := s.AddItem(schema.CategoryTask, name, tags,
		WithActivityID(act.id), WithTaskID(node.id)); err != nil {
		return "", err
	}
	return node.id, nil
}

// EndTask closes the current task pointer.
func (w *Workflow) EndTask() error {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.taskID == "" {
		return ErrNoActiveTask
	}
	if act := w.currentActivityLocked(); act != nil {
		for _, t := range act.tasks {
			if t.id == w.taskID {
				t.endedAt = time.Now().UTC()
			}
		}
	}
	w.taskID = ""
	return nil
}

// EndActivity closes the current activity pointer and its task.
func (w *Workflow) EndActivity() error {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	act := w.currentActivityLocked()
	if act == nil {
		return ErrNoActiveActivity
	}
	act.endedAt = time.Now().UTC()
	w.activityID = ""
	w.taskID = ""
	return nil
}

// EndSession closes the current session pointer and everything under it.
func (w *Workflow) EndSession() error {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[w.sessionID]
	if !ok {
		return ErrNoActiveSession
	}
	sess.endedAt = time.Now().UTC()
	w.sessionID = ""
	w.activityID = ""
	w.taskID = ""
	return nil
}

// Current returns the current session, activity, and task IDs. Empty
// strings mark levels with no active node.
func (w *Workflow) Current() (sessionID, activityID, taskID string) {
	w.store.mu.RLock()
	defer w.store.mu.RUnlock()
	return w.sessionID, w.activityID, w.taskID
}

// RecordAction records an action item stamped with the current hierarchy.
func (w *Workflow) RecordAction(content string, tags []string, opts ...ItemOption) (string, error) {
	return w.record(schema.CategoryAction, content, tags, opts...)
}

// RecordDecision records a decision item stamped with the current hierarchy.
func (w *Workflow) RecordDecision(content string, tags []string, opts ...ItemOption) (string, error) {
	return w.record(schema.CategoryDecision, content, tags, opts...)
}

// RecordLearning records a learning item stamped with the current hierarchy.
func (w *Workflow) RecordLearning(content string, tags []string, opts ...ItemOption) (string, error) {
	return w.record(schema.CategoryLearning, content, tags, opts...)
}

// RecordResult records a result item stamped with the current hierarchy.
func (w *Workflow) RecordResult(content string, tags []string, opts ...ItemOption) (string, error) {
	return w.record(schema.CategoryResult, content, tags, opts...)
}

func (w *Workflow) record(category schema.Category, content string, tags []string, opts ...ItemOption) (string, error) {
	w.store.mu.RLock()
	activityID, taskID := w.activityID, w.taskID
	w.store.mu.RUnlock()

	stamped := make([]ItemOption, 0, len(opts)+2)
	if activityID != "" {
		stamped = append(stamped, WithActivityID(activityID))
	}
	if taskID != "" {
		stamped = append(stamped, WithTaskID(taskID))
	}
	stamped = append(stamped, opts...)

	return w.store.AddItem(category, content, tags, stamped...)
}

// currentActivityLocked resolves the current activity node. Callers must
// hold the store lock.
func (w *Workflow) currentActivityLocked() *activityNode {
	sess, ok := w.store.sessions[w.sessionID]
	if !ok || w.activityID == "" {
		return nil
	}
	for _, act := range sess.activities {
		if act.id == w.activityID {
			return act
		}
	}
	return nil
}
