package generator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// The messages of ErrEmptyIdea, ErrContentGeneration and ErrImageGeneration
// are shown to the user verbatim, so they are capitalized sentences.
var (
	// ErrEmptyIdea is the validation failure for a blank idea.
	ErrEmptyIdea = errors.New("Please enter an idea for your post.")
	// ErrBusy is returned when a request is already in flight for the session.
	ErrBusy = errors.New("a generation request is already in progress")
)

// Status of the current request in a Session.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusLoading        Status = "loading"
	StatusPartialResults Status = "partial"
	StatusComplete       Status = "complete"
	StatusFailed         Status = "failed"
)

// Terminal reports whether s ends a request.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// Snapshot is a copy of the session state at one point in time.
type Snapshot struct {
	ID      string             `json:"session_id"`
	Idea    string             `json:"idea"`
	Tone    Tone               `json:"tone"`
	Status  Status             `json:"status"`
	Loading bool               `json:"loading"`
	Error   string             `json:"error,omitempty"`
	Results []GenerationResult `json:"results"`
}

// Session 持有一个用户的输入、当前结果与请求状态。每次提交都重新开始，不保留上一轮结果。
type Session struct {
	ID string

	agent  *Agent
	visual *Visualizer
	logger *zap.Logger

	mu       sync.Mutex
	state    Snapshot
	listener func(Snapshot)
	// request 只属于当前这一次生成，终态后清空。
	request  func(Snapshot)
	pending  bool
}

// NewSession 创建 session，尚未生成稿件。
func NewSession(id string, agent *Agent, visual *Visualizer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		ID:     id,
		agent:  agent,
		visual: visual,
		logger: logger.With(zap.String("session_id", id)),
		state: Snapshot{
			ID:     id,
			Tone:   ToneProfessional,
			Status: StatusIdle,
		},
	}
}

// OnChange registers fn to receive a snapshot after every state transition.
// Passing nil removes the listener.
func (s *Session) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// Busy reports whether a request is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Loading
}

// Submit runs one generation request to a terminal state and returns the
// user-facing error, if any. Validation happens before any network call.
func (s *Session) Submit(ctx context.Context, idea string, tone Tone) error {
	if err := s.begin(idea, tone, nil); err != nil {
		return err
	}
	return s.Run(ctx)
}

// Start validates the input and claims the session for one request in a
// single step. listener receives every transition of that request, starting
// with Loading, and is dropped once the request reaches a terminal state.
// On success the caller must follow with Run.
func (s *Session) Start(idea string, tone Tone, listener func(Snapshot)) error {
	return s.begin(idea, tone, listener)
}

// Run executes the request claimed by Start.
func (s *Session) Run(ctx context.Context) (err error) {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return errors.New("no request started on this session")
	}
	s.pending = false
	idea, tone := s.state.Idea, s.state.Tone
	s.mu.Unlock()

	log := s.logger.With(zap.String("tone", string(tone)))
	log.Info("generation started")

	defer func() {
		if r := recover(); r != nil {
			log.Error("generation panicked", zap.Any("panic", r), zap.Stack("stack"))
			s.fail(ErrContentGeneration)
			err = ErrContentGeneration
		}
	}()

	posts, err := s.agent.GeneratePosts(ctx, idea, tone)
	if err != nil {
		stageFailures.WithLabelValues(stageContent).Inc()
		s.fail(err)
		return err
	}

	results := make([]GenerationResult, len(posts))
	for i, p := range posts {
		results[i] = GenerationResult{PostContent: p}
	}
	s.transition(func(st *Snapshot) {
		st.Status = StatusPartialResults
		st.Results = results
	})

	urls, err := s.visual.GenerateImages(ctx, posts)
	if err != nil {
		stageFailures.WithLabelValues(stageImage).Inc()
		s.fail(err)
		return err
	}

	complete := make([]GenerationResult, len(results))
	for i := range results {
		complete[i] = results[i]
		complete[i].ImageURL = urls[i]
	}
	s.transition(func(st *Snapshot) {
		st.Status = StatusComplete
		st.Loading = false
		st.Results = complete
	})
	requestsTotal.WithLabelValues(outcomeComplete).Inc()
	log.Info("generation complete")
	return nil
}

// begin checks the busy flag, validates the idea and, when both pass, moves
// to Loading and installs the request listener under the same lock.
func (s *Session) begin(idea string, tone Tone, listener func(Snapshot)) error {
	s.mu.Lock()
	if s.state.Loading {
		s.mu.Unlock()
		return ErrBusy
	}
	if strings.TrimSpace(idea) == "" {
		s.state.Idea = idea
		s.state.Tone = tone
		s.state.Status = StatusFailed
		s.state.Error = ErrEmptyIdea.Error()
		s.state.Results = nil
		snap, fns := s.copyState(), s.listeners()
		s.mu.Unlock()
		requestsTotal.WithLabelValues(outcomeRejected).Inc()
		notify(fns, snap)
		return ErrEmptyIdea
	}
	s.state = Snapshot{
		ID:      s.ID,
		Idea:    idea,
		Tone:    tone,
		Status:  StatusLoading,
		Loading: true,
	}
	s.pending = true
	s.request = listener
	snap, fns := s.copyState(), s.listeners()
	s.mu.Unlock()
	notify(fns, snap)
	return nil
}

func (s *Session) fail(err error) {
	s.transition(func(st *Snapshot) {
		st.Status = StatusFailed
		st.Loading = false
		st.Error = err.Error()
		st.Results = nil
	})
	requestsTotal.WithLabelValues(outcomeFailed).Inc()
}

// transition applies fn under the lock and notifies the listeners outside it.
// The request listener is released on a terminal status.
func (s *Session) transition(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.state)
	snap, fns := s.copyState(), s.listeners()
	if snap.Status.Terminal() {
		s.request = nil
	}
	s.mu.Unlock()
	notify(fns, snap)
}

// listeners must be called with s.mu held.
func (s *Session) listeners() []func(Snapshot) {
	fns := make([]func(Snapshot), 0, 2)
	if s.listener != nil {
		fns = append(fns, s.listener)
	}
	if s.request != nil {
		fns = append(fns, s.request)
	}
	return fns
}

func notify(fns []func(Snapshot), snap Snapshot) {
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Session) copyState() Snapshot {
	snap := s.state
	if s.state.Results != nil {
		snap.Results = append([]GenerationResult(nil), s.state.Results...)
	}
	return snap
}
