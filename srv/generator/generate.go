package generator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	storybot "github.com/opd-ai/storybot/src"
)

// Options configures a Session.
type Options struct {
	Generator   storybot.Generator
	PromptMode  storybot.PromptMode
	KeyMode     storybot.KeyMode
	OperatorKey string
	// Provider names the backend in user-facing messages.
	Provider string
	Logger   *zap.Logger
}

// Session is the presentation state of one story generator view. It
// allows at most one generation in flight.
type Session struct {
	mu        sync.RWMutex
	ID        string
	StartTime time.Time

	opts    Options
	logger  *zap.Logger
	emitter func(Event)

	draft    storybot.Draft
	apiKey   string
	state    State
	story    string
	disposed bool
}

func NewSession(id string, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.KeyMode == "" {
		opts.KeyMode = storybot.KeyCaller
	}
	if opts.PromptMode == "" {
		opts.PromptMode = storybot.PromptPlain
	}
	return &Session{
		ID:        id,
		StartTime: time.Now(),
		opts:      opts,
		logger:    logger.With(zap.String("session", id)),
		state:     StateIdle,
	}
}

// SetEmitter registers the receiver of state changes and notifications.
func (s *Session) SetEmitter(emitter func(Event)) {
	s.mu.Lock()
	s.emitter = emitter
	s.mu.Unlock()
}

func (s *Session) emit(ev Event) {
	s.mu.RLock()
	emitter, disposed := s.emitter, s.disposed
	s.mu.RUnlock()
	if emitter == nil || disposed {
		return
	}
	ev.Timestamp = time.Now()
	emitter(ev)
}

func (s *Session) notify(n Notification) {
	s.logger.Info("Notification", zap.String("title", n.Title), zap.String("variant", string(n.Variant)))
	s.emit(Event{Type: EventNotification, State: s.State(), Notification: &n})
}

// settle returns a finished session to StateIdle. A submission accepted
// while the result was being emitted owns the state and is left alone.
func (s *Session) settle() {
	s.mu.Lock()
	old := s.state
	if old != StateSuccess && old != StateFailed {
		s.mu.Unlock()
		return
	}
	s.state = StateIdle
	story := s.story
	s.mu.Unlock()
	s.logger.Debug("State transition", zap.String("from", string(old)), zap.String("to", string(StateIdle)))
	s.emit(Event{Type: EventState, State: StateIdle, Story: story})
}

// SetDraftPrompt replaces the draft prompt text.
func (s *Session) SetDraftPrompt(text string) {
	s.mu.Lock()
	s.draft.Prompt = text
	s.mu.Unlock()
}

// SetAPIKey stores the caller-supplied key. It is ignored in operator mode.
func (s *Session) SetAPIKey(key string) {
	s.mu.Lock()
	s.apiKey = key
	s.mu.Unlock()
}

// Select sets the option id for kind. Ids are resolved at submit time, so
// an unknown id is kept and later left out of the instruction.
func (s *Session) Select(kind storybot.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case storybot.KindStoryType:
		s.draft.StoryType = id
	case storybot.KindCharacter:
		s.draft.Character = id
	case storybot.KindSetting:
		s.draft.Setting = id
	default:
		return fmt.Errorf("unknown selection kind %q", kind)
	}
	return nil
}

// UseSuggestion copies suggestion i into the draft prompt.
func (s *Session) UseSuggestion(i int) error {
	if i < 0 || i >= len(storybot.Suggestions) {
		return fmt.Errorf("suggestion %d out of range", i)
	}
	s.SetDraftPrompt(storybot.Suggestions[i])
	return nil
}

type pending struct {
	draft  storybot.Draft
	apiKey string
}

// begin checks the submit preconditions and enters StateSubmitting.
func (s *Session) begin() (*pending, error) {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil, ErrDisposed
	}
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return nil, ErrInFlight
	}
	p := &pending{draft: s.draft, apiKey: s.apiKey}
	if s.opts.KeyMode == storybot.KeyOperator {
		p.apiKey = s.opts.OperatorKey
	}
	if err := storybot.ValidateDraft(p.draft, s.opts.KeyMode, p.apiKey); err != nil {
		s.mu.Unlock()
		s.logger.Info("Submission rejected", zap.Error(err))
		s.notify(validationNotification(err, s.opts.Provider))
		return nil, err
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	s.logger.Info("Starting story generation", zap.String("prompt", p.draft.TrimmedPrompt()))
	s.emit(Event{Type: EventState, State: StateSubmitting})
	return p, nil
}

func (s *Session) run(ctx context.Context, p *pending) error {
	story, err := storybot.GenerateStory(ctx, s.opts.Generator, s.opts.PromptMode, s.opts.KeyMode, p.draft, p.apiKey)
	return s.finish(story, err)
}

// finish applies a settled result. Results arriving after Dispose are
// dropped.
func (s *Session) finish(story string, err error) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		s.logger.Debug("Dropping result for disposed session", zap.Error(err))
		return ErrDisposed
	}
	if err != nil {
		s.state = StateFailed
	} else {
		s.story = story
		s.state = StateSuccess
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Error generating story", zap.Error(err))
		s.emit(Event{Type: EventState, State: StateFailed})
		s.notify(failureNotification(s.opts.KeyMode))
	} else {
		s.emit(Event{Type: EventState, State: StateSuccess, Story: story})
		s.notify(successNotification())
	}
	s.settle()
	return err
}

// Submit validates the draft, issues one generation and waits for it to
// settle. It returns ErrInFlight without side effects while another
// submission is pending.
func (s *Session) Submit(ctx context.Context) error {
	p, err := s.begin()
	if err != nil {
		return err
	}
	return s.run(ctx, p)
}

// SubmitAsync is Submit with the remote call moved to a goroutine. Errors
// from validation and ErrInFlight are returned directly; the settled
// result is passed to done when it is non-nil.
func (s *Session) SubmitAsync(ctx context.Context, done func(error)) error {
	p, err := s.begin()
	if err != nil {
		return err
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Panic in generation goroutine", zap.Any("panic", r))
				_ = s.finish("", fmt.Errorf("internal error: %v", r))
			}
		}()
		err := s.run(ctx, p)
		if done != nil {
			done(err)
		}
	}()
	return nil
}

// HandleKey submits on a plain Enter and reports whether the key was
// consumed, in which case no newline should be inserted.
func (s *Session) HandleKey(ctx context.Context, ev KeyEvent) (bool, error) {
	if !IsSubmitKey(ev) {
		return false, nil
	}
	return true, s.Submit(ctx)
}

// HandleKeyAsync is HandleKey with the submission made through SubmitAsync.
func (s *Session) HandleKeyAsync(ctx context.Context, ev KeyEvent, done func(error)) (bool, error) {
	if !IsSubmitKey(ev) {
		return false, nil
	}
	return true, s.SubmitAsync(ctx, done)
}

// Dispose detaches the session. Pending results settle silently.
func (s *Session) Dispose() {
	s.mu.Lock()
	s.disposed = true
	s.emitter = nil
	s.mu.Unlock()
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Story() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.story
}

// Draft returns a copy of the current draft.
func (s *Session) Draft() storybot.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *Session) Loading() bool {
	return s.State() == StateSubmitting
}

func (s *Session) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hasKey := s.apiKey != ""
	if s.opts.KeyMode == storybot.KeyOperator {
		hasKey = true
	}
	return Snapshot{
		State:      s.state,
		Loading:    s.state == StateSubmitting,
		Story:      s.story,
		Draft:      s.draft,
		HasAPIKey:  hasKey,
		KeyMode:    s.opts.KeyMode,
		PromptMode: s.opts.PromptMode,
	}
}
