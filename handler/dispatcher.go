package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
	"github.com/matiin1402/InternalLinkBot/internal/integrations/telegram"
	"github.com/matiin1402/InternalLinkBot/internal/observability"
	"github.com/matiin1402/InternalLinkBot/internal/usecase"
)

// Replier delivers bot output to a chat.
type Replier interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64, text string, buttons []domain.Button) error
	EditText(ctx context.Context, chatID int64, messageID int, text string) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

type ProjectCatalog interface {
	List() []domain.Project
	Get(id string) (domain.Project, error)
}

type SessionStore interface {
	SelectProject(ctx context.Context, key domain.SessionKey, p domain.Project) error
	SelectedProject(ctx context.Context, key domain.SessionKey) (domain.Project, error)
	Clear(ctx context.Context, key domain.SessionKey) error
}

type Suggester interface {
	Suggest(ctx context.Context, in usecase.SuggestInput) (usecase.SuggestOutput, error)
}

// Recorder receives dispatch metrics. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveUpdate(kind string)
	ObserveSuggestion(outcome string, elapsed time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) ObserveUpdate(string) {}
func (noopRecorder) ObserveSuggestion(string, time.Duration) {}

type DispatcherOption func(*Dispatcher)

func WithMessages(m Messages) DispatcherOption {
	return func(d *Dispatcher) {
		d.msgs = m
	}
}

func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		if r != nil {
			d.metrics = r
		}
	}
}

// Dispatcher routes chat events through the select -> submit -> clear
// conversation. Events for one session key are handled one at a time.
type Dispatcher struct {
	projects  ProjectCatalog
	sessions  SessionStore
	suggester Suggester
	replier   Replier
	msgs      Messages
	metrics   Recorder
	locks     keyedMutex
	now       func() time.Time
}

func NewDispatcher(projects ProjectCatalog, sessions SessionStore, suggester Suggester, replier Replier, opts ...DispatcherOption) (*Dispatcher, error) {
	if projects == nil {
		return nil, errors.New("handler: project catalog must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("handler: session store must not be nil")
	}
	if suggester == nil {
		return nil, errors.New("handler: suggester must not be nil")
	}
	if replier == nil {
		return nil, errors.New("handler: replier must not be nil")
	}
	d := &Dispatcher{
		projects:  projects,
		sessions:  sessions,
		suggester: suggester,
		replier:   replier,
		msgs:      DefaultMessages(),
		metrics:   noopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// HandleUpdate converts a Bot API update and dispatches it. Errors are logged;
// the update is never redelivered.
func (d *Dispatcher) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	if observability.CorrelationID(ctx) == "" {
		ctx = observability.WithCorrelationID(ctx, observability.NewCorrelationID())
	}
	ev, ok := telegram.ToEvent(u)
	if !ok {
		observability.Logger(ctx).WithField("update_id", u.UpdateID).Debug("ignoring update")
		return
	}
	if err := d.Dispatch(ctx, ev); err != nil {
		observability.Logger(ctx).WithError(err).WithField("update_id", u.UpdateID).Error("dispatch failed")
	}
}

// Dispatch handles one event. The returned error reports transport or
// storage faults; pipeline failures are answered in the chat and return nil.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.Event) (err error) {
	key := ev.SessionKey()
	unlock := d.locks.Lock(key)
	defer unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler: panic handling %s event: %v", ev.Kind, r)
		}
	}()

	d.metrics.ObserveUpdate(ev.Kind.String())
	log := observability.Logger(ctx).WithFields(logrus.Fields{
		"chat_id": ev.ChatID,
		"user_id": ev.UserID,
		"event":   ev.Kind.String(),
	})
	log.Debug("dispatching event")

	switch ev.Kind {
	case domain.EventStart:
		return d.handleStart(ctx, ev)
	case domain.EventSelect:
		return d.handleSelect(ctx, log, ev)
	case domain.EventCancel:
		return d.handleCancel(ctx, ev)
	case domain.EventText:
		return d.handleText(ctx, log, ev)
	case domain.EventUnknownCommand:
		return d.reply(ctx, ev.ChatID, d.msgs.UnknownCommand)
	default:
		return nil
	}
}

func (d *Dispatcher) handleStart(ctx context.Context, ev domain.Event) error {
	projects := d.projects.List()
	buttons := make([]domain.Button, 0, len(projects))
	for _, p := range projects {
		buttons = append(buttons, domain.Button{Label: p.Name, Data: p.ID})
	}
	if err := d.replier.SendMenu(ctx, ev.ChatID, d.msgs.Menu, buttons); err != nil {
		return fmt.Errorf("handler: send menu: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleSelect(ctx context.Context, log *logrus.Entry, ev domain.Event) error {
	if err := d.replier.AnswerCallback(ctx, ev.CallbackID); err != nil {
		log.WithError(err).Warn("answer callback failed")
	}

	p, err := d.projects.Get(ev.Data)
	if errors.Is(err, domain.ErrProjectNotFound) {
		log.WithField("project_id", ev.Data).Warn("unknown project selected")
		return d.reply(ctx, ev.ChatID, d.msgs.ProjectNotFound)
	}
	if err != nil {
		return fmt.Errorf("handler: resolve project: %w", err)
	}

	if err := d.sessions.SelectProject(ctx, ev.SessionKey(), p); err != nil {
		_ = d.reply(ctx, ev.ChatID, d.msgs.ForError(err))
		return err
	}
	log.WithField("project_id", p.ID).Info("project selected")

	if err := d.replier.EditText(ctx, ev.ChatID, ev.MessageID, fmt.Sprintf(d.msgs.SelectedFormat, p.Name)); err != nil {
		return fmt.Errorf("handler: edit menu: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleCancel(ctx context.Context, ev domain.Event) error {
	if err := d.sessions.Clear(ctx, ev.SessionKey()); err != nil {
		return err
	}
	return d.reply(ctx, ev.ChatID, d.msgs.Cancelled)
}

func (d *Dispatcher) handleText(ctx context.Context, log *logrus.Entry, ev domain.Event) error {
	key := ev.SessionKey()

	p, err := d.sessions.SelectedProject(ctx, key)
	switch {
	case errors.Is(err, domain.ErrNoSelection):
		return d.reply(ctx, ev.ChatID, d.msgs.SelectFirst)
	case errors.Is(err, domain.ErrProjectNotFound):
		d.clear(ctx, log, key)
		return d.reply(ctx, ev.ChatID, d.msgs.ProjectNotFound)
	case err != nil:
		_ = d.reply(ctx, ev.ChatID, d.msgs.ForError(err))
		return err
	}

	defer d.clear(ctx, log, key)

	if err := d.replier.SendText(ctx, ev.ChatID, d.msgs.Working); err != nil {
		log.WithError(err).Warn("send progress message failed")
	}

	start := d.now()
	out, err := d.suggester.Suggest(ctx, usecase.SuggestInput{Project: p, Title: ev.Text})
	elapsed := d.now().Sub(start)
	d.metrics.ObserveSuggestion(usecase.Outcome(err), elapsed)

	log = log.WithFields(logrus.Fields{"project_id": p.ID, "elapsed_ms": elapsed.Milliseconds()})
	if err != nil {
		var ue *usecase.Error
		if errors.As(err, &ue) {
			log = log.WithFields(logrus.Fields{"code": ue.Code, "reason": ue.Reason})
		}
		log.WithError(err).Warn("suggestion failed")
		return d.reply(ctx, ev.ChatID, d.msgs.ForError(err))
	}

	log.WithField("url_count", out.URLCount).Info("suggestion delivered")
	text := out.Suggestions
	if strings.TrimSpace(text) == "" {
		text = d.msgs.AIService
	}
	return d.reply(ctx, ev.ChatID, text)
}

// clear runs even when ctx is already cancelled.
func (d *Dispatcher) clear(ctx context.Context, log *logrus.Entry, key domain.SessionKey) {
	if err := d.sessions.Clear(context.WithoutCancel(ctx), key); err != nil {
		log.WithError(err).Warn("clear session failed")
	}
}

func (d *Dispatcher) reply(ctx context.Context, chatID int64, text string) error {
	if err := d.replier.SendText(ctx, chatID, text); err != nil {
		return fmt.Errorf("handler: send reply: %w", err)
	}
	return nil
}

// keyedMutex hands out one mutex per session key and forgets it once no
// goroutine holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[domain.SessionKey]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key domain.SessionKey) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[domain.SessionKey]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
