package encounter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dengue-triage/internal/triage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Advisor writes the recommendation attached to a finished triage.
type Advisor interface {
	Recommend(ctx context.Context, res triage.FinalResult) (string, error)
}

// ReportService renders and delivers the doctor report. It returns the
// storage key of the report, empty when none was produced.
type ReportService interface {
	SendDoctorReport(ctx context.Context, r Record) (string, error)
}

// Publisher forwards finished triages to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, messageType string, payload any) error
}

type Service interface {
	StartSession(ctx context.Context, patientRef string) (*triage.Session, *triage.Question, error)
	NextQuestion(ctx context.Context, sessionID string) (*triage.Question, error)
	SubmitAnswer(ctx context.Context, sessionID, questionID string, v triage.Value) (triage.Snapshot, *triage.Question, error)
	Result(ctx context.Context, sessionID string) (*Record, error)
	Questions() []triage.Question
	// Close waits for background hand-offs to finish.
	Close()
}

type service struct {
	engine    *triage.Engine
	store     SessionStore
	repo      Repository
	advisor   Advisor
	reports   ReportService
	publisher Publisher
	log       *zap.Logger

	locks          *keyedMutex
	wg             sync.WaitGroup
	handoffTimeout time.Duration
}

// NewService wires the engine to its stores. advisor, reports and publisher
// may be nil.
func NewService(engine *triage.Engine, store SessionStore, repo Repository, advisor Advisor, reports ReportService, publisher Publisher, log *zap.Logger) Service {
	return &service{
		engine:         engine,
		store:          store,
		repo:           repo,
		advisor:        advisor,
		reports:        reports,
		publisher:      publisher,
		log:            log,
		locks:          newKeyedMutex(),
		handoffTimeout: 2 * time.Minute,
	}
}

func (s *service) Questions() []triage.Question {
	return s.engine.Bank().All()
}

func (s *service) StartSession(ctx context.Context, patientRef string) (*triage.Session, *triage.Question, error) {
	sess := s.engine.StartSession(patientRef)
	q := s.engine.NextQuestion(sess)
	if err := s.commit(ctx, sess); err != nil {
		return nil, nil, err
	}
	s.log.Info("triage session started", zap.String("session_id", sess.ID()))
	return sess, q, nil
}

func (s *service) NextQuestion(ctx context.Context, sessionID string) (*triage.Question, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Terminated() {
		return nil, nil
	}
	q := s.engine.NextQuestion(sess)
	if err := s.commit(ctx, sess); err != nil {
		return nil, err
	}
	return q, nil
}

// SubmitAnswer records the answer and returns the question to ask next. When
// the answer is rejected the returned question is the one still pending.
func (s *service) SubmitAnswer(ctx context.Context, sessionID, questionID string, v triage.Value) (triage.Snapshot, *triage.Question, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return triage.Snapshot{}, nil, err
	}

	snap, err := s.engine.SubmitAnswer(sess, questionID, v)
	if err != nil {
		var closed *triage.SessionClosedError
		if errors.As(err, &closed) {
			return snap, nil, err
		}
		q := s.engine.NextQuestion(sess)
		if saveErr := s.commit(ctx, sess); saveErr != nil {
			return snap, nil, saveErr
		}
		return sess.Snapshot(), q, err
	}

	var next *triage.Question
	if !sess.Terminated() {
		next = s.engine.NextQuestion(sess)
	}
	if sess.Terminated() {
		s.log.Info("triage session finished",
			zap.String("session_id", sessionID),
			zap.String("reason", string(sess.Reason())),
			zap.String("classification", string(sess.Classification())),
			zap.Int("answers", sess.Len()),
		)
	}
	if err := s.commit(ctx, sess); err != nil {
		return snap, nil, err
	}
	return sess.Snapshot(), next, nil
}

func (s *service) Result(ctx context.Context, sessionID string) (*Record, error) {
	rec, err := s.repo.GetBySession(ctx, sessionID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return nil, err
	}

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if rec, err := s.repo.GetBySession(ctx, sessionID); err == nil {
		return rec, nil
	}
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Terminated() {
		return nil, triage.ErrSessionOpen
	}
	rec = s.finalize(ctx, sess)
	if rec == nil {
		return nil, fmt.Errorf("archive result of session %s", sessionID)
	}
	return rec, nil
}

func (s *service) Close() {
	s.wg.Wait()
}

// commit saves the session and, once it has terminated, archives its result.
// Nothing is archived while the stored copy is still open.
func (s *service) commit(ctx context.Context, sess *triage.Session) error {
	if err := s.store.Save(ctx, sess); err != nil {
		return err
	}
	if sess.Terminated() {
		s.finalize(ctx, sess)
	}
	return nil
}

// finalize archives the result with the local conduct text and hands it off
// for the advisor recommendation, the report and the results queue. It
// returns nil when the archive write failed; Result retries later.
func (s *service) finalize(ctx context.Context, sess *triage.Session) *Record {
	res, err := s.engine.Result(sess)
	if err != nil {
		s.log.Error("result of terminated session", zap.String("session_id", sess.ID()), zap.Error(err))
		return nil
	}
	rec := &Record{
		ID:             uuid.New(),
		SessionID:      res.SessionID,
		PatientRef:     res.PatientRef,
		Result:         res,
		Abstention:     s.engine.Assess(res),
		Recommendation: res.Conduct,
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		s.log.Error("failed to archive triage result", zap.String("session_id", rec.SessionID), zap.Error(err))
		return nil
	}
	s.handoff(*rec)
	return rec
}

func (s *service) handoff(rec Record) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.handoffTimeout)
		defer cancel()

		log := s.log.With(zap.String("session_id", rec.SessionID))

		if s.advisor != nil {
			text, err := s.advisor.Recommend(ctx, rec.Result)
			if err != nil {
				log.Warn("advisor failed, keeping local conduct", zap.Error(err))
			} else if text != "" {
				rec.Recommendation = text
			}
		}

		if s.reports != nil {
			key, err := s.reports.SendDoctorReport(ctx, rec)
			if err != nil {
				log.Error("failed to send report", zap.Error(err))
			} else {
				rec.ReportKey = key
			}
		}

		if err := s.repo.Save(ctx, &rec); err != nil {
			log.Error("failed to update triage record", zap.Error(err))
		}

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, EventTriageCompleted, newCompletedEvent(rec)); err != nil {
				log.Error("failed to publish triage result", zap.Error(err))
			}
		}
	}()
}

// keyedMutex serialises work per session id.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.mu.Lock()
	return func() {
		m.mu.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
