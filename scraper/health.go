package scraper

import (
	"time"

	"newscr/config"
	"newscr/oops"
)

type SessionState int

const (
	SessionHealthy SessionState = iota
	SessionDegraded
	SessionStale
	SessionRecreating
)

func (s SessionState) String() string {
	switch s {
	case SessionHealthy:
		return "healthy"
	case SessionDegraded:
		return "degraded"
	case SessionStale:
		return "stale"
	case SessionRecreating:
		return "recreating"
	default:
		panic("Unknown session state")
	}
}

// SessionFactory builds a fresh session. Injected so tests never launch a
// browser.
type SessionFactory func() (Session, error)

// SessionManager tracks extraction failures and session liveness and
// decides when the browser gets recreated, cooled down, or given routine
// hygiene. It owns the live session exclusively.
type SessionManager struct {
	factory             SessionFactory
	session             Session
	state               SessionState
	consecutiveFailures int
	staleFromFailures   bool
	articlesSinceStart  int
	blockingIncidents   int
	startedAt           time.Time
	recreateAttempts    int

	maxConsecutiveFailures int
	maxArticles            int
	maxAge                 time.Duration
	recreateCooldown       time.Duration

	logger Logger
	sleep  func(time.Duration)
	now    func() time.Time
}

func NewSessionManager(cfg config.ScraperConfig, factory SessionFactory, logger Logger) *SessionManager {
	return &SessionManager{
		factory:                factory,
		session:                nil,
		state:                  SessionStale, // no session yet
		consecutiveFailures:    0,
		staleFromFailures:      false,
		articlesSinceStart:     0,
		blockingIncidents:      0,
		startedAt:              time.Time{},
		recreateAttempts:       0,
		maxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		maxArticles:            cfg.SessionMaxArticles,
		maxAge:                 cfg.SessionMaxAge.Std(),
		recreateCooldown:       cfg.RecreateCooldown.Std(),
		logger:                 logger,
		sleep:                  time.Sleep,
		now:                    time.Now,
	}
}

func (m *SessionManager) State() SessionState {
	return m.state
}

func (m *SessionManager) ConsecutiveFailures() int {
	return m.consecutiveFailures
}

// Session hands out the live session, recreating it first if the manager
// has marked it stale. This is the only entry point the pipeline uses.
func (m *SessionManager) Session() (Session, error) {
	if m.state == SessionStale {
		if err := m.recreate(); err != nil {
			return nil, err
		}
	}
	return m.session, nil
}

func (m *SessionManager) RecordSuccess() {
	m.consecutiveFailures = 0
	m.articlesSinceStart++
	if m.state == SessionDegraded {
		m.state = SessionHealthy
	}
	if m.articlesSinceStart >= m.maxArticles || m.pastMaxAge() {
		m.logger.Info("Preventive session rotation after %d articles", m.articlesSinceStart)
		m.markStale(false)
	} else if m.session != nil && m.articlesSinceStart%10 == 0 {
		// routine hygiene, not a state transition
		if err := m.session.ClearStorage(); err != nil {
			m.logger.Warn("Storage clearing failed: %v", err)
		}
	}
}

func (m *SessionManager) RecordFailure() {
	m.consecutiveFailures++
	m.articlesSinceStart++
	if m.consecutiveFailures >= m.maxConsecutiveFailures {
		m.logger.Warn("%d consecutive failures, marking session stale", m.consecutiveFailures)
		m.markStale(true)
	} else if m.state == SessionHealthy {
		m.state = SessionDegraded
	}
}

// RecordBlocking counts a blocked/challenged response. Blocking failures
// escalate the same way as generic failures but are tracked separately.
func (m *SessionManager) RecordBlocking() {
	m.blockingIncidents++
	m.RecordFailure()
}

func (m *SessionManager) BlockingIncidents() int {
	return m.blockingIncidents
}

// Probe checks the session is still responsive and marks it stale if not.
func (m *SessionManager) Probe() {
	if m.session == nil || m.state == SessionStale {
		return
	}
	if _, err := m.session.CurrentUrl(); err != nil {
		m.logger.Warn("Liveness probe failed: %v", err)
		m.markStale(true)
	}
}

// ForceRotate is the orchestrator's preventive maintenance hook.
func (m *SessionManager) ForceRotate() {
	m.markStale(false)
}

func (m *SessionManager) Quit() {
	if m.session != nil {
		if err := m.session.Quit(); err != nil {
			m.logger.Warn("Session quit error: %v", err)
		}
		m.session = nil
	}
	m.state = SessionStale
}

func (m *SessionManager) markStale(fromFailures bool) {
	m.state = SessionStale
	m.staleFromFailures = fromFailures
}

func (m *SessionManager) pastMaxAge() bool {
	return !m.startedAt.IsZero() && m.now().Sub(m.startedAt) >= m.maxAge
}

func (m *SessionManager) recreate() error {
	m.state = SessionRecreating

	if m.session != nil {
		if err := m.session.Quit(); err != nil {
			// best effort, the old session may already be gone
			m.logger.Warn("Old session quit error: %v", err)
		}
		m.session = nil
	}

	if m.staleFromFailures {
		cooldown := m.recreateCooldown * time.Duration(1<<m.recreateAttempts)
		if cooldown > 10*m.recreateCooldown {
			cooldown = 10 * m.recreateCooldown
		}
		m.logger.Info("Cooling down %v before recreating the session", cooldown)
		m.sleep(cooldown)
		m.recreateAttempts++
	} else if m.startedAt.IsZero() {
		// first session of the run, no cooldown
	} else {
		m.sleep(m.recreateCooldown)
	}

	session, err := m.factory()
	if err != nil {
		m.state = SessionStale
		return oops.Wrapf(err, "session recreation failed")
	}

	m.session = session
	m.state = SessionHealthy
	m.consecutiveFailures = 0
	m.staleFromFailures = false
	m.articlesSinceStart = 0
	m.recreateAttempts = 0
	m.startedAt = m.now()
	m.logger.Info("Session ready")
	return nil
}
