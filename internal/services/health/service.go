package health

import (
	"time"

	"demystifier-backend/internal/shared/config"
)

// SessionCounter reports how many sessions are live.
type SessionCounter interface {
	Len() int
}

// Report is the health payload. Credentials report presence only.
type Report struct {
	OK          bool            `json:"ok"`
	Env         string          `json:"env"`
	Provider    string          `json:"provider"`
	Model       string          `json:"model"`
	Credentials map[string]bool `json:"credentials"`
	Sessions    int             `json:"sessions"`
	Uptime      string          `json:"uptime"`
}

// Service encapsulates health-related checks.
type Service struct {
	cfg      config.Config
	sessions SessionCounter
	started  time.Time
}

// NewService constructs a new health service.
func NewService(cfg config.Config, sessions SessionCounter) *Service {
	return &Service{cfg: cfg, sessions: sessions, started: time.Now()}
}

// Status returns the health payload. The service stays healthy without
// credentials; analyze requests are rejected instead.
func (s *Service) Status() Report {
	creds := s.cfg.Credentials()
	r := Report{
		OK:       true,
		Env:      s.cfg.Env,
		Provider: s.cfg.LLMProvider,
		Model:    s.cfg.LLMModel,
		Credentials: map[string]bool{
			"analysis":    creds.AnalysisKey != "",
			"translation": creds.TranslationToken != "",
		},
		Uptime: time.Since(s.started).Round(time.Second).String(),
	}
	if s.sessions != nil {
		r.Sessions = s.sessions.Len()
	}
	return r
}
