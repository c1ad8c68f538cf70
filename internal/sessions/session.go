package sessions

import (
	"context"
	"sync"
	"time"

	"demystifier-backend/internal/analysis"
	"demystifier-backend/internal/extract"
	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/render"
)

// State is the pipeline state of a session.
type State string

const (
	StateIdle         State = "idle"
	StateFileSelected State = "file_selected"
	StateExtracting   State = "extracting"
	StateAnalyzing    State = "analyzing"
	StateTranslating  State = "translating"
	StateRendering    State = "rendering"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// Running reports whether s is an in-flight pipeline stage.
func (s State) Running() bool {
	switch s {
	case StateExtracting, StateAnalyzing, StateTranslating, StateRendering:
		return true
	}
	return false
}

// FileInfo describes the selected file without its contents.
type FileInfo struct {
	Name   string         `json:"name"`
	Format extract.Format `json:"format"`
	Size   int            `json:"size"`
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID         string             `json:"id"`
	State      State              `json:"state"`
	Status     string             `json:"status"`
	CanAnalyze bool               `json:"canAnalyze"`
	File       *FileInfo          `json:"file,omitempty"`
	Persona    llm.Persona        `json:"persona"`
	Language   i18n.Language      `json:"language"`
	Labels     i18n.LabelSet      `json:"labels"`
	Analysis   *analysis.Analysis `json:"analysis,omitempty"`
	View       *render.View       `json:"-"`
	TextChars  int                `json:"textChars,omitempty"`
	Generation uint64             `json:"generation"`
	LastError  string             `json:"lastError,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// Run identifies one pipeline run. Ctx is cancelled when a newer run starts,
// the file is cleared or the session is evicted.
type Run struct {
	Generation uint64
	Ctx        context.Context
}

// Session is one visitor's document, settings and results. All methods are
// safe for concurrent use. Updates tagged with a run generation are dropped
// once a newer run has started.
type Session struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	updatedAt time.Time
	lastSeen  time.Time

	state      State
	status     string
	canAnalyze bool
	file       *extract.File
	text       string
	persona    llm.Persona
	language   i18n.Language
	labels     i18n.LabelSet
	analysis   *analysis.Analysis
	view       *render.View
	generation uint64
	cancel     context.CancelFunc
	lastError  string
	diagrams   render.DiagramRenderer
}

func newSession(id string, now time.Time, diagrams render.DiagramRenderer) *Session {
	return &Session{
		id:        id,
		createdAt: now,
		updatedAt: now,
		lastSeen:  now,
		state:     StateIdle,
		persona:   llm.PersonaStudent,
		language:  i18n.English,
		labels:    i18n.EnglishLabels(),
		diagrams:  diagrams,
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:         s.id,
		State:      s.state,
		Status:     s.status,
		CanAnalyze: s.canAnalyze,
		Persona:    s.persona,
		Language:   s.language,
		Labels:     s.labels.Clone(),
		TextChars:  len([]rune(s.text)),
		Generation: s.generation,
		LastError:  s.lastError,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
	if s.file != nil {
		snap.File = &FileInfo{Name: s.file.Name, Format: s.fileFormat(), Size: len(s.file.Data)}
	}
	if s.analysis != nil {
		a := s.analysis.Clone()
		snap.Analysis = &a
	}
	if s.view != nil {
		v := *s.view
		snap.View = &v
	}
	return snap
}

func (s *Session) fileFormat() extract.Format {
	f, _ := extract.Detect(s.file.Name, s.file.ContentType)
	return f
}

// File returns the selected file.
func (s *Session) File() (extract.File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return extract.File{}, false
	}
	return *s.file, true
}

// Persona returns the selected persona.
func (s *Session) Persona() llm.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// SetPersona changes the persona used by the next run.
func (s *Session) SetPersona(p llm.Persona) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = p
	s.updatedAt = time.Now()
}

// Language returns the current language and its label set.
func (s *Session) Language() (i18n.Language, i18n.LabelSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language, s.labels.Clone()
}

// ApplyLabels replaces the language and the whole label set, and relabels
// the current view. The analysis itself is not retranslated.
func (s *Session) ApplyLabels(lang i18n.Language, set i18n.LabelSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	s.labels = set.Clone()
	if s.analysis != nil {
		v := render.Render(*s.analysis, s.labels, s.diagrams)
		s.view = &v
	}
	s.updatedAt = time.Now()
}

// SelectFile stores f as the current document and enables analysis. The
// previous analysis and view stay visible until a new run commits.
func (s *Session) SelectFile(f extract.File) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.file = &f
	s.text = ""
	if !s.state.Running() {
		s.state = StateFileSelected
		s.status = ""
		s.canAnalyze = true
	}
	s.updatedAt = time.Now()
}

// ClearFile drops the selected file and cancels any in-flight run.
func (s *Session) ClearFile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.generation++
	s.file = nil
	s.text = ""
	s.state = StateIdle
	s.status = ""
	s.canAnalyze = false
	s.updatedAt = time.Now()
}

// Begin starts a new run derived from parent. Any previous run is cancelled
// and its later updates are ignored.
func (s *Session) Begin(parent context.Context) Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.generation++
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel
	s.canAnalyze = false
	s.lastError = ""
	s.updatedAt = time.Now()
	return Run{Generation: s.generation, Ctx: ctx}
}

// Current reports whether gen is the latest run.
func (s *Session) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// Transition moves a run to state with a status text.
func (s *Session) Transition(gen uint64, state State, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.state = state
	s.status = status
	s.updatedAt = time.Now()
	return true
}

// SetText records the extracted text of a run.
func (s *Session) SetText(gen uint64, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.text = text
	return true
}

// Commit stores the results of a finished run.
func (s *Session) Commit(gen uint64, a analysis.Analysis, v render.View, status string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.analysis = &a
	s.view = &v
	s.state = StateDone
	s.status = status
	s.canAnalyze = s.file != nil
	s.finishLocked()
	return true
}

// Fail ends a run with a user-facing status. The file stays selected and the
// previous results are kept.
func (s *Session) Fail(gen uint64, status, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return false
	}
	s.lastError = reason
	s.status = status
	if s.file != nil {
		s.state = StateFileSelected
		s.canAnalyze = true
	} else {
		s.state = StateIdle
	}
	s.finishLocked()
	return true
}

func (s *Session) finishLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.updatedAt = time.Now()
}

func (s *Session) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen), s.state.Running()
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.generation++
}
