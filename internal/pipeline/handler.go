package pipeline

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"demystifier-backend/internal/events"
	"demystifier-backend/internal/extract"
	"demystifier-backend/internal/i18n"
	"demystifier-backend/internal/llm"
	"demystifier-backend/internal/localize"
	"demystifier-backend/internal/render"
	"demystifier-backend/internal/sessions"
	"demystifier-backend/internal/shared/server/middleware"
	"demystifier-backend/internal/shared/server/respond"
	"demystifier-backend/internal/shared/telemetry"
	"demystifier-backend/internal/shared/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler exposes sessions and the pipeline over HTTP.
type Handler struct {
	Orch            *Orchestrator
	Sessions        *sessions.Store
	Localizer       *localize.Localizer
	Hub             *events.Hub
	MaxUploadBytes  int64
	DefaultLanguage string
}

// RegisterRoutes attaches the session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/labels", h.getLabels)
	rg.POST("/sessions", h.createSession)
	rg.GET("/sessions/:id", h.getSession)
	rg.POST("/sessions/:id/file", h.uploadFile)
	rg.DELETE("/sessions/:id/file", h.clearFile)
	rg.PUT("/sessions/:id/persona", h.setPersona)
	rg.PUT("/sessions/:id/language", h.setLanguage)
	rg.POST("/sessions/:id/analyze", h.analyze)
	rg.GET("/sessions/:id/analysis", h.getAnalysis)
	rg.GET("/sessions/:id/view", h.getView)
	rg.GET("/sessions/:id/risks", h.getRisks)
	rg.GET("/sessions/:id/page", h.getPage)
	rg.GET("/sessions/:id/export.xlsx", h.exportRiskRegister)
	rg.GET("/sessions/:id/events", h.streamEvents)
}

func (h *Handler) session(c *gin.Context) (*sessions.Session, bool) {
	sess, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		return nil, false
	}
	return sess, true
}

func (h *Handler) getLabels(c *gin.Context) {
	lang, labels := h.Localizer.Resolve(c.Request.Context(), c.Query("language"))
	respond.OK(c, gin.H{"language": lang, "labels": labels})
}

func (h *Handler) createSession(c *gin.Context) {
	sess := h.Sessions.Create()
	if lang := strings.TrimSpace(h.DefaultLanguage); lang != "" && !strings.EqualFold(lang, i18n.English.Name) {
		h.Localizer.SetLanguage(c.Request.Context(), sess, lang)
	}
	telemetry.Info("session.created", map[string]any{"session_id": sess.ID()})
	respond.JSON(c, http.StatusCreated, sess.Snapshot())
}

func (h *Handler) getSession(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) uploadFile(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	if h.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Sprintf("File exceeds %d bytes", h.MaxUploadBytes), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field \"file\" is required", nil)
		return
	}
	name, err := util.SanitizeFileName(fh.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}
	src, err := fh.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read uploaded file", nil)
		return
	}

	file := extract.File{Name: name, ContentType: fh.Header.Get("Content-Type"), Data: data}
	if err := h.Orch.SelectFile(sess, file); err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			respond.Error(c, http.StatusUnsupportedMediaType, CodeUnsupportedFormat, "Please select a PDF or TXT file", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, CodeInternal, "failed to store file", nil)
		return
	}
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) clearFile(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	h.Orch.ClearFile(sess)
	respond.OK(c, sess.Snapshot())
}

type personaRequest struct {
	Persona string `json:"persona"`
}

func (h *Handler) setPersona(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req personaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	p, valid := llm.ParsePersona(req.Persona)
	if !valid {
		respond.Error(c, http.StatusBadRequest, "validation_error", "persona must be one of: student, business_owner, lawyer", nil)
		return
	}
	sess.SetPersona(p)
	respond.OK(c, sess.Snapshot())
}

type languageRequest struct {
	Language string `json:"language"`
}

func (h *Handler) setLanguage(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	h.Localizer.SetLanguage(c.Request.Context(), sess, req.Language)
	respond.OK(c, sess.Snapshot())
}

func (h *Handler) analyze(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	from := sess.Snapshot().State

	if c.Query("wait") == "true" {
		err := h.Orch.Run(c.Request.Context(), sess)
		snap := sess.Snapshot()
		c.Set(middleware.StatusTransitionKey, string(from)+"->"+string(snap.State))
		c.Set(middleware.GenerationKey, snap.Generation)
		if err != nil {
			h.runError(c, err)
			return
		}
		respond.OK(c, snap)
		return
	}

	run, err := h.Orch.Start(c.Request.Context(), sess)
	if err != nil {
		h.runError(c, err)
		return
	}
	c.Set(middleware.StatusTransitionKey, string(from)+"->"+string(sessions.StateExtracting))
	c.Set(middleware.GenerationKey, run.Generation)
	respond.JSON(c, http.StatusAccepted, gin.H{
		"sessionId":  sess.ID(),
		"generation": run.Generation,
		"status":     StatusExtracting,
	})
}

func (h *Handler) runError(c *gin.Context, err error) {
	code := Classify(err)
	switch {
	case errors.Is(err, llm.ErrMissingCredential):
		respond.Error(c, http.StatusPreconditionFailed, code, "The analysis service is not configured.", nil)
	case errors.Is(err, ErrNoFile):
		respond.Error(c, http.StatusConflict, code, "Select a PDF or TXT file first.", nil)
	case errors.Is(err, ErrSuperseded):
		respond.Error(c, http.StatusConflict, code, "A newer analysis replaced this one.", nil)
	default:
		respond.Error(c, http.StatusBadGateway, code, StatusFailed, nil)
	}
}

func (h *Handler) getAnalysis(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	if snap.Analysis == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no analysis yet", nil)
		return
	}
	respond.OK(c, snap.Analysis)
}

func (h *Handler) getView(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	if snap.View == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no analysis yet", nil)
		return
	}
	respond.OK(c, snap.View)
}

func (h *Handler) getRisks(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	level := strings.ToLower(strings.TrimSpace(c.Query("level")))
	switch level {
	case "", "high", "medium", "low":
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "level must be one of: high, medium, low", nil)
		return
	}
	snap := sess.Snapshot()
	if snap.View == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no analysis yet", nil)
		return
	}
	items := render.FilterRisks(snap.View.Risks.Items, level)
	resp := gin.H{"level": level, "items": items}
	if len(items) == 0 {
		resp["notice"] = snap.Labels.Get(i18n.KeyNoRisks)
	}
	respond.OK(c, resp)
}

func (h *Handler) getPage(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	page, err := render.Page(render.PageData{
		SessionID:  snap.ID,
		Language:   snap.Language,
		Persona:    string(snap.Persona),
		Status:     snap.Status,
		CanAnalyze: snap.CanAnalyze,
		View:       snap.View,
		Labels:     i18n.EnglishLabels(),
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, CodeInternal, "failed to render page", nil)
		return
	}
	localized, _, err := localize.Apply(page, snap.Labels)
	if err != nil {
		telemetry.Warn("page.localize_failed", map[string]any{"session_id": snap.ID, "error": err})
		localized = page
	}
	respond.HTML(c, localized)
}

func (h *Handler) exportRiskRegister(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	snap := sess.Snapshot()
	if snap.Analysis == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no analysis yet", nil)
		return
	}
	data, err := render.RiskRegister(*snap.Analysis, snap.Labels)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, CodeInternal, "failed to build risk register", nil)
		return
	}
	respond.Attachment(c, "risk-register.xlsx", xlsxContentType, data)
}

func (h *Handler) streamEvents(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	initial := EventFor(sess.Snapshot(), "")
	if err := h.Hub.Serve(c.Writer, c.Request, sess.ID(), &initial); err != nil {
		telemetry.Warn("events.upgrade_failed", map[string]any{"session_id": sess.ID(), "error": err})
	}
}
