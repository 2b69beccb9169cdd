package api

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/edlflash/errors"
	"github.com/kbukum/edlflash/flasher"
	"github.com/kbukum/edlflash/logger"
	"github.com/kbukum/edlflash/serialport"
	"github.com/kbukum/edlflash/server"
	"github.com/kbukum/edlflash/sse"
	"github.com/kbukum/edlflash/validation"
)

// Flasher is the part of *flasher.Flasher the API drives.
type Flasher interface {
	ExecuteInDir(ctx context.Context, label string, argv []string, dir string) (string, error)
	RefreshPort(finder flasher.PortFinder) (serialport.Port, error)
	Toolchain() flasher.Toolchain
	Busy() bool
}

// RunRequest starts one labelled tool run.
type RunRequest struct {
	Label string   `json:"label" validate:"required,max=128"`
	Argv  []string `json:"argv" validate:"required,min=1"`
	Dir   string   `json:"dir,omitempty"`
}

// RunAccepted is returned for an asynchronous run.
type RunAccepted struct {
	RunID string `json:"run_id"`
}

// ExecResult is returned for a synchronous run.
type ExecResult struct {
	Output string `json:"output"`
}

// PortInfo reports the detected device port.
type PortInfo struct {
	serialport.Port
	Connected bool `json:"connected"`
}

// Status reports whether a tool owns the device and what it will talk to.
type Status struct {
	Busy      bool              `json:"busy"`
	Toolchain flasher.Toolchain `json:"toolchain"`
	Runs      []string          `json:"runs"`
}

// Handler serves the GUI-facing API. Asynchronous runs outlive their
// request and are cancelled by Close.
type Handler struct {
	flasher Flasher
	finder  flasher.PortFinder
	hub     *sse.Hub
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu   sync.Mutex
	runs map[string]context.CancelFunc
}

// New creates a Handler. Events of runs reach GUI clients through hub.
func New(f Flasher, finder flasher.PortFinder, hub *sse.Hub) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Handler{
		flasher: f,
		finder:  finder,
		hub:     hub,
		log:     logger.Get("api"),
		ctx:     ctx,
		cancel:  cancel,
		runs:    make(map[string]context.CancelFunc),
	}
}

// Register mounts the API under /api/v1.
func (h *Handler) Register(r gin.IRouter) {
	v1 := r.Group("/api/v1")
	v1.GET("/port", h.Port)
	v1.GET("/status", h.Status)
	v1.POST("/run", h.Run)
	v1.DELETE("/run/:id", h.Cancel)
	v1.POST("/exec", h.Exec)
	v1.GET("/events", h.Events)
}

// Close cancels every asynchronous run and waits for them to finish.
func (h *Handler) Close() {
	h.cancel()
	h.wg.Wait()
}

// Port rediscovers the device. A missing device is a normal answer, not an
// error: the GUI shows the "Not found" placeholder.
func (h *Handler) Port(c *gin.Context) {
	port, err := h.flasher.RefreshPort(h.finder)
	if err != nil && !errors.HasCode(err, errors.ErrCodeNotFound) {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, PortInfo{Port: port, Connected: err == nil})
}

// Status reports the device lock and the resolved toolchain.
func (h *Handler) Status(c *gin.Context) {
	server.RespondOK(c, Status{
		Busy:      h.flasher.Busy(),
		Toolchain: h.flasher.Toolchain(),
		Runs:      h.activeRuns(),
	})
}

// Run starts a tool run in the background and answers 202 with its run ID.
// Progress and the "...OK"/"...Error" outcome arrive on the event stream.
func (h *Handler) Run(c *gin.Context) {
	req, ok := h.bindRun(c)
	if !ok {
		return
	}
	if h.flasher.Busy() {
		server.RespondWithError(c, errors.ServiceUnavailable("device").
			WithDetail("reason", "another tool session is running"))
		return
	}

	runID := uuid.NewString()
	ctx, cancel := context.WithCancel(h.ctx)
	h.track(runID, cancel)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.untrack(runID)

		log := h.log.WithFields(logger.Fields(logger.FieldRunID, runID, logger.FieldLabel, req.Label))
		if _, err := h.flasher.ExecuteInDir(ctx, req.Label, req.Argv, req.Dir); err != nil {
			log.Warn("background run failed", logger.Fields(logger.FieldError, err.Error()))
			return
		}
		log.Debug("background run finished")
	}()

	server.RespondAccepted(c, RunAccepted{RunID: runID})
}

// Cancel stops an asynchronous run.
func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	cancel, ok := h.runs[id]
	h.mu.Unlock()
	if !ok {
		server.RespondWithError(c, errors.NotFound("run", id))
		return
	}
	cancel()
	server.RespondAccepted(c, RunAccepted{RunID: id})
}

// Exec runs a tool and answers with its output once it exits.
func (h *Handler) Exec(c *gin.Context) {
	req, ok := h.bindRun(c)
	if !ok {
		return
	}
	out, err := h.flasher.ExecuteInDir(c.Request.Context(), req.Label, req.Argv, req.Dir)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, ExecResult{Output: out})
}

// Events streams log and progress events to one GUI client.
func (h *Handler) Events(c *gin.Context) {
	sse.ServeSSE(h.hub, c.Writer, c.Request, "gui:"+uuid.NewString(),
		sse.WithRemoteAddr(c.ClientIP()),
		sse.WithMetadata("user_agent", c.Request.UserAgent()),
	)
}

// bindRun decodes and checks a run request. Only JSON bodies are accepted,
// which a browser cannot send cross-origin without a preflight, and argv[0]
// must name one of the resolved flashing tools.
func (h *Handler) bindRun(c *gin.Context) (RunRequest, bool) {
	var req RunRequest
	if ct := c.ContentType(); ct != gin.MIMEJSON {
		server.RespondWithError(c, errors.New(errors.ErrCodeInvalidInput,
			"Content-Type must be application/json", http.StatusUnsupportedMediaType).
			WithDetail("content_type", ct))
		return req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, errors.InvalidInput("body", err.Error()))
		return req, false
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return req, false
	}
	if appErr := validation.New().Command("argv", req.Argv).Dir("dir", req.Dir).Validate(); appErr != nil {
		server.RespondWithError(c, appErr)
		return req, false
	}
	tool, err := allowedTool(h.flasher.Toolchain(), req.Argv[0])
	if err != nil {
		server.RespondWithError(c, err)
		return req, false
	}
	req.Argv = append([]string{tool}, req.Argv[1:]...)
	return req, true
}

// allowedTool maps program to the resolved path of QSaharaServer or
// fh_loader. program may be the full path or the tool's base name; the
// resolved path is always what runs.
func allowedTool(tc flasher.Toolchain, program string) (string, *errors.AppError) {
	for _, tool := range []string{tc.SaharaServerPath, tc.FhLoaderPath} {
		if tool == "" {
			continue
		}
		if program == tool || toolName(program) == toolName(tool) {
			return tool, nil
		}
	}
	return "", errors.Forbidden("only the flashing tools may be run").WithDetail("program", program)
}

func toolName(path string) string {
	base := filepath.Base(strings.ReplaceAll(path, `\`, "/"))
	return strings.TrimSuffix(strings.ToLower(base), ".exe")
}

func (h *Handler) track(id string, cancel context.CancelFunc) {
	h.mu.Lock()
	h.runs[id] = cancel
	h.mu.Unlock()
}

func (h *Handler) untrack(id string) {
	h.mu.Lock()
	if cancel, ok := h.runs[id]; ok {
		cancel()
		delete(h.runs, id)
	}
	h.mu.Unlock()
}

func (h *Handler) activeRuns() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.runs))
	for id := range h.runs {
		ids = append(ids, id)
	}
	return ids
}
