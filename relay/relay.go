// Package relay exposes chat dispatch to the desktop front-end over HTTP. It accepts
// a chat request, completes it from the saved settings, hands it to the provider it
// names and returns the reply text or a readable error.
package relay

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/819SauCe/Galaxy/pkg/llm"
	"github.com/819SauCe/Galaxy/pkg/opener"
	"github.com/819SauCe/Galaxy/pkg/provider"
	"github.com/819SauCe/Galaxy/pkg/settings"
)

// RequestIDHeader carries the id the relay logs each chat request under.
const RequestIDHeader = "X-Request-Id"

// Relay is the HTTP host around provider dispatch. Dispatch itself is stateless,
// the relay only owns its collaborators: the provider registry, the settings store
// and the system opener.
type Relay struct {
	config       Config
	registry     *provider.Registry
	storer       settings.Storer
	opener       opener.Opener
	logger       *zap.Logger
	server       *fiber.App
	defaultModel atomic.Pointer[string]
}

// New creates a new Relay.
func New(config Config, registry *provider.Registry, storer settings.Storer, op opener.Opener, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		// Images arrive inline as data URLs
		BodyLimit: 64 * 1024 * 1024,
	})

	r := &Relay{
		config:   config,
		registry: registry,
		storer:   storer,
		opener:   op,
		logger:   logger,
		server:   app,
	}
	r.SetDefaultModel(config.DefaultModel)

	r.registerRoutes(app)

	return r
}

func (r *Relay) registerRoutes(app *fiber.App) {
	app.Post("/api/chat", r.handleChat)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})

	// Settings persistence
	app.Get("/api/settings", r.handleListSettings)
	app.Get("/api/settings/"+settings.GeneralKey, r.handleGetGeneral)
	app.Get("/api/settings/:key", r.handleGetSetting)
	app.Put("/api/settings/:key", r.handlePutSetting)
	app.Delete("/api/settings/:key", r.handleDeleteSetting)

	app.Post("/api/open", r.handleOpen)

	app.All("/mcp", r.mcpHandler())
}

// Run starts the relay server on the configured listening address
func (r *Relay) Run() error {
	r.logger.Info("starting relay server",
		zap.String("listen", r.config.ListenAddr),
		zap.Strings("providers", r.registry.Names()),
	)

	return r.server.Listen(r.config.ListenAddr)
}

// RunWithListener serves on an existing listener.
func (r *Relay) RunWithListener(ln net.Listener) error {
	return r.server.Listener(ln)
}

// Shutdown stops the server, waiting for in-flight requests.
func (r *Relay) Shutdown() error {
	return r.server.Shutdown()
}

// Close shuts down the relay and releases resources.
func (r *Relay) Close() error {
	return r.storer.Close()
}

// SetDefaultModel replaces the fallback model. Safe to call while serving.
func (r *Relay) SetDefaultModel(model string) {
	r.defaultModel.Store(&model)
}

// DefaultModel returns the current fallback model.
func (r *Relay) DefaultModel() string {
	return *r.defaultModel.Load()
}

// Chat completes req from the saved settings and dispatches it. Settings that cannot
// be read are logged and the request goes out as it came in.
func (r *Relay) Chat(ctx context.Context, requestID string, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	startTime := time.Now()
	logger := r.logger.With(zap.String("request_id", requestID))

	if err := settings.Resolve(ctx, r.storer, req, r.DefaultModel()); err != nil {
		logger.Warn("failed to resolve request from settings", zap.Error(err))
	}

	logger.Debug("dispatching chat request",
		zap.String("provider", req.Provider),
		zap.String("model", req.Model),
		zap.Int("history_count", len(req.History)),
		zap.Int("image_count", len(req.Attachments.Images)),
		zap.Bool("has_api_key", req.APIKey != ""),
	)

	if _, ok := r.registry.Get(req.Provider); ok {
		if err := settings.RequireAPIKey(req); err != nil {
			logger.Warn("chat request rejected", zap.String("provider", req.Provider), zap.Error(err))
			return nil, err
		}
	}

	resp, err := r.registry.Dispatch(ctx, req)
	if err != nil {
		logger.Error("chat request failed",
			zap.String("provider", req.Provider),
			zap.Duration("duration", time.Since(startTime)),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Info("chat request completed",
		zap.String("provider", req.Provider),
		zap.String("model", req.Model),
		zap.String("reply_preview", truncate(resp.Text, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return resp, nil
}

// handleChat runs one chat turn. The reply is {"text": ...}; failures are
// {"error": ...} carrying the full diagnostic.
func (r *Relay) handleChat(c *fiber.Ctx) error {
	requestID := uuid.NewString()
	c.Set(RequestIDHeader, requestID)

	var req llm.ChatRequest
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		r.logger.Error("failed to parse request", zap.String("request_id", requestID), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	resp, err := r.Chat(c.UserContext(), requestID, &req)
	if err != nil {
		status := fiber.StatusBadGateway
		if errors.Is(err, provider.ErrUnsupportedProvider) || errors.Is(err, settings.ErrMissingAPIKey) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(resp)
}

// handleListSettings returns the stored setting keys.
func (r *Relay) handleListSettings(c *fiber.Ctx) error {
	keys, err := r.storer.Keys(c.UserContext())
	if err != nil {
		r.logger.Error("failed to list settings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list settings"})
	}

	return c.JSON(map[string]any{"keys": keys})
}

// handleGetGeneral returns the general settings, falling back to the defaults.
// API keys are masked.
func (r *Relay) handleGetGeneral(c *fiber.Ctx) error {
	general, err := settings.LoadGeneral(c.UserContext(), r.storer)
	if err != nil {
		r.logger.Error("failed to load general settings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to load settings"})
	}

	return c.JSON(general.WithMaskedAPIKeys())
}

// handleGetSetting returns the raw JSON value stored under a key.
func (r *Relay) handleGetSetting(c *fiber.Ctx) error {
	key := c.Params("key")

	value, err := r.storer.Get(c.UserContext(), key)
	if err != nil {
		var notFound settings.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "setting not found"})
		}
		r.logger.Error("failed to load setting", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to load setting"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(value)
}

// handlePutSetting stores the request body, which must be a JSON document, under a key.
func (r *Relay) handlePutSetting(c *fiber.Ctx) error {
	// stores may keep the key past the handler
	key := utils.CopyString(c.Params("key"))
	body := c.Body()

	if !sonic.Valid(body) {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "setting value must be JSON"})
	}

	if key == settings.GeneralKey {
		return r.putGeneral(c, body)
	}

	// fasthttp reuses the body buffer after the handler returns
	value := append([]byte(nil), body...)
	if err := r.storer.Put(c.UserContext(), key, value); err != nil {
		r.logger.Error("failed to save setting", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to save setting"})
	}

	r.logger.Debug("setting saved", zap.String("key", key), zap.Int("size", len(value)))
	return c.SendStatus(fiber.StatusNoContent)
}

// putGeneral saves the general settings, keeping stored API keys that come back
// in the masked form handleGetGeneral returns them in.
func (r *Relay) putGeneral(c *fiber.Ctx, body []byte) error {
	var general settings.GeneralSettings
	if err := sonic.Unmarshal(body, &general); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid general settings"})
	}

	stored, err := settings.LoadGeneral(c.UserContext(), r.storer)
	if err != nil {
		r.logger.Error("failed to load general settings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to save setting"})
	}
	general.RestoreMaskedAPIKeys(stored)

	if err := settings.Save(c.UserContext(), r.storer, settings.GeneralKey, general); err != nil {
		r.logger.Error("failed to save general settings", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to save setting"})
	}

	r.logger.Debug("general settings saved")
	return c.SendStatus(fiber.StatusNoContent)
}

func (r *Relay) handleDeleteSetting(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := r.storer.Delete(c.UserContext(), key); err != nil {
		r.logger.Error("failed to delete setting", zap.String("key", key), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to delete setting"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// OpenRequest is the body of POST /api/open.
type OpenRequest struct {
	Target string `json:"target"`
}

// handleOpen opens a URL or local file with the system default application.
func (r *Relay) handleOpen(c *fiber.Ctx) error {
	var req OpenRequest
	if err := sonic.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid request body"})
	}

	if err := r.opener.Open(req.Target); err != nil {
		r.logger.Warn("failed to open target", zap.String("target", req.Target), zap.Error(err))
		status := fiber.StatusInternalServerError
		if errors.Is(err, opener.ErrEmptyTarget) || errors.Is(err, opener.ErrUnsupportedScheme) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// truncate shortens s to at most maxLen runes for log previews.
func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
