package ipc

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/trae-op/electron-modular/errors"
	"github.com/trae-op/electron-modular/logger"
)

// HTTPBridge exposes a Bus over HTTP: POST /ipc/:channel with an optional
// JSON payload invokes the channel's handler and returns its result as JSON.
// It is the renderer-to-main analog for hosts whose UI runs in a browser
// context against a localhost port.
type HTTPBridge struct {
	bus    Bus
	engine *gin.Engine
	log    *logger.Logger
}

// NewHTTPBridge mounts the bus on a fresh gin engine.
func NewHTTPBridge(bus Bus, log *logger.Logger) *HTTPBridge {
	if log == nil {
		log = logger.GetGlobalLogger().WithComponent("ipc")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	b := &HTTPBridge{bus: bus, engine: engine, log: log}
	engine.POST("/ipc/:channel", b.invoke)
	engine.GET("/ipc", b.channels)
	return b
}

// Engine returns the underlying gin engine for embedding in a host server.
func (b *HTTPBridge) Engine() *gin.Engine {
	return b.engine
}

// Serve blocks serving the bridge on addr.
func (b *HTTPBridge) Serve(addr string) error {
	b.log.Info("ipc bridge listening", logger.Fields("addr", addr))
	return b.engine.Run(addr)
}

func (b *HTTPBridge) invoke(c *gin.Context) {
	channel := c.Param("channel")

	var payload any
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "invalid JSON payload"}})
			return
		}
	}

	result, err := b.bus.Invoke(c.Request.Context(), channel, payload)
	if err != nil {
		status := http.StatusInternalServerError
		message := err.Error()
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			status = appErr.HTTPStatus
			message = appErr.Message
		}
		b.log.Warn("ipc invocation failed", logger.Fields(
			logger.FieldChannel, channel,
			logger.FieldError, err.Error(),
		))
		c.JSON(status, gin.H{"error": gin.H{"message": message}})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (b *HTTPBridge) channels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": b.bus.Channels()})
}
