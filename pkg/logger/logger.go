package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with additional functionality
type Logger struct {
	*slog.Logger
}

// New creates a new logger instance
func New() *Logger {
	level := getLogLevel(os.Getenv("LOG_LEVEL"))

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text handler for development, JSON for production
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("request_id", requestID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Business logic logging methods

// LogSeatsGenerated logs seat inventory creation for a session
func (l *Logger) LogSeatsGenerated(ctx context.Context, sessionID string, count int) {
	l.Logger.InfoContext(ctx,
		"Seats Generated",
		slog.String("session_id", sessionID),
		slog.Int("count", count),
	)
}

// LogHoldPlaced logs a granted seat hold
func (l *Logger) LogHoldPlaced(ctx context.Context, sessionID, cartID string, seats int, heldUntil time.Time) {
	l.Logger.InfoContext(ctx,
		"Hold Placed",
		slog.String("session_id", sessionID),
		slog.String("cart_id", cartID),
		slog.Int("seats", seats),
		slog.Time("held_until", heldUntil),
	)
}

// LogHoldReleased logs an explicit release
func (l *Logger) LogHoldReleased(ctx context.Context, sessionID, cartID string, seats int) {
	l.Logger.InfoContext(ctx,
		"Hold Released",
		slog.String("session_id", sessionID),
		slog.String("cart_id", cartID),
		slog.Int("seats", seats),
	)
}

// LogTicketsIssued logs a finalized cart
func (l *Logger) LogTicketsIssued(ctx context.Context, cartID, correlationID string, tickets int, alreadyProcessed bool) {
	l.Logger.InfoContext(ctx,
		"Tickets Issued",
		slog.String("cart_id", cartID),
		slog.String("correlation_id", correlationID),
		slog.Int("tickets", tickets),
		slog.Bool("already_processed", alreadyProcessed),
	)
}

// LogExpiredSweep logs a janitor run that cleared expired holds
func (l *Logger) LogExpiredSweep(ctx context.Context, cleared int64, elapsed time.Duration) {
	l.Logger.DebugContext(ctx,
		"Expired Holds Swept",
		slog.Int64("cleared", cleared),
		slog.Duration("elapsed", elapsed),
	)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
