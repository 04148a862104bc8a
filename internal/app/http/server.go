package httpEngine

import (
	"context"
	"net/http"
	"time"

	"amani-server/configs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	e *echo.Echo
}

func initCustomRequestLoggerConfig() *middleware.RequestLoggerConfig {
	return &middleware.RequestLoggerConfig{
		// Health checks would flood the log.
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/"
		},
		BeforeNextFunc: func(c echo.Context) {
			c.Set("request-start-time", time.Now())
		},
		HandleError: true,

		LogLatency:       true,
		LogProtocol:      true,
		LogRemoteIP:      true,
		LogHost:          true,
		LogMethod:        true,
		LogURI:           true,
		LogURIPath:       true,
		LogRoutePath:     true,
		LogRequestID:     true,
		LogReferer:       true,
		LogUserAgent:     true,
		LogStatus:        true,
		LogError:         true,
		LogContentLength: true,
		LogResponseSize:  true,

		LogHeaders: []string{"Content-Type", "Accept-Encoding"},

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			startTime, _ := c.Get("request-start-time").(time.Time)
			elapsed := time.Since(startTime).String()

			fields := []zap.Field{
				zap.String("remote_ip", v.RemoteIP),
				zap.String("host", v.Host),
				zap.String("protocol", v.Protocol),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.String("path", v.URIPath),
				zap.String("route", v.RoutePath),
				zap.String("user_agent", v.UserAgent),
				zap.String("referer", v.Referer),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("latency_human", v.Latency.String()),
				zap.String("elapsed_since_before_next", elapsed),
				zap.String("request_id", v.RequestID),
				zap.Int64("response_size", v.ResponseSize),
				zap.String("content_length", v.ContentLength),
			}

			if len(v.Headers) > 0 {
				fields = append(fields, zap.Any("headers", v.Headers))
			}

			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				configs.Logger.Error("Request log with error", fields...)
				return nil
			}

			configs.Logger.Info("Request log", fields...)
			return nil
		},
	}
}

// NewServer instantiates Echo, wires middleware, and registers routes.
func NewServer() *Server {
	e := echo.New()
	e.IPExtractor = echo.ExtractIPFromRealIPHeader()

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     configs.Configs.Service.AllowOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderCacheControl},
	}))

	config := initCustomRequestLoggerConfig()
	e.Use(middleware.RequestLoggerWithConfig(*config))

	e.Use(middleware.Recover())

	RegisterRoutes(e)

	return &Server{e: e}
}

// Start runs the Echo server on the configured HTTP port.
func (s *Server) Start() error {
	port := configs.Configs.Service.HttpPort
	if port == "" {
		port = "8080"
	}
	return s.e.Start(":" + port)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
