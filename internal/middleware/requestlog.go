package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/swapi-mirror/internal/logger"
)

// RequestID tags every request and response with an X-Request-ID,
// generating a uuid when the client did not send one.
func RequestID() echo.MiddlewareFunc {
	return echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString})
}

// AccessLog writes one line per request to the application log.
func AccessLog() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				logger.Warningf("%s %s %d %s id=%s user=%s err=%v",
					v.Method, v.URI, v.Status, v.Latency, v.RequestID, currentUserID(c), v.Error)
				return nil
			}
			logger.Infof("%s %s %d %s id=%s user=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID, currentUserID(c))
			return nil
		},
	})
}
