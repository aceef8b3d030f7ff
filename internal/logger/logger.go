package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

func init() {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	// Default level
	Logger.SetLevel(logrus.InfoLevel)

	// Override from env, e.g., LOG_LEVEL=debug
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if parsedLevel, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
			Logger.SetLevel(parsedLevel)
		}
	}
}

// WithComponent adds a component field to the logger
func WithComponent(component string) *logrus.Entry {
	return Logger.WithField("component", component)
}

// SetLevelFromString parses and applies a log level, falling back to info
// when the value is not a valid level name.
func SetLevelFromString(level string) {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		Logger.Warnf("invalid log level '%s', using 'info': %v", level, err)
		parsed = logrus.InfoLevel
	}
	Logger.SetLevel(parsed)
}
