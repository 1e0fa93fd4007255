package logger

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logrus.Logger. An explicit level ("warn", "debug", ...)
// wins over the environment default.
func New(env, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(parseLevel(env, level))
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	return log
}

// Component returns an entry tagged with the component name.
func Component(log *logrus.Logger, name string) *logrus.Entry {
	return log.WithField("component", name)
}

func parseLevel(env, level string) logrus.Level {
	if lvl, err := logrus.ParseLevel(level); err == nil && level != "" {
		return lvl
	}
	switch strings.ToLower(env) {
	case "local", "dev":
		return logrus.DebugLevel
	}
	return logrus.InfoLevel
}
