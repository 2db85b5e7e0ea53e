package wad

import (
	"io"

	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = discardLogger()

// SetLogger sets the default logger used by readers opened without WithLogger.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		l = discardLogger()
	}
	logger = l
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
