package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

func (l *LogConfig) ParseLevel() (logrus.Level, error) {
	if l.Level == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Apply configures logger's level and formatter.
func (l *LogConfig) Apply(logger *logrus.Logger) error {
	lvl, err := l.ParseLevel()
	if err != nil {
		return err
	}
	logger.SetLevel(lvl)
	if l.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
