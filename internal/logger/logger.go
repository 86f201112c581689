// Package logger builds the application's zap logger.
package logger

import (
	"strings"

	"go.uber.org/zap"
)

// New returns a console logger for dev/test environments and a JSON
// production logger otherwise.
func New(env string) (*zap.Logger, error) {
	switch strings.ToLower(env) {
	case "dev", "development", "local", "test":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}
