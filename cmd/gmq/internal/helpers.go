package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/tinyland-inc/gmq/pkg/config"
	"github.com/tinyland-inc/gmq/pkg/groupme"
	"github.com/tinyland-inc/gmq/pkg/logger"
)

var (
	version   = "dev"
	gitCommit string
	buildTime string
	goVersion string
)

func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".gmq", "config.json")
}

func LoadConfig() (*config.Config, error) {
	return config.LoadConfig(GetConfigPath())
}

// SetupLogging configures the package logger from config, with a debug flag
// override.
func SetupLogging(cfg *config.Config, debug bool) {
	logger.Setup(os.Stderr, cfg.Log.Format)
	if debug {
		logger.SetLevel(logger.DEBUG)
		return
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
}

// NewAPIClient builds a verified GroupMe client from config.
func NewAPIClient(ctx context.Context, cfg *config.Config) (*groupme.Client, error) {
	if cfg.API.Token == "" {
		return nil, errors.New("no access token configured; run 'gmq auth login' or set GMQ_API_TOKEN")
	}
	return groupme.New(ctx, cfg.API.Token,
		groupme.WithBaseURL(cfg.API.BaseURL),
		groupme.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
	)
}

// FormatVersion returns the version string with optional git commit
func FormatVersion() string {
	v := version
	if gitCommit != "" {
		v += fmt.Sprintf(" (git: %s)", gitCommit)
	}
	return v
}

// FormatBuildInfo returns build time and go version info
func FormatBuildInfo() (string, string) {
	build := buildTime
	goVer := goVersion
	if goVer == "" {
		goVer = runtime.Version()
	}
	return build, goVer
}
