package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	rsm "github.com/DevTommyy/cli-client"
)

// dotenvPath is baked in at build time, e.g. with
//
//	go build -ldflags "-X main.dotenvPath=/etc/rsm/.env"
//
// The file may define RSM_LOG_PATH, consumed by the log path resolver.
var dotenvPath = ".env"

func main() {
	initLogging()
	store := mustConfigStore()
	if err := newRootCmd(&app{store: store}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initLogging points the structured log at a file appender. The path comes
// from RSM_LOG_PATH (possibly via the embedded dotenv file), falling back
// to the config directory next to the config file. Stdout stays reserved
// for prompts and response output.
func initLogging() {
	_ = godotenv.Load(dotenvPath)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	path := os.Getenv("RSM_LOG_PATH")
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return
		}
		path = filepath.Join(dir, "cli_client", "rsm.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		log.WithFields(log.Fields{
			"path":  path,
			"cause": err,
		}).Warning("Could not open log file, logging to stderr")
		return
	}
	log.SetOutput(f)
}

func mustConfigStore() *rsm.ConfigStore {
	path, err := rsm.DefaultConfigPath()
	if err != nil {
		log.WithField("cause", err).Fatal("Could not resolve config path")
	}
	return rsm.NewConfigStore(path)
}
