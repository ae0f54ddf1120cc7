package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"

	"github.com/AlexZinkM/hd-wallet/internal/client"
	"github.com/AlexZinkM/hd-wallet/internal/storage"
	"github.com/AlexZinkM/hd-wallet/internal/wallet"
)

// logWriter writes to stdout and, once initLogRotator ran, to the rotator.
type logWriter struct {
	rotatorPipe *io.PipeWriter
}

func (w *logWriter) Write(b []byte) (int, error) {
	os.Stdout.Write(b)
	if w.rotatorPipe != nil {
		w.rotatorPipe.Write(b)
	}
	return len(b), nil
}

// Loggers per subsystem. A single backend logger is created and all subsystem
// loggers created from it will write to the backend.
var (
	backendWriter = &logWriter{}
	backendLog    = btclog.NewBackend(backendWriter)

	// logRotator should be closed on application shutdown.
	logRotator *rotator.Rotator

	wltdLog = backendLog.Logger("WLTD")
	wlltLog = backendLog.Logger("WLLT")
	storLog = backendLog.Logger("STOR")
	ldgrLog = backendLog.Logger("LDGR")
)

// Initialize package-global logger variables.
func init() {
	wallet.UseLogger(wlltLog)
	storage.UseLogger(storLog)
	client.UseLogger(ldgrLog)
}

// subsystemLoggers maps each subsystem identifier to its associated logger.
var subsystemLoggers = map[string]btclog.Logger{
	"WLTD": wltdLog,
	"WLLT": wlltLog,
	"STOR": storLog,
	"LDGR": ldgrLog,
}

// initLogRotator initializes the logging rotator to write logs to logFile and
// create roll files in the same directory.
func initLogRotator(logFile string, maxSizeKB, maxFiles int) error {
	logDir, _ := filepath.Split(logFile)
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	r, err := rotator.New(logFile, int64(maxSizeKB*1024), false, maxFiles)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	pr, pw := io.Pipe()
	go r.Run(pr)

	backendWriter.rotatorPipe = pw
	logRotator = r
	return nil
}

// setLogLevels sets the log level for all subsystem loggers. Invalid levels
// fall back to info.
func setLogLevels(logLevel string) {
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		level = btclog.LevelInfo
	}
	for _, logger := range subsystemLoggers {
		logger.SetLevel(level)
	}
}
