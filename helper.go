package main

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

func setLogLevel(l string) {
	switch l {
	case "debug":
		log.SetLevel(log.DebugLevel)
	case "error":
		log.SetLevel(log.ErrorLevel)
	case "fatal":
		log.SetLevel(log.FatalLevel)
	case "warn":
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// setupLogging sets level and output of the logger. Both renderers repaint
// the terminal, so without a log file messages are discarded. The returned
// func closes the log file and restores stderr.
func setupLogging(level, file string) (func(), error) {
	setLogLevel(level)

	if file == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}

	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})

	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
