package main

import (
	"io/ioutil"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/golog"
)

// logger is the blackbird command's leveled logger. Library packages log
// through their own SetLogger, which main enables at debug level.
var logger *golog.Logger

// SetLogger replaces the blackbird command logger.
func SetLogger(l *golog.Logger) {
	logger = l
}

func init() {
	// Silent until main picks a level from -v, so tests stay quiet.
	SetLogger(golog.New(ioutil.Discard, log.Warning))
}
