package main

import (
	"log"
)

// Build metadata injected through ldflags.
var (
	GitCommit string
	GitTag    string
	BuildTime string
)

// @title Book Records API
// @version 1.0
// @description Minimal CRUD service for managing book records keyed by ISBN.
// @BasePath /
func main() {
	app, err := NewApp()
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
