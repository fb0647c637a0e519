//go:build js && wasm

// Package main is the wasm build of the grade form controller.
//
//	GOOS=js GOARCH=wasm go build -o web/gradeform.wasm ./cmd/gradeform
//
// The page loads it through wasm_exec.js once the DOM is ready.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"syscall/js"

	"github.com/gradecalc/gradeform/internal/infrastructure/external/calcapi"
	"github.com/gradecalc/gradeform/internal/interface/web/controller"
	"github.com/gradecalc/gradeform/internal/interface/web/dom"
	"github.com/gradecalc/gradeform/internal/interface/web/dom/jsdom"
	"github.com/gradecalc/gradeform/pkg/logger"
)

func main() {
	log := logger.New(logger.Options{Output: os.Stdout, Level: logger.LevelInfo})

	ui, err := dom.Bind(jsdom.New())
	if err != nil {
		log.Error("grade page is incomplete", logger.Err(err))
		fmt.Fprintln(os.Stderr, err)
		return
	}

	origin := js.Global().Get("location").Get("origin").String()
	cfg := calcapi.DefaultClientConfig(origin)
	cfg.Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	c := controller.New(ui, calcapi.NewClient(cfg), controller.Options{Logger: log})
	c.Attach(context.Background())

	log.Info("grade form ready", logger.String("origin", origin))
	select {}
}
