// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"accelerometer/cmd"
	"accelerometer/internal/audio"
	"accelerometer/internal/config"
	"accelerometer/internal/log"
	"accelerometer/internal/session"
	"accelerometer/internal/transport"
	"accelerometer/pkg/build"
)

// main runs in three phases:
//
// 1. Startup: build information, command line, configuration and PortAudio.
// 2. Acquisition: the session repeats capture cycles until they are done or
//    the operator interrupts. The first SIGINT/SIGTERM stops after the
//    current capture poll; a second one aborts playback too.
// 3. Shutdown: the log file and transport are closed, PortAudio is
//    terminated and the configuration is written back if none existed.
func main() {
	// ==================== STARTUP PHASE ====================

	if err := build.Initialize(); err != nil {
		log.Debugf("Build: %v", err)
	}

	// One thread for the audio callback and one for the controller.
	runtime.GOMAXPROCS(2)

	opts, err := cmd.ParseArgs(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.Action == cmd.ActionNone {
		return
	}

	res, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	switch res.Status {
	case config.Defaults:
		log.Warnf("Config: %s not found, using defaults", res.Path)
	case config.DefaultsUnreadable:
		log.Warnf("Config: %s unreadable (%v), using defaults", res.Path, res.ReadErr)
	}

	cfg := res.Config
	opts.Apply(cfg)

	level, ok := log.ParseLevel(cfg.LogLevel)
	if !ok {
		log.Warnf("Config: unknown log level %q, using %s", cfg.LogLevel, level)
	}
	log.SetLevel(log.LevelFromDebug(cfg.Debug, level))
	log.Infof("Build: %s", build.GetBuildFlags())

	if err := run(opts, cfg); err != nil {
		log.Fatalf("%v", err)
	}

	// ==================== SHUTDOWN PHASE ====================

	if res.Status != config.FromFile {
		if err := config.Save(res.Path, cfg); err != nil {
			log.Warnf("Config: %v (%s)", err, session.CodeConfigWrite)
		} else {
			log.Infof("Config: wrote %s", res.Path)
		}
	}
}

// run brackets the command with PortAudio and dispatches on the sample
// format.
func run(opts *cmd.Options, cfg *config.Config) error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := audio.Terminate(); err != nil {
			log.Warnf("Audio: %v", err)
		}
	}()

	switch cfg.Audio.SampleFormat {
	case "int8":
		return execute[int8](opts, cfg)
	case "int32":
		return execute[int32](opts, cfg)
	case "float32":
		return execute[float32](opts, cfg)
	default:
		return execute[int16](opts, cfg)
	}
}

func execute[T audio.Sample](opts *cmd.Options, cfg *config.Config) error {
	host := audio.NewPortAudioHost[T]()
	if opts.Action == cmd.ActionList {
		return audio.ListDevices[T](os.Stdout, host)
	}

	var (
		sessionOpts []session.Option
		ws          *transport.WebSocketTransport
	)
	if cfg.Transport.WebSocketEnabled {
		var err error
		if ws, err = transport.Listen(cfg.Transport.WebSocketAddr); err != nil {
			return fmt.Errorf("transport: %w", err)
		}
		log.Infof("Transport: serving spectra on ws://%s%s", ws.Addr(), transport.WebSocketPath)
		sessionOpts = append(sessionOpts, session.WithTransport(ws))
	}

	s, err := session.New(cfg, host, sessionOpts...)
	if err != nil {
		if ws != nil {
			ws.Close()
		}
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warnf("Session: close: %v", err)
		}
	}()

	// ==================== ACQUISITION PHASE ====================

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
			return
		}
		log.Info("Signal: stopping, interrupt again to abort")
		s.Stop()
		select {
		case <-sig:
			log.Warn("Signal: aborting")
			cancel()
		case <-ctx.Done():
		}
	}()

	err = s.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}
	if code := s.Code(); code != session.CodeNone {
		log.Warnf("Session: finished with %s: %v", code, s.Err())
	}
	log.Infof("Session: %d cycles completed", s.Cycles())
	return nil
}
