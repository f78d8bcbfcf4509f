//go:build linux

/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command rpi records a digital line on a Linux board such as a Raspberry Pi
// and writes the recording out, or runs the command console on stdin.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexcesaro/log"
	"github.com/alexcesaro/log/stdlog"

	"sigrec/src/capture"
	"sigrec/src/cdev"
	"sigrec/src/codec"
	"sigrec/src/console"
	"sigrec/src/replay"
	sig "sigrec/src/signal"
)

var (
	configPath  = flag.String("config", "sigrec.toml", "configuration file, TOML or YAML")
	interactive = flag.Bool("console", false, "read commands from stdin instead of recording once")
	duration    = flag.Duration("duration", 0, "override the recording duration")
	output      = flag.String("out", "", "override the output file")
)

func main() {
	flag.Parse()
	logger := stdlog.GetFromFlags()
	if err := run(logger); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

// run does the work of main so that deferred releases happen before exit.
func run(logger log.Logger) error {
	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("bad configuration: %w", err)
	}
	if *duration > 0 {
		cfg.Duration = *duration
	}
	if *output != "" {
		cfg.Output = *output
	}

	logger.Infof("Opening %s line %d.", cfg.Chip, cfg.Line)
	line, err := cdev.Open(cfg.Chip, cfg.Line, cfg.PullUp)
	if err != nil {
		return fmt.Errorf("could not request input line: %w", err)
	}
	defer line.Close()

	var keyer *cdev.Keyer
	if cfg.Replay.Line >= 0 {
		keyer, err = cdev.OpenKeyer(cfg.Replay.Chip, cfg.Replay.Line)
		if err != nil {
			return fmt.Errorf("could not request replay line: %w", err)
		}
		defer func() {
			if err := keyer.Close(); err != nil {
				logger.Warningf("Could not release replay line: %v", err)
			}
		}()
	}

	store := sig.NewStore(make([]sig.Signal, cfg.Capacity))
	rec := capture.NewRecorder(line, store, cfg.Recorder())
	if err := rec.Prepare(); err != nil {
		return fmt.Errorf("could not prepare recorder: %w", err)
	}
	s := rec.Setting()
	logger.Debugf("Tick %dns, range %d, error %.1fppm.", s.Divider.Int, s.Range, s.ErrorPPM)

	if *interactive {
		var k replay.Keyer
		if keyer != nil {
			k = keyer
		}
		err := console.New(rec, k, os.Stdout).Run(os.Stdin)
		rec.Stop()
		if keyer != nil && keyer.Err() != nil {
			logger.Warningf("Replay line failed: %v", keyer.Err())
		}
		return err
	}

	record(logger, rec, cfg.Duration)
	logger.Infof("Recorded %d signals, dropped %d.", store.Count(), rec.Dropped())

	if err := save(cfg, store); err != nil {
		return fmt.Errorf("could not write %s: %w", cfg.Output, err)
	}
	if keyer != nil && store.Count() > 0 {
		total, err := replay.Play(store, keyer)
		if err != nil {
			return fmt.Errorf("replay failed: %w", err)
		}
		if err := keyer.Err(); err != nil {
			return fmt.Errorf("replay line failed: %w", err)
		}
		logger.Infof("Replayed %s.", codec.Duration(uint32(min(total, 0xffff_ffff))))
	}
	return nil
}

// record runs one recording for d or until interrupted.
func record(logger log.Logger, rec *capture.Recorder, d time.Duration) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	rec.Start()
	logger.Infof("Recording for %v.", d)
	select {
	case <-time.After(d):
	case <-quit:
		logger.Info("Interrupted.")
	}
	rec.Stop()
}

func save(cfg *Config, store *sig.Store) error {
	var w io.Writer = os.Stdout
	if cfg.Output != "-" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	switch cfg.Format {
	case "binary":
		return codec.SaveBinary(w, store)
	case "list":
		return codec.List(w, store)
	}
	return codec.SaveText(w, store)
}
