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

/*
Package console is a line oriented command shell for driving a recorder over
a serial port or a terminal.

Each line is split into words with shell quoting rules. Recordings can be
dumped in any codec layout and loaded back, either inline:

	load text 2 Y 0 0 0 320 N 0 0 0 340

or, for text pasted from an earlier dump, as a block that ends with a line
holding a single dot:

	load text
	2
	Y 0 0 0 320
	N 0 0 0 340
	.
*/
package console

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"sigrec/src/capture"
	"sigrec/src/codec"
	"sigrec/src/replay"
)

var (
	ErrUsage   = errors.New("console: bad arguments")
	ErrUnknown = errors.New("console: unknown command")
	ErrBusy    = errors.New("console: stop the recording first")
	ErrNoKeyer = errors.New("console: no transmitter")
)

type command struct {
	usage string
	run   func(c *Console, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"prepare": {"prepare [period-us [resolution [rising|falling]]]", (*Console).prepare},
		"start":   {"start", (*Console).start},
		"stop":    {"stop", (*Console).stop},
		"status":  {"status", (*Console).status},
		"clear":   {"clear", (*Console).clear},
		"save":    {"save text|binary|list", (*Console).save},
		"load":    {"load text|binary [data...]", (*Console).load},
		"replay":  {"replay", (*Console).replay},
		"help":    {"help", (*Console).help},
	}
}

// Console runs commands against a recorder. Output goes to out; the keyer is
// optional and only needed for replay.
type Console struct {
	rec   *capture.Recorder
	keyer replay.Keyer
	out   io.Writer

	// non-nil while collecting a pasted block for load
	block    *bytes.Buffer
	blockFmt string
}

func New(rec *capture.Recorder, keyer replay.Keyer, out io.Writer) *Console {
	return &Console{rec: rec, keyer: keyer, out: out}
}

// Run executes every line read from in until it is exhausted. Command errors
// are reported to the output and do not stop the loop.
func (c *Console) Run(in io.Reader) error {
	sc := bufio.NewScanner(in)
	c.prompt()
	for sc.Scan() {
		if err := c.Exec(sc.Text()); err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
		}
		c.prompt()
	}
	return sc.Err()
}

func (c *Console) prompt() {
	if c.block == nil {
		fmt.Fprint(c.out, "> ")
	}
}

// Exec runs a single line.
func (c *Console) Exec(line string) error {
	if c.block != nil {
		if strings.TrimSpace(line) != "." {
			c.block.WriteString(line)
			c.block.WriteByte('\n')
			return nil
		}
		data, layout := c.block.String(), c.blockFmt
		c.block = nil
		return c.loadData(layout, data)
	}

	words, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(words) == 0 {
		return nil
	}
	cmd, ok := commands[strings.ToLower(words[0])]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknown, words[0])
	}
	return cmd.run(c, words[1:])
}

func (c *Console) prepare(args []string) error {
	if len(args) > 3 {
		return usage("prepare")
	}
	if c.rec.State() == capture.Recording {
		return ErrBusy
	}
	if len(args) > 0 {
		cfg := c.rec.Config()
		for i, arg := range args {
			switch i {
			case 0, 1:
				v, err := strconv.ParseUint(arg, 10, 32)
				if err != nil {
					return usage("prepare")
				}
				if i == 0 {
					cfg.PeriodUs = uint32(v)
				} else {
					cfg.Resolution = uint32(v)
				}
			case 2:
				switch strings.ToLower(arg) {
				case "rising":
					cfg.FirstEdgeRising = true
				case "falling":
					cfg.FirstEdgeRising = false
				default:
					return usage("prepare")
				}
			}
		}
		c.rec.SetConfig(cfg)
	}
	if err := c.rec.Prepare(); err != nil {
		return err
	}
	s := c.rec.Setting()
	fmt.Fprintf(c.out, "prepared: period %dus, range %d, divider %d+%d/%d, error %.1fppm\n",
		s.PeriodUs, s.Range, s.Divider.Int, s.Divider.Frac, 1<<s.Divider.FracBits, s.ErrorPPM)
	return nil
}

func (c *Console) start(args []string) error {
	if len(args) != 0 {
		return usage("start")
	}
	if c.rec.State() != capture.Prepared {
		return fmt.Errorf("cannot start while %v", c.rec.State())
	}
	c.rec.Start()
	fmt.Fprintln(c.out, "recording")
	return nil
}

func (c *Console) stop(args []string) error {
	if len(args) != 0 {
		return usage("stop")
	}
	c.rec.Stop()
	c.summary()
	return nil
}

func (c *Console) status(args []string) error {
	if len(args) != 0 {
		return usage("status")
	}
	fmt.Fprintf(c.out, "state: %v\n", c.rec.State())
	cfg := c.rec.Config()
	fmt.Fprintf(c.out, "config: period %dus, resolution %d, first edge %s\n",
		cfg.PeriodUs, cfg.Resolution, edgeName(cfg.FirstEdgeRising))
	if c.rec.State() == capture.Recording {
		// the store belongs to the edge handler until stop
		fmt.Fprintf(c.out, "dropped %d\n", c.rec.Dropped())
		return nil
	}
	c.summary()
	return nil
}

func (c *Console) summary() {
	st := c.rec.Store()
	fmt.Fprintf(c.out, "signals: %d of %d, dropped %d\n", st.Count(), st.Capacity(), c.rec.Dropped())
}

func (c *Console) clear(args []string) error {
	if len(args) != 0 {
		return usage("clear")
	}
	if c.rec.State() == capture.Recording {
		return ErrBusy
	}
	c.rec.Store().Clear()
	return nil
}

func (c *Console) save(args []string) error {
	if len(args) != 1 {
		return usage("save")
	}
	if c.rec.State() == capture.Recording {
		return ErrBusy
	}
	st := c.rec.Store()
	switch strings.ToLower(args[0]) {
	case "text":
		return codec.SaveText(c.out, st)
	case "list":
		return codec.List(c.out, st)
	case "binary":
		var buf bytes.Buffer
		if err := codec.SaveBinary(&buf, st); err != nil {
			return err
		}
		_, err := fmt.Fprintln(c.out, hex.EncodeToString(buf.Bytes()))
		return err
	}
	return usage("save")
}

func (c *Console) load(args []string) error {
	if len(args) < 1 {
		return usage("load")
	}
	layout := strings.ToLower(args[0])
	if layout != "text" && layout != "binary" {
		return usage("load")
	}
	if c.rec.State() == capture.Recording {
		return ErrBusy
	}
	if len(args) == 1 {
		c.block, c.blockFmt = &bytes.Buffer{}, layout
		fmt.Fprintln(c.out, "end with a line holding a single dot")
		return nil
	}
	return c.loadData(layout, strings.Join(args[1:], " "))
}

func (c *Console) loadData(layout, data string) error {
	st := c.rec.Store()
	var err error
	if layout == "binary" {
		var raw []byte
		raw, err = hex.DecodeString(strings.Join(strings.Fields(data), ""))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		err = codec.LoadBinary(bytes.NewReader(raw), st)
	} else {
		err = codec.LoadText(strings.NewReader(data), st)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "loaded %d signals\n", st.Count())
	return nil
}

func (c *Console) replay(args []string) error {
	if len(args) != 0 {
		return usage("replay")
	}
	if c.keyer == nil {
		return ErrNoKeyer
	}
	if c.rec.State() == capture.Recording {
		return ErrBusy
	}
	total, err := replay.Play(c.rec.Store(), c.keyer)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "replayed %s\n", codec.Duration(uint32(min(total, 0xffff_ffff))))
	return nil
}

func (c *Console) help(args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.out, "  %s\n", commands[name].usage)
	}
	return nil
}

func usage(name string) error {
	return fmt.Errorf("%w: usage: %s", ErrUsage, commands[name].usage)
}

func edgeName(rising bool) string {
	if rising {
		return "rising"
	}
	return "falling"
}
