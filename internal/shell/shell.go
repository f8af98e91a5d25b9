// Package shell implements the interactive session that drives a
// shortstore.Store from a line-oriented input stream.
//
// Commands arrive one per line. Every store operation answers with exactly
// one JSON result envelope on the output writer; session-level chatter
// (usage text, prompts) is plain text. All store access happens on the
// session goroutine, which provides the serialization the store requires.
package shell

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sundayezeilo/shortstore"
)

const usageText = `commands:
  add <url>      shorten a long url
  query <url>    resolve a short url and record a hit
  count <url>    hit count for a link, by short or long url
  remove <url>   deactivate a link, by short or long url
  stat <url>     record details, active or not
  len            number of records in the store
  help           show this text
  exit           leave the session`

// statView represents the JSON value of a stat envelope.
type statView struct {
	ID            string `json:"id"`
	Alias         string `json:"alias"`
	LongURL       string `json:"long_url"`
	ShortURL      string `json:"short_url"`
	HitCount      int64  `json:"hit_count"`
	Active        bool   `json:"active"`
	CreatedAt     string `json:"created_at"`
	LastHitAt     string `json:"last_hit_at,omitempty"`
	DeactivatedAt string `json:"deactivated_at,omitempty"`
}

// Shell runs a command session against a single store.
type Shell struct {
	store  *shortstore.Store
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
	prompt bool
}

// Config holds configuration for the shell.
type Config struct {
	Store  *shortstore.Store
	Logger *slog.Logger
	In     io.Reader // defaults to os.Stdin
	Out    io.Writer // defaults to os.Stdout
	Prompt bool      // write "> " before each command
}

// New creates a new Shell instance. Config.Store must be set; the other
// fields fall back to sensible defaults.
func New(cfg Config) *Shell {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	in := cfg.In
	if in == nil {
		in = os.Stdin
	}

	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	return &Shell{
		store:  cfg.Store,
		logger: logger,
		in:     in,
		out:    out,
		prompt: cfg.Prompt,
	}
}

// Run processes commands until the input is exhausted, an exit command
// arrives, or the context is canceled. Contract failures are written as
// error envelopes and the session continues; any other failure ends the
// session with an error.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.logger.Info("session started", slog.String("domain", s.store.Domain()))

	lines := make(chan string)
	readErrors := make(chan error, 1)

	scanner := bufio.NewScanner(s.in)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			readErrors <- err
		}
	}()

	s.writePrompt()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("session interrupted")
			return nil

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErrors:
					return fmt.Errorf("read command: %w", err)
				default:
				}
				s.logger.Info("session ended", slog.Int("records", s.store.Len()))
				return nil
			}

			quit, err := s.dispatch(line)
			if err != nil {
				return err
			}
			if quit {
				s.logger.Info("session closed", slog.Int("records", s.store.Len()))
				return nil
			}

			s.writePrompt()
		}
	}
}

// dispatch parses one input line and runs the command it names.
func (s *Shell) dispatch(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "exit", "quit":
		return true, nil

	case "help":
		return false, s.writeLine(usageText)

	case "len":
		return false, s.writeResult(shortstore.OK(s.store.Len()))

	case "add", "query", "count", "remove", "stat":
		if len(args) != 1 {
			return false, s.writeLine(fmt.Sprintf("usage: %s <url>", cmd))
		}
		return false, s.runOp(cmd, args[0])

	default:
		return false, s.writeLine(fmt.Sprintf("unknown command %q (try \"help\")", cmd))
	}
}

// runOp executes a store operation and writes its result envelope. Errors
// that carry no contract code abort the session.
func (s *Shell) runOp(cmd, url string) error {
	start := time.Now()

	var res shortstore.Result
	var opErr error

	switch cmd {
	case "add":
		short, err := s.store.Add(url)
		if err == nil {
			res = shortstore.OK(short)
		}
		opErr = err

	case "query":
		long, err := s.store.Query(url)
		if err == nil {
			res = shortstore.OK(long)
		}
		opErr = err

	case "count":
		hits, err := s.store.Count(url)
		if err == nil {
			res = shortstore.OK(hits)
		}
		opErr = err

	case "remove":
		if err := s.store.Remove(url); err == nil {
			res = shortstore.Empty()
		} else {
			opErr = err
		}

	case "stat":
		rec, err := s.store.Stat(url)
		if err == nil {
			res = shortstore.OK(s.newStatView(rec))
		}
		opErr = err
	}

	if opErr != nil {
		failed, ok := shortstore.Fail(opErr)
		if !ok {
			return fmt.Errorf("%s command: %w", cmd, opErr)
		}
		res = failed
	}

	s.logger.Debug("command handled",
		slog.String("command", cmd),
		slog.Bool("ok", !res.Failed()),
		slog.String("code", string(res.Code())),
		slog.Duration("duration", time.Since(start)),
	)

	return s.writeResult(res)
}

// newStatView converts a record into its envelope value. The short URL
// carries the scheme of the stored long URL.
func (s *Shell) newStatView(rec shortstore.Record) statView {
	scheme := "http"
	if strings.HasPrefix(rec.LongURL, "https://") {
		scheme = "https"
	}

	v := statView{
		ID:        rec.ID.String(),
		Alias:     rec.Alias,
		LongURL:   rec.LongURL,
		ShortURL:  fmt.Sprintf("%s://%s/%s", scheme, s.store.Domain(), rec.Alias),
		HitCount:  rec.HitCount,
		Active:    rec.Active,
		CreatedAt: rec.CreatedAt.Format(time.RFC3339),
	}

	if rec.LastHitAt != nil {
		v.LastHitAt = rec.LastHitAt.Format(time.RFC3339)
	}
	if rec.DeactivatedAt != nil {
		v.DeactivatedAt = rec.DeactivatedAt.Format(time.RFC3339)
	}

	return v
}

func (s *Shell) writeResult(res shortstore.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return s.writeLine(string(data))
}

func (s *Shell) writeLine(text string) error {
	if _, err := fmt.Fprintln(s.out, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func (s *Shell) writePrompt() {
	if s.prompt {
		fmt.Fprint(s.out, "> ")
	}
}
