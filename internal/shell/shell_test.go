package shell

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/sundayezeilo/shortstore"
)

/***************
 * Mocks
 ***************/

var errNoMoreAliases = errors.New("no more aliases")

// scriptedAliases hands out a fixed list of aliases in order and fails
// once the list is exhausted.
type scriptedAliases struct {
	aliases []string
	calls   int
}

func (g *scriptedAliases) Generate(length int) (string, error) {
	if g.calls >= len(g.aliases) {
		return "", errNoMoreAliases
	}
	alias := g.aliases[g.calls]
	g.calls++
	return alias, nil
}

/***************
 * Helpers
 ***************/

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, aliases ...string) *shortstore.Store {
	t.Helper()

	store, err := shortstore.New(shortstore.Config{
		Domain:  "short.ly",
		Aliases: &scriptedAliases{aliases: aliases},
	})
	if err != nil {
		t.Fatalf("shortstore.New() error = %v", err)
	}

	return store
}

// runScript feeds a command script to a fresh shell and returns the output
// split into lines. Scripts that print multi-line text should read the
// buffer directly instead.
func runScript(t *testing.T, store *shortstore.Store, script string) []string {
	t.Helper()

	var out bytes.Buffer
	sh := New(Config{
		Store:  store,
		Logger: discardLogger(),
		In:     strings.NewReader(script),
		Out:    &out,
	})

	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	text := strings.TrimRight(out.String(), "\n")
	if text == "" {
		return nil
	}

	return strings.Split(text, "\n")
}

func decodeError(t *testing.T, line string) errorEnvelope {
	t.Helper()

	var envelope errorEnvelope
	if err := json.Unmarshal([]byte(line), &envelope); err != nil {
		t.Fatalf("unmarshal %q: %v", line, err)
	}

	return envelope
}

/***************
 * Run
 ***************/

func TestShell_Run_Session(t *testing.T) {
	store := newTestStore(t, "tok3n77")

	script := strings.Join([]string{
		"add http://example.com/products?id=42",
		"query http://short.ly/tok3n77",
		"count http://EXAMPLE.com/products?id=42",
		"remove http://short.ly/tok3n77",
		"query http://short.ly/tok3n77",
		"count http://example.com/products?id=42",
		"len",
		"exit",
	}, "\n")

	lines := runScript(t, store, script)

	if len(lines) != 7 {
		t.Fatalf("output lines = %d, want 7:\n%s", len(lines), strings.Join(lines, "\n"))
	}

	want := map[int]string{
		0: `{"value":"http://short.ly/tok3n77"}`,
		1: `{"value":"http://example.com/products?id=42"}`,
		2: `{"value":1}`,
		3: `{}`,
		5: `{"value":1}`,
		6: `{"value":1}`,
	}
	for i, wantLine := range want {
		if lines[i] != wantLine {
			t.Errorf("line %d = %q, want %q", i, lines[i], wantLine)
		}
	}

	envelope := decodeError(t, lines[4])
	if envelope.Error.Code != "NOT_FOUND" {
		t.Errorf("line 4 code = %q, want NOT_FOUND", envelope.Error.Code)
	}
	if !strings.HasPrefix(envelope.Error.Message, "NOT_FOUND: ") {
		t.Errorf("line 4 message = %q, want NOT_FOUND prefix", envelope.Error.Message)
	}
}

func TestShell_Run_ErrorEnvelopes(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		wantCode string
	}{
		{
			name:     "malformed url",
			command:  "add example.com/page",
			wantCode: "URL_SYNTAX",
		},
		{
			name:     "add on own domain",
			command:  "add http://short.ly/tok3n77",
			wantCode: "DOMAIN",
		},
		{
			name:     "query foreign url",
			command:  "query http://elsewhere.io/abc",
			wantCode: "DOMAIN",
		},
		{
			name:     "count unknown url",
			command:  "count http://example.com/never-added",
			wantCode: "NOT_FOUND",
		},
		{
			name:     "remove unknown alias",
			command:  "remove http://short.ly/gh0st11",
			wantCode: "NOT_FOUND",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)

			lines := runScript(t, store, tc.command+"\nexit")
			if len(lines) != 1 {
				t.Fatalf("output lines = %d, want 1", len(lines))
			}

			envelope := decodeError(t, lines[0])
			if envelope.Error.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", envelope.Error.Code, tc.wantCode)
			}
			if !strings.HasPrefix(envelope.Error.Message, tc.wantCode+": ") {
				t.Errorf("message = %q, want %q prefix", envelope.Error.Message, tc.wantCode+": ")
			}
		})
	}
}

func TestShell_Run_Stat(t *testing.T) {
	store := newTestStore(t, "tok3n77")

	script := strings.Join([]string{
		"add https://example.com/docs",
		"stat https://example.com/docs",
		"query https://short.ly/tok3n77",
		"remove https://example.com/docs",
		"stat https://short.ly/tok3n77",
		"exit",
	}, "\n")

	lines := runScript(t, store, script)
	if len(lines) != 5 {
		t.Fatalf("output lines = %d, want 5", len(lines))
	}

	var fresh struct {
		Value statView `json:"value"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &fresh); err != nil {
		t.Fatalf("unmarshal %q: %v", lines[1], err)
	}

	if fresh.Value.Alias != "tok3n77" {
		t.Errorf("alias = %q, want tok3n77", fresh.Value.Alias)
	}
	if fresh.Value.LongURL != "https://example.com/docs" {
		t.Errorf("long_url = %q, want https://example.com/docs", fresh.Value.LongURL)
	}
	if fresh.Value.ShortURL != "https://short.ly/tok3n77" {
		t.Errorf("short_url = %q, want https://short.ly/tok3n77", fresh.Value.ShortURL)
	}
	if fresh.Value.HitCount != 0 {
		t.Errorf("hit_count = %d, want 0", fresh.Value.HitCount)
	}
	if !fresh.Value.Active {
		t.Error("active = false, want true")
	}
	if fresh.Value.ID == "" {
		t.Error("id is empty")
	}
	if _, err := time.Parse(time.RFC3339, fresh.Value.CreatedAt); err != nil {
		t.Errorf("created_at %q does not parse: %v", fresh.Value.CreatedAt, err)
	}
	if fresh.Value.LastHitAt != "" {
		t.Errorf("last_hit_at = %q, want empty before any query", fresh.Value.LastHitAt)
	}

	var removed struct {
		Value statView `json:"value"`
	}
	if err := json.Unmarshal([]byte(lines[4]), &removed); err != nil {
		t.Fatalf("unmarshal %q: %v", lines[4], err)
	}

	if removed.Value.Active {
		t.Error("active = true after remove, want false")
	}
	if removed.Value.HitCount != 1 {
		t.Errorf("hit_count = %d after one query, want 1", removed.Value.HitCount)
	}
	if removed.Value.LastHitAt == "" {
		t.Error("last_hit_at is empty after a query")
	}
	if removed.Value.DeactivatedAt == "" {
		t.Error("deactivated_at is empty after remove")
	}
}

func TestShell_Run_UnknownCommand(t *testing.T) {
	store := newTestStore(t)

	lines := runScript(t, store, "bogus\nexit")
	if len(lines) != 1 {
		t.Fatalf("output lines = %d, want 1", len(lines))
	}

	want := `unknown command "bogus" (try "help")`
	if lines[0] != want {
		t.Errorf("output = %q, want %q", lines[0], want)
	}
}

func TestShell_Run_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    string
	}{
		{
			name:    "missing argument",
			command: "add",
			want:    "usage: add <url>",
		},
		{
			name:    "too many arguments",
			command: "query http://a.com/x http://b.com/y",
			want:    "usage: query <url>",
		},
		{
			name:    "case insensitive command name",
			command: "REMOVE",
			want:    "usage: remove <url>",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := newTestStore(t)

			lines := runScript(t, store, tc.command+"\nexit")
			if len(lines) != 1 {
				t.Fatalf("output lines = %d, want 1", len(lines))
			}
			if lines[0] != tc.want {
				t.Errorf("output = %q, want %q", lines[0], tc.want)
			}
		})
	}
}

func TestShell_Run_Help(t *testing.T) {
	store := newTestStore(t)

	var out bytes.Buffer
	sh := New(Config{
		Store:  store,
		Logger: discardLogger(),
		In:     strings.NewReader("help\nexit"),
		Out:    &out,
	})

	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, command := range []string{"add <url>", "query <url>", "count <url>", "remove <url>", "stat <url>", "len", "exit"} {
		if !strings.Contains(out.String(), command) {
			t.Errorf("help output missing %q", command)
		}
	}
}

func TestShell_Run_BlankLinesIgnored(t *testing.T) {
	store := newTestStore(t)

	lines := runScript(t, store, "\n\n   \nlen\nexit")
	if len(lines) != 1 {
		t.Fatalf("output lines = %d, want 1", len(lines))
	}
	if lines[0] != `{"value":0}` {
		t.Errorf("output = %q, want {\"value\":0}", lines[0])
	}
}

func TestShell_Run_EOFEndsSession(t *testing.T) {
	store := newTestStore(t)

	lines := runScript(t, store, "len")
	if len(lines) != 1 {
		t.Fatalf("output lines = %d, want 1", len(lines))
	}
	if lines[0] != `{"value":0}` {
		t.Errorf("output = %q, want {\"value\":0}", lines[0])
	}
}

func TestShell_Run_Prompt(t *testing.T) {
	store := newTestStore(t)

	var out bytes.Buffer
	sh := New(Config{
		Store:  store,
		Logger: discardLogger(),
		In:     strings.NewReader("len\nexit"),
		Out:    &out,
		Prompt: true,
	})

	if err := sh.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	text := out.String()
	if !strings.HasPrefix(text, "> ") {
		t.Errorf("output %q does not start with prompt", text)
	}
	if got := strings.Count(text, "> "); got != 2 {
		t.Errorf("prompt count = %d, want 2", got)
	}
}

func TestShell_Run_ContextCanceled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	store := newTestStore(t)

	var out bytes.Buffer
	sh := New(Config{
		Store:  store,
		Logger: discardLogger(),
		In:     reader,
		Out:    &out,
	})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- sh.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}

func TestShell_Run_FatalErrorAbortsSession(t *testing.T) {
	store := newTestStore(t) // no aliases scripted, so every add fails

	var out bytes.Buffer
	sh := New(Config{
		Store:  store,
		Logger: discardLogger(),
		In:     strings.NewReader("add http://example.com/a\nlen\nexit"),
		Out:    &out,
	})

	err := sh.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want generator failure")
	}
	if !errors.Is(err, errNoMoreAliases) {
		t.Errorf("Run() error = %v, want wrapped %v", err, errNoMoreAliases)
	}
	if out.Len() != 0 {
		t.Errorf("output = %q, want none before the session aborts", out.String())
	}
}

func TestNew_Defaults(t *testing.T) {
	store := newTestStore(t)

	sh := New(Config{Store: store})

	if sh.logger == nil {
		t.Error("logger is nil, want default")
	}
	if sh.in == nil {
		t.Error("in is nil, want os.Stdin")
	}
	if sh.out == nil {
		t.Error("out is nil, want os.Stdout")
	}
}
