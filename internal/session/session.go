// Package session runs the interactive turn loop: read a request, ask the
// backend for a suggestion, classify it, gate it, execute it and record it.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"shellmind/internal/audit"
	"shellmind/internal/chat"
	"shellmind/internal/client"
	"shellmind/internal/interpret"
	"shellmind/internal/logging"
	"shellmind/internal/permission"
	"shellmind/internal/tools"
)

// maxReadFailures ends the loop after this many consecutive read errors.
const maxReadFailures = 3

// NotExecuted is shown when the gate denies an action.
const NotExecuted = "not executed"

var exitTokens = map[string]bool{"exit": true, "quit": true}

// UI is the terminal surface the session talks to.
type UI interface {
	// ReadLine returns one line of input. io.EOF ends the session.
	ReadLine(ctx context.Context, prompt string) (string, error)
	// Message shows an informational reply.
	Message(text string)
	// Proposal shows the action about to be gated.
	Proposal(text string)
	// Status shows a short status line.
	Status(text string)
	// Error reports a recoverable failure.
	Error(err error)
	// Outcome shows the result of an execution.
	Outcome(result tools.ToolResult)
}

// Options holds the collaborators of a Session.
type Options struct {
	Client client.Client
	Tools  *tools.Registry
	Gate   *permission.Gate
	Runner tools.CommandRunner
	UI     UI

	// HistoryFile is the append-only command-history log. Required.
	HistoryFile string

	// Audit and Transcripts are optional.
	Audit       *audit.Logger
	Transcripts *chat.TranscriptStore

	// SessionID defaults to a new UUID.
	SessionID string

	// Interrupts are the signals that cancel a running turn.
	Interrupts []os.Signal
}

// Session owns the conversation history and the turn loop.
type Session struct {
	id          string
	client      client.Client
	tools       *tools.Registry
	interpreter *interpret.Interpreter
	gate        *permission.Gate
	runner      tools.CommandRunner
	ui          UI
	audit       *audit.Logger
	transcripts *chat.TranscriptStore
	interrupts  []os.Signal

	log        *slog.Logger
	history    *chat.History
	commandLog *chat.CommandLog
	started    time.Time

	mu    sync.RWMutex
	state State
}

// New creates a session. It fails if the command-history log cannot be
// opened for append.
func New(opts Options) (*Session, error) {
	switch {
	case opts.Client == nil:
		return nil, errors.New("session requires a backend client")
	case opts.Tools == nil:
		return nil, errors.New("session requires a tool registry")
	case opts.Gate == nil:
		return nil, errors.New("session requires a confirmation gate")
	case opts.Runner == nil:
		return nil, errors.New("session requires a command runner")
	case opts.UI == nil:
		return nil, errors.New("session requires a UI")
	}

	commandLog, err := chat.OpenCommandLog(opts.HistoryFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	id := opts.SessionID
	if id == "" {
		id = uuid.New().String()
	}
	interrupts := opts.Interrupts
	if interrupts == nil {
		interrupts = []os.Signal{os.Interrupt}
	}

	return &Session{
		id:          id,
		client:      opts.Client,
		tools:       opts.Tools,
		interpreter: interpret.New(opts.Tools),
		gate:        opts.Gate,
		runner:      opts.Runner,
		ui:          opts.UI,
		audit:       opts.Audit,
		transcripts: opts.Transcripts,
		interrupts:  interrupts,
		log:         logging.With("session", id),
		history:     chat.NewHistory(),
		commandLog:  commandLog,
		started:     time.Now(),
		state:       StateAwaitingInput,
	}, nil
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// History returns the conversation history.
func (s *Session) History() *chat.History { return s.history }

// State returns the current loop state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	if prev != next {
		s.log.Debug("session state", "from", prev.String(), "to", next.String())
	}
}

// Run loops until an exit token, end of input, or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	failures := 0
	for {
		s.setState(StateAwaitingInput)
		if ctx.Err() != nil {
			return nil
		}

		line, err := s.ui.ReadLine(ctx, "> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			failures++
			s.ui.Error(fmt.Errorf("failed to read input: %w", err))
			if failures >= maxReadFailures {
				return fmt.Errorf("giving up after %d read errors: %w", failures, err)
			}
			continue
		}
		failures = 0

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if exitTokens[strings.ToLower(input)] {
			return nil
		}

		turnCtx, stop := signal.NotifyContext(ctx, s.interrupts...)
		s.Turn(turnCtx, input)
		stop()
	}
}

// Turn runs one request through the pipeline. Every failure is reported
// through the UI; none escape.
func (s *Session) Turn(ctx context.Context, input string) {
	s.setState(StateGenerating)
	reply, err := s.client.Generate(ctx, input, s.history.Turns())
	if err != nil {
		s.log.Warn("generate failed", "kind", client.KindOf(err).String(), "error", err)
		s.ui.Error(err)
		return
	}

	s.setState(StateInterpreting)
	action := s.interpreter.Classify(reply)
	s.log.Debug("reply classified", "kind", action.Kind.String(), "tool", action.ToolName)

	switch action.Kind {
	case interpret.KindMessage:
		s.history.AppendExchange(input, reply)
		s.ui.Message(reply)
		return
	case interpret.KindUnknownTool:
		s.ui.Error(&interpret.UnknownToolError{Name: action.ToolName})
	case interpret.KindToolInvocation:
		if action.ParseError != nil {
			s.ui.Status(fmt.Sprintf("could not parse arguments for %s, using none", action.ToolName))
		}
		s.runTool(ctx, action.ToolName, action.Args)
	case interpret.KindShellCommand:
		s.runCommand(ctx, action.Text)
	}

	s.record(input, reply)
}

func (s *Session) runTool(ctx context.Context, name string, args map[string]any) {
	tool, ok := s.tools.Get(name)
	if !ok {
		s.ui.Error(&interpret.UnknownToolError{Name: name})
		return
	}

	s.ui.Proposal(tool.Describe(args))

	s.setState(StateGating)
	entry := audit.NewToolEntry(name, args)
	resp := s.gate.CheckTool(ctx, tool, args)
	entry.Decision = resp.State.String()
	if !resp.Allowed() {
		s.deny(entry, resp)
		return
	}

	s.setState(StateExecuting)
	start := time.Now()
	var result tools.ToolResult
	if err := tool.Validate(args); err != nil {
		result = tools.NewErrorResult(fmt.Sprintf("Invalid parameters for %s: %s", name, err))
	} else {
		result = tool.Execute(ctx, args)
	}
	duration := time.Since(start)

	s.log.Debug("tool executed", "tool", name, "success", result.Success, "duration", duration)
	s.ui.Outcome(result)
	s.logAudit(entry, result, duration)
}

func (s *Session) runCommand(ctx context.Context, command string) {
	s.setState(StateGating)
	entry := audit.NewCommandEntry(command)
	resp := s.gate.CheckCommand(ctx, command)
	entry.Decision = resp.State.String()
	if !resp.Allowed() {
		s.deny(entry, resp)
		return
	}

	s.setState(StateExecuting)
	start := time.Now()
	result := tools.RunCommand(ctx, s.runner, command)
	duration := time.Since(start)

	s.log.Debug("command executed", "success", result.Success, "duration", duration)
	s.ui.Outcome(result)
	s.logAudit(entry, result, duration)
}

func (s *Session) deny(entry *audit.Entry, resp permission.Response) {
	if resp.Err != nil {
		s.ui.Error(resp.Err)
	}
	s.ui.Status(NotExecuted)
	entry.Complete("", false, resp.Reason, 0)
	if err := s.audit.Log(entry); err != nil {
		s.log.Warn("failed to write audit entry", "error", err)
	}
}

func (s *Session) logAudit(entry *audit.Entry, result tools.ToolResult, duration time.Duration) {
	entry.Complete(result.Content, result.Success, result.Error, duration)
	if err := s.audit.Log(entry); err != nil {
		s.log.Warn("failed to write audit entry", "error", err)
	}
}

// record commits the suggestion, not the execution outcome.
func (s *Session) record(input, suggestion string) {
	s.setState(StateRecording)
	s.history.AppendExchange(input, suggestion)
	if err := s.commandLog.Append(input); err != nil {
		s.log.Warn("failed to append command history", "error", err)
		s.ui.Error(err)
	}
}

// Close saves the transcript and releases the command-history log.
func (s *Session) Close() error {
	var errs []error
	if s.transcripts != nil && s.history.Len() > 0 {
		err := s.transcripts.Save(&chat.Transcript{
			SessionID: s.id,
			StartTime: s.started,
			EndTime:   time.Now(),
			Model:     s.client.Model(),
			Turns:     s.history.Turns(),
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to save transcript: %w", err))
		}
	}
	if err := s.commandLog.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
