package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"shellmind/internal/audit"
	"shellmind/internal/chat"
	"shellmind/internal/client"
	"shellmind/internal/config"
	"shellmind/internal/logging"
	"shellmind/internal/memory"
	"shellmind/internal/permission"
	"shellmind/internal/prompt"
	"shellmind/internal/security"
	"shellmind/internal/session"
	"shellmind/internal/shell"
	"shellmind/internal/tools"
	"shellmind/internal/ui"
)

// Builder constructs an App step by step. The first failing step is
// remembered and reported by Build; later steps become no-ops.
type Builder struct {
	cfg       *config.Config
	workDir   string
	sessionID string

	in  io.Reader
	out io.Writer

	console  *ui.Console
	memory   *memory.Store
	registry *tools.Registry
	runner   *shell.Runner
	client   client.Client
	audit    *audit.Logger
	gate     *permission.Gate
	session  *session.Session

	closers []io.Closer
	err     error
}

// NewBuilder creates a new Builder with the given config and work directory.
func NewBuilder(cfg *config.Config, workDir string) *Builder {
	return &Builder{
		cfg:       cfg,
		workDir:   workDir,
		sessionID: uuid.New().String(),
	}
}

// WithIO overrides stdin and stdout.
func (b *Builder) WithIO(in io.Reader, out io.Writer) *Builder {
	b.in, b.out = in, out
	return b
}

// Build wires every component. On failure, everything opened so far is closed.
func (b *Builder) Build(ctx context.Context) (*App, error) {
	b.initConsole()
	b.initMemory()
	b.initTools()
	b.initClient(ctx)
	b.initAudit()
	b.initGate()
	b.initSession()

	if b.err != nil {
		b.closeAll()
		return nil, b.err
	}

	return &App{
		cfg:     b.cfg,
		console: b.console,
		client:  b.client,
		session: b.session,
		closers: b.closers,
	}, nil
}

func (b *Builder) fail(step string, err error) {
	if b.err == nil && err != nil {
		b.err = fmt.Errorf("%s: %w", step, err)
	}
}

func (b *Builder) closeAll() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			logging.Warn("failed to close component", "error", err)
		}
	}
	b.closers = nil
}

func (b *Builder) initConsole() {
	if b.err != nil {
		return
	}

	var history []string
	if b.cfg.Session.HistoryFile != "" {
		if log, err := chat.OpenCommandLog(b.cfg.Session.HistoryFile); err == nil {
			history, _ = log.Entries()
			log.Close()
		}
	}

	b.console = ui.NewConsole(ui.Options{
		In:        b.in,
		Out:       b.out,
		History:   history,
		Markdown:  b.cfg.UI.Markdown,
		Highlight: b.cfg.UI.Highlight,
		Theme:     b.cfg.UI.Theme,
	})
	b.closers = append(b.closers, b.console)
}

// initMemory opens the fact store. A store that cannot be opened disables
// save_memory instead of aborting startup.
func (b *Builder) initMemory() {
	if b.err != nil || !b.cfg.Memory.Enabled {
		return
	}

	store, err := memory.Open(b.cfg.Memory.Path)
	if err != nil {
		logging.Warn("memory store unavailable", "path", b.cfg.Memory.Path, "error", err)
		return
	}
	b.memory = store
	b.closers = append(b.closers, store)
}

func (b *Builder) initTools() {
	if b.err != nil {
		return
	}

	b.runner = shell.NewRunner(shell.Options{
		Timeout:   b.cfg.Shell.Timeout,
		MaxOutput: b.cfg.Shell.MaxOutput,
		Dir:       b.workDir,
		Sandbox:   security.NewSandbox(b.cfg.Shell.Sandbox),
	})

	deps := tools.Deps{
		WorkDir:       b.workDir,
		Runner:        b.runner,
		FetchTimeout:  b.cfg.Web.FetchTimeout,
		MaxFetchBytes: b.cfg.Web.MaxFetchBytes,
		Search: tools.WebSearchConfig{
			APIKey: b.cfg.Web.SearchAPIKey,
			CX:     b.cfg.Web.SearchCX,
			Rate:   b.cfg.Web.SearchRate,
		},
	}
	// A nil *memory.Store must stay a nil interface.
	if b.memory != nil {
		deps.Memory = b.memory
	}
	b.registry = tools.DefaultRegistry(deps)
}

func (b *Builder) initClient(ctx context.Context) {
	if b.err != nil {
		return
	}

	pb := prompt.NewBuilder(b.cfg.Model.SystemPrompt, b.registry)
	pb.SetWorkDir(b.workDir)
	if b.memory != nil {
		pb.SetFactSource(b.memory)
	}

	c, err := client.New(b.cfg, client.WithSystemInstruction(pb.Build(ctx)))
	if err != nil {
		b.fail("failed to create backend client", err)
		return
	}
	b.client = c
	b.closers = append(b.closers, c)
}

func (b *Builder) initAudit() {
	if b.err != nil {
		return
	}

	logger, err := audit.NewLogger(audit.Config{
		Enabled:      b.cfg.Audit.Enabled,
		Path:         b.cfg.Audit.Path,
		MaxEntries:   b.cfg.Audit.MaxEntries,
		MaxResultLen: b.cfg.Audit.MaxResult,
	}, b.sessionID)
	if err != nil {
		logging.Warn("audit log unavailable", "error", err)
		return
	}
	b.audit = logger
	b.closers = append(b.closers, logger)
}

func (b *Builder) initGate() {
	if b.err != nil {
		return
	}
	b.gate = permission.NewGate(b.console, b.cfg,
		permission.WithAutoApprove(b.cfg.Permission.AutoApproveAllowed))
}

func (b *Builder) initSession() {
	if b.err != nil {
		return
	}

	var transcripts *chat.TranscriptStore
	if b.cfg.Session.SaveTranscripts && b.cfg.Session.TranscriptDir != "" {
		store, err := chat.NewTranscriptStore(b.cfg.Session.TranscriptDir)
		if err != nil {
			logging.Warn("transcripts disabled", "error", err)
		} else {
			transcripts = store
		}
	}

	s, err := session.New(session.Options{
		Client:      b.client,
		Tools:       b.registry,
		Gate:        b.gate,
		Runner:      b.runner,
		UI:          b.console,
		HistoryFile: b.cfg.Session.HistoryFile,
		Audit:       b.audit,
		Transcripts: transcripts,
		SessionID:   b.sessionID,
	})
	if err != nil {
		b.fail("failed to start session", err)
		return
	}
	b.session = s
	// The session closes first so the transcript is written before the
	// client and stores go away.
	b.closers = append(b.closers, s)
}

var errNotBuilt = errors.New("application is not initialized")
