// Package agent runs the assistant's conversation turns: it gathers page and
// knowledge-base context, asks the model for a reply, and carries out the
// actions the reply requests.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/dashai/internal/backend"
	dasherr "github.com/abdul-hamid-achik/dashai/internal/errors"
	"github.com/abdul-hamid-achik/dashai/internal/llm"
	"github.com/abdul-hamid-achik/dashai/internal/logging"
	"github.com/abdul-hamid-achik/dashai/internal/session"
	"github.com/abdul-hamid-achik/dashai/internal/tools"
	"github.com/abdul-hamid-achik/dashai/internal/workspace"
	"go.uber.org/multierr"
)

// ApologyMessage replaces the assistant turn when the completion fails.
const ApologyMessage = "Sorry, I couldn't reach the assistant service right now. Please try again in a moment."

// DefaultHistoryLimit is the number of transcript messages sent per turn.
const DefaultHistoryLimit = 20

// Workspace is the dashboard data the controller reads and mutates.
type Workspace interface {
	tools.Actions
	Snapshot() workspace.Snapshot
	TeamMembers(ctx context.Context, projectID string) ([]backend.TeamMember, error)
	RefetchTasks(ctx context.Context) error
	RefetchDocuments(ctx context.Context) error
}

// Transcripts persists the messages of each session.
type Transcripts interface {
	Messages(ctx context.Context, sessionID string) ([]session.Message, error)
	AppendMessage(ctx context.Context, sessionID string, msg session.Message) error
}

// StreamSink receives reply text as it streams in, tagged with the session
// the turn belongs to.
type StreamSink func(sessionID, text string)

// Config holds controller dependencies
type Config struct {
	LLM             llm.Completer
	Options         llm.Options
	Tools           *tools.Registry
	Workspace       Workspace
	Retrieval       *RetrievalAugmenter
	Sessions        Transcripts
	Notifier        Notifier
	Logger          *logging.Logger
	UserID          string
	SessionID       string // Initially active session
	HistoryLimit    int
	SampleDocuments int
	Stream          bool
}

// Reply is the outcome of one turn
type Reply struct {
	SessionID string
	Message   session.Message
	// Discarded is set when the active session changed while the turn was
	// running. The message was stored in SessionID but must not be shown.
	Discarded bool
	// Err is the completion or tool failure behind an apology or error message.
	Err error
	// Raw is the unprocessed model output, empty when the completion failed.
	Raw string
}

// Controller owns the conversation flow of the active chat session.
// One turn may be outstanding per session.
type Controller struct {
	llm       llm.Completer
	tools     *tools.Registry
	executor  *ToolExecutor
	workspace Workspace
	retrieval *RetrievalAugmenter
	sessions  Transcripts
	notifier  Notifier
	log       *logging.Logger
	assembler ContextAssembler
	userID    string
	history   int

	mu       sync.Mutex
	opts     llm.Options
	stream   bool
	sink     StreamSink
	active   string
	location string
	inFlight map[string]bool
}

// New creates a controller.
func New(cfg Config) *Controller {
	log := logging.Or(cfg.Logger).WithPrefix("agent")
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	history := cfg.HistoryLimit
	if history <= 0 {
		history = DefaultHistoryLimit
	}
	registry := cfg.Tools
	if registry == nil {
		registry = tools.NewRegistry(tools.Defaults{})
	}

	return &Controller{
		llm:       cfg.LLM,
		tools:     registry,
		executor:  NewToolExecutor(registry, log),
		workspace: cfg.Workspace,
		retrieval: cfg.Retrieval,
		sessions:  cfg.Sessions,
		notifier:  notifier,
		log:       log,
		assembler: ContextAssembler{SampleSize: cfg.SampleDocuments},
		userID:    cfg.UserID,
		history:   history,
		opts:      cfg.Options,
		stream:    cfg.Stream,
		active:    cfg.SessionID,
		location:  "/dashboard",
		inFlight:  make(map[string]bool),
	}
}

// Send runs one conversation turn in the active session. Blank input and a
// second submission while a turn is outstanding are rejected before anything
// is recorded. Otherwise the user message is stored immediately and exactly
// one assistant message follows it, even when the turn fails.
func (c *Controller) Send(ctx context.Context, input string) (Reply, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{}, dasherr.EmptyInput()
	}

	c.mu.Lock()
	sessionID := c.active
	if c.inFlight[sessionID] {
		c.mu.Unlock()
		return Reply{}, dasherr.TurnInFlight(sessionID)
	}
	c.inFlight[sessionID] = true
	opts, stream, sink, location := c.opts, c.stream, c.sink, c.location
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, sessionID)
		c.mu.Unlock()
	}()

	log := c.log.With(logging.SessionID(sessionID), logging.Model(opts.Model), logging.Page(location))
	start := time.Now()

	if err := c.sessions.AppendMessage(ctx, sessionID, session.Message{Role: session.RoleUser, Content: input}); err != nil {
		return Reply{}, fmt.Errorf("failed to record message: %w", err)
	}

	// The user message is stored, so every failure from here on still ends
	// the turn with an assistant message.
	var text string
	messages, err := c.buildMessages(ctx, sessionID, input, location)
	switch {
	case err != nil:
	case stream && sink != nil:
		text, err = llm.Collect(c.llm.Stream(ctx, messages, opts), func(chunk string) { sink(sessionID, chunk) })
	default:
		text, err = c.llm.Complete(ctx, messages, opts)
	}

	reply := Reply{SessionID: sessionID}
	if err != nil {
		log.Error("turn failed", logging.Error(err), logging.DurationSince(start))
		c.notifier.Notify(NotifyError, dasherr.GetUserMessage(err))
		reply.Err = err
		reply.Message.Content = ApologyMessage
	} else {
		reply.Raw = text
		reply.Message.Content, reply.Err = c.applyReply(ctx, log, text)
	}

	reply.Message.Role = session.RoleAssistant
	reply.Message.Timestamp = time.Now()
	if err := c.sessions.AppendMessage(context.WithoutCancel(ctx), sessionID, reply.Message); err != nil {
		log.Error("failed to record reply", logging.Error(err))
	}

	if c.Active() != sessionID {
		reply.Discarded = true
		log.Info("session changed during turn, reply kept out of view", logging.To(c.Active()))
	}
	log.Debug("turn done", logging.DurationSince(start), logging.Success(reply.Err == nil))
	return reply, nil
}

// buildMessages assembles the system prompt and the recent transcript.
func (c *Controller) buildMessages(ctx context.Context, sessionID, input, location string) ([]llm.Message, error) {
	transcript, err := c.sessions.Messages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}
	if len(transcript) > c.history {
		transcript = transcript[len(transcript)-c.history:]
	}

	retrieved := c.retrieval.Augment(ctx, input, c.userID)

	snap := c.workspace.Snapshot()
	var members []backend.TeamMember
	if id, ok := projectIDFromPath(normalizePath(location)); ok {
		members, err = c.workspace.TeamMembers(ctx, id)
		if err != nil {
			c.log.Warn("failed to load team members", logging.ProjectID(id), logging.Error(err))
			members = nil
		}
	}

	system := BuildSystemPrompt(PromptInput{
		Context:   c.assembler.Assemble(location, snap.Projects, snap.Documents, members),
		Projects:  snap.Projects,
		Retrieved: retrieved,
		Catalog:   c.tools.Catalog(),
	})

	messages := make([]llm.Message, 0, len(transcript)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
	for _, m := range transcript {
		role := llm.RoleUser
		if m.Role == session.RoleAssistant {
			role = llm.RoleAssistant
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Content})
	}
	return messages, nil
}

// applyReply dispatches any tool calls in text and returns what the
// transcript shows for this turn.
func (c *Controller) applyReply(ctx context.Context, log *logging.Logger, text string) (string, error) {
	result, err := c.executor.Dispatch(ctx, text, c.workspace)

	if result.ShouldRefetchTasks {
		if rerr := c.workspace.RefetchTasks(ctx); rerr != nil {
			log.Warn("refetching tasks failed", logging.Error(rerr))
		}
	}
	if result.DidAddRagDoc {
		if rerr := c.workspace.RefetchDocuments(ctx); rerr != nil {
			log.Warn("refetching documents failed", logging.Error(rerr))
		}
	}

	switch {
	case err != nil:
		c.notifier.Notify(NotifyError, "Some actions could not be completed")
		return joinLines(result.Confirmation, failureMessage(err)), err
	case !result.Dispatched || result.Confirmation == "":
		return text, nil
	default:
		c.notifier.Notify(NotifySuccess, result.Confirmation)
		return result.Confirmation, nil
	}
}

func failureMessage(err error) string {
	var reasons []string
	for _, e := range multierr.Errors(err) {
		reasons = append(reasons, dasherr.GetUserMessage(e))
	}
	return "❌ Sorry, something went wrong while carrying out your request: " + strings.Join(reasons, "; ")
}

func joinLines(lines ...string) string {
	var out []string
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// SetLocation records the page the user is on.
func (c *Controller) SetLocation(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.location = path
}

// Location returns the current page path.
func (c *Controller) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// SwitchSession makes id the active session. An outstanding turn of the
// previous session keeps running and its reply is stored there.
func (c *Controller) SwitchSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != id {
		c.log.Debug("switching session", logging.From(c.active), logging.To(id))
	}
	c.active = id
}

// Active returns the active session id.
func (c *Controller) Active() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Transcript returns the messages of the active session.
func (c *Controller) Transcript(ctx context.Context) ([]session.Message, error) {
	return c.sessions.Messages(ctx, c.Active())
}

// Loading reports whether the active session is waiting for a reply.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[c.active]
}

// SetModel switches the model used by subsequent turns.
func (c *Controller) SetModel(id string) error {
	if _, ok := llm.Lookup(id); !ok {
		return dasherr.LLMUnknownModel(id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.Model = id
	return nil
}

// Model returns the model id used for completions.
func (c *Controller) Model() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts.Model
}

// SetOptions replaces the sampling options of subsequent turns, e.g. after
// a config reload. The model id is not checked against the catalog.
func (c *Controller) SetOptions(opts llm.Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = opts
}

// Options returns the sampling options of the next turn.
func (c *Controller) Options() llm.Options {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opts
}

// SetStreaming toggles streamed completions. sink receives text as it
// arrives; without one, turns fall back to a single request.
func (c *Controller) SetStreaming(enabled bool, sink StreamSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stream = enabled
	c.sink = sink
}
