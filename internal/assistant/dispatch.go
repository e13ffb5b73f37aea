package assistant

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/atcdesk/radioscribe/internal/chart"
	"github.com/atcdesk/radioscribe/internal/extract"
	"github.com/atcdesk/radioscribe/internal/observability/metrics"
	"github.com/atcdesk/radioscribe/internal/search"
	"github.com/atcdesk/radioscribe/internal/session"
	"github.com/atcdesk/radioscribe/internal/transcribe"
	"github.com/atcdesk/radioscribe/pkg/logging"
)

var tracer = otel.Tracer("radioscribe.internal.assistant")

// Dispatcher branches, in precedence order. Exactly one terminates any
// given turn.
const (
	BranchAttachment = "attachment"
	BranchMeta       = "meta"
	BranchDirect     = "direct"
	BranchUtility    = "utility"
	BranchActive     = "active"
	BranchFallback   = "fallback"
)

// Turn is one inbound chat message with optional typed attachments.
type Turn struct {
	SessionID   string
	UserID      string
	Text        string
	Attachments []Attachment
}

// Reply is one outgoing message. Image, when set, is an inline SVG
// rendered alongside the text.
type Reply struct {
	Text      string
	Image     []byte
	ImageName string
}

// Result is everything a turn produced. Branch names the precedence
// branch that terminated the turn.
type Result struct {
	Branch  string
	Replies []Reply
}

// AudioProcessor runs an uploaded recording through transcription and
// conversation extraction, returning display-ready text.
type AudioProcessor interface {
	ProcessAudio(ctx context.Context, audio []byte, filename string) (string, error)
}

// DocumentIndexer ingests a non-audio upload for later question
// answering.
type DocumentIndexer interface {
	Index(ctx context.Context, sessionID, filename string, data []byte) (string, error)
}

// Fallback answers turns no assistant claims.
type Fallback interface {
	Respond(ctx context.Context, sessionID, text string) (string, error)
}

// Dispatcher routes one inbound turn to exactly one action. Errors from
// collaborators never escape Dispatch; they are rendered as replies.
type Dispatcher struct {
	registry  *Registry
	sessions  session.Store
	audio     AudioProcessor
	documents DocumentIndexer
	searcher  search.Searcher
	fallback  Fallback
	logger    *logging.Logger
	metrics   *metrics.PipelineMetrics
}

type DispatcherDeps struct {
	Registry  *Registry
	Sessions  session.Store
	Audio     AudioProcessor
	Documents DocumentIndexer
	Searcher  search.Searcher
	Fallback  Fallback
	Logger    *logging.Logger
	Metrics   *metrics.PipelineMetrics
}

func NewDispatcher(deps DispatcherDeps) *Dispatcher {
	if deps.Registry == nil {
		panic("assistant: registry cannot be nil")
	}
	if deps.Sessions == nil {
		panic("assistant: session store cannot be nil")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		registry:  deps.Registry,
		sessions:  deps.Sessions,
		audio:     deps.Audio,
		documents: deps.Documents,
		searcher:  deps.Searcher,
		fallback:  deps.Fallback,
		logger:    logger.Component("assistant.dispatch"),
		metrics:   deps.Metrics,
	}
}

// Dispatch resolves a turn through the fixed precedence: attachments,
// registry meta-commands, direct invocation, shared utility commands,
// active-assistant routing, fallback.
func (d *Dispatcher) Dispatch(ctx context.Context, turn Turn) Result {
	ctx, span := tracer.Start(ctx, "assistant.dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("radioscribe.session_id", turn.SessionID))

	res := d.dispatch(ctx, turn)
	span.SetAttributes(attribute.String("radioscribe.branch", res.Branch))
	d.metrics.ObserveDispatch(res.Branch)
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, turn Turn) Result {
	text := strings.TrimSpace(turn.Text)

	var replies []Reply
	if len(turn.Attachments) > 0 {
		replies = d.handleAttachments(ctx, turn)
		if text == "" {
			return Result{Branch: BranchAttachment, Replies: replies}
		}
	}

	if reply, ok := d.handleMeta(ctx, turn, text); ok {
		return Result{Branch: BranchMeta, Replies: append(replies, reply)}
	}
	if reply, ok := d.handleDirect(ctx, turn, text); ok {
		return Result{Branch: BranchDirect, Replies: append(replies, reply)}
	}
	if reply, ok := d.handleUtility(ctx, turn, text); ok {
		return Result{Branch: BranchUtility, Replies: append(replies, reply)}
	}
	if reply, ok := d.handleActive(ctx, turn, text); ok {
		return Result{Branch: BranchActive, Replies: append(replies, reply)}
	}
	return Result{Branch: BranchFallback, Replies: append(replies, d.handleFallback(ctx, turn, text))}
}

func (d *Dispatcher) handleAttachments(ctx context.Context, turn Turn) []Reply {
	replies := make([]Reply, 0, len(turn.Attachments))
	for _, att := range turn.Attachments {
		if transcribe.IsAudioFile(att.MIME, att.Name) {
			replies = append(replies, d.handleAudio(ctx, att))
			continue
		}
		replies = append(replies, d.handleDocument(ctx, turn, att))
	}
	return replies
}

func (d *Dispatcher) handleAudio(ctx context.Context, att Attachment) Reply {
	if d.audio == nil {
		return Reply{Text: fmt.Sprintf("Audio processing is not available; `%s` was not transcribed.", att.Name)}
	}
	rendered, err := d.audio.ProcessAudio(ctx, att.Data, att.Name)
	if err != nil {
		d.logger.Error("audio processing failed", "file", att.Name, "error", err)
		return Reply{Text: renderError(att.Name, err)}
	}
	return Reply{Text: rendered}
}

func (d *Dispatcher) handleDocument(ctx context.Context, turn Turn, att Attachment) Reply {
	tc := d.turnContext(turn)
	if active := d.activeDescriptor(ctx, turn.SessionID); active != nil && active.HandleFile != nil {
		text, err := active.HandleFile(ctx, att, tc)
		if err != nil {
			d.logger.Error("assistant file handler failed", "file", att.Name, "error", err)
			return Reply{Text: renderError(att.Name, err)}
		}
		return Reply{Text: text}
	}
	if d.documents == nil {
		return Reply{Text: fmt.Sprintf("Document handling is not available; `%s` was not indexed.", att.Name)}
	}
	text, err := d.documents.Index(ctx, turn.SessionID, att.Name, att.Data)
	if err != nil {
		d.logger.Error("document indexing failed", "file", att.Name, "error", err)
		return Reply{Text: renderError(att.Name, err)}
	}
	return Reply{Text: text}
}

func (d *Dispatcher) handleMeta(ctx context.Context, turn Turn, text string) (Reply, bool) {
	lower := strings.ToLower(text)
	if lower == "/assistant list" || strings.HasPrefix(lower, "/assistant list ") {
		return d.listAssistants(), true
	}
	if lower == "/assistant" || strings.HasPrefix(lower, "/assistant ") {
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return Reply{Text: "Please specify an assistant name. Use `/assistant list` to see available assistants."}, true
		}
		return d.switchAssistant(ctx, turn.SessionID, fields[1]), true
	}
	return Reply{}, false
}

func (d *Dispatcher) listAssistants() Reply {
	all := d.registry.ListAll()
	if len(all) == 0 {
		return Reply{Text: "No assistants are currently registered."}
	}
	var b strings.Builder
	b.WriteString("Available assistants:\n")
	for _, a := range all {
		fmt.Fprintf(&b, "- `/%s`: %s, %s\n", a.Command, a.Name, a.Description)
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n")}
}

func (d *Dispatcher) switchAssistant(ctx context.Context, sessionID, name string) Reply {
	desc, ok := d.registry.Get(name)
	if !ok {
		return Reply{Text: fmt.Sprintf("Assistant %q not found. Use `/assistant list` to see available assistants.", name)}
	}
	if err := d.sessions.SetActiveAssistant(ctx, sessionID, desc.Command); err != nil {
		d.logger.Error("failed to persist active assistant", "session", sessionID, "error", err)
		return Reply{Text: "Could not switch assistants right now, please try again."}
	}
	return Reply{Text: fmt.Sprintf("Switched to %s. %s", desc.Name, desc.Description)}
}

func (d *Dispatcher) handleDirect(ctx context.Context, turn Turn, text string) (Reply, bool) {
	if !strings.HasPrefix(text, "/") {
		return Reply{}, false
	}
	parts := strings.SplitN(text, " ", 2)
	command := strings.TrimPrefix(parts[0], "/")
	desc, ok := d.registry.Get(command)
	if !ok {
		return Reply{}, false
	}
	remainder := ""
	if len(parts) > 1 {
		remainder = strings.TrimSpace(parts[1])
	}
	reply, err := desc.HandleMessage(ctx, remainder, d.turnContext(turn))
	if err != nil {
		d.logger.Error("assistant handler failed", "command", command, "error", err)
		return Reply{Text: renderError(command, err)}, true
	}
	return Reply{Text: reply}, true
}

func (d *Dispatcher) handleUtility(ctx context.Context, turn Turn, text string) (Reply, bool) {
	if query, ok := extractSearchQuery(text); ok {
		return d.handleSearch(ctx, turn, query), true
	}
	if size, ok := parseChartRequest(text); ok {
		return Reply{
			Text:      fmt.Sprintf("Here's a histogram of %d samples. Use `/chart <size>` for 20 to 2000 points.", chart.ClampSamples(size)),
			Image:     chart.Histogram(size),
			ImageName: "histogram.svg",
		}, true
	}
	return Reply{}, false
}

func (d *Dispatcher) handleSearch(ctx context.Context, turn Turn, query string) Reply {
	if query == "" {
		return Reply{Text: "Please provide a query after the search command. Example: `/search latest METAR format changes`"}
	}
	if active := d.activeDescriptor(ctx, turn.SessionID); active != nil && active.HandleSearch != nil {
		text, err := active.HandleSearch(ctx, query, d.turnContext(turn))
		if err != nil {
			d.logger.Error("assistant search handler failed", "error", err)
			return Reply{Text: renderError(query, err)}
		}
		return Reply{Text: text}
	}
	if d.searcher == nil {
		return Reply{Text: "Web search is not configured. Set SEARCH_API_KEY and restart."}
	}
	results, err := d.searcher.Search(ctx, query)
	if errors.Is(err, search.ErrNotConfigured) {
		return Reply{Text: "Web search is not configured. Set SEARCH_API_KEY and restart."}
	}
	if err != nil {
		d.logger.Error("web search failed", "query", query, "error", err)
		return Reply{Text: renderError(query, err)}
	}
	if len(results) == 0 {
		return Reply{Text: fmt.Sprintf("No web results found for %q.", query)}
	}
	var b strings.Builder
	b.WriteString("Web search results:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. [%s](%s)\n%s\n", i+1, r.Title, r.URL, r.Content)
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n")}
}

func (d *Dispatcher) handleActive(ctx context.Context, turn Turn, text string) (Reply, bool) {
	desc := d.activeDescriptor(ctx, turn.SessionID)
	if desc == nil {
		return Reply{}, false
	}
	reply, err := desc.HandleMessage(ctx, text, d.turnContext(turn))
	if err != nil {
		d.logger.Error("active assistant failed", "command", desc.Command, "error", err)
		return Reply{Text: renderError(desc.Command, err)}, true
	}
	return Reply{Text: reply}, true
}

func (d *Dispatcher) handleFallback(ctx context.Context, turn Turn, text string) Reply {
	if text == "" {
		return Reply{Text: "Please enter a question or upload a recording to get started."}
	}
	if d.fallback == nil {
		return Reply{Text: "No assistant is active. Use `/assistant list` to see what's available."}
	}
	reply, err := d.fallback.Respond(ctx, turn.SessionID, text)
	if err != nil {
		d.logger.Error("fallback chat failed", "error", err)
		return Reply{Text: renderError("chat", err)}
	}
	return Reply{Text: reply}
}

func (d *Dispatcher) activeDescriptor(ctx context.Context, sessionID string) *Descriptor {
	active, err := d.sessions.ActiveAssistant(ctx, sessionID)
	if err != nil {
		d.logger.Error("failed to load active assistant", "session", sessionID, "error", err)
		return nil
	}
	if active == "" {
		return nil
	}
	desc, ok := d.registry.Get(active)
	if !ok {
		return nil
	}
	return desc
}

func (d *Dispatcher) turnContext(turn Turn) TurnContext {
	return TurnContext{
		SessionID: turn.SessionID,
		UserID:    turn.UserID,
		Sessions:  d.sessions,
	}
}

// extractSearchQuery recognizes the shared search triggers. The leading
// keyword is matched case-insensitively.
func extractSearchQuery(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, prefix := range []string{"/search", "!search"} {
		if lower == prefix {
			return "", true
		}
		if strings.HasPrefix(lower, prefix+" ") {
			return strings.TrimSpace(text[len(prefix):]), true
		}
	}
	for _, prefix := range []string{"search:", "web:", "lookup:"} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(text[len(prefix):]), true
		}
	}
	return "", false
}

// parseChartRequest recognizes `/chart` with an optional sample size.
// Unparseable sizes fall back to the default rather than erroring.
func parseChartRequest(text string) (int, bool) {
	lower := strings.ToLower(text)
	if lower != "/chart" && !strings.HasPrefix(lower, "/chart ") {
		return 0, false
	}
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return chart.DefaultSamples, true
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return chart.DefaultSamples, true
	}
	return chart.ClampSamples(n), true
}

// renderError turns a collaborator failure into a user-visible reply
// that names the error category without internal detail.
func renderError(subject string, err error) string {
	var terr *transcribe.TranscriptionError
	if errors.As(err, &terr) {
		return fmt.Sprintf("Transcription failed for `%s`. Please check the recording is a valid .mp3, .wav, or .m4a file and try again.", subject)
	}
	var perr *extract.ParseValidationError
	if errors.As(err, &perr) {
		return fmt.Sprintf("Could not parse the conversation structure for `%s`. The raw transcript is still available.", subject)
	}
	return fmt.Sprintf("Something went wrong handling `%s`. Please try again.", subject)
}
