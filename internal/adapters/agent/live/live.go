// Package live runs audits through an OpenAI tool-calling agent. The model
// drives the same check tools the rest of the service uses; this adapter
// executes them locally and translates the conversation into run events.
package live

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/auditdesk/audit-assistant/internal/adapters/csvtable"
	"github.com/auditdesk/audit-assistant/internal/domain"
	"github.com/auditdesk/audit-assistant/internal/ports"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const instructions = "You are an internal audit agent. " +
	"Use the available tools to load CSVs and run tests. " +
	"When tests return JSON Finding objects, pass them into compile_report " +
	"to produce a single JSON AuditReport. Do not invent columns; " +
	"ask for the right file/column names if missing."

type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Agent struct {
	client      completer
	model       string
	loader      ports.TableLoader
	limiter     *rate.Limiter
	callTimeout time.Duration
	maxTurns    int
}

type Option func(*Agent)

// WithClient swaps the OpenAI client; tests use it to avoid the network.
func WithClient(c completer) Option {
	return func(a *Agent) { a.client = c }
}

func WithCallTimeout(d time.Duration) Option {
	return func(a *Agent) { a.callTimeout = d }
}

// WithLimiter overrides the request rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(a *Agent) { a.limiter = l }
}

func New(apiKey, model string, loader ports.TableLoader, opts ...Option) *Agent {
	a := &Agent{
		client:      openai.NewClient(apiKey),
		model:       model,
		loader:      loader,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 2),
		callTimeout: 5 * time.Minute,
		maxTurns:    16,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Agent) Run(ctx context.Context, req ports.RunRequest, emit ports.EmitFunc) (*domain.Report, error) {
	byTable, err := csvtable.MapFiles(req.Files)
	if err != nil {
		return nil, err
	}

	catalog := req.Catalog
	if len(catalog) == 0 {
		catalog = domain.DefaultCatalog()
	}
	checked := catalog.Checked()

	tb := &toolbox{
		loader: a.loader,
		files:  byTable,
		tables: domain.Tables{},
	}
	tr := newTracker(catalog, len(checked), emit)
	tr.overall()

	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: instructions},
		{Role: openai.ChatMessageRoleUser, Content: buildPlan(byTable, checked)},
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		msg, err := a.complete(ctx, msgs)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)

		if len(msg.ToolCalls) == 0 {
			if text := strings.TrimSpace(msg.Content); text != "" {
				tr.status("LLM: " + preview(text))
			}
			if tb.report != nil {
				tr.done(tb.report)
				return tb.report, nil
			}
			// Model stopped without compiling; try its final message.
			rep, perr := reportFromFinal(msg.Content)
			if perr != nil {
				return nil, fmt.Errorf("agent finished without a report: %w", perr)
			}
			tr.done(rep)
			return rep, nil
		}

		for _, tc := range msg.ToolCalls {
			name := tc.Function.Name
			tr.startRule(name)
			if name != domain.ToolLoadCSV {
				tr.toolCall(name)
			}

			result, terr := tb.dispatch(ctx, name, tc.Function.Arguments)
			if terr != nil {
				logger.Error().Err(terr).Str("tool", name).Msg("tool call failed")
				result = "error: " + terr.Error()
			}
			if name != domain.ToolLoadCSV {
				tr.toolResult(name, result, terr == nil)
			}

			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    result,
				ToolCallID: tc.ID,
			})
		}
	}

	if tb.report != nil {
		tr.done(tb.report)
		return tb.report, nil
	}
	return nil, errors.New("agent exceeded turn budget without a report")
}

func (a *Agent) complete(ctx context.Context, msgs []openai.ChatCompletionMessage) (openai.ChatCompletionMessage, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return openai.ChatCompletionMessage{}, err
	}

	// tie the API timeout to the incoming ctx so run cancellation propagates
	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	resp, err := a.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:    a.model,
		Messages: msgs,
		Tools:    toolDefinitions(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("openai chat completion failed")
		return openai.ChatCompletionMessage{}, fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionMessage{}, errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message, nil
}

func buildPlan(byTable map[string]string, checked domain.Catalog) string {
	var b strings.Builder
	step := 1
	for _, table := range tableOrder(byTable) {
		fmt.Fprintf(&b, "%d) load_csv(name='%s', path='%s')\n", step, table, byTable[table])
		step++
	}
	b.WriteString("Then run ")
	for i, r := range checked {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(r.Tool)
	}
	b.WriteString(", and compile_report to produce a single JSON AuditReport.")
	return b.String()
}

func tableOrder(byTable map[string]string) []string {
	order := []string{"jes", "invoices", "vendors", "employees", "user_access"}
	var out []string
	for _, t := range order {
		if _, ok := byTable[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func preview(s string) string {
	if len(s) > 160 {
		return s[:160]
	}
	return s
}
