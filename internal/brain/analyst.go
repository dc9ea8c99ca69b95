package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/NadavGB86/event-pragmetizer-oss/common/llm"
	"github.com/NadavGB86/event-pragmetizer-oss/common/logger"
	"github.com/NadavGB86/event-pragmetizer-oss/internal/model"
)

// ConnectionErrorText replaces the analyst reply when the model cannot be
// reached.
const ConnectionErrorText = "Connection error. Please try again."

const emptyReplyText = "I'm having trouble processing that. Could you repeat?"

type GuidanceMode string

const (
	GuidanceQuick  GuidanceMode = "quick"
	GuidanceGuided GuidanceMode = "guided"
	GuidanceDeep   GuidanceMode = "deep"
)

// ParseGuidanceMode maps unknown or empty values to GuidanceGuided.
func ParseGuidanceMode(s string) GuidanceMode {
	switch m := GuidanceMode(strings.ToLower(strings.TrimSpace(s))); m {
	case GuidanceQuick, GuidanceDeep:
		return m
	default:
		return GuidanceGuided
	}
}

func (m GuidanceMode) Valid() bool {
	switch m {
	case GuidanceQuick, GuidanceGuided, GuidanceDeep:
		return true
	default:
		return false
	}
}

// AnalystInstruction is the full system prompt for mode.
func AnalystInstruction(mode GuidanceMode) string {
	return analystBase + analystModes[ParseGuidanceMode(string(mode))]
}

// fencedJSON matches the first ```json block of a reply.
var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

type AnalystTurn struct {
	Text   string                 // user-visible reply, JSON block removed
	Update *model.ProfileUpdate   // nil when the turn carried no profile data
	Signal *model.ReadinessSignal // nil when the turn carried no readiness hint
	Failed bool                   // the model could not be reached
}

// analystPayload is the fenced block: profile fields plus the out-of-band
// readiness hint.
type analystPayload struct {
	model.ProfileUpdate
	model.ReadinessSignal
}

type Analyst struct {
	llm  llm.Client
	mode GuidanceMode
}

func NewAnalyst(client llm.Client, mode GuidanceMode) *Analyst {
	return &Analyst{llm: client, mode: ParseGuidanceMode(string(mode))}
}

// Reply answers the last user message of history. Transport failures never
// surface as errors; they produce ConnectionErrorText and no update.
// An empty mode uses the analyst's default.
func (a *Analyst) Reply(ctx context.Context, history []model.ChatMessage, profile model.UserProfile, mode GuidanceMode) AnalystTurn {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "planner.brain.analyst"})

	if mode == "" {
		mode = a.mode
	}

	system, err := analystSystemPrompt(mode, profile)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build analyst prompt", "error", err)
		return AnalystTurn{Text: ConnectionErrorText, Failed: true}
	}

	resp, err := a.llm.Converse(ctx, llm.ConverseRequest{
		SystemPrompt: system,
		Messages:     conversation(history),
		Temperature:  llm.Temp(0.7),
	})
	if err != nil {
		slog.WarnContext(ctx, "analyst call failed", "error", err)
		return AnalystTurn{Text: ConnectionErrorText, Failed: true}
	}

	content := resp.Content
	if strings.TrimSpace(content) == "" {
		content = emptyReplyText
	}
	return ParseAnalystReply(ctx, content)
}

// ParseAnalystReply splits a raw analyst reply into the visible text and the
// structured block. A block that cannot be decoded even after repair is
// dropped and the turn carries text only.
func ParseAnalystReply(ctx context.Context, content string) AnalystTurn {
	loc := fencedJSON.FindStringSubmatchIndex(content)
	if loc == nil {
		return AnalystTurn{Text: visibleText(ctx, content)}
	}

	turn := AnalystTurn{
		Text: visibleText(ctx, content[:loc[0]]+content[loc[1]:]),
	}

	var payload analystPayload
	if err := llm.Decode(ctx, content[loc[2]:loc[3]], &payload); err != nil {
		slog.WarnContext(ctx, "dropping unparseable profile block", "error", err)
		return turn
	}

	if !payload.ProfileUpdate.IsEmpty() {
		update := payload.ProfileUpdate
		turn.Update = &update
	}
	if !payload.ReadinessSignal.IsEmpty() {
		signal := payload.ReadinessSignal
		turn.Signal = &signal
	}

	slog.DebugContext(ctx, "parsed analyst reply",
		"has_update", turn.Update != nil,
		"has_signal", turn.Signal != nil)
	return turn
}

func visibleText(ctx context.Context, content string) string {
	text, stripped := SanitizeReply(content)
	if stripped > 0 {
		slog.DebugContext(ctx, "stripped stray json from analyst reply", "blocks", stripped)
	}
	return text
}

func analystSystemPrompt(mode GuidanceMode, profile model.UserProfile) (string, error) {
	current, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("encoding profile: %w", err)
	}

	var b strings.Builder
	b.WriteString(AnalystInstruction(mode))
	b.WriteString("\nCURRENT EXTRACTED PROFILE:\n")
	b.Write(current)
	b.WriteString("\n\nRespond to the last user message. Append the JSON block only if you learned something new.\n")
	return b.String(), nil
}

// conversation maps chat history to LLM turns. System notices and
// placeholder "thinking" messages are not part of the dialogue.
func conversation(history []model.ChatMessage) []llm.Message {
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		if m.IsThinking {
			continue
		}
		switch m.Role {
		case model.MessageRoleUser:
			msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: m.Content})
		case model.MessageRoleModel:
			msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: m.Content})
		}
	}
	return msgs
}
