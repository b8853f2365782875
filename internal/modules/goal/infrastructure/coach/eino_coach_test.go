package coach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"FPKProgress/internal/config"
	"FPKProgress/internal/modules/goal/domain/entity"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type fakeChatModel struct {
	got   []*schema.Message
	reply string
	err   error
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.got = input
	if f.err != nil {
		return nil, f.err
	}
	return &schema.Message{Role: schema.Assistant, Content: f.reply}, nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

func TestRenderBrief(t *testing.T) {
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	text := RenderBrief(entity.CoachBrief{
		Goals: []*entity.Goal{
			{Title: "Read 7 hours", Category: entity.CategoryReading, Priority: entity.PriorityHigh, Progress: 40, TargetDate: &due},
		},
		ReadingMinutes: 168,
		StudyMinutes:   12.4,
		WindowDays:     7,
		Question:       "  how am I doing? ",
	})
	for _, want := range []string{
		"last 7 days: 168 reading minutes, 12 study minutes",
		"- Read 7 hours (reading, high priority): 40%, due 2026-03-01",
		"Learner asks: how am I doing?",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("brief missing %q:\n%s", want, text)
		}
	}

	if got := RenderBrief(entity.CoachBrief{WindowDays: 7}); !strings.Contains(got, "No active goals.") {
		t.Fatalf("empty brief: %s", got)
	}
}

func TestEncourage(t *testing.T) {
	cm := &fakeChatModel{reply: "  Nice pace, keep reading tonight.  "}
	c := NewEinoCoach(cm, "gpt-test")

	text, err := c.Encourage(context.Background(), entity.CoachBrief{WindowDays: 7})
	if err != nil {
		t.Fatalf("Encourage: %v", err)
	}
	if text != "Nice pace, keep reading tonight." {
		t.Fatalf("text=%q", text)
	}
	if len(cm.got) != 2 || cm.got[0].Role != schema.System || cm.got[1].Role != schema.User {
		t.Fatalf("unexpected prompt: %+v", cm.got)
	}
	if c.ModelName() != "gpt-test" {
		t.Fatalf("model name=%s", c.ModelName())
	}

	cm.reply = "   "
	if _, err := c.Encourage(context.Background(), entity.CoachBrief{}); err == nil {
		t.Fatalf("expected error on blank reply")
	}
}

func TestNewFromConfigDisabled(t *testing.T) {
	if _, err := NewFromConfig(context.Background(), config.AIChatModelConfig{}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	if _, err := NewFromConfig(context.Background(), config.AIChatModelConfig{Provider: "ark"}); err == nil || errors.Is(err, ErrDisabled) {
		t.Fatalf("expected unsupported provider error, got %v", err)
	}
}
