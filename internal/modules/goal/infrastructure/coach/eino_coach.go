// Package coach asks a hosted chat model for a short progress encouragement.
package coach

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"FPKProgress/internal/config"
	"FPKProgress/internal/modules/goal/domain/entity"

	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrDisabled 未配置模型
var ErrDisabled = errors.New("chat model provider not configured")

const systemPrompt = "You are a friendly study coach. Given a learner's goals and recent activity, " +
	"reply with two or three short sentences of encouragement and one concrete next step. " +
	"Do not invent numbers that are not in the summary."

type EinoCoach struct {
	cm        model.BaseChatModel
	modelName string
}

func NewEinoCoach(cm model.BaseChatModel, modelName string) *EinoCoach {
	return &EinoCoach{cm: cm, modelName: modelName}
}

// NewFromConfig 仅支持 OpenAI 兼容接口；provider 为空时返回 ErrDisabled
func NewFromConfig(ctx context.Context, conf config.AIChatModelConfig) (*EinoCoach, error) {
	provider := strings.ToLower(strings.TrimSpace(conf.Provider))
	switch provider {
	case "", "disabled", "none":
		return nil, ErrDisabled
	case "openai":
	default:
		return nil, fmt.Errorf("unsupported chat model provider: %s", provider)
	}

	apiKey := strings.TrimSpace(conf.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	modelName := strings.TrimSpace(conf.Model)
	if modelName == "" {
		modelName = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	}
	baseURL := strings.TrimSpace(conf.BaseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	}
	if apiKey == "" || modelName == "" {
		return nil, fmt.Errorf("openai chat model missing apiKey/model")
	}

	timeout := 30 * time.Second
	if conf.TimeoutSeconds > 0 {
		timeout = time.Duration(conf.TimeoutSeconds) * time.Second
	}
	cm, err := openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
		APIKey:  apiKey,
		Model:   modelName,
		BaseURL: baseURL,
		Timeout: timeout,
	})
	if err != nil {
		return nil, err
	}
	return NewEinoCoach(cm, modelName), nil
}

func (c *EinoCoach) ModelName() string {
	return c.modelName
}

func (c *EinoCoach) Encourage(ctx context.Context, brief entity.CoachBrief) (string, error) {
	msgs := []*schema.Message{
		{Role: schema.System, Content: systemPrompt},
		{Role: schema.User, Content: RenderBrief(brief)},
	}
	resp, err := c.cm.Generate(ctx, msgs)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("empty chat model response")
	}
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", errors.New("empty chat model response")
	}
	return text, nil
}

// RenderBrief 把摘要转成纯文本
func RenderBrief(brief entity.CoachBrief) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Activity in the last %d days: %.0f reading minutes, %.0f study minutes.\n",
		brief.WindowDays, brief.ReadingMinutes, brief.StudyMinutes)
	if len(brief.Goals) == 0 {
		b.WriteString("No active goals.\n")
	} else {
		b.WriteString("Active goals:\n")
		for _, g := range brief.Goals {
			fmt.Fprintf(&b, "- %s (%s, %s priority): %d%%", g.Title, g.Category, g.Priority, g.Progress)
			if g.TargetDate != nil {
				fmt.Fprintf(&b, ", due %s", g.TargetDate.UTC().Format("2006-01-02"))
			}
			b.WriteString("\n")
		}
	}
	if q := strings.TrimSpace(brief.Question); q != "" {
		fmt.Fprintf(&b, "Learner asks: %s\n", q)
	}
	return b.String()
}
