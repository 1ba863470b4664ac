package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/qs3c/anim_go_server/config"
)

var (
	ErrRateLimited = errors.New("generation rate limited")
	ErrUnavailable = errors.New("generation service unavailable")
)

// Generator 代码生成适配器，方便测试替换
type Generator interface {
	GenerateSketch(ctx context.Context, prompt string) (string, error)
	ModifySketch(ctx context.Context, existingCode, prompt string) (string, error)
}

const generatePromptTemplate = `You are a JavaScript creative coder who only replies with valid p5.js sketches.
Generate a sketch (no HTML wrapper) that shows: "%s".

Important requirements:
1. Only provide the raw JavaScript code with no markdown formatting, code block indicators, or explanations.
2. Do not use loadStrings(), loadJSON(), loadImage() or any other loading function that requires external files.
3. Do not use deviceOrientation or accelerometer features.
4. Generate all data procedurally within the sketch.
5. Include both setup() and draw() functions.
6. Make sure the sketch is self-contained with no external dependencies.`

const modifyPromptTemplate = `I have a p5.js sketch that I want to modify. Here's the current code:

%s

I want to make the following change: "%s"

Please provide the full modified code with the requested changes. Important requirements:
1. Only provide the raw JavaScript code with no markdown formatting, code block indicators, or explanations.
2. Do not use loadStrings(), loadJSON(), loadImage() or any other loading function that requires external files.
3. Do not use deviceOrientation or accelerometer features.
4. Maintain the same basic structure but implement the requested changes.
5. Include both setup() and draw() functions.
6. Make sure the sketch remains self-contained with no external dependencies.`

type Client struct {
	client *genai.Client
	cfg    *config.GeminiConfig
}

// NewClient 创建 Gemini 客户端
func NewClient(ctx context.Context, cfg *config.GeminiConfig) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client, cfg: cfg}, nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	return c.client.Close()
}

// GenerateSketch 根据提示词生成完整 p5.js 代码
func (c *Client) GenerateSketch(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, c.cfg.Temperature, fmt.Sprintf(generatePromptTemplate, prompt))
}

// ModifySketch 在现有代码基础上生成完整替换代码
func (c *Client) ModifySketch(ctx context.Context, existingCode, prompt string) (string, error) {
	// 修改场景用更低的温度，输出更可控
	return c.generate(ctx, c.cfg.ModifyTemp, fmt.Sprintf(modifyPromptTemplate, existingCode, prompt))
}

func (c *Client) generate(ctx context.Context, temperature float32, text string) (string, error) {
	timeout := time.Duration(c.cfg.TimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(c.cfg.MaxOutputToken)

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", mapError(err)
	}

	raw := responseText(resp)
	if raw == "" {
		return "", fmt.Errorf("empty response from model %s", c.cfg.Model)
	}

	return raw, nil
}

// responseText 拼接候选结果中的文本分段
func responseText(resp *genai.GenerateContentResponse) string {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	return out
}

// mapError 将供应商错误映射到本地错误分类，不向上层泄漏原始异常
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429:
			return ErrRateLimited
		case 404, 503:
			return ErrUnavailable
		}
	}

	return fmt.Errorf("generation failed: %w", err)
}
