package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/maternoscope/pipeline/internal/clients"
	"github.com/maternoscope/pipeline/internal/models"
)

// Annotator produces one structured annotation per post. Implementations must
// treat each call as a single model invocation: no internal retries.
type Annotator interface {
	Annotate(ctx context.Context, postID, postText string) (*models.AnnotationRecord, error)
}

// OpenAIAnnotator classifies posts against the maternal-care taxonomy and
// drafts a clinician-style reply via a chat completion.
type OpenAIAnnotator struct {
	client     *openai.Client
	model      string
	promptHash string
}

func NewOpenAIAnnotator(oc *clients.OpenAIClient) *OpenAIAnnotator {
	return &OpenAIAnnotator{
		client:     oc.Client,
		model:      oc.Model,
		promptHash: PromptHash(),
	}
}

func (a *OpenAIAnnotator) Annotate(ctx context.Context, postID, postText string) (*models.AnnotationRecord, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(postID, postText)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[Annotator] Completion request failed for %s: %w", postID, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("[Annotator] Empty completion response for %s", postID)
	}

	cleaned := CleanResponse(resp.Choices[0].Message.Content)
	if cleaned == "" {
		return nil, fmt.Errorf("[Annotator] Response for %s is not a JSON object", postID)
	}

	var record models.AnnotationRecord
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return nil, fmt.Errorf("[Annotator] Failed to unmarshal annotation for %s: %w", postID, err)
	}

	// Provenance is stamped here, never trusted from the model.
	record.PostID = postID
	record.ModelName = a.model
	record.ModelVersion = ModelVersion
	record.PromptHash = a.promptHash
	record.InputTokens = resp.Usage.PromptTokens
	record.OutputTokens = resp.Usage.CompletionTokens
	record.AnnotatedAt = time.Now().UTC()

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("[Annotator] Annotation for %s violates schema: %w", postID, err)
	}

	slog.Info("[Annotator] Annotated post",
		slog.String("post_id", postID),
		slog.Int("input_tokens", record.InputTokens),
		slog.Int("output_tokens", record.OutputTokens))

	return &record, nil
}

// CleanResponse strips markdown code fences the model sometimes wraps around
// its JSON and verifies the remainder at least looks like an object.
func CleanResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "\n")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "\n")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	cleaned = strings.TrimSpace(cleaned)

	if !strings.HasPrefix(cleaned, "{") || !strings.HasSuffix(cleaned, "}") {
		return ""
	}
	return cleaned
}
