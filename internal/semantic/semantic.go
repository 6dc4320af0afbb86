// Package semantic is the optional second-pass classifier: batches of
// candidates are sent to a chat-completion model that confirms relevance
// and normalizes title, company, and category. When enabled it is
// authoritative: only items it marks relevant survive.
package semantic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"vacradar/internal/textutil"
	"vacradar/internal/vacancy"
	"vacradar/pkg/logx"
)

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultBatchSize = 15
	defaultPause     = time.Second
	maxPostChars     = 1500
	requestTimeout   = 60 * time.Second
)

const systemPrompt = `Ты — фильтр вакансий для видеопродакшена.

Анализируй каждый пост и определи:
1. Это реальная вакансия? (не спам, не реклама канала, не курсы, не поиск заказов фрилансером)
2. Позиция одна из: сценарист / редактор (видео/монтажёр) / шеф-редактор?
3. Сфера: видеопродакшн (реклама, кино, документалки, продакшены, видеоконтент)?

ПОДХОДЯТ:
- Сценарист для рекламы, кино, видеороликов, YouTube
- Видеоредактор, монтажёр, редактор видео
- Шеф-редактор видеопродакшена, главный редактор продакшена

НЕ подходят:
- SMM-менеджеры, контент-менеджеры, копирайтеры
- Текстовые/литературные редакторы
- Журналистика, новостные редакции, блоги
- Редакторы сайтов, контент-редакторы
- Курсы, реклама каналов, спам
- Поиск заказов фрилансерами (не вакансии)

Для каждого поста верни JSON:
{
  "vacancies": [
    {
      "index": 0,
      "is_relevant": true/false,
      "position_type": "сценарист" | "редактор" | "шеф-редактор" | null,
      "title": "Чистое название позиции",
      "company": "Компания/проект или null"
    }
  ]
}

Если вакансия НЕ подходит, всё равно укажи is_relevant: false и причину в title.`

// Config controls batching; the API key is required.
type Config struct {
	APIKey     string
	Model      string
	BatchSize  int
	BatchPause time.Duration
}

type Filter struct {
	client *openai.Client
	cfg    Config
	log    logx.Logger

	sleep func(ctx context.Context, d time.Duration)
}

func New(cfg Config, log logx.Logger) (*Filter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("semantic: api key is empty")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchPause <= 0 {
		cfg.BatchPause = defaultPause
	}
	return &Filter{
		client: openai.NewClient(cfg.APIKey),
		cfg:    cfg,
		log:    log,
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}, nil
}

// batchResult is the per-item verdict the model returns.
type batchResult struct {
	Index        int     `json:"index"`
	IsRelevant   bool    `json:"is_relevant"`
	PositionType *string `json:"position_type"`
	Title        string  `json:"title"`
	Company      *string `json:"company"`
}

type batchResponse struct {
	Vacancies []batchResult `json:"vacancies"`
}

// Filter sends candidates to the model in batches. Items from a batch that
// errors or fails to parse are dropped; the remaining batches still run.
// Surviving candidates carry the model's normalized title/company/category.
func (f *Filter) Filter(ctx context.Context, cands []vacancy.Candidate) []vacancy.Candidate {
	if len(cands) == 0 {
		return nil
	}
	f.log.Info("semantic filtering", logx.Int("candidates", len(cands)))

	var out []vacancy.Candidate
	for start := 0; start < len(cands); start += f.cfg.BatchSize {
		end := min(start+f.cfg.BatchSize, len(cands))
		batch := cands[start:end]

		kept, err := f.processBatch(ctx, batch)
		if err != nil {
			f.log.Error("semantic batch dropped",
				logx.Int("batch_start", start),
				logx.Int("batch_size", len(batch)),
				logx.Err(err))
		} else {
			out = append(out, kept...)
		}

		if end < len(cands) {
			f.sleep(ctx, f.cfg.BatchPause)
			if ctx.Err() != nil {
				break
			}
		}
	}

	f.log.Info("semantic filtering complete", logx.Int("relevant", len(out)))
	return out
}

func (f *Filter) processBatch(ctx context.Context, batch []vacancy.Candidate) ([]vacancy.Candidate, error) {
	var sb strings.Builder
	for i, cand := range batch {
		fmt.Fprintf(&sb, "\n--- ПОСТ %d ---\n%s\n", i, textutil.Truncate(cand.FullText, maxPostChars))
	}

	rctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := f.client.CreateChatCompletion(rctx, openai.ChatCompletionRequest{
		Model: f.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Проанализируй эти посты:\n" + sb.String()},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response choices")
	}

	return applyVerdicts(batch, resp.Choices[0].Message.Content)
}

// applyVerdicts merges the model's verdicts back into the batch.
func applyVerdicts(batch []vacancy.Candidate, raw string) ([]vacancy.Candidate, error) {
	var parsed batchResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var kept []vacancy.Candidate
	for _, v := range parsed.Vacancies {
		if v.Index < 0 || v.Index >= len(batch) || !v.IsRelevant {
			continue
		}
		cand := batch[v.Index]
		if title := strings.TrimSpace(v.Title); title != "" {
			cand.Title = title
		}
		if v.Company != nil {
			cand.Company = strings.TrimSpace(*v.Company)
		}
		// Off-enum labels from the model keep the keyword-assigned category;
		// an unknown category would render in no delivery section.
		if v.PositionType != nil {
			if cat, ok := vacancy.ParseCategory(strings.TrimSpace(*v.PositionType)); ok {
				cand.Category = cat
			}
		}
		kept = append(kept, cand)
	}
	return kept, nil
}
