package asr

import (
	"encoding/json"
	"fmt"
	"strings"

	"lyre-server/internal/app/model"
)

// TranscriptResult is the normalized form of a provider's raw result.
type TranscriptResult struct {
	FullText  string
	Language  string
	Sentences []model.Sentence
}

type rawResult struct {
	Result *rawResultBody `json:"result"`
	// Some provider versions put the body at the top level.
	rawResultBody
}

type rawResultBody struct {
	FullText  string        `json:"fullText"`
	Language  string        `json:"language"`
	Sentences []rawSentence `json:"sentences"`
}

type rawSentence struct {
	SentenceID   int    `json:"sentenceId"`
	BeginTime    int64  `json:"beginTime"`
	EndTime      int64  `json:"endTime"`
	Text         string `json:"text"`
	Language     string `json:"language"`
	EmotionValue string `json:"emotionValue"`
}

// ParseResult turns a raw provider payload into a normalized transcript.
// Pure and deterministic; callers treat any error the same as a fetch
// failure.
func ParseResult(raw json.RawMessage) (*TranscriptResult, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("parse result: empty payload")
	}

	var parsed rawResult
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse result: %w", err)
	}

	body := parsed.rawResultBody
	if parsed.Result != nil {
		body = *parsed.Result
	}
	if body.FullText == "" && len(body.Sentences) == 0 {
		return nil, fmt.Errorf("parse result: payload has no transcript content")
	}

	result := &TranscriptResult{
		Language:  body.Language,
		Sentences: make([]model.Sentence, 0, len(body.Sentences)),
	}
	for i, s := range body.Sentences {
		id := s.SentenceID
		if id == 0 {
			id = i + 1
		}
		result.Sentences = append(result.Sentences, model.Sentence{
			ID:          id,
			BeginTimeMs: s.BeginTime,
			EndTimeMs:   s.EndTime,
			Text:        s.Text,
			Language:    s.Language,
			Emotion:     s.EmotionValue,
		})
	}

	result.FullText = body.FullText
	if result.FullText == "" {
		parts := make([]string, 0, len(result.Sentences))
		for _, s := range result.Sentences {
			parts = append(parts, s.Text)
		}
		result.FullText = strings.Join(parts, " ")
	}
	if result.Language == "" && len(result.Sentences) > 0 {
		result.Language = result.Sentences[0].Language
	}

	return result, nil
}
