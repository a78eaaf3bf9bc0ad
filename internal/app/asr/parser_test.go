package asr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		expectError   bool
		wantFullText  string
		wantLanguage  string
		wantSentences int
	}{
		{
			name: "nested result body",
			payload: `{"taskId":"t1","result":{"fullText":"Hi there.","language":"en",
				"sentences":[{"sentenceId":1,"beginTime":0,"endTime":900,"text":"Hi there.","language":"en"}]}}`,
			wantFullText:  "Hi there.",
			wantLanguage:  "en",
			wantSentences: 1,
		},
		{
			name: "top-level body",
			payload: `{"fullText":"Bonjour.","language":"fr",
				"sentences":[{"beginTime":0,"endTime":800,"text":"Bonjour.","language":"fr"}]}`,
			wantFullText:  "Bonjour.",
			wantLanguage:  "fr",
			wantSentences: 1,
		},
		{
			name: "fullText assembled from sentences",
			payload: `{"result":{"language":"en","sentences":[
				{"beginTime":0,"endTime":500,"text":"One."},
				{"beginTime":500,"endTime":1000,"text":"Two."}]}}`,
			wantFullText:  "One. Two.",
			wantLanguage:  "en",
			wantSentences: 2,
		},
		{
			name:          "language inferred from first sentence",
			payload:       `{"result":{"sentences":[{"beginTime":0,"endTime":100,"text":"Hallo.","language":"de"}]}}`,
			wantFullText:  "Hallo.",
			wantLanguage:  "de",
			wantSentences: 1,
		},
		{
			name:          "text without sentence timing",
			payload:       `{"result":{"fullText":"No timings here.","language":"en"}}`,
			wantFullText:  "No timings here.",
			wantLanguage:  "en",
			wantSentences: 0,
		},
		{
			name:        "empty payload",
			payload:     "",
			expectError: true,
		},
		{
			name:        "malformed JSON",
			payload:     `{"result":`,
			expectError: true,
		},
		{
			name:        "no transcript content",
			payload:     `{"taskId":"t1"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseResult(json.RawMessage(tt.payload))
			if tt.expectError {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantFullText, result.FullText)
			assert.Equal(t, tt.wantLanguage, result.Language)
			assert.Len(t, result.Sentences, tt.wantSentences)
		})
	}
}

func TestParseResult_SentenceIDsDefaultToPosition(t *testing.T) {
	payload := `{"result":{"sentences":[
		{"beginTime":0,"endTime":100,"text":"a"},
		{"beginTime":100,"endTime":200,"text":"b"}]}}`

	result, err := ParseResult(json.RawMessage(payload))
	require.NoError(t, err)
	require.Len(t, result.Sentences, 2)
	assert.Equal(t, 1, result.Sentences[0].ID)
	assert.Equal(t, 2, result.Sentences[1].ID)
}

func TestMapRemoteStatus(t *testing.T) {
	for remote, want := range map[string]string{
		"PENDING":   "PENDING",
		"queued":    "PENDING",
		"ONGOING":   "RUNNING",
		"running":   "RUNNING",
		"COMPLETED": "SUCCEEDED",
		"SUCCESS":   "SUCCEEDED",
		"failed":    "FAILED",
		"ERROR":     "FAILED",
	} {
		status, err := mapRemoteStatus(remote)
		require.NoError(t, err, remote)
		assert.Equal(t, want, string(status), remote)
	}

	_, err := mapRemoteStatus("EXPLODED")
	require.Error(t, err)
}

func TestParseRemoteTime(t *testing.T) {
	assert.Nil(t, parseRemoteTime(""))
	assert.Nil(t, parseRemoteTime("yesterday"))

	got := parseRemoteTime("2026-08-25T10:30:00Z")
	require.NotNil(t, got)
	assert.Equal(t, 10, got.Hour())

	got = parseRemoteTime("2026-08-25 10:30:00")
	require.NotNil(t, got)
	assert.Equal(t, 30, got.Minute())
}
