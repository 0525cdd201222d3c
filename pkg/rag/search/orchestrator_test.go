package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat-client/internal/pkg/logger"
)

func TestExecuteRanksRelevantDocuments(t *testing.T) {
	o := NewOrchestrator(DefaultCorpus(), logger.NewNopLogger())

	hits := o.Execute(context.Background(), "What is Citrix?", DefaultConfig())

	require.NotEmpty(t, hits)
	assert.Equal(t, "citrix-overview.txt", hits[0].Document.Name)
	for _, h := range hits {
		assert.Contains(t, h.Document.Content, "Citrix")
	}
}

func TestExecuteHonoursTopKAndExcludeCategory(t *testing.T) {
	o := NewOrchestrator(DefaultCorpus(), logger.NewNopLogger())

	hits := o.Execute(context.Background(), "Citrix Workspace access", Config{TopK: 1, SemanticRanker: true})
	assert.Len(t, hits, 1)

	hits = o.Execute(context.Background(), "Citrix Workspace", Config{TopK: 5, ExcludeCategory: "IT"})
	assert.Empty(t, hits)
}

func TestCaptionsShrinkPassages(t *testing.T) {
	o := NewOrchestrator(DefaultCorpus(), logger.NewNopLogger())

	full := o.Execute(context.Background(), "SAP Learning Hub license", Config{TopK: 1, SemanticRanker: true})
	captioned := o.Execute(context.Background(), "SAP Learning Hub license", Config{TopK: 1, SemanticRanker: true, SemanticCaptions: true})

	require.Len(t, full, 1)
	require.Len(t, captioned, 1)
	assert.Less(t, len(captioned[0].Passage), len(full[0].Passage))
	assert.Contains(t, captioned[0].Passage, "license")
}

func TestExecuteWithoutTerms(t *testing.T) {
	o := NewOrchestrator(DefaultCorpus(), logger.NewNopLogger())
	assert.Empty(t, o.Execute(context.Background(), "what is the", DefaultConfig()))
}
