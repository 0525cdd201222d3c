package search

import (
	"context"
	"sort"
	"strings"

	"ragchat-client/internal/pkg/logger"
)

// Orchestrator ranks corpus documents against a query.
type Orchestrator struct {
	corpus *Corpus
	logger logger.ILogger
}

func NewOrchestrator(corpus *Corpus, l logger.ILogger) *Orchestrator {
	return &Orchestrator{corpus: corpus, logger: l}
}

// Config mirrors the generation overrides that affect retrieval.
type Config struct {
	TopK             int
	ExcludeCategory  string
	SemanticRanker   bool
	SemanticCaptions bool
}

func DefaultConfig() Config {
	return Config{TopK: 3, SemanticRanker: true}
}

// Hit is a retrieved document with the passage returned to the answerer.
type Hit struct {
	Document Document
	Score    float64
	Passage  string
}

// Execute keeps documents that share at least one term with query. The
// semantic ranker rewards term coverage over raw frequency, and captions
// shrink each passage to its best sentence.
func (o *Orchestrator) Execute(ctx context.Context, query string, cfg Config) []Hit {
	terms := tokenize(query)
	if len(terms) == 0 || cfg.TopK <= 0 {
		return nil
	}

	hits := make([]Hit, 0)
	for _, d := range o.corpus.All() {
		if cfg.ExcludeCategory != "" && strings.EqualFold(d.Category, cfg.ExcludeCategory) {
			continue
		}
		score := scoreDocument(terms, tokenize(d.Content), cfg.SemanticRanker)
		if score == 0 {
			continue
		}
		passage := d.Content
		if cfg.SemanticCaptions && cfg.SemanticRanker {
			passage = bestSentence(terms, d.Content)
		}
		hits = append(hits, Hit{Document: d, Score: score, Passage: passage})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score == hits[j].Score {
			return hits[i].Document.Name < hits[j].Document.Name
		}
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > cfg.TopK {
		hits = hits[:cfg.TopK]
	}

	o.logger.Debug("SEARCH", "Executed", map[string]interface{}{"query": query, "hits": len(hits)})
	return hits
}

func scoreDocument(queryTerms, docTerms []string, coverage bool) float64 {
	freq := make(map[string]int, len(docTerms))
	for _, t := range docTerms {
		freq[t]++
	}
	var total, matched float64
	for _, q := range queryTerms {
		if n := freq[q]; n > 0 {
			total += float64(n)
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	if coverage {
		return matched/float64(len(queryTerms)) + total/100
	}
	return total
}

func bestSentence(terms []string, content string) string {
	best, bestScore := content, -1.0
	for _, s := range sentences(content) {
		if score := scoreDocument(terms, tokenize(s), true); score > bestScore {
			best, bestScore = s, score
		}
	}
	return best
}
