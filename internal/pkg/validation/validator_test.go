package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
)

func TestGenerationOptionsRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *entity.GenerationOptions)
		wantErr string
	}{
		{"defaults are valid", func(o *entity.GenerationOptions) {}, ""},
		{"top k lower bound", func(o *entity.GenerationOptions) { o.TopK = 0 }, "TopK must be at least 1"},
		{"top k upper bound", func(o *entity.GenerationOptions) { o.TopK = 51 }, "TopK must be at most 50"},
		{"captions with ranker", func(o *entity.GenerationOptions) { o.UseSemanticCaptions = true }, ""},
		{"captions without ranker", func(o *entity.GenerationOptions) {
			o.UseSemanticRanker = false
			o.UseSemanticCaptions = true
		}, "semantic captions require the semantic ranker"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := entity.DefaultGenerationOptions()
			tt.mutate(&opts)

			err := Struct("session.SetOptions", opts)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindInvalid))
			assert.Contains(t, apperror.Message(err), tt.wantErr)
		})
	}
}
