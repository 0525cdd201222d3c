package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat-client/internal/config"
	"ragchat-client/pkg/auth"
)

func TestGenerationOptionsFromConfig(t *testing.T) {
	opts := GenerationOptions(config.GenerationConfig{
		TopK:             99,
		SemanticRanker:   false,
		SemanticCaptions: true,
		ExcludeCategory:  "hr",
	})
	assert.Equal(t, 3, opts.TopK, "out of range falls back")
	assert.False(t, opts.UseSemanticCaptions, "captions need the ranker")
	assert.Equal(t, "hr", opts.ExcludeCategory)

	opts = GenerationOptions(config.GenerationConfig{TopK: 8, SemanticRanker: true, SemanticCaptions: true})
	assert.Equal(t, 8, opts.TopK)
	assert.True(t, opts.UseSemanticCaptions)
}

func TestTokenSourceSelection(t *testing.T) {
	ts, err := tokenSource(config.BackendConfig{Token: "static", TokenSecret: "ignored"})
	require.NoError(t, err)
	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "static", tok.AccessToken)

	ts, err = tokenSource(config.BackendConfig{TokenSecret: "s", UserID: "u"})
	require.NoError(t, err)
	tok, err = ts.Token()
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	ts, err = tokenSource(config.BackendConfig{})
	require.NoError(t, err)
	assert.IsType(t, auth.NoToken{}, ts)
}
