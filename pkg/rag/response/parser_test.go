package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAnswer(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantCitations []string
		wantFollowups []string
		wantPlain     string
	}{
		{
			name:          "no markers",
			text:          "Citrix is a software company.",
			wantCitations: []string{},
			wantFollowups: []string{},
			wantPlain:     "Citrix is a software company.",
		},
		{
			name:          "citations are numbered and deduplicated",
			text:          "Citrix builds VDI [citrix.pdf]. It also sells ADC [adc.pdf] and VDI [citrix.pdf].",
			wantCitations: []string{"citrix.pdf", "adc.pdf"},
			wantFollowups: []string{},
			wantPlain:     "Citrix builds VDI [1]. It also sells ADC [2] and VDI [1].",
		},
		{
			name:          "followups are extracted",
			text:          "Citrix is a vendor [a.txt]. <<What does it sell?>> <<Who owns it?>>",
			wantCitations: []string{"a.txt"},
			wantFollowups: []string{"What does it sell?", "Who owns it?"},
			wantPlain:     "Citrix is a vendor [1].",
		},
		{
			name:          "unterminated followup is dropped",
			text:          "Answer text. <<What abou",
			wantCitations: []string{},
			wantFollowups: []string{},
			wantPlain:     "Answer text.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnswer(tt.text)
			assert.Equal(t, tt.wantCitations, got.Citations)
			assert.Equal(t, tt.wantFollowups, got.FollowupQuestions)
			assert.Equal(t, tt.wantPlain, got.Plain())
		})
	}
}
