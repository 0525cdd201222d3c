package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/logger"
)

func newMachine() *Machine {
	return NewMachine(logger.NewNopLogger())
}

func TestToggleTwiceCloses(t *testing.T) {
	m := newMachine()
	p := entity.ClosedPanel()

	require.NoError(t, m.Toggle(&p, entity.PanelTabThoughtProcess, 1, 3))
	assert.Equal(t, entity.PanelTabThoughtProcess, p.ActiveTab)
	assert.Equal(t, 1, p.SelectedAnswerIndex)

	require.NoError(t, m.Toggle(&p, entity.PanelTabThoughtProcess, 1, 3))
	assert.False(t, p.IsOpen())
	assert.Equal(t, 1, p.SelectedAnswerIndex)
}

func TestToggleDifferentArgumentsAlwaysOpens(t *testing.T) {
	tabs := []entity.PanelTab{entity.PanelTabThoughtProcess, entity.PanelTabSupportingContent}

	for _, first := range tabs {
		for firstIdx := 0; firstIdx < 3; firstIdx++ {
			for _, second := range tabs {
				for secondIdx := 0; secondIdx < 3; secondIdx++ {
					if first == second && firstIdx == secondIdx {
						continue
					}
					m := newMachine()
					p := entity.ClosedPanel()
					require.NoError(t, m.Toggle(&p, first, firstIdx, 3))
					require.NoError(t, m.Toggle(&p, second, secondIdx, 3))

					assert.Equal(t, second, p.ActiveTab)
					assert.Equal(t, secondIdx, p.SelectedAnswerIndex)
				}
			}
		}
	}
}

func TestToggleReplacesOpenCitation(t *testing.T) {
	m := newMachine()
	p := entity.ClosedPanel()
	require.NoError(t, m.ShowCitation(&p, "a.pdf", 0, 1))

	require.NoError(t, m.Toggle(&p, entity.PanelTabSupportingContent, 0, 1))
	assert.Equal(t, entity.PanelTabSupportingContent, p.ActiveTab)
	require.NotNil(t, p.ActiveCitation)
	assert.Equal(t, "a.pdf", *p.ActiveCitation)
}

func TestToggleCitationTabReopensLastCitation(t *testing.T) {
	m := newMachine()
	p := entity.ClosedPanel()
	require.NoError(t, m.ShowCitation(&p, "a.txt", 0, 2))
	require.NoError(t, m.Toggle(&p, entity.PanelTabThoughtProcess, 0, 2))

	require.NoError(t, m.Toggle(&p, entity.PanelTabCitation, 0, 2))
	assert.Equal(t, entity.PanelTabCitation, p.ActiveTab)
	assert.Equal(t, 0, p.SelectedAnswerIndex)
	require.NotNil(t, p.ActiveCitation)
	assert.Equal(t, "a.txt", *p.ActiveCitation)

	// other answer moves the tab
	require.NoError(t, m.Toggle(&p, entity.PanelTabCitation, 1, 2))
	assert.Equal(t, 1, p.SelectedAnswerIndex)
	assert.True(t, p.IsOpen())

	require.NoError(t, m.Toggle(&p, entity.PanelTabCitation, 1, 2))
	assert.False(t, p.IsOpen())
	assert.Equal(t, "a.txt", *p.ActiveCitation)
}

func TestShowCitationTogglesOnCitationAndIndex(t *testing.T) {
	m := newMachine()
	p := entity.ClosedPanel()

	require.NoError(t, m.ShowCitation(&p, "a.pdf", 0, 2))
	require.NotNil(t, p.ActiveCitation)
	assert.Equal(t, "a.pdf", *p.ActiveCitation)

	// different citation on the same answer reassigns
	require.NoError(t, m.ShowCitation(&p, "b.pdf", 0, 2))
	assert.Equal(t, entity.PanelTabCitation, p.ActiveTab)
	assert.Equal(t, "b.pdf", *p.ActiveCitation)

	// same citation on another answer reassigns
	require.NoError(t, m.ShowCitation(&p, "b.pdf", 1, 2))
	assert.Equal(t, 1, p.SelectedAnswerIndex)
	assert.True(t, p.IsOpen())

	// same citation, same answer closes
	require.NoError(t, m.ShowCitation(&p, "b.pdf", 1, 2))
	assert.False(t, p.IsOpen())
	assert.Equal(t, "b.pdf", *p.ActiveCitation)
}

func TestCitationAfterOtherTabOpens(t *testing.T) {
	m := newMachine()
	p := entity.ClosedPanel()
	require.NoError(t, m.Toggle(&p, entity.PanelTabThoughtProcess, 0, 1))

	require.NoError(t, m.ShowCitation(&p, "a.pdf", 0, 1))
	assert.Equal(t, entity.PanelTabCitation, p.ActiveTab)
}

func TestRejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(m *Machine, p *entity.PanelSelection) error
	}{
		{"index past history", func(m *Machine, p *entity.PanelSelection) error {
			return m.Toggle(p, entity.PanelTabThoughtProcess, 2, 2)
		}},
		{"negative index", func(m *Machine, p *entity.PanelSelection) error {
			return m.Toggle(p, entity.PanelTabSupportingContent, -1, 2)
		}},
		{"empty history", func(m *Machine, p *entity.PanelSelection) error {
			return m.ShowCitation(p, "a.pdf", 0, 0)
		}},
		{"citation via toggle", func(m *Machine, p *entity.PanelSelection) error {
			return m.Toggle(p, entity.PanelTabCitation, 0, 2)
		}},
		{"none tab", func(m *Machine, p *entity.PanelSelection) error {
			return m.Toggle(p, entity.PanelTabNone, 0, 2)
		}},
		{"empty citation", func(m *Machine, p *entity.PanelSelection) error {
			return m.ShowCitation(p, "", 0, 2)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := entity.ClosedPanel()
			err := tt.run(newMachine(), &p)
			assert.True(t, apperror.Is(err, apperror.KindInvalid))
			assert.Equal(t, entity.ClosedPanel(), p)
		})
	}
}

func TestResetAndClose(t *testing.T) {
	m := newMachine()
	p := entity.ClosedPanel()
	require.NoError(t, m.ShowCitation(&p, "a.pdf", 0, 1))

	m.Close(&p)
	assert.False(t, p.IsOpen())
	assert.Equal(t, 0, p.SelectedAnswerIndex)
	assert.NotNil(t, p.ActiveCitation)

	require.NoError(t, m.ShowCitation(&p, "a.pdf", 0, 1))
	m.Dismiss(&p)
	assert.False(t, p.IsOpen())
	assert.Equal(t, 0, p.SelectedAnswerIndex)
	assert.Nil(t, p.ActiveCitation)

	m.Reset(&p)
	assert.Equal(t, entity.ClosedPanel(), p)
}
