package panel

import (
	"fmt"

	"ragchat-client/internal/entity"
	"ragchat-client/internal/pkg/apperror"
	"ragchat-client/internal/pkg/logger"
)

// Machine drives the inspection panel between Closed and Open(tab, index).
// It mutates the selection it is handed and never holds state of its own.
type Machine struct {
	logger logger.ILogger
}

func NewMachine(l logger.ILogger) *Machine {
	return &Machine{logger: l}
}

// Toggle opens tab for the answer at index, or closes it when exactly that
// pair is already open. The citation tab reopens the last chosen citation;
// until one is chosen it goes through ShowCitation.
func (m *Machine) Toggle(p *entity.PanelSelection, tab entity.PanelTab, index, historyLen int) error {
	const op = apperror.Op("panel.Toggle")
	switch tab {
	case entity.PanelTabThoughtProcess, entity.PanelTabSupportingContent:
	case entity.PanelTabCitation:
		if p.ActiveCitation == nil {
			return apperror.Invalid(op, "citation tab requires a citation")
		}
	default:
		return apperror.Invalid(op, fmt.Sprintf("unknown tab %d", tab))
	}
	if err := checkIndex(op, index, historyLen); err != nil {
		return err
	}

	if p.ActiveTab == tab && p.SelectedAnswerIndex == index {
		m.close(p, index)
		return nil
	}
	p.ActiveTab = tab
	p.SelectedAnswerIndex = index
	m.logger.Debug("PANEL", "Opened", map[string]interface{}{"tab": tab.String(), "index": index})
	return nil
}

// ShowCitation follows the toggle rule keyed on (citation, index).
func (m *Machine) ShowCitation(p *entity.PanelSelection, citation string, index, historyLen int) error {
	const op = apperror.Op("panel.ShowCitation")
	if citation == "" {
		return apperror.Invalid(op, "citation is empty")
	}
	if err := checkIndex(op, index, historyLen); err != nil {
		return err
	}

	if p.ActiveTab == entity.PanelTabCitation && p.SelectedAnswerIndex == index &&
		p.ActiveCitation != nil && *p.ActiveCitation == citation {
		m.close(p, index)
		return nil
	}
	c := citation
	p.ActiveTab = entity.PanelTabCitation
	p.SelectedAnswerIndex = index
	p.ActiveCitation = &c
	m.logger.Debug("PANEL", "Opened citation", map[string]interface{}{"citation": citation, "index": index})
	return nil
}

// Reset returns the panel to its initial Closed state.
func (m *Machine) Reset(p *entity.PanelSelection) {
	*p = entity.ClosedPanel()
}

// Close keeps the selected answer and the last citation and closes any open
// tab.
func (m *Machine) Close(p *entity.PanelSelection) {
	if p.IsOpen() {
		m.close(p, p.SelectedAnswerIndex)
	}
}

// Dismiss closes the panel and forgets the citation, as a new question does.
func (m *Machine) Dismiss(p *entity.PanelSelection) {
	m.Close(p)
	p.ActiveCitation = nil
}

func (m *Machine) close(p *entity.PanelSelection, index int) {
	p.ActiveTab = entity.PanelTabNone
	p.SelectedAnswerIndex = index
	m.logger.Debug("PANEL", "Closed", map[string]interface{}{"index": index})
}

func checkIndex(op apperror.Op, index, historyLen int) error {
	if index < 0 || index >= historyLen {
		return apperror.Invalid(op, fmt.Sprintf("answer index %d out of range [0,%d)", index, historyLen))
	}
	return nil
}
