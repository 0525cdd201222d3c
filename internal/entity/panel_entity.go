package entity

type PanelTab int

const (
	PanelTabNone PanelTab = iota
	PanelTabCitation
	PanelTabThoughtProcess
	PanelTabSupportingContent
)

func (t PanelTab) String() string {
	switch t {
	case PanelTabCitation:
		return "citation"
	case PanelTabThoughtProcess:
		return "thought_process"
	case PanelTabSupportingContent:
		return "supporting_content"
	default:
		return "none"
	}
}

// ParsePanelTab accepts the names produced by String.
func ParsePanelTab(s string) (PanelTab, bool) {
	switch s {
	case "citation":
		return PanelTabCitation, true
	case "thought_process", "thoughts":
		return PanelTabThoughtProcess, true
	case "supporting_content", "support":
		return PanelTabSupportingContent, true
	case "none", "":
		return PanelTabNone, true
	}
	return PanelTabNone, false
}

// PanelSelection records which answer is selected and which inspection tab
// is open for it. SelectedAnswerIndex is -1 when nothing was ever selected.
type PanelSelection struct {
	SelectedAnswerIndex int
	ActiveTab           PanelTab
	ActiveCitation      *string
}

func ClosedPanel() PanelSelection {
	return PanelSelection{SelectedAnswerIndex: -1, ActiveTab: PanelTabNone}
}

func (p PanelSelection) IsOpen() bool {
	return p.ActiveTab != PanelTabNone
}
