package dashboard

import (
	"github.com/launchdash/launchdash/server/internal/binding"
	"github.com/launchdash/launchdash/server/internal/config"
)

// Layout is the static description of the page served to clients.
type Layout struct {
	Title     string               `json:"title"`
	Dropdown  *binding.Dropdown    `json:"dropdown"`
	Slider    *binding.RangeSlider `json:"slider"`
	Charts    []Panel              `json:"charts"`
	Questions []QA                 `json:"questions"`
	Footnote  string               `json:"footnote,omitempty"`
}

// Panel is one chart area on the page.
type Panel struct {
	Output   string   `json:"output"`
	Inputs   []string `json:"inputs"`
	Footnote string   `json:"footnote"`
}

// QA is one static question with its answer.
type QA struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func newLayout(cfg config.DashboardConfig, dd *binding.Dropdown, rs *binding.RangeSlider, bindings []binding.Binding) Layout {
	qs := make([]QA, 0, len(cfg.Questions))
	for _, q := range cfg.Questions {
		qs = append(qs, QA{Question: q.Question, Answer: q.Answer})
	}
	footnotes := map[string]string{
		PieChart:     cfg.PieFootnote,
		ScatterChart: cfg.ScatterFootnote,
	}
	panels := make([]Panel, 0, len(bindings))
	for _, b := range bindings {
		panels = append(panels, Panel{
			Output:   b.Output,
			Inputs:   append([]string(nil), b.Inputs...),
			Footnote: footnotes[b.Output],
		})
	}
	return Layout{
		Title:     cfg.Title,
		Dropdown:  dd,
		Slider:    rs,
		Charts:    panels,
		Questions: qs,
		Footnote:  cfg.Footnote,
	}
}
