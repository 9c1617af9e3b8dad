package cli

import (
	"burrow/pkg/image"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// pickItem adapts an image table entry to the bubbles list component.
type pickItem struct {
	entry image.Entry
}

func (i pickItem) Title() string { return i.entry.Name }

func (i pickItem) Description() string {
	src := i.entry.URL
	if i.entry.Discover != nil {
		src = "discovered from " + i.entry.Discover.Index
	}
	return fmt.Sprintf("%s, %s, %s", i.entry.Origin, i.entry.Encoding, src)
}

func (i pickItem) FilterValue() string { return i.entry.Name }

// Mutable
type pickModel struct {
	list   list.Model
	choice string
}

func newPickModel(entries []image.Entry) pickModel {
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, pickItem{entry: e})
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select an image"
	l.SetShowStatusBar(false)
	return pickModel{list: l}
}

func (m pickModel) Init() tea.Cmd { return nil }

func (m pickModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		// While the filter input is active every key belongs to it.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(pickItem); ok {
				m.choice = item.entry.Name
			}
			return m, tea.Quit
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickModel) View() string { return m.list.View() }

// pickImage shows the interactive list on standard error and returns the
// chosen name. Standard out stays clean so the choice can be captured by
// a pipe. An empty name means the user backed out.
func pickImage(entries []image.Entry) (string, error) {
	p := tea.NewProgram(newPickModel(entries), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	return final.(pickModel).choice, nil
}
