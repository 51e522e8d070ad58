package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dd0wney/owlgraph/pkg/materialize"
	"github.com/dd0wney/owlgraph/pkg/storage"
)

func newBrowseCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the class hierarchy in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gs, err := a.openStore(true)
			if err != nil {
				return err
			}
			defer gs.Close()

			m, err := newBrowseModel(gs)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

var (
	browseTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color("#5A56E0")).
				Padding(0, 1)

	detailStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1).
			MarginBottom(1)

	fieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	browseErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF0000")).
				Bold(true)
)

type browseKeyMap struct {
	Open key.Binding
	Back key.Binding
	Quit key.Binding
}

var browseKeys = browseKeyMap{
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// browseGraph is the read side of the store the browser walks.
type browseGraph interface {
	GetNode(nodeID uint64) (*storage.Node, error)
	FindNodesByLabel(label string) ([]*storage.Node, error)
	GetOutgoingEdges(nodeID uint64) ([]*storage.Edge, error)
	GetIncomingEdges(nodeID uint64) ([]*storage.Edge, error)
}

// classItem is one row: a class, and for related rows the edge that links it to the open class.
type classItem struct {
	node     *storage.Node
	relation string
}

func (i classItem) Title() string {
	if name := i.node.StringProperty(materialize.PropName); name != "" {
		return name
	}
	return i.node.StringProperty(materialize.PropKey)
}

func (i classItem) Description() string {
	desc := i.node.StringProperty(materialize.PropKey)
	if i.relation != "" {
		desc = i.relation + "  " + desc
	}
	return desc + "  [" + strings.Join(i.node.Labels, ",") + "]"
}

func (i classItem) FilterValue() string {
	return i.Title() + " " + i.node.StringProperty(materialize.PropKey)
}

type browseModel struct {
	graph   browseGraph
	list    list.Model
	keys    browseKeyMap
	current *storage.Node
	history []*storage.Node
	err     error
}

func newBrowseModel(graph browseGraph) (browseModel, error) {
	m := browseModel{
		graph: graph,
		list:  list.New(nil, list.NewDefaultDelegate(), 80, 24),
		keys:  browseKeys,
	}
	m.list.Styles.Title = browseTitleStyle
	m.list.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{m.keys.Open, m.keys.Back} }
	if err := m.showAll(); err != nil {
		return browseModel{}, err
	}
	return m, nil
}

// showAll lists the root and every class, ordered by title.
func (m *browseModel) showAll() error {
	var items []list.Item
	for _, label := range []string{materialize.LabelRoot, materialize.LabelClass} {
		nodes, err := m.graph.FindNodesByLabel(label)
		if err != nil {
			return err
		}
		for _, n := range nodes {
			items = append(items, classItem{node: n})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].(classItem).Title() < items[j].(classItem).Title()
	})

	m.current = nil
	m.list.Title = fmt.Sprintf("Classes (%d)", len(items))
	m.list.ResetFilter()
	m.list.SetItems(items)
	m.list.Select(0)
	return nil
}

// open makes node the current class and lists its superclasses followed by its subclasses.
func (m *browseModel) open(node *storage.Node) error {
	var items []list.Item

	outgoing, err := m.graph.GetOutgoingEdges(node.ID)
	if err != nil {
		return err
	}
	for _, e := range outgoing {
		parent, err := m.graph.GetNode(e.ToNodeID)
		if err != nil {
			return err
		}
		items = append(items, classItem{node: parent, relation: "↑ " + e.Type})
	}

	incoming, err := m.graph.GetIncomingEdges(node.ID)
	if err != nil {
		return err
	}
	for _, e := range incoming {
		child, err := m.graph.GetNode(e.FromNodeID)
		if err != nil {
			return err
		}
		items = append(items, classItem{node: child, relation: "↓ " + e.Type})
	}

	m.current = node
	m.list.Title = classItem{node: node}.Title()
	m.list.ResetFilter()
	m.list.SetItems(items)
	m.list.Select(0)
	return nil
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-m.detailHeight())
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Open):
			item, ok := m.list.SelectedItem().(classItem)
			if !ok {
				return m, nil
			}
			if m.current != nil {
				m.history = append(m.history, m.current)
			}
			m.err = m.open(item.node)
			return m, nil

		case key.Matches(msg, m.keys.Back):
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			if n := len(m.history); n > 0 {
				prev := m.history[n-1]
				m.history = m.history[:n-1]
				m.err = m.open(prev)
				return m, nil
			}
			if m.current != nil {
				m.err = m.showAll()
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) detailHeight() int {
	if m.current == nil {
		return 0
	}
	return lipgloss.Height(m.renderDetail())
}

func (m browseModel) renderDetail() string {
	n := m.current
	var b strings.Builder
	line := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s %s\n", fieldStyle.Render(name+":"), value)
		}
	}
	line("key", n.StringProperty(materialize.PropKey))
	line("iri", n.StringProperty(materialize.PropIRI))
	line("display name", n.StringProperty(materialize.PropDisplayName))
	line("definition", n.StringProperty(materialize.PropDefinition))
	if v, ok := n.GetProperty(materialize.PropSynonyms); ok {
		if synonyms, err := v.AsStringList(); err == nil {
			line("synonyms", strings.Join(synonyms, "; "))
		}
	}
	if v, ok := n.GetProperty(materialize.PropSubjectFlag); ok {
		line("subject", fmt.Sprint(v.Native()))
	}
	line("labels", strings.Join(n.Labels, ", "))
	return detailStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m browseModel) View() string {
	var s strings.Builder
	if m.current != nil {
		s.WriteString(m.renderDetail())
		s.WriteString("\n")
	}
	s.WriteString(m.list.View())
	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(browseErrorStyle.Render("✗ " + m.err.Error()))
	}
	return s.String()
}
