package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/query"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listFilterStyle = lipgloss.NewStyle().Foreground(colorCyan)
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalogue interactively",
		Long: `Browse opens an interactive list of every skill in the catalogue.
Press / to filter, enter to show the selected skill, q to quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			if cat.Len() == 0 {
				printInfo("The catalogue is empty")
				printNextStep("Build it first", appName+" collect")
				return nil
			}

			ctx := cmd.Context()
			final, err := tea.NewProgram(NewSkillListModel(cat.Entries()), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			m, ok := final.(SkillListModel)
			if !ok || m.Selected == nil {
				return nil
			}
			d, err := cat.Detail(ctx, m.Selected.Slug)
			if err != nil {
				return err
			}
			printDetailView(cmd.OutOrStdout(), d, false)
			return nil
		},
	}
}

// =============================================================================
// SkillListModel - Interactive skill selection
// =============================================================================

// SkillListModel is the bubbletea model for browsing catalogue entries.
// Typing / enters filter mode; the filter is applied with fuzzy matching on
// every keystroke.
type SkillListModel struct {
	All       []catalog.Entry
	Visible   []catalog.Entry
	Cursor    int
	Offset    int
	Height    int
	Filter    string
	Filtering bool
	Selected  *catalog.Entry

	now time.Time
}

// NewSkillListModel creates a list over entries in their given order.
func NewSkillListModel(entries []catalog.Entry) SkillListModel {
	return SkillListModel{
		All:     entries,
		Visible: entries,
		Height:  15,
		now:     time.Now(),
	}
}

func (m SkillListModel) Init() tea.Cmd {
	return nil
}

func (m SkillListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "/":
			m.Filtering = true
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "enter":
			if len(m.Visible) == 0 {
				return m, nil
			}
			e := m.Visible[m.Cursor]
			m.Selected = &e
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SkillListModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.Filtering = false
		m.setFilter("")
	case tea.KeyEnter:
		m.Filtering = false
	case tea.KeyBackspace:
		if r := []rune(m.Filter); len(r) > 0 {
			m.setFilter(string(r[:len(r)-1]))
		}
	case tea.KeyUp:
		m.move(-1)
	case tea.KeyDown:
		m.move(1)
	case tea.KeyRunes, tea.KeySpace:
		m.setFilter(m.Filter + string(msg.Runes))
	}
	return m, nil
}

func (m *SkillListModel) setFilter(f string) {
	m.Filter = f
	if strings.TrimSpace(f) == "" {
		m.Visible = m.All
	} else {
		m.Visible = query.FuzzySearch(m.All, f)
	}
	m.Cursor, m.Offset = 0, 0
}

func (m *SkillListModel) move(delta int) {
	next := m.Cursor + delta
	if next < 0 || next >= len(m.Visible) {
		return
	}
	m.Cursor = next
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m SkillListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Skills"))
	b.WriteString("\n")
	if m.Filtering {
		b.WriteString(listFilterStyle.Render("/" + m.Filter + "▏"))
		b.WriteString(listDimStyle.Render("   enter keep  esc clear"))
	} else {
		b.WriteString(listDimStyle.Render("↑/↓ navigate  / filter  ⏎ show  q quit"))
		if m.Filter != "" {
			b.WriteString("   " + listFilterStyle.Render("filter: "+m.Filter))
		}
	}
	b.WriteString("\n\n")

	if len(m.Visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matches"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Visible[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			truncate(e.Name, 28),
			fmt.Sprint(e.Stars),
			fmt.Sprintf("T%d", e.Tier),
			string(e.Category),
			formatRelativeTime(e.UpdatedAt, m.now),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Skill", "Stars", "Tier", "Category", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			base := lipgloss.NewStyle()
			if col == 5 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				return base.Foreground(colorGreen).Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if e := m.Visible[m.Cursor]; e.Description != "" {
		b.WriteString(listDimStyle.Render("  " + truncate(e.Description, 90)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))

	return b.String()
}
