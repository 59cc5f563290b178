package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// List styles
var (
	listDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listPathStyle = lipgloss.NewStyle().Foreground(colorWhite)
)

// browseCommand creates the browse command for exploring a layout.
func (c *CLI) browseCommand() *cobra.Command {
	flags := newOptionFlags()

	cmd := &cobra.Command{
		Use:   "browse [tree.json|tree.toml|layout.json]",
		Short: "Explore a layout interactively",
		Long: `Explore a layout interactively.

Lists the children of a node with their weight, share of the parent and
rectangle. Enter or → drills into a node, ← goes back up. Press enter on a
leaf (or s on any row) to print its details and exit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.resolve(cmd, c.cfg())
			return c.runBrowse(cmd.Context(), args[0], opts, flags.noCache)
		},
	}

	flags.addInput(cmd)
	flags.addLayout(cmd)
	flags.addCache(cmd)

	return cmd
}

func (c *CLI) runBrowse(ctx context.Context, path string, opts pipeline.Options, noCache bool) error {
	opts.Logger = c.Logger
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	in, err := loadInput(path, opts.Keys, os.Stdin)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	laid := in.tree
	if !in.laidOut {
		runner, err := c.newRunner(ctx, noCache)
		if err != nil {
			return fmt.Errorf("initialize runner: %w", err)
		}
		defer runner.Close()

		if laid, _, err = c.computeLayout(ctx, runner, in.tree, opts); err != nil {
			return err
		}
	}

	p := tea.NewProgram(NewBrowseModel(laid), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	fm, ok := finalModel.(BrowseModel)
	if !ok || fm.Selected == nil {
		printDetail("No selection made")
		return nil
	}

	n := fm.Selected
	printSuccess("%s", fm.PathLabel(n.ID))
	printKeyValue("Weight", formatWeight(n.Weight))
	printKeyValue("Share", formatShare(n.Weight, laid.Root().Weight))
	printKeyValue("Depth", fmt.Sprint(n.Depth))
	printKeyValue("Children", fmt.Sprint(len(n.Children)))
	if n.Excluded {
		printKeyValue("Rect", "excluded")
	} else {
		printKeyValue("Rect", n.Rect.String())
	}
	return nil
}

// =============================================================================
// BrowseModel - Interactive layout explorer
// =============================================================================

// BrowseModel is the bubbletea model for drilling into a laid out tree.
type BrowseModel struct {
	Tree     *treemap.Tree
	Current  treemap.NodeID
	Cursor   int
	Offset   int
	Height   int
	Selected *treemap.Node
}

// NewBrowseModel creates a browser positioned at the root.
func NewBrowseModel(t *treemap.Tree) BrowseModel {
	return BrowseModel{Tree: t, Current: treemap.Root, Height: 15}
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		kids := m.Tree.Children(m.Current)
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(kids)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "right", "l":
			if len(kids) > 0 && m.canDescend(kids[m.Cursor]) {
				m = m.descend(kids[m.Cursor])
			}
		case "enter":
			if len(kids) == 0 {
				return m, nil
			}
			if id := kids[m.Cursor]; m.canDescend(id) {
				m = m.descend(id)
				return m, nil
			}
			m.Selected = m.Tree.Node(kids[m.Cursor])
			return m, tea.Quit
		case "s":
			if len(kids) > 0 {
				m.Selected = m.Tree.Node(kids[m.Cursor])
				return m, tea.Quit
			}
		case "left", "h", "backspace":
			if !m.Tree.IsRoot(m.Current) {
				m = m.ascend()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) canDescend(id treemap.NodeID) bool {
	n := m.Tree.Node(id)
	return !n.Excluded && len(n.Children) > 0
}

func (m BrowseModel) descend(id treemap.NodeID) BrowseModel {
	m.Current = id
	m.Cursor, m.Offset = 0, 0
	return m
}

// ascend moves to the parent and puts the cursor on the node just left.
func (m BrowseModel) ascend() BrowseModel {
	prev := m.Current
	m.Current = m.Tree.Node(prev).Parent
	m.Cursor, m.Offset = 0, 0
	for i, id := range m.Tree.Children(m.Current) {
		if id == prev {
			m.Cursor = i
			break
		}
	}
	if m.Cursor >= m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

// PathLabel joins the labels from the root down to id.
func (m BrowseModel) PathLabel(id treemap.NodeID) string {
	path := m.Tree.Path(id)
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = displayLabel(m.Tree.Node(p))
	}
	return strings.Join(parts, " / ")
}

func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Browse Layout"))
	b.WriteString(" ")
	b.WriteString(listPathStyle.Render(m.PathLabel(m.Current)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎/→ open  ← back  s select  q quit"))
	b.WriteString("\n\n")

	kids := m.Tree.Children(m.Current)
	if len(kids) == 0 {
		b.WriteString(listDimStyle.Render("  (no children)"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(kids))
	parentWeight := m.Tree.Node(m.Current).Weight

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.Tree.Node(kids[i])
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		items := "-"
		if len(n.Children) > 0 {
			items = fmt.Sprint(len(n.Children))
		}
		rows = append(rows, []string{cursor, displayLabel(n), formatWeight(n.Weight), formatShare(n.Weight, parentWeight), formatRect(n), items})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Weight", "Share", "Rect", "Items").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}

			idx := m.Offset + row
			if idx >= len(kids) {
				return lipgloss.NewStyle()
			}
			n := m.Tree.Node(kids[idx])
			isCurrent := idx == m.Cursor

			base := lipgloss.NewStyle()
			switch {
			case n.Excluded:
				base = base.Foreground(colorDim)
			case col >= 2:
				base = base.Foreground(colorGray)
			case len(n.Children) > 0:
				base = base.Foreground(colorCyan)
			default:
				base = base.Foreground(colorWhite)
			}
			if isCurrent {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(kids))))

	return b.String()
}
