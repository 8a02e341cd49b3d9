package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skillcat/pkg/catalog"
	"github.com/matzehuels/skillcat/pkg/query"
)

type searchOpts struct {
	category string
	tier     string
	sort     string
	fuzzy    bool
	limit    int
}

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var opts searchOpts

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalogue",
		Long: `Search matches the query against skill names, descriptions, tags and
authors. Without a query every skill passing the filters is listed.`,
		Example: `  skillcat search pdf
  skillcat search --fuzzy gthlp
  skillcat search --category devops --tier 2 --sort updated`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := buildQuery(strings.Join(args, " "), opts)
			if err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			c.Logger.Debug("catalogue loaded", "skills", cat.Len(), "index", cfg.Output.IndexPath())

			results := cat.Find(q)
			if len(results) == 0 {
				printInfo("No skills match")
				return nil
			}
			renderSkillTable(cmd.OutOrStdout(), results, time.Now())
			printDetail("%s of %d", plural(len(results), "skill"), cat.Len())
			if q.Text != "" {
				prog.done("Search finished")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.category, "category", "", "only skills in this category")
	cmd.Flags().StringVar(&opts.tier, "tier", "", "only skills of this tier (1-5)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort by relevance, stars, updated or name")
	cmd.Flags().BoolVar(&opts.fuzzy, "fuzzy", false, "fuzzy match instead of substring match")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 25, "maximum results (0 for all)")

	return cmd
}

// buildQuery validates search flags into a catalogue query.
func buildQuery(text string, opts searchOpts) (query.Query, error) {
	cat, err := parseCategory(opts.category)
	if err != nil {
		return query.Query{}, err
	}
	tier, err := parseTier(opts.tier)
	if err != nil {
		return query.Query{}, err
	}
	key, err := query.ParseSortKey(opts.sort)
	if err != nil {
		return query.Query{}, err
	}
	limit := opts.limit
	if limit < 0 {
		limit = 0
	}
	return query.Query{
		Text:     strings.TrimSpace(text),
		Fuzzy:    opts.fuzzy,
		Category: cat,
		Tier:     tier,
		Sort:     key,
		Limit:    limit,
	}, nil
}

// renderSkillTable writes entries as a bordered table.
func renderSkillTable(w io.Writer, entries []catalog.Entry, now time.Time) {
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Slug,
			truncate(e.Name, 28),
			fmt.Sprint(e.Stars),
			fmt.Sprintf("T%d", e.Tier),
			string(e.Category),
			formatRelativeTime(e.UpdatedAt, now),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Slug", "Name", "Stars", "Tier", "Category", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			switch col {
			case 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case 2:
				return lipgloss.NewStyle().Align(lipgloss.Right)
			case 3:
				if row >= 0 && row < len(entries) {
					if s, ok := tierStyles[entries[row].Tier]; ok {
						return s
					}
				}
			case 5:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle()
		})

	fmt.Fprintln(w, t.Render())
}

// =============================================================================
// Helpers
// =============================================================================

func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	diff := now.Sub(t)

	switch {
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
