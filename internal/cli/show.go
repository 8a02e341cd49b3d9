package cli

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skillcat/pkg/catalog"
	errs "github.com/matzehuels/skillcat/pkg/errors"
)

const readmeWidth = 100

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	var raw, open bool

	cmd := &cobra.Command{
		Use:               "show <slug>",
		Short:             "Show one skill with its rendered document",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeSlugs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			d, err := cat.Detail(cmd.Context(), args[0])
			if err != nil {
				if errs.Is(err, errs.ErrCodeNotFound) {
					printNextStep("Look it up", appName+" search "+args[0])
				}
				return err
			}

			printDetailView(cmd.OutOrStdout(), d, raw)
			if open {
				if err := openBrowser(d.RepoURL); err != nil {
					c.Logger.Warn("could not open browser", "url", d.RepoURL, "err", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print the document without rendering markdown")
	cmd.Flags().BoolVar(&open, "open", false, "open the repository in a browser")

	return cmd
}

// printDetailView writes the header fields and the document of d.
func printDetailView(w io.Writer, d *catalog.Detail, raw bool) {
	fmt.Fprintln(w, StyleTitle.Render(d.Name)+"  "+renderTier(d.Tier))
	fmt.Fprintln(w, StyleDim.Render(d.Description))
	fmt.Fprintln(w)

	field := func(k, v string) {
		if v == "" {
			return
		}
		fmt.Fprintf(w, "%s %s\n", styleHeader.Width(12).Render(k), StyleValue.Render(v))
	}
	field("Slug", d.Slug)
	field("Author", d.Author)
	field("Repository", StyleLink.Render(d.RepoURL))
	field("Stars", fmt.Sprint(d.Stars))
	field("Category", categoryList(d))
	field("Status", string(d.Status))
	if d.License != nil {
		field("License", *d.License)
	}
	if len(d.Tags) > 0 {
		field("Tags", strings.Join(d.Tags, ", "))
	}
	if d.HasMarketplaceJSON {
		field("Marketplace", "yes")
	}
	field("Install", d.InstallCommand)
	fmt.Fprintln(w)

	fmt.Fprintln(w, renderMarkdown(d.Readme, readmeWidth, raw))
}

func categoryList(d *catalog.Detail) string {
	parts := []string{string(d.Category)}
	for _, c := range d.Categories {
		if c != d.Category {
			parts = append(parts, string(c))
		}
	}
	return strings.Join(parts, ", ")
}

// renderMarkdown renders md for the terminal, returning it unchanged when
// raw is set or rendering fails.
func renderMarkdown(md string, width int, raw bool) string {
	if raw || strings.TrimSpace(md) == "" {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n ")
}

// openBrowser opens rawURL in the system browser.
func openBrowser(rawURL string) error {
	if !strings.HasPrefix(rawURL, "https://") {
		return errs.New(errs.ErrCodeInvalidInput, "refusing to open %q", rawURL)
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "linux":
		cmd = exec.Command("xdg-open", rawURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", rawURL)
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unsupported platform %s", runtime.GOOS)
	}
	return cmd.Start()
}
