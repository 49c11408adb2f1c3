package cmd

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/etnz/dge"
	"github.com/etnz/dge/date"
	"github.com/etnz/dge/renderer"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// reportTask is one report to publish. It is also the data of the front
// matter template.
type reportTask struct {
	Report string
	Title  string
	On     date.Date
	Count  int
	render func() string
}

type publishCmd struct {
	outputDir      string
	frontMatterTpl string
	html           bool
}

func (*publishCmd) Name() string { return "publish" }

func (*publishCmd) Synopsis() string { return "generates the exchange reports" }

func (*publishCmd) Usage() string {
	return `publish [-o <dir>] [-frontmatter <file>] [-html]

  Generates the records, opportunities, metrics and categories reports and
  saves them as markdown files in the output directory, and as HTML pages
  with -html.
`
}

func (c *publishCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputDir, "o", "reports", "Root directory for the generated reports")
	f.StringVar(&c.frontMatterTpl, "frontmatter", "", "Path to a Go template file for the report front matter")
	f.BoolVar(&c.html, "html", false, "Also generate HTML pages")
}

// reportTasks lists the reports of the records.
func reportTasks(records []*dge.Record, categories *dge.CategoryTable, ports []string, on date.Date) []reportTask {
	opportunities := dge.Opportunities(records)
	return []reportTask{
		{Report: "records", Title: "Records", On: on, Count: len(records),
			render: func() string { return renderer.RecordsMarkdown(records) }},
		{Report: "opportunities", Title: "SCF Opportunities", On: on, Count: len(opportunities),
			render: func() string { return renderer.OpportunitiesMarkdown(records) }},
		{Report: "metrics", Title: "Metrics", On: on, Count: len(records),
			render: func() string { return renderer.MetricsMarkdown(dge.NewMetrics(records)) }},
		{Report: "categories", Title: "Categories", On: on, Count: len(categories.Categories()),
			render: func() string { return renderer.CategoriesMarkdown(categories, ports) }},
	}
}

// publish writes the reports into dir.
func (c *publishCmd) publish(tasks []reportTask, frontMatterTpl *template.Template, log *zap.Logger) error {
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, task := range tasks {
		md := task.render()

		if c.html {
			page, err := renderer.HTML(md)
			if err != nil {
				return fmt.Errorf("failed to render %s report: %w", task.Report, err)
			}
			if err := os.WriteFile(filepath.Join(c.outputDir, task.Report+".html"), []byte(page), 0644); err != nil {
				return fmt.Errorf("failed to write file %s.html: %w", task.Report, err)
			}
		}

		// Generate frontmatter if template is provided
		if frontMatterTpl != nil {
			fm, err := renderFrontMatter(frontMatterTpl, task)
			if err != nil {
				return fmt.Errorf("failed to render front matter for %s report: %w", task.Report, err)
			}
			md = fm + "\n" + md // Prepend front matter to markdown
		}
		if err := os.WriteFile(filepath.Join(c.outputDir, task.Report+".md"), []byte(md), 0644); err != nil {
			return fmt.Errorf("failed to write file %s.md: %w", task.Report, err)
		}
		log.Info("report generated", zap.String("report", task.Report), zap.Int("count", task.Count))
	}
	return nil
}

func (c *publishCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var frontMatterTpl *template.Template
	if c.frontMatterTpl != "" {
		var err error
		frontMatterTpl, err = template.ParseFiles(c.frontMatterTpl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to parse front matter template: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}
	store, err := a.openStore(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading records: %v\n", err)
		return subcommands.ExitFailure
	}

	tasks := reportTasks(store.Records(), a.categories, a.cfg.PortOptions(), date.Today())
	if err := c.publish(tasks, frontMatterTpl, a.log); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func renderFrontMatter(tpl *template.Template, task reportTask) (string, error) {
	var fmBuffer bytes.Buffer
	if err := tpl.Execute(&fmBuffer, task); err != nil {
		return "", err
	}
	return fmBuffer.String(), nil
}
