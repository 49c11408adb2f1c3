package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/etnz/dge"
	"github.com/etnz/dge/date"
	"go.uber.org/zap"
)

func newTestRecord(t *testing.T, name string, category dge.Category, price int) *dge.Record {
	t.Helper()
	r, err := dge.NewRecord(dge.DefaultCategories(), dge.Intake{
		ItemName:      name,
		Quantity:      1,
		Port:          "Mumbai",
		Category:      category,
		OriginalPrice: dge.USDollars(price),
	}, testNow)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestReportTasks(t *testing.T) {
	laptops := newTestRecord(t, "Laptops", "Electronics", 1000)
	if err := laptops.RequestSCF(dge.USDollars(300), dge.P(12), 30); err != nil {
		t.Fatal(err)
	}
	records := []*dge.Record{laptops, newTestRecord(t, "Novels", "Books", 40)}

	tasks := reportTasks(records, dge.DefaultCategories(), dge.PortOptions, date.New(2025, 3, 14))
	counts := map[string]int{}
	for _, task := range tasks {
		counts[task.Report] = task.Count
		if md := task.render(); !strings.HasPrefix(md, "# ") {
			t.Errorf("%s report does not start with a title:\n%s", task.Report, md)
		}
	}
	want := map[string]int{"records": 2, "opportunities": 1, "metrics": 2, "categories": 18}
	for report, count := range want {
		if counts[report] != count {
			t.Errorf("%s report counts %d items, want %d", report, counts[report], count)
		}
	}
}

func TestPublish(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	c := &publishCmd{outputDir: dir, html: true}
	tpl := template.Must(template.New("fm").Parse("---\ntitle: {{.Title}}\ndate: {{.On}}\n---\n"))

	records := []*dge.Record{newTestRecord(t, "Laptops", "Electronics", 1000)}
	tasks := reportTasks(records, dge.DefaultCategories(), dge.PortOptions, date.New(2025, 3, 14))
	if err := c.publish(tasks, tpl, zap.NewNop()); err != nil {
		t.Fatalf("publish() failed: %v", err)
	}

	for _, report := range []string{"records", "opportunities", "metrics", "categories"} {
		md, err := os.ReadFile(filepath.Join(dir, report+".md"))
		if err != nil {
			t.Errorf("missing %s.md: %v", report, err)
			continue
		}
		if !strings.HasPrefix(string(md), "---\ntitle: ") || !strings.Contains(string(md), "date: 2025-03-14\n") {
			t.Errorf("%s.md has no front matter:\n%s", report, md)
		}
		page, err := os.ReadFile(filepath.Join(dir, report+".html"))
		if err != nil {
			t.Errorf("missing %s.html: %v", report, err)
			continue
		}
		if !strings.Contains(string(page), "<h1>") || strings.Contains(string(page), "title:") {
			t.Errorf("%s.html is not the rendered report:\n%s", report, page)
		}
	}
}
