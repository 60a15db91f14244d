package sectioning

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"parallax/internal/fanout"
	"parallax/internal/fanout/fanouttest"
	"parallax/internal/logging"
	"parallax/internal/ollama"
)

var fixedNow = time.Date(2025, time.March, 7, 9, 30, 0, 0, time.UTC)

// promptPrefixes maps the opening words of each section prompt to its answer.
func answers(deepDive ollama.Result) map[string]ollama.Result {
	return map[string]ollama.Result{
		"Generate 3-4 attention-grabbing headlines": ollama.Success("R1"),
		"Write a technical deep dive":               deepDive,
		"Write about recent industry news":          ollama.Success("R3"),
		"List 3-5 practical tools":                  ollama.Success("R4"),
		"Provide thoughtful analysis":               ollama.Success("R5"),
	}
}

func newTestGenerator(responder fanouttest.Responder) (*Generator, *fanouttest.Opener) {
	opener := fanouttest.NewOpener(responder)
	ex := fanout.NewExecutor(opener, logging.Discard())
	return NewGenerator(ex, WithClock(func() time.Time { return fixedNow }), WithLogger(logging.Discard())), opener
}

func TestSections_Catalog(t *testing.T) {
	secs, err := Sections()
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	var ids, headings []string
	for _, s := range secs {
		ids = append(ids, s.ID)
		headings = append(headings, s.Heading)
	}
	wantIDs := []string{"headlines", "technical_deep_dive", "industry_news", "tools_resources", "opinion_analysis"}
	if diff := cmp.Diff(wantIDs, ids); diff != "" {
		t.Errorf("section IDs mismatch (-want +got):\n%s", diff)
	}
	wantHeadings := []string{"Headlines", "Technical Deep Dive", "Industry News", "Tools & Resources", "Analysis & Outlook"}
	if diff := cmp.Diff(wantHeadings, headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
}

func TestTasks_SubstituteTopic(t *testing.T) {
	tasks, err := Tasks("Computer Vision")
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if len(tasks) != 5 {
		t.Fatalf("want 5 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if !strings.Contains(task.Prompt, "Computer Vision in AI") {
			t.Errorf("%s prompt does not mention topic:\n%s", task.Label, task.Prompt)
		}
		if strings.Contains(task.Prompt, "{{") {
			t.Errorf("%s prompt has unrendered template syntax", task.Label)
		}
	}
}

func TestTasks_TopicIsData(t *testing.T) {
	tasks, err := Tasks("{{.Topic}}")
	if err != nil {
		t.Fatalf("Tasks: %v", err)
	}
	if !strings.Contains(tasks[0].Prompt, "about {{.Topic}} in AI") {
		t.Errorf("topic should be inserted literally:\n%s", tasks[0].Prompt)
	}
}

func TestGenerate_SectionsInFixedOrder(t *testing.T) {
	g, opener := newTestGenerator(fanouttest.ByPrefix(answers(ollama.Success("R2"))))

	doc, err := g.Generate(context.Background(), "Robotics")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	md := doc.Markdown

	if !strings.HasPrefix(md, "# AI Newsletter: Robotics\n*Generated on March 07, 2025*\n") {
		t.Errorf("unexpected header:\n%s", md)
	}
	order := []string{
		"## 📰 Headlines\n\nR1\n",
		"## 🔬 Technical Deep Dive\n\nR2\n",
		"## 🏢 Industry News\n\nR3\n",
		"## 🛠️ Tools & Resources\n\nR4\n",
		"## 💭 Analysis & Outlook\n\nR5\n",
		"*This newsletter was generated using parallel AI processing",
	}
	pos := 0
	for _, want := range order {
		i := strings.Index(md[pos:], want)
		if i < 0 {
			t.Fatalf("missing or out of order %q in:\n%s", want, md)
		}
		pos += i + len(want)
	}
	if opener.Opened() != 1 || len(opener.Prompts()) != 5 {
		t.Errorf("want one session with 5 prompts, got %d sessions, %d prompts", opener.Opened(), len(opener.Prompts()))
	}
}

func TestGenerate_FailedSectionInsertedVerbatim(t *testing.T) {
	g, _ := newTestGenerator(fanouttest.ByPrefix(answers(ollama.Failure(&ollama.StatusFault{Code: 500}))))

	doc, err := g.Generate(context.Background(), "Robotics")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(doc.Markdown, "## 🔬 Technical Deep Dive\n\nError: Status 500\n") {
		t.Errorf("error text missing from deep dive slot:\n%s", doc.Markdown)
	}
	for _, r := range []string{"R1", "R3", "R4", "R5"} {
		if !strings.Contains(doc.Markdown, "\n"+r+"\n") {
			t.Errorf("section %s missing:\n%s", r, doc.Markdown)
		}
	}
	if doc.Sections[1].Result.OK() || doc.Sections[1].Body != "Error: Status 500" {
		t.Errorf("deep dive output: %+v", doc.Sections[1])
	}
}

func TestGenerate_EmptyTopic(t *testing.T) {
	g, opener := newTestGenerator(fanouttest.Constant("x"))
	if _, err := g.Generate(context.Background(), "   "); !errors.Is(err, ErrEmptyTopic) {
		t.Errorf("want ErrEmptyTopic, got %v", err)
	}
	if opener.Opened() != 0 {
		t.Error("no session should be opened for an empty topic")
	}
}

func TestAssemble_MissingSectionsUsePlaceholders(t *testing.T) {
	batch := fanout.Batch{Results: []fanout.TaskResult{
		{Label: "headlines", Result: ollama.Success("H")},
	}}
	doc, err := Assemble("Robotics", batch, fixedNow)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	for _, want := range []string{
		"No technical content generated.",
		"No industry news generated.",
		"No tools/resources generated.",
		"No analysis generated.",
	} {
		if !strings.Contains(doc.Markdown, want) {
			t.Errorf("missing placeholder %q", want)
		}
	}
	if doc.Sections[0].Missing || !doc.Sections[1].Missing {
		t.Errorf("Missing flags wrong: %+v", doc.Sections)
	}
}

func TestRender_Deterministic(t *testing.T) {
	bodies := map[string]string{"headlines": "a", "opinion_analysis": "b"}
	first, err := Render("NLP", bodies, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := Render("NLP", bodies, fixedNow)
	if first != second {
		t.Error("Render should be deterministic")
	}
	if strings.Contains(first, "No headlines generated.") || !strings.Contains(first, "\na\n") {
		t.Errorf("headlines body missing:\n%s", first)
	}
	if strings.Count(first, "\n---\n") != 6 {
		t.Errorf("want 6 separators, got %d:\n%s", strings.Count(first, "\n---\n"), first)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":     "sections: []\n",
		"missing":   "sections:\n  - id: a\n",
		"duplicate": "sections:\n  - {id: a, heading: A, placeholder: p, prompt: x}\n  - {id: a, heading: B, placeholder: p, prompt: y}\n",
		"template":  "sections:\n  - {id: a, heading: A, placeholder: p, prompt: '{{.Topic'}\n",
		"yaml":      "sections: [\n",
	}
	for name, data := range cases {
		if _, err := parseCatalog([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
