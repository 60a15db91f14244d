package wiring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"parallax/internal/config"
	"parallax/internal/ollama"
	"parallax/internal/voting"
)

func configFor(url string) *config.Config {
	cfg := config.Default()
	cfg.Ollama.BaseURL = url
	return cfg
}

var _ = ginkgo.Describe("Newsletter", func() {
	var fake *fakeOllama

	ginkgo.AfterEach(func() {
		fake.Close()
	})

	ginkgo.It("runs every section concurrently and keeps the catalog order", func() {
		// Slowest first so completion order is the reverse of catalog order.
		fake = newFakeOllama(
			reply{marker: "attention-grabbing headlines", delay: 250 * time.Millisecond, text: "R1"},
			reply{marker: "technical deep dive", delay: 200 * time.Millisecond, text: "R2"},
			reply{marker: "industry news", delay: 150 * time.Millisecond, text: "R3"},
			reply{marker: "practical tools", delay: 100 * time.Millisecond, text: "R4"},
			reply{marker: "future outlook", delay: 50 * time.Millisecond, text: "R5"},
		)
		svc, err := New(configFor(fake.URL))
		gomega.Expect(err).To(gomega.Succeed())

		doc, err := svc.Newsletters.Generate(context.Background(), "Robotics")
		gomega.Expect(err).To(gomega.Succeed())

		gomega.Expect(fake.Peak()).To(gomega.Equal(5))
		gomega.Expect(doc.Batch.Elapsed).To(gomega.BeNumerically("<", 700*time.Millisecond))
		gomega.Expect(doc.Markdown).To(gomega.HavePrefix("# AI Newsletter: Robotics\n"))

		last := -1
		for _, body := range []string{"R1", "R2", "R3", "R4", "R5"} {
			i := strings.Index(doc.Markdown, "\n"+body+"\n")
			gomega.Expect(i).To(gomega.BeNumerically(">", last), "section %s out of order", body)
			last = i
		}
		for _, p := range fake.Prompts() {
			gomega.Expect(p).To(gomega.ContainSubstring("Robotics"))
		}
	})

	ginkgo.It("renders a failed section's error text in place", func() {
		fake = newFakeOllama(
			reply{marker: "attention-grabbing headlines", text: "R1"},
			reply{marker: "technical deep dive", status: http.StatusNotFound},
			reply{marker: "industry news", text: "R3"},
			reply{marker: "practical tools", text: "R4"},
			reply{marker: "future outlook", text: "R5"},
		)
		svc, err := New(configFor(fake.URL))
		gomega.Expect(err).To(gomega.Succeed())

		doc, err := svc.Newsletters.Generate(context.Background(), "Robotics")
		gomega.Expect(err).To(gomega.Succeed())

		gomega.Expect(doc.Markdown).To(gomega.ContainSubstring("\nError: Status 404\n"))
		gomega.Expect(doc.Sections[1].Result.OK()).To(gomega.BeFalse())
		gomega.Expect(ollama.StatusCode(doc.Sections[1].Result.Err)).To(gomega.Equal(http.StatusNotFound))
		gomega.Expect(doc.Batch.Failed()).To(gomega.HaveLen(1))
	})
})

var _ = ginkgo.Describe("Sentiment", func() {
	var fake *fakeOllama

	ginkgo.AfterEach(func() {
		if fake != nil {
			fake.Close()
		}
	})

	ginkgo.It("picks the plurality winner across the three variants", func() {
		fake = newFakeOllama(
			reply{marker: "Analyze the sentiment", text: "POSITIVE"},
			reply{marker: "emotional tone", text: "negative."},
			reply{marker: "Classify the sentiment", text: "Positive"},
		)
		svc, err := New(configFor(fake.URL))
		gomega.Expect(err).To(gomega.Succeed())

		o, err := svc.Sentiments.Analyze(context.Background(), "It mostly works.")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(o.Winner).To(gomega.Equal("POSITIVE"))
		gomega.Expect(o.Votes).To(gomega.Equal([]voting.Category{voting.Positive, voting.Negative, voting.Positive}))
		gomega.Expect(o.Unclassified).To(gomega.BeZero())
	})

	ginkgo.It("drops failed analyzers and applies the configured tie-break", func() {
		fake = newFakeOllama(
			reply{marker: "Analyze the sentiment", text: "NEUTRAL"},
			reply{marker: "emotional tone", status: http.StatusInternalServerError},
			reply{marker: "Classify the sentiment", text: "POSITIVE"},
		)
		cfg := configFor(fake.URL)
		cfg.Voting.TieBreak = voting.TieBreakPriority.String()
		svc, err := New(cfg)
		gomega.Expect(err).To(gomega.Succeed())

		o, err := svc.Sentiments.Analyze(context.Background(), "Fine, I guess.")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(o.Winner).To(gomega.Equal("POSITIVE"))
		gomega.Expect(o.Unclassified).To(gomega.Equal(1))
		gomega.Expect(o.Ballots[1].Raw).To(gomega.Equal("Error: Status 500"))
	})

	ginkgo.It("reports UNABLE TO DETERMINE when the server is unreachable", func() {
		dead := httptest.NewServer(http.NotFoundHandler())
		url := dead.URL
		dead.Close()

		svc, err := New(configFor(url))
		gomega.Expect(err).To(gomega.Succeed())

		o, err := svc.Sentiments.Analyze(context.Background(), "Anything")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(o.Winner).To(gomega.Equal(voting.Undetermined))
		gomega.Expect(o.Votes).To(gomega.BeEmpty())
		for _, b := range o.Ballots {
			gomega.Expect(ollama.IsTransportFault(b.Response.Err)).To(gomega.BeTrue())
			gomega.Expect(b.Raw).To(gomega.HavePrefix("Error: "))
		}
	})
})

var _ = ginkgo.Describe("New", func() {
	ginkgo.It("rejects an unknown tie-break policy", func() {
		cfg := configFor("http://localhost:11434")
		cfg.Voting.TieBreak = "coin-flip"
		_, err := New(cfg)
		gomega.Expect(err).To(gomega.HaveOccurred())
	})

	ginkgo.It("exposes the services to the MCP server", func() {
		svc, err := New(configFor("http://localhost:11434"))
		gomega.Expect(err).To(gomega.Succeed())

		deps := svc.MCPDeps("1.2.3")
		gomega.Expect(deps.Model).To(gomega.Equal(config.DefaultModel))
		gomega.Expect(deps.Version).To(gomega.Equal("1.2.3"))
		gomega.Expect(deps.Newsletters).NotTo(gomega.BeNil())
		gomega.Expect(deps.Sentiments).NotTo(gomega.BeNil())
		gomega.Expect(deps.Models).NotTo(gomega.BeNil())
	})
})
