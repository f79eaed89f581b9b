package paperdex

import (
	"context"
	"fmt"
	"time"
)

// Ask answers a question over the stored corpus with numbered citations
// back to the retrieved excerpts.
func (c *Client) Ask(ctx context.Context, question string, opts QueryOptions) (_ Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	answer, err := c.querySvc.Ask(ctx, question, opts.TopK, opts.PaperIDs)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return fromDomainAnswer(answer), nil
}

// Compare contrasts two or more stored papers along the given aspects.
// Empty aspects use the defaults: methodology, results, conclusions,
// limitations.
func (c *Client) Compare(ctx context.Context, paperIDs, aspects []string) (_ Comparison, err error) {
	start := time.Now()
	defer func() { c.obs.observe("compare", start, err) }()

	comparison, err := c.compareSvc.Compare(ctx, paperIDs, aspects)
	if err != nil {
		return Comparison{}, fmt.Errorf("compare: %w", err)
	}
	return fromDomainComparison(comparison), nil
}

// AnalyzeTopic reports the corpus's stance toward a topic, with
// supporting evidence excerpts.
func (c *Client) AnalyzeTopic(ctx context.Context, topic string, opts QueryOptions) (_ StanceReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("analyze_topic", start, err) }()

	report, err := c.topicSvc.Analyze(ctx, topic, opts.TopK, opts.PaperIDs)
	if err != nil {
		return StanceReport{}, fmt.Errorf("analyze topic: %w", err)
	}
	return fromDomainStance(report), nil
}
