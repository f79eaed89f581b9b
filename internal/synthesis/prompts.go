package synthesis

import (
	"fmt"
	"strings"

	"github.com/scholarlabs/paperdex/internal/domain"
)

const answerPromptTemplate = `You are an expert academic research assistant. Your task is to answer questions about academic papers based on the provided context.

Instructions:
1. Answer the question using ONLY the information provided in the contexts below
2. If the contexts don't contain enough information to answer fully, state what information is missing
3. Always cite your sources using [number] notation matching the context numbers
4. Be precise and academic in your language
5. If multiple papers discuss the topic, compare and contrast their approaches
6. Highlight any disagreements or different perspectives between papers

Contexts:
%s

Question: %s

Answer:`

// BuildAnswerPrompt formats retrieved contexts as numbered source blocks
// and wraps them in the citation-grounded answering instruction. Context
// ordinals start at 1 and match the [n] citation notation.
func BuildAnswerPrompt(query string, contexts []domain.Context) string {
	var sb strings.Builder
	for i, ctx := range contexts {
		title := orUnknown(ctx.Metadata.Title)
		section := orUnknown(ctx.Metadata.Section)
		page := ctx.Metadata.Page
		if page == "" {
			page = "N/A"
		}
		fmt.Fprintf(&sb, "[%d] Source: %s, Section: %s, Page: %s\n%s\n\n", i+1, title, section, page, ctx.Text)
	}
	return fmt.Sprintf(answerPromptTemplate, strings.TrimRight(sb.String(), "\n"), query)
}

const comparisonPromptTemplate = `You are comparing multiple academic papers. Analyze and compare the following papers across these aspects: %s.

Papers:
%s

Provide a structured comparison highlighting:
1. Similarities in approaches or findings
2. Differences in methodology or conclusions
3. Complementary insights
4. Contradictions or disagreements
5. Overall synthesis

Comparison:`

// BuildComparisonPrompt lists each paper's title and abstract and names
// the aspects the comparison should cover.
func BuildComparisonPrompt(papers []domain.PaperSummary, aspects []string) string {
	var sb strings.Builder
	for i, p := range papers {
		title := p.Title
		if title == "" {
			title = fmt.Sprintf("Paper %d", i+1)
		}
		abstract := p.Abstract
		if abstract == "" {
			abstract = domain.NoAbstractPlaceholder
		}
		fmt.Fprintf(&sb, "Paper %d: %s\nAbstract: %s\n\n", i+1, title, abstract)
	}
	return fmt.Sprintf(comparisonPromptTemplate,
		strings.Join(aspects, ", "),
		strings.TrimRight(sb.String(), "\n"),
	)
}

const stancePromptTemplate = `You are analyzing academic research papers. Based on the following excerpts,
analyze the sentiment and stance towards the topic: "%s".

Context from the papers:
%s

Provide a comprehensive analysis with the following structure:
**Overall Sentiment:** [State clearly: Positive, Negative, Neutral, or Mixed]

Then provide:
1. A summary of how the papers discuss this topic
2. Key claims or findings

Be specific and reference the sections when making claims.

Analysis:`

// BuildStancePrompt joins retrieved excerpts with their source labels and
// asks for a structured stance analysis that ParseStance can read back.
func BuildStancePrompt(topic string, contexts []domain.Context) string {
	parts := make([]string, len(contexts))
	for i, ctx := range contexts {
		parts[i] = fmt.Sprintf("%s\n(Page %s, %s)",
			ctx.Text, orNA(ctx.Metadata.Page), orUnknown(ctx.Metadata.Section))
	}
	return fmt.Sprintf(stancePromptTemplate, topic, strings.Join(parts, "\n\n---\n\n"))
}

// StanceQuery builds the retrieval query used to collect stance evidence.
func StanceQuery(topic string) string {
	return fmt.Sprintf(
		"What is discussed about %s? Include any mentions, opinions, or findings related to %s.",
		topic, topic,
	)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
