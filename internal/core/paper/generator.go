package paper

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/markdave123-py/Scholara/internal/core"
	"github.com/markdave123-py/Scholara/internal/models"
)

// DefaultMaxContextChars caps how much source text goes into the prompt.
const DefaultMaxContextChars = 8000

const promptTemplate = `
You are an expert research assistant. Based on the following materials, write a comprehensive, detailed research paper.

Instructions:
- Create a detailed research paper with proper academic structure
- Include a compelling title that reflects the research topic
- Write a comprehensive abstract (200-300 words) summarizing the research
- Include a detailed introduction with background, problem statement, and objectives
- Create 4-6 detailed body sections with proper headings and subheadings
- Each section should be substantial (300-500 words minimum)
- Include methodology, findings, analysis, and discussion
- Write a comprehensive conclusion that summarizes key findings and implications
- Include proper citations throughout the paper using academic format
- Add a references section at the end
- Use academic writing style with formal language
- Include statistical data and specific examples where relevant
- Make the paper comprehensive and detailed (aim for 3000-5000 words total)

Research Topic: %s

Source Materials:
%s

Write a complete, detailed research paper following academic standards. Include proper citations and references.
`

// Generator builds the paper prompt and sends it to an LLM.
type Generator struct {
	llm             core.LLMProvider
	maxContextChars int
}

func NewGenerator(llm core.LLMProvider, maxContextChars int) *Generator {
	if maxContextChars <= 0 {
		maxContextChars = DefaultMaxContextChars
	}
	return &Generator{llm: llm, maxContextChars: maxContextChars}
}

// Generate sends a single request. Provider failures come back as
// GenerationError; there are no retries.
func (g *Generator) Generate(ctx context.Context, topic, text string) (*models.Paper, error) {
	material, dropped := truncateRunes(text, g.maxContextChars)
	if dropped > 0 {
		log.Printf("Generator: source text truncated to %d chars (%d dropped)", g.maxContextChars, dropped)
	}

	content, err := g.llm.Generate(ctx, "", BuildPrompt(topic, material))
	if err != nil {
		return nil, core.Wrap(core.GenerationError, "", err)
	}

	return &models.Paper{
		Topic:        topic,
		Content:      content,
		Truncated:    dropped > 0,
		DroppedChars: dropped,
	}, nil
}

// BuildPrompt renders the research paper instructions for topic and sources.
func BuildPrompt(topic, sources string) string {
	return fmt.Sprintf(promptTemplate, topic, sources)
}

// truncateRunes keeps the first limit code points of s and reports how
// many were cut.
func truncateRunes(s string, limit int) (string, int) {
	n := utf8.RuneCountInString(s)
	if n <= limit {
		return s, 0
	}
	i, count := 0, 0
	for i = range s {
		if count == limit {
			break
		}
		count++
	}
	return s[:i], n - limit
}
