// Package describe produces search-optimized natural-language summaries for
// source files, with a deterministic fallback when no text-generation
// capability is available.
package describe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TextGenerator is the text-generation capability consumed as a black box.
// Implementations may fail; callers treat any error as unavailability.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// descriptionPrompt is the fixed prompt template for file summaries.
const descriptionPrompt = `Analyze this %s code from %s.

Write a dense, search-optimized summary (2-3 sentences) that includes:
1. The main responsibility (e.g., "Handles user authentication")
2. Key algorithms or patterns used (e.g., "Implements sliding window rate limiting")
3. Specific technologies/libraries (e.g., "Uses Stripe API for billing")
4. Any validation constraints if present (e.g., "Validates email format, requires min 8 char password")

Be specific. "User controller" is bad. "REST endpoints for user CRUD with JWT auth and Stripe billing integration" is good.

Code:
` + "```%s\n%s\n```" + `

Write ONLY the description, no formatting or prefixes:`

const (
	// maxSourceChars truncates the source included in the prompt.
	maxSourceChars = 4000
	// minDescriptionLen treats shorter generated text as degenerate.
	minDescriptionLen = 20
	// defaultTimeout bounds each generation call so a slow provider never
	// stalls the batch.
	defaultTimeout = 30 * time.Second
)

// Generator produces file descriptions from a TextGenerator, degrading to a
// deterministic fallback on any failure. A nil TextGenerator is valid and
// always falls back.
type Generator struct {
	gen     TextGenerator
	timeout time.Duration
}

// NewGenerator creates a Generator. gen may be nil.
func NewGenerator(gen TextGenerator, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Generator{gen: gen, timeout: timeout}
}

// Describe generates a description for one source file. It never returns an
// error: capability failures, timeouts, and degenerate results all fall
// back to the deterministic form.
func (g *Generator) Describe(ctx context.Context, filePath, language, source string, exports []string) string {
	if g.gen == nil {
		return FallbackDescription(filePath, language, exports)
	}

	truncated := source
	if len(truncated) > maxSourceChars {
		truncated = truncated[:maxSourceChars]
	}
	prompt := fmt.Sprintf(descriptionPrompt, language, filePath, language, truncated)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.gen.Generate(callCtx, prompt)
	if err != nil {
		logrus.WithField("file", filePath).Debugf("description generation failed: %v", err)
		return FallbackDescription(filePath, language, exports)
	}

	description := strings.TrimSpace(text)
	if len(description) < minDescriptionLen {
		logrus.WithField("file", filePath).Debug("generated description too short")
		return FallbackDescription(filePath, language, exports)
	}

	return description
}

// DescribeBatch generates descriptions for a set of files sequentially
// against the shared capability, returning a path → description map. It
// never fails the batch.
func (g *Generator) DescribeBatch(ctx context.Context, files []FileInput) map[string]string {
	results := make(map[string]string, len(files))
	for _, f := range files {
		results[f.Path] = g.Describe(ctx, f.Path, f.Language, f.Source, f.Exports)
	}
	return results
}

// FileInput is one file to describe.
type FileInput struct {
	Path     string
	Language string
	Source   string
	Exports  []string
}

// FallbackDescription builds the deterministic description used when no
// capability is available or generation degrades.
func FallbackDescription(filePath, language string, exports []string) string {
	if len(exports) == 0 {
		return fmt.Sprintf("%s - %s file", filePath, language)
	}

	shown := exports
	if len(shown) > 5 {
		shown = shown[:5]
	}
	list := strings.Join(shown, ", ")
	if len(exports) > 5 {
		list += fmt.Sprintf(" (+%d more)", len(exports)-5)
	}
	return fmt.Sprintf("%s - %s file with exports: %s", filePath, language, list)
}
