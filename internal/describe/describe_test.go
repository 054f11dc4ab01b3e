package describe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the description generator:
// - Nil capability uses the deterministic fallback
// - Fallback lists at most 5 exports with a (+N more) suffix
// - Generation failures fall back instead of erroring
// - Degenerate (too short) generations fall back
// - Successful generations are trimmed and returned
// - Source is truncated before prompting
// - DescribeBatch maps every input path

type stubGenerator struct {
	reply  string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.reply, s.err
}

func TestFallbackDescription(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "src/util.py - python file", FallbackDescription("src/util.py", "python", nil))

	few := FallbackDescription("a.ts", "typescript", []string{"A", "B"})
	assert.Equal(t, "a.ts - typescript file with exports: A, B", few)

	many := FallbackDescription("a.ts", "typescript", []string{"A", "B", "C", "D", "E", "F", "G"})
	assert.Equal(t, "a.ts - typescript file with exports: A, B, C, D, E (+2 more)", many)
}

func TestGenerator_NilCapabilityFallsBack(t *testing.T) {
	t.Parallel()

	g := NewGenerator(nil, 0)
	got := g.Describe(context.Background(), "src/models.py", "python", "class User: pass", []string{"User"})
	assert.Equal(t, "src/models.py - python file with exports: User", got)
}

func TestGenerator_ErrorFallsBack(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{err: errors.New("rate limited")}
	g := NewGenerator(stub, time.Second)

	got := g.Describe(context.Background(), "a.py", "python", "x = 1", nil)
	assert.Equal(t, "a.py - python file", got)
}

func TestGenerator_ShortResultFallsBack(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{reply: "meh"}
	g := NewGenerator(stub, time.Second)

	got := g.Describe(context.Background(), "a.py", "python", "x = 1", nil)
	assert.Equal(t, "a.py - python file", got)
}

func TestGenerator_Success(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{reply: "  REST endpoints for user CRUD with JWT auth.  "}
	g := NewGenerator(stub, time.Second)

	got := g.Describe(context.Background(), "api/users.py", "python", "def handler(): pass", nil)
	assert.Equal(t, "REST endpoints for user CRUD with JWT auth.", got)

	require.NotEmpty(t, stub.prompt)
	assert.Contains(t, stub.prompt, "api/users.py")
	assert.Contains(t, stub.prompt, "def handler(): pass")
}

func TestGenerator_TruncatesSource(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{reply: "A long enough description of this file."}
	g := NewGenerator(stub, time.Second)

	source := strings.Repeat("x", maxSourceChars+500)
	g.Describe(context.Background(), "big.py", "python", source, nil)

	assert.Contains(t, stub.prompt, strings.Repeat("x", maxSourceChars))
	assert.NotContains(t, stub.prompt, strings.Repeat("x", maxSourceChars+1))
}

func TestGenerator_DescribeBatch(t *testing.T) {
	t.Parallel()

	g := NewGenerator(nil, 0)
	files := []FileInput{
		{Path: "a.py", Language: "python", Exports: []string{"A"}},
		{Path: "b.ts", Language: "typescript"},
	}

	got := g.DescribeBatch(context.Background(), files)
	require.Len(t, got, 2)
	assert.Equal(t, "a.py - python file with exports: A", got["a.py"])
	assert.Equal(t, "b.ts - typescript file", got["b.ts"])
}
