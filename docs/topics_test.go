package docs

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/etnz/payments"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	csvInput  = "csv input"
	csvOutput = "csv output"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md can be loaded, and every .md file is
	// listed in readme.md.
	file, err := os.Open("readme.md")
	require.NoError(t, err)
	defer file.Close()

	var topicsInReadme []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			topicsInReadme = append(topicsInReadme, strings.TrimSpace(matches[1]))
		}
	}
	require.NoError(t, scanner.Err())

	for _, topic := range topicsInReadme {
		t.Run("load_"+topic, func(t *testing.T) {
			_, err := GetTopic(topic)
			assert.NoError(t, err)
		})
	}

	files, err := filepath.Glob("*.md")
	require.NoError(t, err)
	for _, f := range files {
		name := strings.TrimSuffix(filepath.Base(f), ".md")
		if name == "readme" {
			continue
		}
		assert.Contains(t, topicsInReadme, name, "topic %q is not listed in readme.md", name)
	}

	all, err := AllTopics()
	require.NoError(t, err)
	assert.ElementsMatch(t, topicsInReadme, all)
}

func TestGetTopicUnknown(t *testing.T) {
	_, err := GetTopic("nope")
	assert.Error(t, err)
}

func TestErrorsDocumented(t *testing.T) {
	var headings []string
	content, root := parseMarkdown(t, "errors.md")
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); entering && ok && h.Level == 2 {
			headings = append(headings, string(h.Text(content)))
		}
		return ast.WalkContinue, nil
	})
	assert.Equal(t, payments.Reasons(), headings)
}

func TestExamples(t *testing.T) {
	content, root := parseMarkdown(t, "examples.md")

	// pair each input block with the output block that follows it.
	var inputs, outputs []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		var block strings.Builder
		for i := 0; i < fcb.Lines().Len(); i++ {
			line := fcb.Lines().At(i)
			block.Write(line.Value(content))
		}
		switch string(fcb.Info.Segment.Value(content)) {
		case csvInput:
			inputs = append(inputs, block.String())
		case csvOutput:
			outputs = append(outputs, block.String())
		}
		return ast.WalkContinue, nil
	})
	require.NotEmpty(t, inputs)
	require.Len(t, outputs, len(inputs))

	for i, input := range inputs {
		var got bytes.Buffer
		require.NoError(t, payments.ProcessCSV(strings.NewReader(input), &got))
		assert.Equal(t, sortedLines(outputs[i]), sortedLines(got.String()), "example %d:\n%s", i+1, input)
	}
}

func parseMarkdown(t *testing.T, file string) ([]byte, ast.Node) {
	t.Helper()
	content, err := os.ReadFile(file)
	require.NoError(t, err)
	return content, goldmark.DefaultParser().Parse(text.NewReader(content))
}

func sortedLines(s string) []string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	slices.Sort(lines)
	return lines
}
