package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompileSubstitutesBothSlots(t *testing.T) {
	out := Compile("[Document 1 — document — f.pdf]\nsome fact", "How do I export Slack?")
	require.NotContains(t, out.SystemText, "{{context}}")
	require.NotContains(t, out.SystemText, "{{question}}")
	require.Contains(t, out.SystemText, "some fact")
	require.Contains(t, out.SystemText, "How do I export Slack?")
}

func TestCompileLeavesLiteralBracesInContextUntouched(t *testing.T) {
	out := Compile("payload: {{escaped}}", "q")
	require.Contains(t, out.SystemText, "{{escaped}}")
}

func TestCompileEmptyContextStillProducesValidPrompt(t *testing.T) {
	out := Compile("", "q")
	require.Contains(t, out.SystemText, "Context:")
	require.Contains(t, out.SystemText, "Question:\nq")
}

func TestConcatenatedIncludesBothParts(t *testing.T) {
	out := Compile("ctx", "q")
	full := out.Concatenated()
	require.True(t, strings.Contains(full, "ctx"))
	require.True(t, strings.HasSuffix(full, "q"))
}

func TestMustValidateTemplateDoesNotPanic(t *testing.T) {
	require.NotPanics(t, MustValidateTemplate)
}
