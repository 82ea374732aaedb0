// Package prompt implements the Prompt Compiler (C7): exact two-placeholder
// substitution into a fixed system template. It deliberately does not use
// any general template engine, because chunk text frequently contains
// JSON-like `{variable}` substrings that must survive untouched (spec §4.8,
// §9 "Dynamic template engine pitfalls").
package prompt

import (
	"fmt"
	"strings"
)

const contextPlaceholder = "{{context}}"
const questionPlaceholder = "{{question}}"

const systemTemplate = `You are the CloudFuze knowledge assistant. You help customers and prospects understand CloudFuze's Slack-to-Teams and other cloud migration products using only the information in the context below.

Rules:
- Answer only from the provided context. Do not use outside knowledge.
- If the context does not contain enough information to answer, say so politely and offer to help with a different in-scope question. Do not guess.
- When multiple sources disagree, prefer documents tagged as "document" or "page" over "blog" content.
- When you reference a source, embed it inline as a descriptive link or name (e.g. "see the SharePoint Migration Guide") rather than a bare tag.
- Never mention internal tags, scores, document numbers, or metadata field names to the user.

Examples:

Context: [Document 1 — document — migration-faq.pdf]
CloudFuze supports exporting Slack channel history to JSON before importing into Teams.

Question: How do I export Slack channel history?
Answer: You can export Slack channel history to JSON using CloudFuze's export tool, as described in the Migration FAQ, before importing it into Teams.

Context: (empty)
Question: What is the capital of France?
Answer: I don't have information about general geography topics; I can help with questions about migrating data between Slack, Teams, SharePoint, and OneDrive.

Context:
{{context}}

Question:
{{question}}`

// Compiled is the two representations the Generator may use: a minimal
// structured form and, for logging, the concatenated whole.
type Compiled struct {
	SystemText string
	UserText   string
}

// Concatenated returns the full prompt as a single string for logging.
func (c Compiled) Concatenated() string {
	return c.SystemText + "\n\n" + c.UserText
}

// Compile performs exactly two string replacements — {{context}} and
// {{question}} — and nothing else. Runtime compilation cannot fail; a
// missing-slot template is rejected at startup by MustValidateTemplate.
func Compile(context, preparedQuestion string) Compiled {
	// One pass over the template only, so placeholder-like text inside the
	// substituted context is never itself replaced.
	system := strings.NewReplacer(contextPlaceholder, context, questionPlaceholder, preparedQuestion).Replace(systemTemplate)
	return Compiled{SystemText: system, UserText: preparedQuestion}
}

// MustValidateTemplate panics at startup if the fixed template is missing
// either required slot (spec §4.8: "startup fails loudly").
func MustValidateTemplate() {
	if !strings.Contains(systemTemplate, contextPlaceholder) {
		panic(fmt.Sprintf("prompt: template missing required slot %q", contextPlaceholder))
	}
	if !strings.Contains(systemTemplate, questionPlaceholder) {
		panic(fmt.Sprintf("prompt: template missing required slot %q", questionPlaceholder))
	}
}
