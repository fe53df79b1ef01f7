package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/corvid-labs/corvid/core"
	"github.com/corvid-labs/corvid/llm"
)

// Fixed user-facing copy. Every failure path resolves to one of these calm,
// bounded messages; raw provider errors never reach the user.
const (
	MsgUnavailable = "I apologize, but the AI service is currently unavailable. Please contact the administrator."
	MsgNoContext   = "I couldn't find any relevant information to answer that question. Could you try rephrasing or asking about a different topic?"
	MsgHighTraffic = "High traffic detected. Please wait 60 seconds and try again."
	MsgTechnical   = "I'm experiencing technical difficulties at the moment. Please try again in a few seconds."
	MsgPageTrouble = "I can see the page content but I'm having trouble processing it right now."

	// notCoveredSentence is what the model must emit when the answer is
	// absent from the retrieved context.
	notCoveredSentence = "I'm sorry, that specific detail is not covered in our current analysis."
)

// pageKeywords classify a query as being about the page the visitor is on
// rather than about article content.
var pageKeywords = []string{
	"this page", "this site", "homepage", "what is this", "navigate", "sections", "where am i",
}

const groundedPromptTemplate = `### SYSTEM ROLE
You are Corvid, the resident assistant for an editorial platform. Answer user questions with precision and absolute accuracy based ONLY on the provided context.

### STRICT RULES
1. DIRECT ANSWER: Do NOT start with "The article says" or "According to the context." Start directly with the answer.
2. NO HALLUCINATIONS: If the answer is not explicitly found in the CONTEXT section below, you must say: "%s" Do not make up information.
3. PROFESSIONAL TONE: Keep the answer clean, concise, and structured.
4. CONTEXT ONLY: Ignore your outside knowledge. Your world is limited strictly to the provided context.
5. PLAIN TEXT: Do NOT use markdown, headings, or bullet points. Write in clear, complete sentences.

### CONTEXT
%s

### USER QUESTION
%s

### YOUR ANSWER:`

const pagePromptTemplate = `You are Corvid, the assistant for an editorial platform. A visitor on %s is asking about the page itself. Answer using only the page content below. Be concise and write plain text without markdown.

### PAGE CONTENT
%s

### QUESTION
%s

### ANSWER:`

// AskRequest is one chat turn.
type AskRequest struct {
	Query string

	// Scope restricts retrieval to a single document when set.
	Scope string

	// PageURL and PageContent describe the page the visitor is on; when the
	// query is about the page itself, retrieval is bypassed and the answer
	// comes from PageContent alone.
	PageURL     string
	PageContent string
}

// Composer drives the grounding state machine: no context falls back to
// fixed copy, available context constrains generation, and all output is
// flattened to plain prose.
type Composer struct {
	retriever *Retriever
	generator llm.Generator
	available bool
	logger    *zap.Logger
}

// NewComposer creates an answer composer. available=false pins every answer
// to the static unavailable message (missing provider configuration).
func NewComposer(retriever *Retriever, generator llm.Generator, available bool, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{retriever: retriever, generator: generator, available: available, logger: logger}
}

// Answer resolves a chat turn to plain prose. It never returns an error:
// every failure maps to one of the fixed messages.
func (c *Composer) Answer(ctx context.Context, req AskRequest) string {
	if !c.available {
		return MsgUnavailable
	}

	if req.PageContent != "" && isPageQuestion(req.Query) {
		return c.answerFromPage(ctx, req)
	}

	retrieval, err := c.retriever.Retrieve(ctx, req.Query, req.Scope)
	if err != nil {
		return c.failureMessage("retrieve", err)
	}

	if retrieval.Context == "" {
		if req.PageContent != "" {
			return c.answerFromPage(ctx, req)
		}
		return MsgNoContext
	}

	prompt := fmt.Sprintf(groundedPromptTemplate, notCoveredSentence, retrieval.Context, req.Query)
	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return c.failureMessage("generate", err)
	}
	return CleanText(raw)
}

// answerFromPage handles page-navigational questions from the supplied page
// content, without touching the vector store.
func (c *Composer) answerFromPage(ctx context.Context, req AskRequest) string {
	prompt := fmt.Sprintf(pagePromptTemplate, pageName(req.PageURL), req.PageContent, req.Query)
	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		c.logger.Error("page answer failed", zap.Error(err))
		return MsgPageTrouble
	}
	return CleanText(raw)
}

func (c *Composer) failureMessage(op string, err error) string {
	c.logger.Error("chat turn failed", zap.String("op", op), zap.Error(err))
	switch {
	case errors.Is(err, core.ErrRateLimited):
		return MsgHighTraffic
	case errors.Is(err, core.ErrStoreUnavailable), errors.Is(err, core.ErrNotConfigured):
		return MsgUnavailable
	default:
		return MsgTechnical
	}
}

func isPageQuestion(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range pageKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func pageName(pageURL string) string {
	switch {
	case strings.Contains(pageURL, "index.html"):
		return "the homepage"
	case strings.Contains(pageURL, "journal.html"):
		return "the journal page"
	case strings.Contains(pageURL, "contact.html"):
		return "the contact page"
	default:
		return "this page"
	}
}
