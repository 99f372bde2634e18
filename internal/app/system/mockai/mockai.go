// internal/app/system/mockai/mockai.go

// Package mockai simulates the AI responder. Replies are deterministic for
// a given question so tests can assert on them; no model is ever consulted.
package mockai

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode/utf8"
)

var templates = []string{
	"Based on the material I was trained on: %s",
	"Here is what I found in the available context: %s",
	"From what I know about this topic: %s",
	"Good question. The relevant part of my training data says: %s",
}

const (
	excerptLen      = 200
	noContextAnswer = "I don't have any trained context to draw on yet, so I can't answer that reliably."
)

// Responder produces canned assistant replies after a configured delay.
type Responder struct {
	delay time.Duration
}

func New(delay time.Duration) *Responder {
	return &Responder{delay: delay}
}

// Delay reports how long the simulated model "thinks" before a reply is
// appended. The caller schedules this; Reply itself never sleeps.
func (p *Responder) Delay() time.Duration { return p.delay }

// Reply produces the assistant turn for a question against the given
// context text. The template choice depends only on the question.
func (p *Responder) Reply(question, contextText string) string {
	contextText = strings.TrimSpace(contextText)
	if contextText == "" {
		return noContextAnswer
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(question))
	tmpl := templates[h.Sum32()%uint32(len(templates))]

	return fmt.Sprintf(tmpl, truncate(contextText, excerptLen))
}

// truncate cuts s to at most n bytes on a rune boundary and marks the cut
// with an ellipsis.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}
