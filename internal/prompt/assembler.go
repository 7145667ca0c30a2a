package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"rozgar/internal/domain"
)

// Assembler merges the system instruction, retrieved chunks, recent turns and
// the current query into a bounded context payload for generation.
//
// Priority when the budget forces drops, highest first: current query, system
// instruction, retrieved chunks (by descending score), conversation turns (by
// descending recency). Conversational continuity is sacrificed before
// retrieved grounding, and grounding before system framing. The query is
// never dropped; if it alone exceeds the budget the assembly fails with
// domain.ErrContextOverflow.
type Assembler struct {
	maxContextChars int
}

func NewAssembler(maxContextChars int) *Assembler {
	return &Assembler{maxContextChars: maxContextChars}
}

// System instructions per language, condensed from the platform's framing for
// job search, skill development and migration counseling.
var systemInstructions = map[string]string{
	"en": "You are a helpful assistant for a public employment platform. Answer using the provided context about job search, skill development and foreign counseling. If the context does not contain the answer, say so politely.",
	"hi": "आप एक सार्वजनिक रोजगार प्लेटफ़ॉर्म के सहायक हैं। नौकरी खोज, कौशल विकास और विदेशी परामर्श के बारे में दिए गए संदर्भ के आधार पर उत्तर दें। यदि जानकारी संदर्भ में नहीं है, तो विनम्रता से कहें।",
	"pa": "ਤੁਸੀਂ ਇੱਕ ਜਨਤਕ ਰੁਜ਼ਗਾਰ ਪਲੇਟਫਾਰਮ ਦੇ ਸਹਾਇਕ ਹੋ। ਨੌਕਰੀ ਖੋਜ, ਹੁਨਰ ਵਿਕਾਸ ਅਤੇ ਵਿਦੇਸ਼ੀ ਸਲਾਹ ਬਾਰੇ ਦਿੱਤੇ ਸੰਦਰਭ ਦੇ ਆਧਾਰ 'ਤੇ ਜਵਾਬ ਦਿਓ। ਜੇ ਜਾਣਕਾਰੀ ਸੰਦਰਭ ਵਿੱਚ ਨਹੀਂ ਹੈ, ਤਾਂ ਨਿਮਰਤਾ ਨਾਲ ਕਹੋ।",
}

// Assemble returns the context payload and whether anything was dropped to
// fit the budget.
func (a *Assembler) Assemble(query, language string, retrieved []domain.RetrievedChunk, turns []domain.Turn) (string, bool, error) {
	querySection := "Question: " + query
	budget := a.maxContextChars - utf8.RuneCountInString(querySection)
	if budget < 0 {
		return "", false, fmt.Errorf("query of %d chars: %w", utf8.RuneCountInString(query), domain.ErrContextOverflow)
	}

	truncated := false

	system := systemInstructions[language]
	if system == "" {
		system = systemInstructions["en"]
	}
	if cost := utf8.RuneCountInString(system) + 2; cost <= budget {
		budget -= cost
	} else {
		system = ""
		truncated = true
	}

	var contextParts []string
	for _, rc := range retrieved {
		cost := utf8.RuneCountInString(rc.Chunk.Text) + 2
		if len(contextParts) == 0 {
			cost += utf8.RuneCountInString("Context:\n")
		}
		if cost > budget {
			truncated = true
			break
		}
		contextParts = append(contextParts, rc.Chunk.Text)
		budget -= cost
	}

	// Keep the most recent turns that fit; render them chronologically.
	var kept []domain.Turn
	for i := len(turns) - 1; i >= 0; i-- {
		line := turnLine(turns[i])
		cost := utf8.RuneCountInString(line) + 1
		if len(kept) == 0 {
			cost += utf8.RuneCountInString("Conversation so far:\n") + 1
		}
		if cost > budget {
			truncated = true
			break
		}
		kept = append([]domain.Turn{turns[i]}, kept...)
		budget -= cost
	}

	var b strings.Builder
	if system != "" {
		b.WriteString(system)
		b.WriteString("\n\n")
	}
	if len(contextParts) > 0 {
		b.WriteString("Context:\n")
		b.WriteString(strings.Join(contextParts, "\n\n"))
		b.WriteString("\n\n")
	}
	if len(kept) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, t := range kept {
			b.WriteString(turnLine(t))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(querySection)
	return b.String(), truncated, nil
}

func turnLine(t domain.Turn) string {
	return string(t.Role) + ": " + t.Text
}
