package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rozgar/internal/domain"
	"rozgar/internal/lang"
)

// ChatResult is the outcome of one conversational turn.
type ChatResult struct {
	SessionID string
	Response  string
	Language  string
	Truncated bool
	Jobs      []domain.MatchResult
}

// Utterances containing any of these are treated as job queries and also get
// recommendations when the session has preferences.
var jobIntentKeywords = []string{
	"job", "jobs", "naukri", "career", "employment", "vacancy",
	"रोजगार", "नौकरी", "ਨੌਕਰੀ", "ਰੁਜ਼ਗਾਰ",
}

// Chat runs one turn: detect language, retrieve context, assemble the prompt,
// generate, optionally match jobs, persist both turns. On any downstream
// failure the user's turn is already persisted, so conversation continuity
// survives partial failures. The caller may cancel via ctx up to the final
// persistence write; that write itself is shielded from cancellation.
func (a *Assistant) Chat(ctx context.Context, sessionID, text, langTag string) (ChatResult, error) {
	if strings.TrimSpace(text) == "" {
		return ChatResult{}, errors.New("empty query")
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	language := lang.Resolve(langTag, "")
	if language == "" {
		language = lang.Detect(text, a.opts.DefaultLanguage)
	}

	lock := a.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	// History is read before the user turn is appended so the prompt does
	// not repeat the current query.
	history, err := a.conversations.Recent(ctx, sessionID, a.opts.HistoryTurns)
	if err != nil {
		return ChatResult{}, fmt.Errorf("load history: %w", err)
	}

	userTurn := domain.Turn{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Text:      text,
		Language:  language,
		CreatedAt: time.Now(),
	}
	if err := a.conversations.Append(ctx, userTurn); err != nil {
		return ChatResult{}, fmt.Errorf("persist user turn: %w", err)
	}

	retrieved, err := a.retriever.Retrieve(ctx, text, language, a.opts.TopK)
	if err != nil {
		a.log.Warn("retrieval failed", zap.String("session", sessionID), zap.Error(err))
		return ChatResult{SessionID: sessionID, Language: language}, err
	}

	promptText, truncated, err := a.assembler.Assemble(text, language, retrieved, history)
	if err != nil {
		return ChatResult{SessionID: sessionID, Language: language}, err
	}

	answer, err := a.generator.Generate(ctx, promptText, a.opts.MaxTokens, a.opts.Temperature)
	if err != nil {
		a.log.Warn("generation failed", zap.String("session", sessionID), zap.Error(err))
		return ChatResult{SessionID: sessionID, Language: language}, err
	}

	result := ChatResult{
		SessionID: sessionID,
		Response:  answer,
		Language:  language,
		Truncated: truncated,
	}
	if hasJobIntent(text) {
		jobs, err := a.recommend(ctx, sessionID)
		if err == nil {
			result.Jobs = jobs
		} else if !errors.Is(err, domain.ErrEmptyPreferences) {
			a.log.Warn("job matching failed", zap.String("session", sessionID), zap.Error(err))
		}
	}

	// The response is persisted even if the caller has gone away.
	assistantTurn := domain.Turn{
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Text:      answer,
		Language:  language,
		CreatedAt: time.Now(),
	}
	if err := a.conversations.Append(context.WithoutCancel(ctx), assistantTurn); err != nil {
		return ChatResult{}, fmt.Errorf("persist assistant turn: %w", err)
	}
	return result, nil
}

// History returns the most recent turns of a session in chronological order.
func (a *Assistant) History(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	if limit <= 0 {
		limit = a.opts.HistoryTurns
	}
	return a.conversations.Recent(ctx, sessionID, limit)
}

func hasJobIntent(text string) bool {
	folded := strings.ToLower(text)
	for _, kw := range jobIntentKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
