package services

import (
	"context"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"flashdeck/database"
	"flashdeck/models"
)

// QuizState names the session states. Feedback is transient: it is returned
// from Submit, never held.
type QuizState string

const (
	QuizEmpty      QuizState = "empty"
	QuizPresenting QuizState = "presenting"
)

// QuizView is the session as a surface sees it. Hint carries the
// pronunciation only while the hint is revealed.
type QuizView struct {
	State     QuizState `json:"state"`
	CardID    int64     `json:"card_id,omitempty"`
	Word      string    `json:"word,omitempty"`
	HintShown bool      `json:"hint_shown"`
	Hint      string    `json:"hint,omitempty"`
}

// Feedback is the result of one answer submission. Vibrate reflects the
// should_vibrate setting at submission time; the surface performs (or skips)
// the haptics.
type Feedback struct {
	Correct bool     `json:"correct"`
	Vibrate bool     `json:"vibrate"`
	Next    QuizView `json:"next"`
}

// QuizService is the quiz session state machine. It holds the current
// active-card pool and the card being presented, and re-reads the pool
// whenever the repository broadcasts a change. The session itself never
// errors: a malformed answer is simply incorrect.
type QuizService struct {
	mu        sync.Mutex
	pool      ActivePool
	vibration VibrationSettings
	cards     []models.Card
	current   *models.Card
	hintShown bool

	// draw is swappable for deterministic tests; defaults to a uniform pick.
	draw func(n int) int
}

// NewQuizService creates a quiz session over the given pool. Call Refresh (or
// Start) before use.
func NewQuizService(pool ActivePool, vibration VibrationSettings) *QuizService {
	return &QuizService{
		pool:      pool,
		vibration: vibration,
		draw:      rand.Intn,
	}
}

// Start loads the pool and then follows the change feed until the context
// ends. Each notification replaces the pool snapshot; any in-flight state
// tied to a card that no longer exists is discarded.
func (qs *QuizService) Start(ctx context.Context, notifier *database.Notifier, logger *slog.Logger) {
	if err := qs.Refresh(); err != nil {
		logger.Error("quiz: initial pool load failed", "error", err)
	}

	ch, cancel := notifier.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ch:
				if err := qs.Refresh(); err != nil {
					logger.Error("quiz: pool refresh failed", "error", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Refresh re-reads the active pool and reconciles the presented card with it.
func (qs *QuizService) Refresh() error {
	cards, err := qs.pool.ListActiveCards()
	if err != nil {
		return err
	}

	qs.mu.Lock()
	defer qs.mu.Unlock()
	qs.cards = cards

	if len(cards) == 0 {
		qs.current = nil
		qs.hintShown = false
		return nil
	}

	if qs.current != nil {
		for i := range cards {
			if cards[i].ID == qs.current.ID {
				// Same card survives the refresh; adopt its latest
				// content. A changed answer invalidates a shown hint.
				if cards[i].Pronunciation != qs.current.Pronunciation {
					qs.hintShown = false
				}
				qs.current = &cards[i]
				return nil
			}
		}
	}

	qs.drawLocked()
	return nil
}

// Current returns the session state for display.
func (qs *QuizService) Current() QuizView {
	qs.mu.Lock()
	defer qs.mu.Unlock()
	return qs.viewLocked()
}

// Submit checks an answer against the presented card. The answer is trimmed
// of leading and trailing whitespace, then compared exactly: case-sensitive
// and otherwise whitespace-sensitive. A correct answer advances to a fresh
// uniform draw (possibly the same card); an incorrect one keeps the card
// presented and the surface clears its input.
func (qs *QuizService) Submit(answer string) (Feedback, error) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.current == nil {
		return Feedback{}, ErrQuizEmpty
	}

	correct := strings.TrimSpace(answer) == qs.current.Pronunciation
	if correct {
		qs.drawLocked()
	}

	return Feedback{
		Correct: correct,
		Vibrate: qs.vibration.ShouldVibrate(),
		Next:    qs.viewLocked(),
	}, nil
}

// RevealHint shows the pronunciation for the presented card. It changes no
// session state and is hidden again whenever the displayed card changes.
func (qs *QuizService) RevealHint() (QuizView, error) {
	qs.mu.Lock()
	defer qs.mu.Unlock()

	if qs.current == nil {
		return qs.viewLocked(), ErrQuizEmpty
	}
	qs.hintShown = true
	return qs.viewLocked(), nil
}

func (qs *QuizService) drawLocked() {
	qs.hintShown = false
	if len(qs.cards) == 0 {
		qs.current = nil
		return
	}
	qs.current = &qs.cards[qs.draw(len(qs.cards))]
}

func (qs *QuizService) viewLocked() QuizView {
	if qs.current == nil {
		return QuizView{State: QuizEmpty}
	}
	view := QuizView{
		State:     QuizPresenting,
		CardID:    qs.current.ID,
		Word:      qs.current.Word,
		HintShown: qs.hintShown,
	}
	if qs.hintShown {
		view.Hint = qs.current.Pronunciation
	}
	return view
}
