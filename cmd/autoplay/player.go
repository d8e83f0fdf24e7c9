package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/jpillora/backoff"

	"github.com/wricardo/colormatch/game/engine"
	"github.com/wricardo/colormatch/game/service"
)

// errPermanent marks API errors that retrying cannot fix
var errPermanent = errors.New("request rejected")

// Stats summarizes an automated run
type Stats struct {
	Picks         int `json:"picks"`
	Correct       int `json:"correct"`
	Misses        int `json:"misses"`
	LevelUps      int `json:"level_ups"`
	NewHighScores int `json:"new_high_scores"`
	BestScore     int `json:"best_score"`
	BestLevel     int `json:"best_level"`
	HighScore     int `json:"high_score"`
}

// Player drives the REST API like a (mostly) perfect human would
type Player struct {
	baseURL     string
	httpClient  *http.Client
	rng         *rand.Rand
	missRate    float64
	delay       time.Duration
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	log         log15.Logger
}

// NewPlayer creates a player for the server at baseURL
func NewPlayer(baseURL string, rng *rand.Rand, logger log15.Logger) *Player {
	return &Player{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		rng:         rng,
		maxAttempts: 5,
		minBackoff:  100 * time.Millisecond,
		maxBackoff:  2 * time.Second,
		log:         logger,
	}
}

// Play starts the game and answers picks rounds
func (p *Player) Play(ctx context.Context, picks int) (*Stats, error) {
	var start service.ActionResult
	if err := p.call(ctx, http.MethodPost, "/api/start", nil, &start); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	p.log.Info("game started", "target", start.GameState.CurrentTarget, "timer", start.GameState.Timer)

	stats := &Stats{HighScore: start.GameState.HighScore}
	for i := 0; i < picks; i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var state engine.GameState
		if err := p.call(ctx, http.MethodGet, "/api/state", nil, &state); err != nil {
			return stats, fmt.Errorf("state: %w", err)
		}

		if p.delay > 0 {
			select {
			case <-ctx.Done():
				return stats, ctx.Err()
			case <-time.After(p.delay):
			}
		}

		pick := p.choose(state.CurrentTarget)
		var result service.ActionResult
		body := map[string]string{"color": string(pick)}
		if err := p.call(ctx, http.MethodPost, "/api/select", body, &result); err != nil {
			return stats, fmt.Errorf("select: %w", err)
		}

		stats.record(&result)
		p.log.Debug("pick", "n", i+1, "target", state.CurrentTarget, "color", pick,
			"correct", result.Correct, "score", result.GameState.Score, "level", result.GameState.Level)
	}
	return stats, nil
}

// choose returns the target, or a deliberate miss at the configured rate
func (p *Player) choose(target engine.Color) engine.Color {
	if p.missRate <= 0 || p.rng.Float64() >= p.missRate {
		return target
	}

	var others []engine.Color
	for _, c := range engine.Colors() {
		if c != target {
			others = append(others, c)
		}
	}
	return others[p.rng.Intn(len(others))]
}

func (s *Stats) record(result *service.ActionResult) {
	s.Picks++
	if result.Correct {
		s.Correct++
	} else {
		s.Misses++
	}

	for _, ev := range result.Events {
		switch ev.Type {
		case engine.EventLevelUp:
			s.LevelUps++
		case engine.EventHighScore:
			s.NewHighScores++
		}
	}

	if st := result.GameState; st != nil {
		if st.Score > s.BestScore {
			s.BestScore = st.Score
		}
		if st.Level > s.BestLevel {
			s.BestLevel = st.Level
		}
		s.HighScore = st.HighScore
	}
}

// retryable reports whether repeating a request cannot change the game twice.
// A select that failed in transit may already have been applied.
func retryable(method, path string) bool {
	return method == http.MethodGet || path == "/api/start"
}

// call performs one API request, retrying network failures and 5xx answers
// for requests that are safe to repeat
func (p *Player) call(ctx context.Context, method, path string, body, out interface{}) error {
	b := &backoff.Backoff{Min: p.minBackoff, Max: p.maxBackoff, Factor: 2, Jitter: true}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = p.do(ctx, method, path, body, out)
		if lastErr == nil || errors.Is(lastErr, errPermanent) || ctx.Err() != nil {
			return lastErr
		}
		if !retryable(method, path) {
			return lastErr
		}

		d := b.Duration()
		p.log.Warn("request failed, retrying", "path", path, "attempt", attempt, "wait", d, "err", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d):
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", p.maxAttempts, lastErr)
}

func (p *Player) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", errPermanent, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error
		if msg == "" {
			msg = resp.Status
		}
		if resp.StatusCode < 500 {
			return fmt.Errorf("%w: %s", errPermanent, msg)
		}
		return fmt.Errorf("server error: %s", msg)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
