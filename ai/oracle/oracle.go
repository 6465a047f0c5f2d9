// Package oracle asks an external double-dummy solving service for the
// objectively best card. The service interface matches dds-style HTTP
// frontends: one POST per decision carrying the full deal, the contract,
// and the trick so far.
//
// The oracle is best-effort. Whether it is used at all is decided exactly
// once per Client: a denylisted platform, a missing URL, or any failed
// exchange flips the client to its local fallback for the rest of its
// lifetime, so a flaky service neither stalls every card of a hand nor
// keeps alternating with the local search.
package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/play"
)

const requestTimeout = 4 * time.Second

// Fallback picks a card locally when the oracle is unavailable. The search
// player satisfies this.
type Fallback interface {
	ChooseCard(ctx context.Context, st *play.State, seat card.Seat) (card.Card, error)
}

type solvePayload struct {
	Hands    [4]string `json:"hands"` // N E S W, suit-dot compact form
	Contract string    `json:"contract"`
	Leader   string    `json:"leader"`
	Trick    []string  `json:"trick"`
	OnTurn   string    `json:"on_turn"`
}

type solveResponse struct {
	Card string `json:"card"`
	// Tricks is the double-dummy trick count for the side on turn; logged
	// only.
	Tricks int `json:"tricks"`
}

// Client is one oracle connection plus its fallback.
type Client struct {
	url      string
	client   *http.Client
	denylist []string
	fallback Fallback

	decideOnce sync.Once
	available  atomic.Bool
}

func NewClient(url string, denylist []string, fallback Fallback) *Client {
	return &Client{
		url:      url,
		client:   &http.Client{Timeout: requestTimeout},
		denylist: denylist,
		fallback: fallback,
	}
}

// decide settles availability. Called exactly once, lazily, so a client
// built at startup does not probe a service that is never used.
func (c *Client) decide() {
	if c.url == "" {
		log.Debug().Msg("oracle-disabled-no-url")
		c.available.Store(false)
		return
	}
	if lo.Contains(c.denylist, runtime.GOOS) {
		log.Info().Str("goos", runtime.GOOS).Msg("oracle-disabled-denylisted-platform")
		c.available.Store(false)
		return
	}
	c.available.Store(true)
}

// Available reports whether this client would currently consult the remote
// service. Before the first ChooseCard it reflects only URL and platform.
func (c *Client) Available() bool {
	c.decideOnce.Do(c.decide)
	return c.available.Load()
}

// ChooseCard consults the oracle, falling back to local search on any
// failure. A failure of any kind, transport or a bad response, demotes
// the client permanently: one client never alternates between oracle
// cards and search cards once the service has misbehaved.
func (c *Client) ChooseCard(ctx context.Context, st *play.State, seat card.Seat) (card.Card, error) {
	if st.NextToPlay() != seat {
		return card.Card{}, fmt.Errorf("%v is not on turn (%v is)", seat, st.NextToPlay())
	}
	c.decideOnce.Do(c.decide)
	if !c.available.Load() {
		return c.fallback.ChooseCard(ctx, st, seat)
	}
	best, err := c.solve(ctx, st, seat)
	if err != nil {
		log.Warn().AnErr("oracle-err", err).Msg("oracle-failed-disabling")
		c.available.Store(false)
		return c.fallback.ChooseCard(ctx, st, seat)
	}
	return best, nil
}

func (c *Client) solve(ctx context.Context, st *play.State, seat card.Seat) (card.Card, error) {
	payload := solvePayload{
		Contract: st.Contract().String(),
		Leader:   st.TrickLeader().String(),
		OnTurn:   seat.String(),
	}
	for _, s := range card.Seats {
		payload.Hands[s] = handCompact(st.Remaining(s))
	}
	for _, pc := range st.CurrentTrick() {
		payload.Trick = append(payload.Trick, pc.Card.String())
	}
	bts, err := json.Marshal(payload)
	if err != nil {
		return card.Card{}, err
	}
	log.Debug().Str("payload", string(bts)).Msg("sending-to-oracle")

	var readbts []byte
	err = retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/solve", bytes.NewReader(bts))
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("oracle status %d", resp.StatusCode)
		}
		readbts, err = io.ReadAll(resp.Body)
		return err
	}, retry.Attempts(2), retry.Delay(100*time.Millisecond), retry.Context(ctx))
	if err != nil {
		return card.Card{}, err
	}

	r := &solveResponse{}
	if err := json.Unmarshal(readbts, r); err != nil {
		return card.Card{}, fmt.Errorf("bad oracle response: %w", err)
	}
	chosen, err := card.Parse(r.Card)
	if err != nil {
		return card.Card{}, fmt.Errorf("bad oracle response: %w", err)
	}
	if !lo.Contains(st.LegalPlays(), chosen) {
		return card.Card{}, fmt.Errorf("bad oracle response: illegal card %v", chosen)
	}
	log.Debug().Str("card", chosen.String()).Int("tricks", r.Tricks).Msg("from-oracle")
	return chosen, nil
}

// handCompact renders remaining cards as spades-first suit-dot notation,
// e.g. "AQ2.K9..T853". Hands keep their cards rank-descending within each
// suit so straight concatenation matches the deal layout form.
func handCompact(cards []card.Card) string {
	suits := make([]string, 4)
	for i, suit := range []card.Suit{card.Spades, card.Hearts, card.Diamonds, card.Clubs} {
		var sb strings.Builder
		for _, c := range cards {
			if c.Suit == suit {
				sb.WriteString(c.Rank.String())
			}
		}
		suits[i] = sb.String()
	}
	return strings.Join(suits, ".")
}
