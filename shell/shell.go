// Package shell is the interactive tutoring console: deal a board, set a
// contract, play cards against the AI tiers, and review the score.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/cardsoft/bridgetutor/ai"
	"github.com/cardsoft/bridgetutor/card"
	"github.com/cardsoft/bridgetutor/config"
	"github.com/cardsoft/bridgetutor/contract"
	"github.com/cardsoft/bridgetutor/dealstore"
	"github.com/cardsoft/bridgetutor/play"
	"github.com/cardsoft/bridgetutor/scoring"
)

type ShellController struct {
	l   *readline.Instance
	cfg *config.Config

	store *dealstore.Store

	curDeal     *card.Deal
	curContract contract.Contract
	haveDeal    bool
	haveGame    bool
	vul         contract.Vulnerability
	game        *play.State

	curTier    ai.Tier
	strategies map[ai.Tier]ai.Strategy
}

type shellcmd struct {
	cmd  string
	args []string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(m string, w io.Writer) {
	io.WriteString(w, m)
	io.WriteString(w, "\n")
}

func NewShellController(cfg *config.Config) *ShellController {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mbridgetutor>\033[0m ",
		HistoryFile:     "/tmp/readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		panic(err)
	}
	tier, err := ai.ParseTier(cfg.DefaultTier)
	if err != nil {
		log.Warn().Str("default-tier", cfg.DefaultTier).Msg("unknown-tier-using-intermediate")
		tier = ai.Intermediate
	}
	return &ShellController{
		l:          l,
		cfg:        cfg,
		curTier:    tier,
		strategies: map[ai.Tier]ai.Strategy{},
	}
}

func (sc *ShellController) showMessage(m string) {
	showMessage(m, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// strategyFor builds tiers lazily; the search tiers allocate large
// transposition tables on first use.
func (sc *ShellController) strategyFor(tier ai.Tier) (ai.Strategy, error) {
	if s, ok := sc.strategies[tier]; ok {
		return s, nil
	}
	s, err := ai.New(tier, sc.cfg)
	if err != nil {
		return nil, err
	}
	sc.strategies[tier] = s
	return s, nil
}

func (sc *ShellController) openStore() (*dealstore.Store, error) {
	if sc.store != nil {
		return sc.store, nil
	}
	s, err := dealstore.Open(sc.cfg.DealStorePath)
	if err != nil {
		return nil, err
	}
	sc.store = s
	return s, nil
}

var errNoDeal = errors.New("no deal yet; use `deal` or `load`")
var errNoGame = errors.New("no contract set; use `contract`, e.g. `contract \"4H by S\"`")

func (sc *ShellController) deal(cmd *shellcmd) (*Response, error) {
	sc.curDeal = card.RandomDeal()
	sc.haveDeal = true
	sc.haveGame = false
	sc.game = nil
	return msg(fmt.Sprintf("dealt board %s\n%s", sc.curDeal.ID(), dealText(sc.curDeal))), nil
}

func (sc *ShellController) setContract(cmd *shellcmd) (*Response, error) {
	if !sc.haveDeal {
		return nil, errNoDeal
	}
	if len(cmd.args) == 0 {
		return nil, errors.New("usage: contract \"<level><strain>[X|XX] by <seat>\"")
	}
	c, err := contract.Parse(strings.Join(cmd.args, " "))
	if err != nil {
		return nil, err
	}
	g, err := play.StartPlay(sc.curDeal, c, sc.vul, false)
	if err != nil {
		return nil, err
	}
	sc.curContract = c
	sc.haveGame = true
	sc.game = g
	return msg(fmt.Sprintf("playing %v, %v leads\n%s", c, c.OpeningLeader(), sc.gameText())), nil
}

// auction derives the contract from a called-out auction instead of
// setting it directly. Example: auction N 1S P 4S P P P
func (sc *ShellController) auction(cmd *shellcmd) (*Response, error) {
	if !sc.haveDeal {
		return nil, errNoDeal
	}
	if len(cmd.args) < 2 {
		return nil, errors.New("usage: auction <dealer> <call> <call> ...")
	}
	dealer, err := card.ParseSeat(cmd.args[0])
	if err != nil {
		return nil, err
	}
	auc := contract.Auction{Dealer: dealer}
	for _, tok := range cmd.args[1:] {
		call, err := contract.ParseCall(tok)
		if err != nil {
			return nil, err
		}
		auc.Calls = append(auc.Calls, call)
	}
	c, err := auc.Result()
	if err != nil {
		return nil, err
	}
	g, err := play.StartPlay(sc.curDeal, c, sc.vul, false)
	if err != nil {
		return nil, err
	}
	sc.curContract = c
	sc.haveGame = true
	sc.game = g
	return msg(fmt.Sprintf("auction gives %v, %v leads\n%s", c, c.OpeningLeader(), sc.gameText())), nil
}

func (sc *ShellController) setVul(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg("vulnerability: " + sc.vul.String()), nil
	}
	v, err := contract.ParseVulnerability(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if sc.haveGame {
		return nil, errors.New("cannot change vulnerability mid-hand; replay or deal first")
	}
	sc.vul = v
	return msg("vulnerability: " + v.String()), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if sc.haveGame {
		return msg(sc.gameText()), nil
	}
	if sc.haveDeal {
		return msg(dealText(sc.curDeal)), nil
	}
	return nil, errNoDeal
}

func (sc *ShellController) legal(cmd *shellcmd) (*Response, error) {
	if !sc.haveGame {
		return nil, errNoGame
	}
	plays := sc.game.LegalPlays()
	strs := make([]string, len(plays))
	for i, c := range plays {
		strs[i] = c.String()
	}
	return msg(fmt.Sprintf("%v may play: %s", sc.game.NextToPlay(), strings.Join(strs, " "))), nil
}

func (sc *ShellController) playCard(cmd *shellcmd) (*Response, error) {
	if !sc.haveGame {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <card>, e.g. `play SA` or `play ♠A`")
	}
	c, err := card.Parse(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.PlayCard(c); err != nil {
		return nil, err
	}
	return msg(sc.afterPlayText()), nil
}

// auto lets the current tier play the next card, or `auto <n>` for n
// cards, or `auto out` to finish the hand.
func (sc *ShellController) auto(cmd *shellcmd) (*Response, error) {
	if !sc.haveGame {
		return nil, errNoGame
	}
	n := 1
	if len(cmd.args) > 0 {
		if cmd.args[0] == "out" {
			n = 52
		} else {
			var err error
			n, err = strconv.Atoi(cmd.args[0])
			if err != nil {
				return nil, err
			}
		}
	}
	strat, err := sc.strategyFor(sc.curTier)
	if err != nil {
		return nil, err
	}
	var lines []string
	for i := 0; i < n && !sc.game.Over(); i++ {
		seat := sc.game.NextToPlay()
		chosen, err := strat.ChooseCard(context.Background(), sc.game, seat)
		if err != nil {
			return nil, err
		}
		if err := sc.game.PlayCard(chosen); err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%v plays %v", seat, chosen))
	}
	lines = append(lines, sc.afterPlayText())
	return msg(strings.Join(lines, "\n")), nil
}

func (sc *ShellController) tier(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg("current tier: " + sc.curTier.String()), nil
	}
	t, err := ai.ParseTier(cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.curTier = t
	return msg("tier set to " + t.String()), nil
}

// solve runs the advanced search on the current position and reports the
// recommended card without playing it.
func (sc *ShellController) solve(cmd *shellcmd) (*Response, error) {
	if !sc.haveGame {
		return nil, errNoGame
	}
	if sc.game.Over() {
		return nil, errors.New("hand is over; nothing to solve")
	}
	strat, err := sc.strategyFor(ai.Advanced)
	if err != nil {
		return nil, err
	}
	seat := sc.game.NextToPlay()
	chosen, err := strat.ChooseCard(context.Background(), sc.game, seat)
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("recommended for %v: %v", seat, chosen)), nil
}

func (sc *ShellController) score(cmd *shellcmd) (*Response, error) {
	if !sc.haveGame {
		return nil, errNoGame
	}
	if !sc.game.Over() {
		return nil, fmt.Errorf("hand not over: %d tricks remain", sc.game.TricksRemaining())
	}
	res := scoring.Score(sc.curContract, sc.game.DeclarerTricks(), sc.vul)
	return msg(scoreText(sc.curContract, sc.game.DeclarerTricks(), res)), nil
}

// replay restarts the current deal and contract from the opening lead.
// The deal is frozen, so the rebuilt hands are identical to the first run.
func (sc *ShellController) replay(cmd *shellcmd) (*Response, error) {
	if !sc.haveGame {
		return nil, errNoGame
	}
	g, err := play.StartPlay(sc.curDeal, sc.curContract, sc.vul, true)
	if err != nil {
		return nil, err
	}
	sc.game = g
	return msg(fmt.Sprintf("replaying %v, %v leads\n%s",
		sc.curContract, sc.curContract.OpeningLeader(), sc.gameText())), nil
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if !sc.haveDeal {
		return nil, errNoDeal
	}
	store, err := sc.openStore()
	if err != nil {
		return nil, err
	}
	if err := store.Save(context.Background(), sc.curDeal); err != nil {
		return nil, err
	}
	return msg("saved board " + sc.curDeal.ID()), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <board-id>")
	}
	store, err := sc.openStore()
	if err != nil {
		return nil, err
	}
	deal, err := store.Get(context.Background(), cmd.args[0])
	if err != nil {
		return nil, err
	}
	sc.curDeal = deal
	sc.haveDeal = true
	sc.haveGame = false
	sc.game = nil
	return msg(fmt.Sprintf("loaded board %s\n%s", deal.ID(), dealText(deal))), nil
}

func (sc *ShellController) recent(cmd *shellcmd) (*Response, error) {
	n := 10
	if len(cmd.args) > 0 {
		var err error
		n, err = strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, err
		}
	}
	store, err := sc.openStore()
	if err != nil {
		return nil, err
	}
	records, err := store.Recent(context.Background(), n)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return msg("no saved boards"), nil
	}
	var sb strings.Builder
	for _, r := range records {
		fmt.Fprintf(&sb, "%s  %s  %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Layout)
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

func (sc *ShellController) executeCommand(cmd *shellcmd, sig chan os.Signal) (*Response, error) {
	switch cmd.cmd {
	case "deal":
		return sc.deal(cmd)
	case "contract":
		return sc.setContract(cmd)
	case "auction":
		return sc.auction(cmd)
	case "vul":
		return sc.setVul(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "legal":
		return sc.legal(cmd)
	case "play":
		return sc.playCard(cmd)
	case "auto":
		return sc.auto(cmd)
	case "tier":
		return sc.tier(cmd)
	case "solve":
		return sc.solve(cmd)
	case "score":
		return sc.score(cmd)
	case "replay":
		return sc.replay(cmd)
	case "save":
		return sc.save(cmd)
	case "load":
		return sc.load(cmd)
	case "recent":
		return sc.recent(cmd)
	case "help":
		return msg(usage), nil
	case "bye", "exit", "quit":
		sig <- syscall.SIGINT
		return nil, errors.New("sending quit signal")
	default:
		return nil, fmt.Errorf("unknown command %q; try `help`", cmd.cmd)
	}
}

func (sc *ShellController) handle(line string, sig chan os.Signal) error {
	fields, err := shellquote.Split(line)
	if err != nil {
		sc.showError(err)
		return nil
	}
	if len(fields) == 0 {
		return nil
	}
	cmd := &shellcmd{cmd: fields[0], args: fields[1:]}
	resp, err := sc.executeCommand(cmd, sig)
	if err != nil {
		if cmd.cmd == "bye" || cmd.cmd == "exit" || cmd.cmd == "quit" {
			return err
		}
		sc.showError(err)
		return nil
	}
	if resp != nil {
		sc.showMessage(resp.message)
	}
	return nil
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		if err := sc.handle(strings.TrimSpace(line), sig); err != nil {
			log.Error().Err(err).Msg("")
			break
		}
	}
	log.Debug().Msg("exiting readline loop")
}

// Execute runs one command non-interactively, for `bridgetutor deal` style
// invocations.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if err := sc.handle(strings.TrimSpace(line), sig); err != nil {
		log.Error().Err(err).Msg("")
	}
}

func (sc *ShellController) Cleanup() {
	if sc.store != nil {
		if err := sc.store.Close(); err != nil {
			log.Error().Err(err).Msg("closing-deal-store")
		}
	}
}
