package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tonmaster/internal/config"
	"tonmaster/internal/game"
	"tonmaster/internal/logging"
	"tonmaster/internal/session"
)

const rule = "--------------------------------------------------"

const helpText = `Comandos:
  <valor>     cobra o valor na maquininha (ex: 9,50)
  t <n>       marca/desmarca o item n no carrinho
  k <teclas>  digita no teclado da maquininha (< apaga)
  ok          confirma o valor digitado
  me          mostra seu painel
  loja        lista as melhorias
  comprar <id> compra uma melhoria
  sair        volta ao painel e encerra`

func runPlay(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir, envName)
	if err != nil {
		return err
	}
	// stdout is the game screen, so logs only go to the file
	logger := logging.Init(logging.Options{
		Component: "play",
		File:      cfg.App.LogFile,
		Level:     cfg.App.LogLevel,
		Quiet:     true,
	})

	src, closeSrc := newScenarioSource(cmd.Context(), cfg, logger)
	defer closeSrc()

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	ctl := session.New(cfg.Seed(time.Now()), src, policy, session.WithLogger(logging.New("session")))

	g := &terminalGame{
		ctl:     ctl,
		offline: !src.Live(),
		in:      bufio.NewScanner(os.Stdin),
		out:     cmd.OutOrStdout(),
		sleep:   time.Sleep,
	}
	return g.run(cmd.Context())
}

// terminalGame is the line-oriented shell around the controller.
type terminalGame struct {
	ctl *session.Controller
	// offline is set when customers come from the bundled pool.
	offline bool
	in      *bufio.Scanner
	out     io.Writer
	sleep   func(time.Duration)
}

func (g *terminalGame) run(ctx context.Context) error {
	s := g.ctl.State()
	fmt.Fprintf(g.out, "✅ Bem-vindo, %s! Nível %d, saldo %s.\n", s.MerchantName, s.Level, game.FormatBRL(s.Balance))
	if g.offline {
		fmt.Fprintln(g.out, "Modo offline: clientes de exemplo.")
	}
	fmt.Fprintln(g.out, helpText)

	if err := g.nextCustomer(ctx); err != nil {
		return err
	}

	for {
		fmt.Fprint(g.out, "> ")
		if !g.in.Scan() {
			break
		}
		line := strings.TrimSpace(g.in.Text())
		if line == "" {
			continue
		}
		done, err := g.handle(ctx, line)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
	g.ctl.Exit()
	return g.in.Err()
}

func (g *terminalGame) handle(ctx context.Context, line string) (bool, error) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "sair", "q":
		g.ctl.Exit()
		g.printDashboard()
		return true, nil
	case "me":
		g.printDashboard()
	case "ajuda", "help", "?":
		fmt.Fprintln(g.out, helpText)
	case "loja":
		g.printStore()
	case "comprar":
		s, err := g.ctl.Purchase(arg)
		if err != nil {
			fmt.Fprintf(g.out, "❌ Compra recusada: %v\n", err)
			return false, nil
		}
		fmt.Fprintf(g.out, "✅ Melhoria %s desbloqueada! Saldo: %s\n", arg, game.FormatBRL(s.Balance))
	case "t":
		g.toggle(arg)
	case "k":
		snap, err := g.ctl.Press(strings.Split(arg, "")...)
		if err != nil {
			fmt.Fprintf(g.out, "❌ %v\n", err)
			return false, nil
		}
		fmt.Fprintf(g.out, "Visor: %s\n", snap.Display)
	case "ok":
		res, err := g.ctl.ChargeKeypad()
		return false, g.afterCharge(ctx, res, err)
	default:
		amount, err := decimal.NewFromString(strings.ReplaceAll(line, ",", "."))
		if err != nil || amount.IsNegative() {
			fmt.Fprintf(g.out, "Comando desconhecido: %q (digite ajuda)\n", line)
			return false, nil
		}
		res, err := g.ctl.Charge(amount)
		return false, g.afterCharge(ctx, res, err)
	}
	return false, nil
}

func (g *terminalGame) toggle(arg string) {
	snap, err := g.ctl.Round()
	if err != nil || snap.Customer == nil {
		fmt.Fprintln(g.out, "Nenhum cliente no balcão.")
		return
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(snap.Customer.DesiredItems) {
		fmt.Fprintf(g.out, "Item inválido: %q\n", arg)
		return
	}
	snap, err = g.ctl.Toggle(snap.Customer.DesiredItems[n-1].ID)
	if err != nil {
		fmt.Fprintf(g.out, "❌ %v\n", err)
		return
	}
	g.printCart(snap)
}

func (g *terminalGame) afterCharge(ctx context.Context, res game.Result, err error) error {
	if err != nil {
		fmt.Fprintf(g.out, "❌ %v\n", err)
		return nil
	}
	fmt.Fprintln(g.out, rule)
	if !res.OK() {
		fmt.Fprintf(g.out, "❌ Recusado. %s\n", game.Message(res))
		fmt.Fprintln(g.out, rule)
		g.sleep(g.ctl.Policy().FailureHold)
		return nil
	}
	fmt.Fprintf(g.out, "✅ Pagamento Aprovado! %s\n", game.Message(res))
	fmt.Fprintf(g.out, "   +%s  +%d XP\n", game.FormatBRL(res.Reward.Money), res.Reward.XP)
	fmt.Fprintln(g.out, rule)
	g.sleep(g.ctl.Policy().SuccessHold)
	return g.nextCustomer(ctx)
}

func (g *terminalGame) nextCustomer(ctx context.Context) error {
	fmt.Fprintln(g.out, "Aguardando cliente...")
	c, err := g.ctl.StartRound(ctx)
	if err != nil {
		if errors.Is(err, session.ErrRoundDiscarded) {
			return nil
		}
		return err
	}
	fmt.Fprintln(g.out, rule)
	fmt.Fprintf(g.out, "%s: \"%s\"\n", c.Name, c.Dialogue)
	for i, p := range c.DesiredItems {
		fmt.Fprintf(g.out, "  %d. %-28s %s\n", i+1, p.Name, game.FormatBRL(p.Price))
	}
	fmt.Fprintln(g.out, rule)
	return nil
}

func (g *terminalGame) printCart(snap session.Snapshot) {
	fmt.Fprintf(g.out, "Total Selecionado: %s (%d itens)\n", game.FormatBRL(snap.SelectedTotal), len(snap.Selected))
}

func (g *terminalGame) printDashboard() {
	s := g.ctl.State()
	fmt.Fprintln(g.out, rule)
	fmt.Fprintf(g.out, "%s | Nível %d | %d XP | Saldo %s\n", s.MerchantName, s.Level, s.XP, game.FormatBRL(s.Balance))
	for i, tx := range s.Transactions {
		if i == 5 {
			break
		}
		fmt.Fprintf(g.out, "  %s  %-20s %s\n", tx.Date.Local().Format("02/01 15:04"), tx.CustomerName, game.FormatBRL(tx.Amount))
	}
	fmt.Fprintln(g.out, rule)
}

func (g *terminalGame) printStore() {
	s := g.ctl.State()
	for _, u := range game.Upgrades() {
		mark := " "
		if s.HasUnlocked(u.ID) {
			mark = "✓"
		}
		fmt.Fprintf(g.out, " [%s] %s  %-26s %s\n", mark, u.ID, u.Title, game.FormatBRL(u.Cost))
	}
}
