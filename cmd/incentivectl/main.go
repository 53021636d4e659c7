package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"basketincentives/config"
	"basketincentives/native/reward"
	"basketincentives/observability/logging"
)

const (
	opDeviation = "deviation"
	opDeposit   = "deposit"
	opWithdraw  = "withdraw"
	opBonus     = "bonus"
	opSettle    = "settle"
)

type eventReport struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

type report struct {
	RunID       string        `json:"runId"`
	Environment string        `json:"environment"`
	Operation   string        `json:"operation"`
	Asset       string        `json:"asset"`
	Amount      string        `json:"amount"`
	Bridge      bool          `json:"bridge,omitempty"`
	DsqrBefore  string        `json:"dsqrBefore,omitempty"`
	DsqrAfter   string        `json:"dsqrAfter,omitempty"`
	Reward      string        `json:"reward,omitempty"`
	Penalty     string        `json:"penalty,omitempty"`
	Bonus       string        `json:"bonus,omitempty"`
	Events      []eventReport `json:"events,omitempty"`
}

type options struct {
	configPath   string
	snapshotPath string
	op           string
	asset        string
	amount       string
	recipient    string
	bridge       bool
	reuse        bool
	serve        bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("incentivectl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "./incentives.toml", "Path to the incentive configuration file")
	fs.StringVar(&opts.snapshotPath, "snapshot", "", "Optional YAML basket snapshot applied before evaluation")
	fs.StringVar(&opts.op, "op", opDeposit, "Operation: deviation, deposit, withdraw, bonus or settle")
	fs.StringVar(&opts.asset, "asset", "", "Basket asset address")
	fs.StringVar(&opts.amount, "amount", "0", "Amount in whole units, e.g. 1000 or 0.5")
	fs.StringVar(&opts.recipient, "recipient", "", "Depositor receiving reward and bonus (settle only)")
	fs.BoolVar(&opts.bridge, "bridge", false, "Treat the deposit as already credited to the basket")
	fs.BoolVar(&opts.reuse, "reuse", true, "Prefer configuration already persisted in DataDir")
	fs.BoolVar(&opts.serve, "serve", false, "Keep serving /metrics on Metrics.ListenAddress after the report")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.op = strings.ToLower(strings.TrimSpace(opts.op))
	switch opts.op {
	case opDeviation, opDeposit, opWithdraw, opBonus, opSettle:
	default:
		return opts, fmt.Errorf("unknown operation %q", opts.op)
	}
	if !common.IsHexAddress(opts.asset) {
		return opts, fmt.Errorf("invalid asset address %q", opts.asset)
	}
	if opts.op == opSettle && !common.IsHexAddress(opts.recipient) {
		return opts, fmt.Errorf("settle requires a recipient address")
	}
	return opts, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "incentivectl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.serve && cfg.Metrics.ListenAddress == "" {
		return errors.New("-serve requires Metrics.ListenAddress in the configuration")
	}
	logOut := stderr
	if cfg.LogFile != "" {
		file := logging.FileWriter(cfg.LogFile)
		defer file.Close()
		logOut = file
	}
	logger := logging.Setup("incentivectl", cfg.Environment, cfg.LogLevel, logOut)

	var snap *config.Snapshot
	if opts.snapshotPath != "" {
		if snap, err = config.LoadSnapshot(opts.snapshotPath); err != nil {
			return err
		}
	}
	amount, err := parseAmount(opts)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	n, err := newNode(cfg, snap, opts.reuse, logger)
	if err != nil {
		return err
	}
	defer n.Close()

	out, err := evaluate(n, opts, amount)
	if err != nil {
		return err
	}
	out.RunID = uuid.NewString()
	out.Environment = cfg.Environment
	logger.Info("evaluation complete", "runId", out.RunID, "op", out.Operation, "asset", out.Asset)

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	fmt.Fprintln(stdout, string(encoded))

	if opts.serve {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serveMetrics(ctx, cfg.Metrics.ListenAddress, logger)
	}
	return nil
}

// parseAmount accepts a leading minus sign for the deviation operation only,
// where it describes a withdrawal.
func parseAmount(opts options) (*big.Int, error) {
	raw := strings.TrimSpace(opts.amount)
	negative := opts.op == opDeviation && strings.HasPrefix(raw, "-")
	if negative {
		raw = raw[1:]
	}
	amount, err := config.ParseFixed(raw)
	if err != nil {
		return nil, err
	}
	if negative {
		amount.Neg(amount)
	}
	return amount, nil
}

func evaluate(n *node, opts options, amount *big.Int) (*report, error) {
	asset := common.HexToAddress(opts.asset)
	out := &report{
		Operation: opts.op,
		Asset:     strings.ToLower(asset.Hex()),
		Amount:    config.FormatFixed(amount),
	}
	switch opts.op {
	case opDeviation:
		dev, err := n.reward.AverageDeviation(asset, amount, reward.ModeFor(opts.bridge))
		if err != nil {
			return nil, err
		}
		out.Bridge = opts.bridge
		out.DsqrBefore = config.FormatFixed(dev.Before)
		out.DsqrAfter = config.FormatFixed(dev.After)
	case opDeposit:
		value, err := n.reward.RewardForDeposit(asset, amount, opts.bridge)
		if err != nil {
			return nil, err
		}
		out.Bridge = opts.bridge
		out.Reward = config.FormatFixed(value)
	case opWithdraw:
		value, err := n.reward.PenaltyForWithdrawal(asset, amount)
		if err != nil {
			return nil, err
		}
		out.Penalty = config.FormatFixed(value)
	case opBonus:
		value, err := n.bonus.PredictedBonus(asset, amount)
		if err != nil {
			return nil, err
		}
		out.Bonus = config.FormatFixed(value)
	case opSettle:
		vault := n.settings.Vault
		recipient := common.HexToAddress(opts.recipient)
		paid, err := n.reward.SendRewardForDeposit(vault, asset, recipient, amount, opts.bridge)
		if err != nil {
			return nil, err
		}
		bonusPaid, err := n.bonus.SendBonus(vault, asset, recipient, amount)
		if err != nil {
			return nil, err
		}
		out.Bridge = opts.bridge
		out.Reward = config.FormatFixed(paid)
		out.Bonus = config.FormatFixed(bonusPaid)
	}
	for _, evt := range n.recorder.Events() {
		if strings.HasSuffix(evt.EventType(), ".params.updated") || strings.HasSuffix(evt.EventType(), ".targets.updated") {
			continue
		}
		out.Events = append(out.Events, eventReport{Type: evt.EventType(), Attributes: evt.Attributes()})
	}
	sort.SliceStable(out.Events, func(i, j int) bool { return out.Events[i].Type < out.Events[j].Type })
	return out, nil
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
