package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/swapdex/internal/source"
	"github.com/kailas-cloud/swapdex/internal/usecase/hotswap"
)

func newReindexCmd(opts *rootOptions) *cobra.Command {
	var alias string
	var partitions int
	var maxFailed uint64
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild an alias from its source collection and hot-swap it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReindex(cmd, opts, alias, partitions, maxFailed)
		},
	}
	cmd.Flags().StringVar(&alias, "alias", "", "alias to rebuild (must be configured under indexes)")
	cmd.Flags().IntVar(&partitions, "partitions", 0, "override source.partitions")
	cmd.Flags().Uint64Var(&maxFailed, "max-failed", 0, "records allowed to fail before the swap is abandoned")
	_ = cmd.MarkFlagRequired("alias")
	return cmd
}

func runReindex(cmd *cobra.Command, opts *rootOptions, alias string, partitions int, maxFailed uint64) error {
	cfg, logger := opts.cfg, opts.logger

	ic, ok := cfg.Index(alias)
	if !ok {
		return fmt.Errorf("alias %q is not configured", alias)
	}
	if ic.Collection == "" {
		return fmt.Errorf("alias %q has no source collection", alias)
	}
	if !cfg.Source.Enabled() {
		return errors.New("source.mongo_uri is not configured")
	}
	if partitions <= 0 {
		partitions = cfg.Source.Partitions
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.loader.Load(ctx, source.LoadRequest{
		Collection: ic.Collection,
		IDField:    ic.IDField,
		Partitions: partitions,
	})
	if err != nil {
		return fmt.Errorf("load %s: %w", ic.Collection, err)
	}
	logger.Info("Loaded source collection",
		zap.String("collection", ic.Collection),
		zap.Int("records", records.Len()),
		zap.Int("partitions", records.NumPartitions()),
	)

	res, err := a.swaps.HotSwap(ctx, hotswap.Request{
		Alias:               alias,
		DocType:             ic.DocType,
		Records:             records,
		Fields:              ic.Fields,
		Mappings:            ic.Mappings,
		MaxWriteConnections: cfg.Engine.MaxWriteConnections,
		MaxFailed:           maxFailed,
	})
	if err != nil {
		return fmt.Errorf("hot swap %s: %w", alias, err)
	}

	cmd.Printf("%s -> %s (indexed %d, failed %d, retired %v)\n",
		alias, res.NewIndex, res.Indexed, res.Failed, res.Retired)
	return nil
}
