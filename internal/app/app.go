// Package app wires configuration, the backend client, and the aggregation
// engine into the CLI commands.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Ivevan/dorsu-connect-calendar/internal/api"
	"github.com/Ivevan/dorsu-connect-calendar/internal/config"
	"github.com/Ivevan/dorsu-connect-calendar/internal/engine"
	"github.com/Ivevan/dorsu-connect-calendar/internal/state"
	"github.com/Ivevan/dorsu-connect-calendar/internal/timekey"
)

type command struct {
	name       string
	target     string
	categories []string
}

func Run(ctx context.Context, args []string, cfg config.Runtime, stdout io.Writer) error {
	cmd, err := parseArgs(args)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose)
	client := api.New(cfg.APIBaseURL, cfg.Timeout, logger)
	eng := engine.New(client, logger, engine.Options{
		Cooldown:     cfg.Cooldown,
		BufferMonths: cfg.BufferMonths,
		FetchLimit:   cfg.FetchLimit,
	})
	if cmd.categories != nil {
		eng.SetCategoryFilter(cmd.categories)
	}

	switch cmd.name {
	case "month":
		return runMonth(ctx, eng, logger, cfg, cmd.target, false, stdout)
	case "refresh":
		return runMonth(ctx, eng, logger, cfg, cmd.target, true, stdout)
	case "day":
		return runDay(ctx, eng, logger, cfg, cmd.target, stdout)
	case "agenda":
		return runAgenda(ctx, eng, logger, cfg, cmd.target, stdout)
	default:
		return fmt.Errorf("unsupported command %q", cmd.name)
	}
}

// ensureLoaded aborts only when no source produced data. A single failed
// source is logged and the surviving events are rendered.
func ensureLoaded(ctx context.Context, eng *engine.Engine, logger *slog.Logger, month timekey.MonthKey, force bool) error {
	err := eng.EnsureMonthLoaded(ctx, month, force)
	if err == nil {
		return nil
	}
	if errors.Is(err, engine.ErrAllSourcesFailed) || ctx.Err() != nil {
		return fmt.Errorf("load month %s: %w", month, err)
	}
	logger.Warn("rendering partial results", "month", month.String(), "error", err)
	return nil
}

func parseArgs(args []string) (command, error) {
	if len(args) == 0 {
		return command{name: "month"}, nil
	}

	cmd := command{name: strings.TrimSpace(args[0])}
	rest := args[1:]

	switch cmd.name {
	case "month", "refresh", "day", "agenda":
	default:
		return command{}, fmt.Errorf("usage: connect-calendar <month [YYYY-MM]|day YYYY-MM-DD|agenda [YYYY-MM]|refresh [YYYY-MM]> [categories]")
	}

	if len(rest) > 0 && !strings.Contains(rest[0], ",") && looksLikeDate(rest[0]) {
		cmd.target = strings.TrimSpace(rest[0])
		rest = rest[1:]
	}
	if cmd.name == "day" && cmd.target == "" {
		return command{}, fmt.Errorf("usage: connect-calendar day YYYY-MM-DD [categories]")
	}

	if len(rest) > 1 {
		return command{}, fmt.Errorf("unexpected argument %q", rest[1])
	}
	if len(rest) == 1 {
		names := strings.Split(rest[0], ",")
		for i, name := range names {
			names[i] = strings.TrimSpace(name)
		}
		cmd.categories = names
	}

	return cmd, nil
}

func looksLikeDate(arg string) bool {
	trimmed := strings.TrimSpace(arg)
	return len(trimmed) >= 7 && trimmed[4] == '-'
}

func runMonth(ctx context.Context, eng *engine.Engine, logger *slog.Logger, cfg config.Runtime, target string, force bool, stdout io.Writer) error {
	month, err := resolveMonth(target)
	if err != nil {
		return err
	}

	if err := ensureLoaded(ctx, eng, logger, month, force); err != nil {
		return err
	}

	snapshot := state.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Command:     "month",
		Month:       month.String(),
		Count:       eng.MonthCount(month),
		Cells:       eng.MonthGrid(month),
	}
	if err := state.Save(cfg.SnapshotPath, snapshot); err != nil {
		return err
	}
	return writeJSON(stdout, snapshot)
}

func runDay(ctx context.Context, eng *engine.Engine, logger *slog.Logger, cfg config.Runtime, target string, stdout io.Writer) error {
	day, ok := timekey.Parse(target)
	if !ok {
		return fmt.Errorf("invalid day %q", target)
	}

	if err := ensureLoaded(ctx, eng, logger, day.MonthOf(), false); err != nil {
		return err
	}

	events := eng.EventsOnDay(day)
	snapshot := state.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Command:     "day",
		Day:         day.String(),
		Count:       len(events),
		Events:      events,
	}
	if color, hasColor := engine.PriorityColor(events); hasColor {
		snapshot.Color = color
	}
	if err := state.Save(cfg.SnapshotPath, snapshot); err != nil {
		return err
	}
	return writeJSON(stdout, snapshot)
}

func runAgenda(ctx context.Context, eng *engine.Engine, logger *slog.Logger, cfg config.Runtime, target string, stdout io.Writer) error {
	month, err := resolveMonth(target)
	if err != nil {
		return err
	}

	if err := ensureLoaded(ctx, eng, logger, month, false); err != nil {
		return err
	}

	agenda := eng.GroupedByYearThenDay()
	count := 0
	for _, year := range agenda {
		for _, day := range year.Days {
			count += len(day.Events)
		}
	}

	snapshot := state.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Command:     "agenda",
		Month:       month.String(),
		Count:       count,
		Agenda:      agenda,
	}
	if err := state.Save(cfg.SnapshotPath, snapshot); err != nil {
		return err
	}
	return writeJSON(stdout, snapshot)
}

func resolveMonth(target string) (timekey.MonthKey, error) {
	if strings.TrimSpace(target) == "" {
		return timekey.FromTime(time.Now()).MonthOf(), nil
	}
	return timekey.ParseMonthKey(target)
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func writeJSON(w io.Writer, payload any) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if _, err := w.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
