package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"colonywork/internal/config"
	"colonywork/internal/core"
	"colonywork/plugins/build"
)

type checkedRecord struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind,omitempty"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

type checkedColony struct {
	ColonyID string          `json:"colony_id"`
	Loaded   int             `json:"loaded"`
	Released int             `json:"released"`
	Dropped  []checkedRecord `json:"dropped,omitempty"`
}

var errRecordsDropped = errors.New("saved work orders would be dropped on load")

// checkCLI decodes every saved colony against the installed plugins and
// reports records that would be dropped. It exits 1 when any would be.
func checkCLI(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("colonywork check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath string
		asJSON     bool
	)
	fs.StringVar(&configPath, "config", "", "path to colonywork yaml config")
	fs.BoolVar(&asJSON, "json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	results, err := checkColonies(context.Background(), configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "colonywork check: %v\n", err)
		return 1
	}
	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			_, _ = fmt.Fprintf(stderr, "colonywork check: %v\n", err)
			return 1
		}
	} else {
		for _, c := range results {
			_, _ = fmt.Fprintf(stdout, "colony %s: loaded=%d released=%d dropped=%d\n", c.ColonyID, c.Loaded, c.Released, len(c.Dropped))
			for _, d := range c.Dropped {
				_, _ = fmt.Fprintf(stdout, "  [%d] %s %s: %s\n", d.Index, d.Reason, d.Kind, d.Error)
			}
		}
	}
	for _, c := range results {
		if len(c.Dropped) > 0 {
			_, _ = fmt.Fprintf(stderr, "colonywork check: %v\n", errRecordsDropped)
			return 1
		}
	}
	return 0
}

func checkColonies(ctx context.Context, configPath string) ([]checkedColony, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	store, err := core.OpenRecordStore(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}
	svc := core.NewService(store)
	defer func() { _ = svc.Close() }()
	if _, err := svc.InstallPlugin(build.New()); err != nil {
		return nil, err
	}
	roster, err := rosterFromConfig(cfg.Colony)
	if err != nil {
		return nil, err
	}
	ids, err := store.Colonies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list colonies: %w", err)
	}
	results := make([]checkedColony, 0, len(ids))
	for _, id := range ids {
		var citizens []*core.Citizen
		if id == cfg.Colony.ID {
			citizens = roster
		}
		report, err := svc.CheckColony(ctx, id, citizens...)
		if err != nil {
			return nil, err
		}
		results = append(results, toChecked(report))
	}
	return results, nil
}

func toChecked(report core.LoadReport) checkedColony {
	out := checkedColony{ColonyID: report.ColonyID, Loaded: report.Loaded, Released: report.Released}
	for _, d := range report.Dropped {
		out.Dropped = append(out.Dropped, checkedRecord{
			Index:  d.Index,
			Kind:   string(d.Kind),
			Reason: d.Reason,
			Error:  d.Err.Error(),
		})
	}
	return out
}
