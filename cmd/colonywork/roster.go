package main

import (
	"fmt"

	"github.com/google/uuid"

	"colonywork/internal/config"
	"colonywork/internal/core"
	"colonywork/pkg/domain"
)

// rosterNamespace scopes derived citizen ids so a citizen keeps its id across
// runs without one being written to the config.
var rosterNamespace = uuid.MustParse("8d0c1c4e-5a3b-4f69-9a51-1f1c6a0d7e42")

func rosterFromConfig(colony config.Colony) ([]*core.Citizen, error) {
	roster := make([]*core.Citizen, 0, len(colony.Citizens))
	for i, entry := range colony.Citizens {
		id := uuid.NewSHA1(rosterNamespace, []byte(colony.ID+"/"+entry.Name))
		if entry.ID != "" {
			parsed, err := uuid.Parse(entry.ID)
			if err != nil {
				return nil, fmt.Errorf("colony.citizens[%d].id: %w", i, err)
			}
			id = parsed
		}
		citizen := core.NewCitizen(id, entry.Name, entry.Job, entry.Level)
		citizen.SetBusy(entry.Busy)
		roster = append(roster, citizen)
	}
	return roster, nil
}

// seedOrders decodes configured order records into a colony that has no saved
// state. Records without an id get a fresh one; invalid records are skipped.
func seedOrders(reg *domain.Registry, colony *core.Colony, raw []map[string]any, logger core.Logger) int {
	seeded := 0
	for i, fields := range raw {
		rec := domain.Record(fields).Clone()
		if !rec.Has(domain.FieldID) {
			rec.SetString(domain.FieldID, uuid.NewString())
		}
		order, err := domain.Decode(reg, rec)
		if err != nil {
			logger.Warn("skipping configured work order", "index", i, "error", err)
			continue
		}
		if _, err := colony.AddOrder(order); err != nil {
			logger.Warn("skipping configured work order", "index", i, "error", err)
			continue
		}
		seeded++
	}
	return seeded
}
