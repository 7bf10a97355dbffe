package main

import (
	"fmt"
	"sort"

	"jobscout-engine/internal/config"
	"jobscout-engine/internal/pipeline"
	"jobscout-engine/internal/scrape/hexagon"
	"jobscout-engine/internal/scrape/justjoinit"
	"jobscout-engine/internal/scrape/pracuj"
	"jobscout-engine/internal/scrape/types"
	"jobscout-engine/internal/scrape/util"
)

// adapters maps config `sites[].adapter` names to constructors.
var adapters = map[string]func(*util.Fetcher) types.Adapter{
	justjoinit.SiteID: func(f *util.Fetcher) types.Adapter { return justjoinit.New(f) },
	pracuj.SiteID:     func(f *util.Fetcher) types.Adapter { return pracuj.New(f) },
	hexagon.SiteID:    func(f *util.Fetcher) types.Adapter { return hexagon.New(f) },
}

func buildSources(cfg config.Config, f *util.Fetcher) ([]pipeline.Source, error) {
	var out []pipeline.Source
	for _, s := range cfg.Sites {
		if !s.Enabled {
			continue
		}
		mk, ok := adapters[s.Adapter]
		if !ok {
			return nil, fmt.Errorf("site %q: unknown adapter %q (known: %v)", s.Name, s.Adapter, adapterNames())
		}
		out = append(out, pipeline.Source{
			Adapter: mk(f),
			Search:  types.Search{URL: s.URL, MaxPages: s.MaxPages},
		})
	}
	return out, nil
}

func adapterNames() []string {
	names := make([]string, 0, len(adapters))
	for n := range adapters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func filtersFrom(cfg config.Config) pipeline.Filters {
	return pipeline.Filters{
		RequireAny: cfg.Filters.RequireAny,
		BlockAny:   cfg.Filters.BlockAny,
		Locations:  cfg.Filters.Locations,
		RemoteOnly: cfg.Filters.RemoteOnly,
	}
}
