package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "TRIAGED_SERVER_PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "model.base_url", typ: kString, env: "TRIAGED_MODEL_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Model.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Model.BaseURL },
	},
	{
		key: "llm.base_url", typ: kString, env: "TRIAGED_LLM_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.LLM.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.LLM.BaseURL },
	},
	{
		key: "llm.model", typ: kString, env: "TRIAGED_LLM_MODEL",
		apply:   func(cfg *Config, v any) { cfg.LLM.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.LLM.Model },
	},
	{
		key: "report.base_url", typ: kString, env: "TRIAGED_REPORT_BASE_URL",
		apply:   func(cfg *Config, v any) { cfg.Report.BaseURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Report.BaseURL },
	},
	{
		key: "session.ttl", typ: kString, env: "TRIAGED_SESSION_TTL",
		apply:   func(cfg *Config, v any) { cfg.Session.TTL = v.(string) },
		extract: func(cfg Config) any { return cfg.Session.TTL },
	},
	{
		key: "ranking.top_n", typ: kInt, env: "TRIAGED_RANKING_TOP_N",
		apply:   func(cfg *Config, v any) { cfg.Ranking.TopN = v.(int) },
		extract: func(cfg Config) any { return cfg.Ranking.TopN },
	},
	{
		key: "ranking.roster_path", typ: kString, env: "TRIAGED_RANKING_ROSTER_PATH",
		apply:   func(cfg *Config, v any) { cfg.Ranking.RosterPath = v.(string) },
		extract: func(cfg Config) any { return cfg.Ranking.RosterPath },
	},
	{
		key: "storage.data_dir", typ: kString, env: "TRIAGED_STORAGE_DATA_DIR",
		apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
		extract: func(cfg Config) any { return cfg.Storage.DataDir },
	},
	{
		key: "log.level", typ: kString, env: "TRIAGED_LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
