// Package shgrid wires a server-backed data grid from configuration.
package shgrid

import (
	"context"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	nt "shgrid/entity"
	"shgrid/fetch"
	"shgrid/grid"
	"shgrid/serve"
	"shgrid/store/duck"
)

// EnvPrefix marks environment variables overriding config, "__" separating nested keys.
const EnvPrefix = "SHGRID_"

// Record is a row as decoded from the backend.
type Record = nt.Record

// Config specifies a grid and the reference backend it can be pointed at.
type Config struct {
	URL          string        `yaml:"url"`
	IdColumn     string        `yaml:"id_column"`
	Columns      []nt.Column   `yaml:"columns"`
	Sorters      []nt.Sorter   `yaml:"sorters,omitempty"`
	Limit        int           `yaml:"limit"`
	Offset       int           `yaml:"offset,omitempty"`
	LimitOptions []int         `yaml:"limit_options,omitempty"`
	Debounce     time.Duration `yaml:"debounce"`
	DiscardStale bool          `yaml:"discard_stale,omitempty"`
	Fetch        fetch.Options `yaml:"fetch,omitempty"`

	Data   string       `yaml:"data,omitempty"`
	Watch  bool         `yaml:"watch,omitempty"`
	Index  []string     `yaml:"index,omitempty"`
	Server serve.Config `yaml:"server"`

	LogFile   string `yaml:"log_file,omitempty"`
	LogMaxLen int    `yaml:"log_max_len,omitempty"`
}

// Sample returns a starter config for the reference backend on localhost.
func Sample() *Config {

	return &Config{
		URL:      "http://localhost:8080/rows",
		IdColumn: duck.IdColumn,
		Columns: []nt.Column{
			{ID: duck.IdColumn, Label: "#", Width: 5},
			{ID: "name", Label: "Name", Width: 20},
			{ID: "email", Label: "Email", Width: 30},
		},
		Sorters:      []nt.Sorter{{Column: "name", Asc: true}},
		Limit:        10,
		LimitOptions: []int{10, 25, 50},
		Debounce:     grid.DefaultDebounce,
		Data:         "rows.ndjson",
		Server:       serve.Config{Addr: ":8080"},
		LogFile:      "shgrid.log",
	}
}

// LoadConfig reads config from the yaml file at path, when given, then the environment,
// then any flags that were set, later sources taking precedence.
func LoadConfig(path string, flags *pflag.FlagSet) (cfg *Config, err error) {

	knf := koanf.New(".")

	err = knf.Load(confmap.Provider(map[string]any{
		"id_column":               duck.IdColumn,
		"limit":                   nt.DefaultLimit,
		"debounce":                grid.DefaultDebounce.String(),
		"server.addr":             ":8080",
		"server.shutdown_timeout": "5s",
	}, "."), nil)
	if err != nil {
		err = errors.Wrapf(err, "failed to load defaults")
		return
	}

	if path != "" {
		err = knf.Load(file.Provider(path), yaml.Parser())
		if err != nil {
			err = errors.Wrapf(err, "failed to load config from %s", path)
			return
		}
	}

	err = knf.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		err = errors.Wrapf(err, "failed to load env vars")
		return
	}

	if flags != nil {
		err = knf.Load(posflag.ProviderWithFlag(flags, ".", knf, flagKey(flags)), nil)
		if err != nil {
			err = errors.Wrapf(err, "failed to load flags")
			return
		}
	}

	cfg = &Config{}
	err = knf.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"})
	if err != nil {
		err = errors.Wrapf(err, "failed to decode config")
		return
	}

	cfg.Fetch.Header = fetch.CanonicalHeader(cfg.Fetch.Header)
	return
}

// NewGrid creates a server grid of records with links to each record's detail.
func (cfg *Config) NewGrid(ctx context.Context, lgr nt.Logger) (sg *grid.ServerGrid[Record], err error) {

	if cfg.URL == "" {
		err = errors.New("url is required")
		return
	}

	base := strings.TrimRight(cfg.URL, "/")
	idColumn := cfg.IdColumn

	gridCfg := &grid.Config[Record]{
		Columns:      cfg.Columns,
		URL:          cfg.URL,
		FetchOptions: cfg.Fetch,
		Sorters:      cfg.Sorters,
		Limit:        cfg.Limit,
		Offset:       cfg.Offset,
		LimitOptions: cfg.LimitOptions,
		Debounce:     cfg.Debounce,
		DiscardStale: cfg.DiscardStale,
		RowLink: func(row Record) string {
			id := nt.RecordId(row, idColumn)
			if id == "" {
				return ""
			}
			return base + "/" + id
		},
		Selected: map[string]Record{},
	}

	sg, err = gridCfg.New(ctx, lgr)
	err = errors.Wrapf(err, "failed to create grid")
	return
}

// unexported

// envKey maps SHGRID_FETCH__METHOD to fetch.method.
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// flagKey maps set flags to config keys, --discard-stale to discard_stale and --addr to server.addr.
func flagKey(flags *pflag.FlagSet) func(flg *pflag.Flag) (string, any) {

	return func(flg *pflag.Flag) (string, any) {
		if !flg.Changed {
			return "", nil
		}

		key := strings.ReplaceAll(flg.Name, "-", "_")
		if key == "addr" {
			key = "server.addr"
		}

		return key, posflag.FlagVal(flags, flg)
	}
}
