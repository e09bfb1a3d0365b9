package main

import (
	"fmt"

	"ChatEduca/internal/config"
	"ChatEduca/internal/initial"
	"ChatEduca/pkg/zlog"

	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

type Options struct {
	ConfigPath string
}

func (o *Options) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.ConfigPath, "config", "c", config.DefaultPath, "path to the TOML config file")
}

// setup loads and validates the config, starts logging and opens the
// database. The returned func flushes logs and closes the database.
func (o *Options) setup() (*config.Config, *gorm.DB, func(), error) {
	conf, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, nil, nil, err
	}

	flush, err := zlog.Init(zlog.Options{
		LogPath: conf.LogConfig.LogPath,
		Level:   conf.LogConfig.Level,
		Console: conf.IsDevelopment(),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := initial.OpenDatabase(conf.DatabaseConfig)
	if err != nil {
		flush()
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return conf, db, func() {
		initial.CloseDatabase(db)
		flush()
	}, nil
}
