// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the demo commands' configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config selects and parameterizes the data source of a demo command.
type Config struct {
	Source struct {
		// Driver is one of "demo", "mysql" or "deltashare".
		Driver string `mapstructure:"driver"`

		// DSN and Table configure the mysql driver. IDColumn names the
		// primary key column; leave empty for a read-only view.
		DSN      string `mapstructure:"dsn"`
		Table    string `mapstructure:"table"`
		IDColumn string `mapstructure:"id_column"`

		// ProfilePath, Share, Schema and ShareTable configure deltashare.
		ProfilePath string `mapstructure:"profile_path"`
		Share       string `mapstructure:"share"`
		Schema      string `mapstructure:"schema"`
		ShareTable  string `mapstructure:"share_table"`
		FileID      string `mapstructure:"file_id"`
	} `mapstructure:"source"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// Load reads a yaml config file. A missing path yields the demo defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("source.driver", "demo")
	v.SetDefault("log.level", "info")

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
