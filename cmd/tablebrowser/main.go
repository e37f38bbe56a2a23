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

// Command tablebrowser is the Fyne desktop table browser.
package main

import (
	"context"
	"flag"
	"os"

	"tablebridge/datatable"
	"tablebridge/internal/config"
	"tablebridge/internal/logging"
	"tablebridge/internal/source"
	"tablebridge/windows"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info").Error("loading config", "err", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log.Level)

	ds, err := source.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("opening dataset", "err", err)
		os.Exit(1)
	}

	store, err := datatable.NewTableStore(ds)
	if err != nil {
		logger.Error("creating table store", "err", err)
		os.Exit(1)
	}
	store.SetLogger(logger)

	windows.CreateMainWindow(store, "Table Browser").ShowAndRun()
}
