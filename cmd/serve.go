// Copyright © 2018 NAME HERE <EMAIL ADDRESS>
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

package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumen-space/spacepacket/decom"
	"github.com/lumen-space/spacepacket/relay"
	"github.com/lumen-space/spacepacket/transfer"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a websocket relay that fans out packets from a transfer service",
	Long: `serve starts an HTTP server exposing a websocket endpoint that
streams every packet transmitted through a transfer service to
subscribed clients, optionally alongside a REST view of a
telemetry dictionary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	log := initLogger(cfg.Logs)

	var dict *decom.Dictionary
	if cfg.DictionaryPath != "" {
		dict, err = decom.LoadDictionary(cfg.DictionaryPath)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.DictionaryPath).Msg("failed to load dictionary, continuing without it")
			dict = nil
		} else {
			log.Info().Int("packets", len(dict.Packets)).Msg("loaded telemetry dictionary")
		}
	}

	svc := transfer.NewService()
	hub := relay.NewHub(log)
	go hub.Run()
	svc.SetSubLayer(hub)

	router := relay.Router(hub, svc, dict, cfg.WebsocketPrefix)
	httpServer := &http.Server{Addr: cfg.Listen, Handler: router}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt)

	go func() {
		log.Info().Str("addr", cfg.Listen).Str("ws", cfg.WebsocketPrefix).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-shutdown
	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}
