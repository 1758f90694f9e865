// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/kvedge/respd/common"
	"github.com/kvedge/respd/confengine"
	"github.com/kvedge/respd/internal/sigs"
	"github.com/kvedge/respd/internal/tracing"
	"github.com/kvedge/respd/logger"
	"github.com/kvedge/respd/server"
	"github.com/kvedge/respd/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RESP server and the admin HTTP surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

type storeConfig struct {
	Shards int `config:"shards"`
}

func loadConfig() (*confengine.Config, error) {
	if configPath == "" {
		return confengine.LoadContent([]byte("{}\n"))
	}
	return confengine.LoadConfigPath(configPath)
}

// shardOverrideFromEnv lets RESPD_STORE_SHARDS win over the config file,
// useful for container deployments that size the store from a resource
// limit rather than a checked-in value.
func shardOverrideFromEnv() (int, bool) {
	v, set := os.LookupEnv("RESPD_STORE_SHARDS")
	if !set {
		return 0, false
	}
	opts := common.NewOptions()
	opts.Merge("shards", v)
	n, err := opts.GetInt("shards")
	if err != nil {
		logger.Warnf("ignoring invalid RESPD_STORE_SHARDS=%q: %v", v, err)
		return 0, false
	}
	return n, true
}

func applyLoggerConfig(conf *confengine.Config) {
	opt := logger.Options{Stdout: true, Level: string(logger.LevelInfo)}
	if conf.Has("logger") {
		if err := conf.UnpackChild("logger", &opt); err != nil {
			logger.Warnf("invalid logger config, keeping previous options: %v", err)
			return
		}
	}
	logger.SetOptions(opt)
}

func runServe() error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	applyLoggerConfig(conf)
	tracing.Init()

	shards := storeConfig{Shards: common.DefaultShards}
	if conf.Has("store") {
		if err := conf.UnpackChild("store", &shards); err != nil {
			return err
		}
	}
	if n, ok := shardOverrideFromEnv(); ok {
		shards.Shards = n
	}
	st := store.New(shards.Shards)

	respSrv, err := server.NewRespServer(conf, st)
	if err != nil {
		return err
	}

	adminSrv, err := server.NewAdminServer(conf, st)
	if err != nil {
		return err
	}
	if adminSrv != nil {
		respSrv.OnListen = adminSrv.MarkReady
	}

	errs := make(chan error, 2)
	go func() {
		if err := respSrv.ListenAndServe(); err != nil {
			errs <- err
		}
	}()
	if adminSrv != nil {
		go func() {
			if err := adminSrv.ListenAndServe(); err != nil {
				errs <- err
			}
		}()
	}

	term := sigs.Terminate()
	reload := sigs.Reload()

	for {
		select {
		case err := <-errs:
			return err

		case <-reload:
			logger.Infof("reload signal received, re-reading logger configuration")
			if conf, err = loadConfig(); err != nil {
				logger.Errorf("reload failed, keeping previous config: %v", err)
				continue
			}
			applyLoggerConfig(conf)

		case <-term:
			logger.Infof("shutdown signal received, draining connections")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var result *multierror.Error
			if err := respSrv.Shutdown(ctx); err != nil {
				result = multierror.Append(result, err)
			}
			if adminSrv != nil {
				if err := adminSrv.Shutdown(ctx); err != nil {
					result = multierror.Append(result, err)
				}
			}
			return result.ErrorOrNil()
		}
	}
}
