/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Gist of what's happening:
//
// We're using Gin's Engine (gin.New()) which provides:
// - A router with middleware support
// - HTTP handler implementation (ServeHTTP)
// And then we add gin.Recovery() for handling panics and custom
// middlewares for logging.
//
// When assigned to http.Server.Handler, we're using Gin's ServeHTTP method
// since gin.Engine implements http.Handler interface
//
// This gives us several benefits:
// - Graceful Shutdown: Using http.Server gives us control over graceful shutdown through the Shutdown() method
// - Context Integration: We can properly integrate with the application's context for lifecycle management
// - Timeouts: We can set various timeouts (read, write, idle) on the server
// - Error Handling: Better control over startup errors and shutdown process
// - Middleware: Still have access to all of Gin's middleware and routing features
// - Customization: Can configure additional http.Server options like TLS, custom error handlers, etc.
//
// The main tradeoff is slightly more complex(strange?) code compared to gin.Run(), but the benefits of proper lifecycle management and graceful shutdown make it worthwhile for a production service.
// This setup integrates well with our lifecycle package for signal handling and graceful shutdown.
//

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"
	"github.com/stratastor/svcgate/config"
	"github.com/stratastor/svcgate/pkg/agent"
	"github.com/stratastor/svcgate/pkg/maintenance"
	"github.com/stratastor/svcgate/pkg/transport"
)

var srv *http.Server

// Agents is the process-wide array-agent cache. It's built once in Start
// and torn down by the serve command's shutdown hook via Agents.ClearAgents.
var Agents *agent.Registry

// Sweeper runs the periodic pool health sweep over Agents. Stopped
// alongside the HTTP server by the serve command's shutdown hook.
var Sweeper *maintenance.Sweeper

func Start(ctx context.Context, port int) error {
	l, err := logger.NewTag(config.NewLoggerConfig(config.GetConfig()), "server")
	if err != nil {
		return err
	}
	cfg := config.GetConfig()

	switch cfg.Environment {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(l))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	Agents = agent.NewRegistry(agent.SpecConfig{
		BundleDir:   cfg.CLISpec.BundleDir,
		DefaultFile: cfg.CLISpec.DefaultFile,
	}, l)

	tcfg := transportConfig(cfg)
	poolCfg := agent.PoolConfig{MinSize: cfg.Pool.MinSize, MaxSize: cfg.Pool.MaxSize}

	registerRoutes(engine, Agents, tcfg, poolCfg)

	if cfg.Maintenance.Enabled {
		interval, err := time.ParseDuration(cfg.Maintenance.Interval)
		if err != nil {
			interval = 5 * time.Minute
		}
		sweeper, err := maintenance.New(Agents, interval, l)
		if err != nil {
			return err
		}
		if err := sweeper.Start(); err != nil {
			return err
		}
		Sweeper = sweeper
	}

	srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: engine,
	}

	errChan := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err != http.ErrServerClosed {
				errChan <- err
			}
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
		return Shutdown(ctx)
	}
}

func Shutdown(ctx context.Context) error {
	if Sweeper != nil {
		_ = Sweeper.Stop()
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// transportConfig builds the SSH transport template every cached agent
// derives its own (Host/User/Password overwritten per request) from.
func transportConfig(cfg *config.Config) transport.Config {
	connectTimeout, err := time.ParseDuration(cfg.SSH.ConnectTimeout)
	if err != nil {
		connectTimeout = 30 * time.Second
	}
	commandTimeout, err := time.ParseDuration(cfg.SSH.CommandTimeout)
	if err != nil {
		commandTimeout = 60 * time.Second
	}
	return transport.Config{
		ConnectTimeout: connectTimeout,
		CommandTimeout: commandTimeout,
		KnownHostsFile: cfg.SSH.KnownHostsFile,
	}
}
