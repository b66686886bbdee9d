// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AleutianAI/tasktracker/pkg/logging"
	"github.com/AleutianAI/tasktracker/services/tracker/config"
	"github.com/AleutianAI/tasktracker/services/tracker/observability"
	"github.com/AleutianAI/tasktracker/services/tracker/policy"
	"github.com/AleutianAI/tasktracker/services/tracker/routes"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("TRACKER_CONFIG"))
	if err != nil {
		log.Fatalf("FATAL: Could not load the configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.Logging.Level),
		Service: "tracker",
		JSON:    cfg.Logging.Format == "json",
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("FATAL: Could not open the database at %s: %v", cfg.Database.Path, err)
	}
	defer st.Close()
	slog.Info("database opened", "path", cfg.Database.Path)

	reg := prometheus.NewRegistry()
	metrics := observability.NewTrackerMetrics(reg)
	engine := policy.NewEngine()

	router := gin.Default()
	routes.SetupRoutes(router, st, engine, metrics, reg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	slog.Info("starting the tracker server", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
