// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/tasktracker/pkg/validation"
	"github.com/AleutianAI/tasktracker/services/tracker/handlers"
	"github.com/AleutianAI/tasktracker/services/tracker/middleware"
	"github.com/AleutianAI/tasktracker/services/tracker/observability"
	"github.com/AleutianAI/tasktracker/services/tracker/policy"
	"github.com/AleutianAI/tasktracker/services/tracker/store"
)

func SetupRoutes(router *gin.Engine, st *store.Store, eng *policy.Engine,
	m *observability.TrackerMetrics, reg *prometheus.Registry) {

	// Field errors report under json tag names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		validation.RegisterTagNameFunc(v)
	}

	router.Use(middleware.SessionMiddleware(st))

	router.GET("/health", handlers.HealthCheck())
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// API version 1 group
	v1 := router.Group("/api/v1")
	{
		v1.POST("/login", handlers.Login(st, m))
		v1.POST("/logout", handlers.Logout(st, m))

		users := v1.Group("/users")
		{
			users.GET("", handlers.ListUsers(st, eng, m))
			users.GET("/:id", handlers.GetUser(st, eng, m))
			users.POST("", handlers.CreateUser(st, eng, m))
			users.PUT("/:id", handlers.UpdateUser(st, eng, m))
			users.DELETE("/:id", handlers.DeleteUser(st, eng, m))
		}

		statusHandlers := handlers.StatusHandlers(st, eng, m)
		statuses := v1.Group("/statuses")
		{
			statuses.GET("", statusHandlers.List)
			statuses.GET("/:id", statusHandlers.Get)
			statuses.POST("", statusHandlers.Create)
			statuses.PUT("/:id", statusHandlers.Update)
			statuses.DELETE("/:id", statusHandlers.Delete)
		}

		labelHandlers := handlers.LabelHandlers(st, eng, m)
		labels := v1.Group("/labels")
		{
			labels.GET("", labelHandlers.List)
			labels.GET("/:id", labelHandlers.Get)
			labels.POST("", labelHandlers.Create)
			labels.PUT("/:id", labelHandlers.Update)
			labels.DELETE("/:id", labelHandlers.Delete)
		}

		tasks := v1.Group("/tasks")
		{
			tasks.GET("", handlers.ListTasks(st, eng, m))
			tasks.GET("/:id", handlers.GetTask(st, eng, m))
			tasks.POST("", handlers.CreateTask(st, eng, m))
			tasks.PUT("/:id", handlers.UpdateTask(st, eng, m))
			tasks.DELETE("/:id", handlers.DeleteTask(st, eng, m))
		}
	}
}
