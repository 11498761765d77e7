package http

import "github.com/gin-gonic/gin"

func RegisterTaskRoutes(r gin.IRouter, handler *TaskHandler) {
	tasks := r.Group("/tasks")
	{
		tasks.GET("", handler.ListTasks)
		tasks.GET("/:id", handler.GetTask)
	}
	r.GET("/users/:id/tasks/pending", handler.ListPendingForUser)
}
