package http

import "github.com/gin-gonic/gin"

func RegisterUserRoutes(r gin.IRouter, handler *UserHandler) {
	users := r.Group("/users")
	{
		users.GET("", handler.ListUsers)
		users.GET("/count", handler.CountUsers)
		users.GET("/:id", handler.GetUser)
	}
}
