package main

import (
	"github.com/joho/godotenv"

	"taskmaster/internal/app"
)

// @title           TaskMaster API
// @version         1.0
// @description     Single-user task management API: tasks, search, archive.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	_ = godotenv.Load()
	app.Run()
}
