package main

import "taskboard/internal/app"

// @title           Taskboard API
// @version         1.0
// @description     Task tracking with dependencies, role-scoped access and status transitions.
// @BasePath        /
func main() {
	app.Run()
}
