package handler

const (
	// RootPath is the root path of a route group.
	RootPath = "/"
)
