package server

import "fmt"

const (
	green   = "\033[32m"
	blue    = "\033[34m"
	magenta = "\033[35m"
	yellow  = "\033[33m"
	reset   = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    green,
	"POST":   blue,
	"PATCH":  magenta,
	"DELETE": yellow,
}

func logRoute(method, path string) {
	display := method
	if colour, ok := methodColors[method]; ok {
		display = fmt.Sprintf("%s%-7s%s", colour, method, reset)
	}
	fmt.Printf("[%s] %s\n", display, path)
}
