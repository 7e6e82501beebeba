package main

// set by -ldflags at build time
var (
	Version   = "dev"
	BuildDate = "unknown"
)

func main() {
	Execute()
}
