package main

import (
	"context"

	"sjsage522/jobworker/cmd"
)

func main() {
	cmd.ExecuteContext(context.Background())
}
