package main

import "github.com/oshokin/chromedriver-sync/cmd/chromedriver-sync/cmd"

func main() {
	cmd.Execute()
}
