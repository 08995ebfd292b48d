package main

import (
	"os"

	forumsearchcmder "github.com/papercomputeco/forumsearch/cmd/forumsearch"
)

func main() {
	cmd := forumsearchcmder.NewForumSearchCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
