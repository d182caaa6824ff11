package main

import (
	"fmt"
	"os"
	"path/filepath"

	"fjacquet/finsync/cmd/categorize"
	"fjacquet/finsync/cmd/history"
	"fjacquet/finsync/cmd/match"
	"fjacquet/finsync/cmd/root"
	syncmd "fjacquet/finsync/cmd/sync"

	"github.com/joho/godotenv"
)

func init() {
	loadEnvSilently()

	root.Init()

	root.Cmd.AddCommand(syncmd.Cmd)
	root.Cmd.AddCommand(match.Cmd)
	root.Cmd.AddCommand(history.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
}

// loadEnvSilently loads .env before any logging is configured.
func loadEnvSilently() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
