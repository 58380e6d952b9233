package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/Sc1pex/MultiplayerTicTacToe/internal/client"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/config"
	"github.com/Sc1pex/MultiplayerTicTacToe/internal/logger"
)

// main - connects to the server and plays one match on the terminal.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	conf, err := config.LoadClient()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stderr, conf.LogLevel)

	conn, err := net.DialTimeout("tcp", conf.Addr, conf.DialTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", conf.Addr, err)
	}
	defer conn.Close()

	var picker client.Picker = client.NewPrompt(os.Stdin, os.Stdout)

	if conf.Bot {
		picker = client.NewBot(time.Now().UnixNano())
	}

	fmt.Println("Waiting for an opponent...")

	if _, err = client.New(log, conn, picker, os.Stdout).Play(); err != nil {
		return fmt.Errorf("match interrupted: %w", err)
	}

	return nil
}
