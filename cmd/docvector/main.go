package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vektano/docvector-mcp/internal/mcp"
	"github.com/vektano/docvector-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersion()
		os.Exit(0)
	}

	// stdout carries the MCP protocol; everything else goes to stderr
	log.SetOutput(os.Stderr)

	if err := run(); err != nil {
		log.Fatalf("docvector: %v", err)
	}
}

func run() error {
	log.Printf("DocVector MCP server v%s (driver %s, vector extension %v)",
		version, storage.DriverName, storage.VectorExtensionAvailable)

	dbPath := os.Getenv("DOCVECTOR_DB_PATH")
	if dbPath == "" {
		dbPath = mcp.DefaultDBPath
	}

	server, err := mcp.NewServer(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Println("listening on stdio")
		errChan <- server.Serve(ctx)
	}()

	select {
	case sig := <-sigChan:
		log.Printf("received %v, shutting down", sig)
		cancel()
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Println("server stopped")
	return nil
}

func printVersion() {
	fmt.Printf("DocVector MCP Server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Build Mode: %s\n", storage.BuildMode)
	fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
	fmt.Printf("Vector Extension: %v\n", storage.VectorExtensionAvailable)
}
