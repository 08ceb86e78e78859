package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/kflynn/healthcheckd/pkg/statusclient"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage:")
		fmt.Println("	healthctl <address> status")
		fmt.Println("	healthctl <address> healthz")
		os.Exit(1)
	}

	addr := os.Args[1]
	cmd := os.Args[2]

	c := statusclient.NewClient(addr)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch cmd {
	case "status":
		snapshot, err := c.Status(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "status failed: %v\n", err)
			os.Exit(1)
		}
		for _, p := range snapshot {
			state := "up"
			if !p.Enabled {
				state = "disabled"
			} else if p.Down {
				state = "down"
			}
			fmt.Printf("%-20s %-22s %-8s owner=%-12s last=%-10s run=%d confidence=%.2f\n",
				p.Upstream, p.Addr, state, p.Owner, p.LastOutcome, p.RunLength, p.Confidence)
		}

	case "healthz":
		if err := c.Healthz(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "healthz failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("ok")

	default:
		fmt.Printf("unknown command: %s\n", cmd)
		fmt.Println("valid commands: status, healthz")
		os.Exit(1)
	}
}
