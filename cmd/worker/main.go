package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/jayandra06/euroasainn-ERP-sub000/internal/app/bootstrap"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config and connect the grant store.
// 2) Build the policy module; a failed cache load aborts startup.
// 3) Migrate legacy policy rows, then run the reconciliation schedule and
//    the metrics endpoint until interrupted.
func main() {
	log.Println("policy-engine worker starting")
	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("policy-engine worker stopped with error: %v", err)
	}
}
