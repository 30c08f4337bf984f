package bookings

import (
	"context"
	"log"
	"time"
)

// StartReconciler completes overdue bookings on a fixed interval so spaces
// held past their end time return to the pool without a client request.
// Stops when ctx is cancelled.
func StartReconciler(ctx context.Context, svc *Service, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := svc.ReconcileOverdue(ctx)
				if err != nil {
					log.Printf("Booking reconciliation failed: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("Reconciled %d overdue bookings", n)
				}
			}
		}
	}()
}
