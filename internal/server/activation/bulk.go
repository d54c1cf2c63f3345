package activation

import (
	"context"
	"fmt"
)

// BulkReport summarizes a bulk lifecycle run.
type BulkReport struct {
	Scanned int
	Changed int
	Batches int
}

// InstallBackfill marks every account that has no activation attribute as
// consumed, so accounts that predate the gate are not locked out. Accounts
// with a pending code are left alone, which makes the run repeatable.
func (g *Gate) InstallBackfill(ctx context.Context) (BulkReport, error) {
	report, err := g.eachBatch(ctx, func(ctx context.Context, dir Directory, id string) (bool, error) {
		return dir.AddAttribute(ctx, id, AttributeKey, ConsumedValue)
	})
	g.logger.Info(ctx, "install backfill finished",
		"scanned", report.Scanned, "activated", report.Changed, "batches", report.Batches)
	return report, err
}

// UninstallCleanup deletes the activation attribute of every account.
func (g *Gate) UninstallCleanup(ctx context.Context) (BulkReport, error) {
	report, err := g.eachBatch(ctx, func(ctx context.Context, dir Directory, id string) (bool, error) {
		return dir.DeleteAttribute(ctx, id, AttributeKey)
	})
	g.logger.Info(ctx, "uninstall cleanup finished",
		"scanned", report.Scanned, "deleted", report.Changed, "batches", report.Batches)
	return report, err
}

// eachBatch pages through all account IDs, batchSize at a time, and applies
// step to each. A page runs inside one Batcher transaction when the
// directory supports it. The context is checked between pages.
func (g *Gate) eachBatch(ctx context.Context, step func(ctx context.Context, dir Directory, id string) (bool, error)) (BulkReport, error) {
	var report BulkReport
	after := ""

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		ids, err := g.dir.ListIDs(ctx, after, g.batchSize)
		if err != nil {
			return report, fmt.Errorf("error listing accounts: %w", err)
		}
		if len(ids) == 0 {
			return report, nil
		}

		changed := 0
		run := func(ctx context.Context, dir Directory) error {
			changed = 0
			for _, id := range ids {
				ok, err := step(ctx, dir, id)
				if err != nil {
					return fmt.Errorf("account %s: %w", id, err)
				}
				if ok {
					changed++
				}
			}
			return nil
		}

		if b, ok := g.dir.(Batcher); ok {
			err = b.InBatch(ctx, run)
		} else {
			err = run(ctx, g.dir)
		}
		if err != nil {
			return report, err
		}

		report.Batches++
		report.Scanned += len(ids)
		report.Changed += changed
		g.logger.Debug(ctx, "bulk batch done", "batch", report.Batches, "size", len(ids), "changed", changed)

		if len(ids) < g.batchSize {
			return report, nil
		}
		after = ids[len(ids)-1]
	}
}
