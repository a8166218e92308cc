/**
 * @description
 * Background cleanup of provisioning orphans. Failed pipeline runs leave
 * uploaded images and voided-but-unconfirmed payment links behind as orphan
 * rows; the sweeper periodically retries their deletion and marks cleaned
 * rows so they are not retried again.
 */

package app

import (
	"context"
	"fmt"
	"log"

	"github.com/zelipay/monetization-service/internal/domain"
	"github.com/zelipay/monetization-service/internal/store"
)

// OrphanSweeper retries cleanup of external resources recorded as orphans.
type OrphanSweeper struct {
	repo      store.Repository
	storage   ObjectStorage
	paylinks  PaymentLinkProvisioner
	batchSize int
}

func NewOrphanSweeper(repo store.Repository, storage ObjectStorage, paylinks PaymentLinkProvisioner, batchSize int) *OrphanSweeper {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &OrphanSweeper{
		repo:      repo,
		storage:   storage,
		paylinks:  paylinks,
		batchSize: batchSize,
	}
}

// Sweep processes one batch of uncleaned orphans. Cleanup failures are logged
// and left uncleaned for the next run.
func (w *OrphanSweeper) Sweep(ctx context.Context) {
	orphans, err := w.repo.ListUncleanedOrphans(ctx, w.batchSize)
	if err != nil {
		log.Printf("level=error component=sweeper msg=\"failed to list orphans\" error=%v", err)
		return
	}
	if len(orphans) == 0 {
		return
	}
	log.Printf("level=info component=sweeper msg=\"sweeping orphans\" count=%d", len(orphans))

	for _, orphan := range orphans {
		if err := w.clean(ctx, orphan); err != nil {
			log.Printf("level=warn component=sweeper msg=\"orphan cleanup failed\" orphan_id=%s kind=%s reference=%s error=%v", orphan.ID, orphan.Kind, orphan.Reference, err)
			continue
		}
		if err := w.repo.MarkOrphanCleaned(ctx, orphan.ID); err != nil {
			log.Printf("level=error component=sweeper msg=\"failed to mark orphan cleaned\" orphan_id=%s error=%v", orphan.ID, err)
			continue
		}
		log.Printf("level=info component=sweeper msg=\"orphan cleaned\" orphan_id=%s kind=%s reference=%s", orphan.ID, orphan.Kind, orphan.Reference)
	}
}

func (w *OrphanSweeper) clean(ctx context.Context, orphan domain.ProvisioningOrphan) error {
	switch orphan.Kind {
	case domain.OrphanKindImage:
		return w.storage.Delete(ctx, orphan.Reference)
	case domain.OrphanKindPaymentLink:
		return w.paylinks.Void(ctx, orphan.Reference)
	default:
		return fmt.Errorf("unknown orphan kind %q", orphan.Kind)
	}
}
