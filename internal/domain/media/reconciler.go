package media

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"media-store/internal/infrastructure/metrics"
	"media-store/internal/utils/platformerrors"
)

// Reconciler finds live objects with no active record and moves them under the disabled prefix.
// Objects younger than the grace period are skipped so in-flight uploads are not touched.
type Reconciler struct {
	repo    Repository
	storage Storage
	grace   time.Duration
	log     zerolog.Logger
	now     func() time.Time
}

func NewReconciler(repo Repository, storage Storage, grace time.Duration, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		repo:    repo,
		storage: storage,
		grace:   grace,
		log:     log.With().Str("component", "media-reconciler").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Run performs one sweep over the bucket.
func (r *Reconciler) Run(ctx context.Context) (*ReconcileReport, error) {
	objects, err := r.storage.List(ctx, "")
	if err != nil {
		metrics.RecordReconcileRun("failed", 0)
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeStorageConnection,
			"failed to list objects for reconciliation", err, "492d5ed1-b369-4804-9bca-ba65271e18a6")
	}

	report := &ReconcileReport{}
	cutoff := r.now().Add(-r.grace)
	for _, obj := range objects {
		if err := ctx.Err(); err != nil {
			break
		}
		if strings.HasPrefix(obj.Key, DisabledPrefix+"/") {
			continue
		}
		report.Scanned++

		namespace, ok := namespaceOf(obj.Key)
		if !ok || obj.LastModified.After(cutoff) {
			continue
		}

		exists, err := r.repo.ExistsActiveByKey(ctx, namespace, obj.Key)
		if err != nil {
			report.Failed++
			r.log.Error().Err(err).Str("object_key", obj.Key).Msg("reconcile lookup failed")
			continue
		}
		if exists {
			continue
		}

		report.Orphaned++
		archiveKey := OrphanKey(obj.Key, r.now())
		if err := r.relocate(ctx, obj.Key, archiveKey); err != nil {
			report.Failed++
			r.log.Error().Err(err).Str("object_key", obj.Key).Msg("failed to relocate orphaned object")
			continue
		}
		report.Relocated++
		r.log.Warn().
			Str("event", "orphaned_object_relocated").
			Str("object_key", obj.Key).
			Str("archive_key", archiveKey).
			Msg("orphaned object moved under the disabled prefix")
	}

	status := "success"
	if report.Failed > 0 {
		status = "partial"
	}
	metrics.RecordReconcileRun(status, report.Relocated)
	r.log.Info().
		Int("scanned", report.Scanned).
		Int("orphaned", report.Orphaned).
		Int("relocated", report.Relocated).
		Int("failed", report.Failed).
		Msg("reconcile sweep finished")
	return report, nil
}

// relocate never targets DisabledKey(key): that path may hold the payload of a disabled record.
func (r *Reconciler) relocate(ctx context.Context, key, archiveKey string) error {
	if err := r.storage.Copy(ctx, key, archiveKey); err != nil {
		return err
	}
	return r.storage.Delete(ctx, key)
}

// namespaceOf parses keys of the form {namespace}/{file}.
func namespaceOf(key string) (string, bool) {
	namespace, name, found := strings.Cut(key, "/")
	if !found || namespace == "" || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return namespace, true
}
