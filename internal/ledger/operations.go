package ledger

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/nhle/order-incidents/internal/model"
	"github.com/nhle/order-incidents/internal/reconcile"
)

// ImportOrders merges an order sheet and records the batch. source names
// the file the table came from.
func (l *Ledger) ImportOrders(
	ctx context.Context,
	table model.Table,
	mapping reconcile.Mapping,
	source string,
) (reconcile.ImportCounts, error) {
	var (
		counts  reconcile.ImportCounts
		batchID string
	)
	err := l.apply(ctx, "ImportOrders", func(s State) (*change, error) {
		next, c, err := reconcile.ImportOrders(l.env, s.Orders, table, mapping)
		if err != nil {
			return nil, err
		}
		counts = c
		if c.Imported == 0 {
			return nil, nil
		}
		batchID = next[len(next)-1].BatchID
		return &change{orders: next}, nil
	})
	if err != nil {
		l.log.WithError(err).WithField("source", source).Warn("order import refused")
		return counts, err
	}

	l.recordBatch(ctx, model.ImportBatch{
		ID:         batchID,
		Kind:       model.ImportOrders,
		Source:     source,
		Imported:   counts.Imported,
		Duplicates: counts.Duplicates,
		Skipped:    counts.Skipped,
	})
	return counts, nil
}

// ImportRawIncidents merges an incident sheet into the raw row log and
// records the batch. It does not synthesize incidents.
func (l *Ledger) ImportRawIncidents(
	ctx context.Context,
	table model.Table,
	mapping reconcile.Mapping,
	source string,
) (reconcile.ImportCounts, error) {
	var counts reconcile.ImportCounts
	err := l.apply(ctx, "ImportRawIncidents", func(s State) (*change, error) {
		next, c, err := reconcile.ImportRawIncidents(l.env, s.Raw, table, mapping)
		if err != nil {
			return nil, err
		}
		counts = c
		if c.Imported == 0 {
			return nil, nil
		}
		return &change{raw: next}, nil
	})
	if err != nil {
		l.log.WithError(err).WithField("source", source).Warn("incident import refused")
		return counts, err
	}

	l.recordBatch(ctx, model.ImportBatch{
		Kind:       model.ImportIncidents,
		Source:     source,
		Imported:   counts.Imported,
		Duplicates: counts.Duplicates,
		Skipped:    counts.Skipped,
	})
	return counts, nil
}

func (l *Ledger) recordBatch(ctx context.Context, b model.ImportBatch) {
	if b.ID == "" {
		b.ID = "batch-" + l.env.NewID()
	}
	b.CreatedAt = l.env.Now()

	entry := l.log.WithFields(logrus.Fields{
		"batch":      b.ID,
		"kind":       b.Kind,
		"source":     b.Source,
		"imported":   b.Imported,
		"duplicates": b.Duplicates,
		"skipped":    b.Skipped,
	})
	if err := l.store.RecordBatch(ctx, b); err != nil {
		entry.WithError(err).Warn("recording import batch")
		return
	}
	entry.Info("import finished")
}

// Batches returns the most recent import batches, newest first.
func (l *Ledger) Batches(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	return l.store.GetBatches(ctx, limit)
}

// GenerateIncidents runs the synthesizer over the raw rows and order lines.
func (l *Ledger) GenerateIncidents(ctx context.Context) (reconcile.SynthesisCounts, error) {
	var counts reconcile.SynthesisCounts
	err := l.apply(ctx, "GenerateIncidents", func(s State) (*change, error) {
		next, c := reconcile.Synthesize(l.env, s.Raw, s.Orders, s.Incidents)
		counts = c
		if c.Created == 0 && c.Updated == 0 {
			return nil, nil
		}
		return &change{incidents: next}, nil
	})
	if err != nil {
		return counts, err
	}

	l.log.WithFields(logrus.Fields{
		"created": counts.Created,
		"updated": counts.Updated,
	}).Info("incidents generated")
	return counts, nil
}

// ReportManual applies a manual report.
func (l *Ledger) ReportManual(ctx context.Context, report reconcile.ManualReport) (reconcile.ComposeResult, error) {
	var res reconcile.ComposeResult
	err := l.apply(ctx, "ReportManual", func(s State) (*change, error) {
		next, r, err := reconcile.ComposeManual(l.env, s.Incidents, s.Orders, report)
		if err != nil {
			return nil, err
		}
		res = r
		return &change{incidents: next}, nil
	})
	if err != nil {
		return res, err
	}

	l.log.WithFields(logrus.Fields{
		"order":    report.OrderNumber,
		"incident": res.IncidentID,
		"created":  res.Created,
		"label":    res.Label,
	}).Info("manual incident reported")
	return res, nil
}

// incidentOp adapts a reconcile lifecycle function to apply.
func (l *Ledger) incidentOp(
	ctx context.Context,
	op, id string,
	fn func([]model.Incident) ([]model.Incident, error),
) error {
	err := l.apply(ctx, op, func(s State) (*change, error) {
		next, err := fn(s.Incidents)
		if err != nil {
			return nil, err
		}
		return &change{incidents: next}, nil
	})
	if err != nil {
		return err
	}
	l.log.WithFields(logrus.Fields{"operation": op, "incident": id}).Info("incident updated")
	return nil
}

// Move sets an active incident to another active status.
func (l *Ledger) Move(ctx context.Context, id string, to model.IncidentStatus) error {
	return l.incidentOp(ctx, "Move", id, func(incs []model.Incident) ([]model.Incident, error) {
		return reconcile.MoveIncident(incs, id, to)
	})
}

// Archive moves an incident to Archived.
func (l *Ledger) Archive(ctx context.Context, id string) error {
	return l.incidentOp(ctx, "Archive", id, func(incs []model.Incident) ([]model.Incident, error) {
		return reconcile.ArchiveIncident(incs, id)
	})
}

// Restore returns an archived incident to Waiting.
func (l *Ledger) Restore(ctx context.Context, id string) error {
	return l.incidentOp(ctx, "Restore", id, func(incs []model.Incident) ([]model.Incident, error) {
		return reconcile.RestoreIncident(incs, id)
	})
}

// ToggleChecklist flips one checklist item.
func (l *Ledger) ToggleChecklist(ctx context.Context, incidentID, itemID string) error {
	return l.incidentOp(ctx, "ToggleChecklist", incidentID, func(incs []model.Incident) ([]model.Incident, error) {
		return reconcile.ToggleChecklistItem(incs, incidentID, itemID)
	})
}

// SetNotes replaces the notes of an incident.
func (l *Ledger) SetNotes(ctx context.Context, id, notes string) error {
	return l.incidentOp(ctx, "SetNotes", id, func(incs []model.Incident) ([]model.Incident, error) {
		return reconcile.ReplaceNotes(incs, id, notes)
	})
}

// ToggleOrderChecked flips the delivery-note tick of an order line.
func (l *Ledger) ToggleOrderChecked(ctx context.Context, lineID string) error {
	err := l.apply(ctx, "ToggleOrderChecked", func(s State) (*change, error) {
		next, err := reconcile.ToggleOrderLineChecked(s.Orders, lineID)
		if err != nil {
			return nil, err
		}
		return &change{orders: next}, nil
	})
	if err != nil {
		return err
	}
	l.log.WithField("line", lineID).Info("order line toggled")
	return nil
}

// Resolve finds an incident by id, order number or unique id prefix.
func (l *Ledger) Resolve(ref string) (model.Incident, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	inc, err := reconcile.ResolveIncident(l.state.Incidents, ref)
	if err != nil {
		return model.Incident{}, err
	}
	return inc.Clone(), nil
}
