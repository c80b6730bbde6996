package booking

import (
	"context"

	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
)

// SetEnabled turns a free desk on or off. Setting the current value again
// succeeds without a write. A booked desk cannot be toggled either way.
func (s *service) SetEnabled(ctx context.Context, key desk.Key, enabled bool) (*desk.Snapshot, error) {
	var (
		snap    *desk.Snapshot
		changed bool
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		d, err := tx.LockDesk(ctx, key)
		if err != nil {
			return err
		}
		if d.IsBooked() {
			return ErrDeskOccupied
		}

		if d.Enabled != enabled {
			if err := tx.UpdateDeskEnabled(ctx, d.ID, enabled); err != nil {
				return err
			}
			d.Enabled = enabled
			changed = true
		}

		snap = desk.NewSnapshot(d, s.zone)
		return nil
	})
	if err != nil {
		s.reject(ctx, "set_enabled", err)
		return nil, err
	}

	if changed {
		s.log.InfoContext(ctx, "desk availability changed", "desk", key.String(), "enabled", enabled)
	}
	return snap, nil
}
