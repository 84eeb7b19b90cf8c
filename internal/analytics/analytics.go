// Package analytics aggregates workshop, attendance, refund and stock figures for staff dashboards.
//
// Queries run through bun inside a read-only transaction bound to the caller's
// claims, so the same row-level security policies apply as for the rest of the API.
package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"clubapi/internal/model"
	"clubapi/internal/repository"
	"clubapi/internal/repository/postgres"
)

// RoleMapper picks the database role a transaction for claims assumes.
type RoleMapper interface {
	DatabaseRole(claims model.Claims) string
}

type StatusCount struct {
	Status string `bun:"status" json:"status"`
	Count  int    `bun:"count" json:"count"`
}

type RefundTotal struct {
	Status      string `bun:"status" json:"status"`
	Count       int    `bun:"count" json:"count"`
	AmountCents int64  `bun:"amount_cents" json:"amount_cents"`
}

type Attendance struct {
	Attended int `bun:"attended" json:"attended"`
	NoShow   int `bun:"no_show" json:"no_show"`
	Unknown  int `bun:"unknown" json:"unknown"`
}

// Rate is attended over recorded attendance, or 0 when nothing was recorded.
func (a Attendance) Rate() float64 {
	recorded := a.Attended + a.NoShow
	if recorded == 0 {
		return 0
	}
	return float64(a.Attended) / float64(recorded)
}

type Overview struct {
	Workshops      []StatusCount `json:"workshops_by_status"`
	Registrations  []StatusCount `json:"registrations_by_status"`
	Attendance     Attendance    `json:"finished_attendance"`
	AttendanceRate float64       `json:"attendance_rate"`
	Refunds        []RefundTotal `json:"refunds"`
	LowStockItems  int           `json:"low_stock_items"`
}

type WorkshopStats struct {
	WorkshopID     string        `json:"workshop_id"`
	Title          string        `json:"title"`
	Status         string        `json:"status"`
	Capacity       int           `json:"capacity"`
	ActiveSeats    int           `json:"active_seats"`
	FillRate       float64       `json:"fill_rate"`
	Registrations  []StatusCount `json:"registrations_by_status"`
	Attendance     Attendance    `json:"attendance"`
	AttendanceRate float64       `json:"attendance_rate"`
	Interested     int           `json:"interested"`
}

// Service defines the dashboard queries. Both require the staff role.
type Service interface {
	Overview(ctx context.Context, claims model.Claims) (*Overview, error)
	Workshop(ctx context.Context, claims model.Claims, workshopID string) (*WorkshopStats, error)
}

type service struct {
	db    *bun.DB
	roles RoleMapper
}

// NewService constructs a new analytics Service.
func NewService(db *bun.DB, roles RoleMapper) Service {
	return &service{db: db, roles: roles}
}

// readScope runs fn in a read-only transaction bound to claims.
func (s *service) readScope(ctx context.Context, claims model.Claims, fn func(tx bun.Tx) error) error {
	if !claims.Authenticated() {
		return repository.ErrUnauthenticated
	}
	if !claims.Role.AtLeast(model.RoleStaff) {
		return fmt.Errorf("%w: analytics require the staff role", repository.ErrForbidden)
	}

	return s.db.RunInTx(ctx, &sql.TxOptions{ReadOnly: true}, func(ctx context.Context, tx bun.Tx) error {
		// The raw *sql.Tx keeps the $n placeholders away from bun's formatter.
		if err := postgres.BindClaims(ctx, tx.Tx, s.roles.DatabaseRole(claims), claims); err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return postgres.MapError(err)
		}
		return nil
	})
}

// countByStatus groups table by status, limited to one workshop when workshopID is set.
func countByStatus(ctx context.Context, tx bun.Tx, table, workshopID string) ([]StatusCount, error) {
	var out []StatusCount
	q := tx.NewSelect().
		TableExpr(table).
		ColumnExpr("status").
		ColumnExpr("count(*) AS count").
		GroupExpr("status").
		OrderExpr("status")
	if workshopID != "" {
		q = q.Where("workshop_id = ?", workshopID)
	}
	if err := q.Scan(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []StatusCount{}
	}
	return out, nil
}

func (s *service) Overview(ctx context.Context, claims model.Claims) (*Overview, error) {
	out := &Overview{}
	err := s.readScope(ctx, claims, func(tx bun.Tx) error {
		var err error
		if out.Workshops, err = countByStatus(ctx, tx, "workshops", ""); err != nil {
			return fmt.Errorf("workshops by status: %w", err)
		}
		if out.Registrations, err = countByStatus(ctx, tx, "registrations", ""); err != nil {
			return fmt.Errorf("registrations by status: %w", err)
		}

		err = tx.NewRaw(`
			SELECT
				count(*) FILTER (WHERE r.attendance = 'attended') AS attended,
				count(*) FILTER (WHERE r.attendance = 'no_show') AS no_show,
				count(*) FILTER (WHERE r.attendance = 'unknown') AS unknown
			FROM registrations r
			JOIN workshops w ON w.id = r.workshop_id
			WHERE w.status = 'finished' AND r.status = 'confirmed'`).
			Scan(ctx, &out.Attendance)
		if err != nil {
			return fmt.Errorf("attendance: %w", err)
		}

		err = tx.NewSelect().
			TableExpr("refunds").
			ColumnExpr("status").
			ColumnExpr("count(*) AS count").
			ColumnExpr("coalesce(sum(amount_cents), 0) AS amount_cents").
			GroupExpr("status").
			OrderExpr("status").
			Scan(ctx, &out.Refunds)
		if err != nil {
			return fmt.Errorf("refund totals: %w", err)
		}
		if out.Refunds == nil {
			out.Refunds = []RefundTotal{}
		}

		err = tx.NewRaw(`SELECT count(*) FROM inventory_items WHERE min_quantity > 0 AND quantity <= min_quantity`).
			Scan(ctx, &out.LowStockItems)
		if err != nil {
			return fmt.Errorf("low stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out.AttendanceRate = out.Attendance.Rate()
	return out, nil
}

func (s *service) Workshop(ctx context.Context, claims model.Claims, workshopID string) (*WorkshopStats, error) {
	if _, err := uuid.Parse(workshopID); err != nil {
		return nil, fmt.Errorf("%w: workshop_id must be a uuid", repository.ErrInvalid)
	}
	out := &WorkshopStats{WorkshopID: workshopID}
	err := s.readScope(ctx, claims, func(tx bun.Tx) error {
		err := tx.NewSelect().
			TableExpr("workshops").
			ColumnExpr("title, status, capacity").
			Where("id = ?", workshopID).
			Scan(ctx, &out.Title, &out.Status, &out.Capacity)
		if err != nil {
			return err
		}

		if out.Registrations, err = countByStatus(ctx, tx, "registrations", workshopID); err != nil {
			return fmt.Errorf("registrations by status: %w", err)
		}

		err = tx.NewRaw(`
			SELECT
				count(*) FILTER (WHERE attendance = 'attended') AS attended,
				count(*) FILTER (WHERE attendance = 'no_show') AS no_show,
				count(*) FILTER (WHERE attendance = 'unknown') AS unknown
			FROM registrations
			WHERE workshop_id = ? AND status = 'confirmed'`, workshopID).
			Scan(ctx, &out.Attendance)
		if err != nil {
			return fmt.Errorf("attendance: %w", err)
		}

		err = tx.NewRaw(`SELECT count(*) FROM workshop_interests WHERE workshop_id = ?`, workshopID).
			Scan(ctx, &out.Interested)
		if err != nil {
			return fmt.Errorf("interest: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, sc := range out.Registrations {
		if model.RegistrationStatus(sc.Status).Active() {
			out.ActiveSeats += sc.Count
		}
	}
	if out.Capacity > 0 {
		out.FillRate = float64(out.ActiveSeats) / float64(out.Capacity)
	}
	out.AttendanceRate = out.Attendance.Rate()
	return out, nil
}
