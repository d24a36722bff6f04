// Package sqlite provides a durable store.Store on SQLite. Each table keeps
// the queried columns indexed and the full entity as a JSON record, so the
// schema stays stable as entities grow.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS vehicles (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    vin TEXT NOT NULL UNIQUE,
    created_at INTEGER NOT NULL,
    version INTEGER NOT NULL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_vehicles_owner ON vehicles(owner_id);
CREATE TABLE IF NOT EXISTS predictions (
    id TEXT PRIMARY KEY,
    vehicle_id TEXT NOT NULL,
    component TEXT NOT NULL,
    resolved INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_vehicle ON predictions(vehicle_id);
CREATE TABLE IF NOT EXISTS bookings (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    service_center_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    version INTEGER NOT NULL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookings_owner ON bookings(owner_id);
CREATE INDEX IF NOT EXISTS idx_bookings_center ON bookings(service_center_id);
CREATE TABLE IF NOT EXISTS telemetry (
    id TEXT PRIMARY KEY,
    vehicle_id TEXT NOT NULL,
    ts INTEGER NOT NULL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_telemetry_vehicle ON telemetry(vehicle_id, ts);
CREATE TABLE IF NOT EXISTS rca_reports (
    id TEXT PRIMARY KEY,
    booking_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    version INTEGER NOT NULL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_rca_booking ON rca_reports(booking_id);
CREATE TABLE IF NOT EXISTS service_centers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    record TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    record TEXT NOT NULL
);`

// Store implements store.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Vehicles() store.Vehicles             { return &vehicles{db: s.db} }
func (s *Store) Predictions() store.Predictions       { return &predictions{db: s.db} }
func (s *Store) Bookings() store.Bookings             { return &bookings{db: s.db} }
func (s *Store) Telemetry() store.TelemetryRecords    { return &telemetry{db: s.db} }
func (s *Store) RCAReports() store.RCAReports         { return &rcaReports{db: s.db} }
func (s *Store) ServiceCenters() store.ServiceCenters { return &serviceCenters{db: s.db} }
func (s *Store) Profiles() store.Profiles             { return &profiles{db: s.db} }

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type vehicles struct{ db *sql.DB }

func (v *vehicles) Insert(ctx context.Context, veh model.Vehicle) error {
	rec, err := json.Marshal(veh)
	if err != nil {
		return err
	}
	_, err = v.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, owner_id, vin, created_at, version, record) VALUES (?, ?, ?, ?, 1, ?)`,
		veh.ID, veh.OwnerID, veh.VIN, veh.CreatedAt.UnixNano(), string(rec))
	if isUniqueViolation(err) {
		return apperrors.Validationf("vin %s is already registered", veh.VIN)
	}
	return err
}

func (v *vehicles) scanOne(row *sql.Row, notFound func() error) (model.Vehicle, error) {
	var rec string
	var version int64
	if err := row.Scan(&rec, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Vehicle{}, notFound()
		}
		return model.Vehicle{}, err
	}
	var veh model.Vehicle
	if err := json.Unmarshal([]byte(rec), &veh); err != nil {
		return model.Vehicle{}, err
	}
	veh.Version = version
	return veh, nil
}

func (v *vehicles) Get(ctx context.Context, id string) (model.Vehicle, error) {
	row := v.db.QueryRowContext(ctx, `SELECT record, version FROM vehicles WHERE id = ?`, id)
	return v.scanOne(row, func() error { return apperrors.NotFoundf("vehicle", id) })
}

func (v *vehicles) GetByVIN(ctx context.Context, vin string) (model.Vehicle, error) {
	row := v.db.QueryRowContext(ctx, `SELECT record, version FROM vehicles WHERE vin = ?`, vin)
	return v.scanOne(row, func() error { return apperrors.NotFoundf("vehicle with vin", vin) })
}

func (v *vehicles) listQuery(ctx context.Context, query string, args ...any) ([]model.Vehicle, error) {
	rows, err := v.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.Vehicle, 0)
	for rows.Next() {
		var rec string
		var version int64
		if err := rows.Scan(&rec, &version); err != nil {
			return nil, err
		}
		var veh model.Vehicle
		if err := json.Unmarshal([]byte(rec), &veh); err != nil {
			return nil, err
		}
		veh.Version = version
		res = append(res, veh)
	}
	return res, rows.Err()
}

func (v *vehicles) ListByOwner(ctx context.Context, ownerID string) ([]model.Vehicle, error) {
	return v.listQuery(ctx,
		`SELECT record, version FROM vehicles WHERE owner_id = ? ORDER BY created_at DESC, id`, ownerID)
}

func (v *vehicles) ListAll(ctx context.Context) ([]model.Vehicle, error) {
	return v.listQuery(ctx, `SELECT record, version FROM vehicles ORDER BY created_at DESC, id`)
}

func (v *vehicles) Update(ctx context.Context, veh model.Vehicle) (model.Vehicle, error) {
	rec, err := json.Marshal(veh)
	if err != nil {
		return model.Vehicle{}, err
	}
	res, err := v.db.ExecContext(ctx,
		`UPDATE vehicles SET record = ?, version = version + 1 WHERE id = ? AND version = ?`,
		string(rec), veh.ID, veh.Version)
	if err != nil {
		return model.Vehicle{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Vehicle{}, err
	}
	if n == 0 {
		// Distinguish a missing row from a stale version.
		if _, err := v.Get(ctx, veh.ID); apperrors.IsNotFound(err) {
			return model.Vehicle{}, err
		}
		return model.Vehicle{}, apperrors.ConcurrentModificationf("vehicle", veh.ID)
	}
	veh.Version++
	return veh, nil
}

type predictions struct{ db *sql.DB }

func (p *predictions) Insert(ctx context.Context, pred model.Prediction) error {
	rec, err := json.Marshal(pred)
	if err != nil {
		return err
	}
	resolved := 0
	if pred.Resolved {
		resolved = 1
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO predictions (id, vehicle_id, component, resolved, created_at, record) VALUES (?, ?, ?, ?, ?, ?)`,
		pred.ID, pred.VehicleID, string(pred.Component), resolved, pred.CreatedAt.UnixNano(), string(rec))
	if isUniqueViolation(err) {
		return apperrors.Validationf("prediction %s already exists", pred.ID)
	}
	return err
}

func (p *predictions) Get(ctx context.Context, id string) (model.Prediction, error) {
	var rec string
	err := p.db.QueryRowContext(ctx, `SELECT record FROM predictions WHERE id = ?`, id).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Prediction{}, apperrors.NotFoundf("prediction", id)
	}
	if err != nil {
		return model.Prediction{}, err
	}
	var pred model.Prediction
	if err := json.Unmarshal([]byte(rec), &pred); err != nil {
		return model.Prediction{}, err
	}
	return pred, nil
}

func (p *predictions) ListByVehicle(ctx context.Context, vehicleID string, unresolvedOnly bool) ([]model.Prediction, error) {
	query := `SELECT record FROM predictions WHERE vehicle_id = ?`
	if unresolvedOnly {
		query += ` AND resolved = 0`
	}
	query += ` ORDER BY created_at DESC, id`
	rows, err := p.db.QueryContext(ctx, query, vehicleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.Prediction, 0)
	for rows.Next() {
		var rec string
		if err := rows.Scan(&rec); err != nil {
			return nil, err
		}
		var pred model.Prediction
		if err := json.Unmarshal([]byte(rec), &pred); err != nil {
			return nil, err
		}
		res = append(res, pred)
	}
	return res, rows.Err()
}

func (p *predictions) Resolve(ctx context.Context, vehicleID string, component model.ComponentType) (int, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE predictions
         SET resolved = 1,
             record = json_set(record, '$.resolved', json('true'))
         WHERE vehicle_id = ? AND component = ? AND resolved = 0`,
		vehicleID, string(component))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

type bookings struct{ db *sql.DB }

func (b *bookings) Insert(ctx context.Context, bk model.Booking) error {
	rec, err := json.Marshal(bk)
	if err != nil {
		return err
	}
	_, err = b.db.ExecContext(ctx,
		`INSERT INTO bookings (id, owner_id, service_center_id, created_at, version, record) VALUES (?, ?, ?, ?, 1, ?)`,
		bk.ID, bk.OwnerID, bk.ServiceCenterID, bk.CreatedAt.UnixNano(), string(rec))
	if isUniqueViolation(err) {
		return apperrors.Validationf("booking %s already exists", bk.ID)
	}
	return err
}

func (b *bookings) Get(ctx context.Context, id string) (model.Booking, error) {
	var rec string
	var version int64
	err := b.db.QueryRowContext(ctx, `SELECT record, version FROM bookings WHERE id = ?`, id).
		Scan(&rec, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, apperrors.NotFoundf("booking", id)
	}
	if err != nil {
		return model.Booking{}, err
	}
	var bk model.Booking
	if err := json.Unmarshal([]byte(rec), &bk); err != nil {
		return model.Booking{}, err
	}
	bk.Version = version
	return bk, nil
}

func (b *bookings) list(ctx context.Context, where, arg string) ([]model.Booking, error) {
	rows, err := b.db.QueryContext(ctx,
		`SELECT record, version FROM bookings WHERE `+where+` = ? ORDER BY created_at DESC, id`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.Booking, 0)
	for rows.Next() {
		var rec string
		var version int64
		if err := rows.Scan(&rec, &version); err != nil {
			return nil, err
		}
		var bk model.Booking
		if err := json.Unmarshal([]byte(rec), &bk); err != nil {
			return nil, err
		}
		bk.Version = version
		res = append(res, bk)
	}
	return res, rows.Err()
}

func (b *bookings) ListByOwner(ctx context.Context, ownerID string) ([]model.Booking, error) {
	return b.list(ctx, "owner_id", ownerID)
}

func (b *bookings) ListByServiceCenter(ctx context.Context, centerID string) ([]model.Booking, error) {
	return b.list(ctx, "service_center_id", centerID)
}

func (b *bookings) Update(ctx context.Context, bk model.Booking) (model.Booking, error) {
	rec, err := json.Marshal(bk)
	if err != nil {
		return model.Booking{}, err
	}
	res, err := b.db.ExecContext(ctx,
		`UPDATE bookings SET record = ?, version = version + 1 WHERE id = ? AND version = ?`,
		string(rec), bk.ID, bk.Version)
	if err != nil {
		return model.Booking{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Booking{}, err
	}
	if n == 0 {
		if _, err := b.Get(ctx, bk.ID); apperrors.IsNotFound(err) {
			return model.Booking{}, err
		}
		return model.Booking{}, apperrors.ConcurrentModificationf("booking", bk.ID)
	}
	bk.Version++
	return bk, nil
}

type telemetry struct{ db *sql.DB }

func (t *telemetry) Insert(ctx context.Context, rec model.Telemetry) error {
	blob, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = t.db.ExecContext(ctx,
		`INSERT INTO telemetry (id, vehicle_id, ts, record) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.VehicleID, rec.Timestamp.UnixNano(), string(blob))
	return err
}

func (t *telemetry) ListByVehicle(ctx context.Context, vehicleID string, limit int) ([]model.Telemetry, error) {
	query := `SELECT record FROM telemetry WHERE vehicle_id = ? ORDER BY ts DESC`
	args := []any{vehicleID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.Telemetry, 0)
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var rec model.Telemetry
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

type rcaReports struct{ db *sql.DB }

func (r *rcaReports) Insert(ctx context.Context, rep model.RCAReport) error {
	rec, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO rca_reports (id, booking_id, created_at, version, record) VALUES (?, ?, ?, 1, ?)`,
		rep.ID, rep.BookingID, rep.CreatedAt.UnixNano(), string(rec))
	if isUniqueViolation(err) {
		return apperrors.Validationf("rca report %s already exists", rep.ID)
	}
	return err
}

func (r *rcaReports) Get(ctx context.Context, id string) (model.RCAReport, error) {
	var rec string
	var version int64
	err := r.db.QueryRowContext(ctx, `SELECT record, version FROM rca_reports WHERE id = ?`, id).
		Scan(&rec, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RCAReport{}, apperrors.NotFoundf("rca report", id)
	}
	if err != nil {
		return model.RCAReport{}, err
	}
	var rep model.RCAReport
	if err := json.Unmarshal([]byte(rec), &rep); err != nil {
		return model.RCAReport{}, err
	}
	rep.Version = version
	return rep, nil
}

func (r *rcaReports) ListByBooking(ctx context.Context, bookingID string) ([]model.RCAReport, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT record, version FROM rca_reports WHERE booking_id = ? ORDER BY created_at DESC, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.RCAReport, 0)
	for rows.Next() {
		var rec string
		var version int64
		if err := rows.Scan(&rec, &version); err != nil {
			return nil, err
		}
		var rep model.RCAReport
		if err := json.Unmarshal([]byte(rec), &rep); err != nil {
			return nil, err
		}
		rep.Version = version
		res = append(res, rep)
	}
	return res, rows.Err()
}

func (r *rcaReports) Update(ctx context.Context, rep model.RCAReport) (model.RCAReport, error) {
	rec, err := json.Marshal(rep)
	if err != nil {
		return model.RCAReport{}, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE rca_reports SET record = ?, version = version + 1 WHERE id = ? AND version = ?`,
		string(rec), rep.ID, rep.Version)
	if err != nil {
		return model.RCAReport{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.RCAReport{}, err
	}
	if n == 0 {
		if _, err := r.Get(ctx, rep.ID); apperrors.IsNotFound(err) {
			return model.RCAReport{}, err
		}
		return model.RCAReport{}, apperrors.ConcurrentModificationf("rca report", rep.ID)
	}
	rep.Version++
	return rep, nil
}

type serviceCenters struct{ db *sql.DB }

func (c *serviceCenters) Insert(ctx context.Context, sc model.ServiceCenter) error {
	rec, err := json.Marshal(sc)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO service_centers (id, name, record) VALUES (?, ?, ?)`,
		sc.ID, sc.Name, string(rec))
	if isUniqueViolation(err) {
		return apperrors.Validationf("service center %s already exists", sc.ID)
	}
	return err
}

func (c *serviceCenters) Get(ctx context.Context, id string) (model.ServiceCenter, error) {
	var rec string
	err := c.db.QueryRowContext(ctx, `SELECT record FROM service_centers WHERE id = ?`, id).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ServiceCenter{}, apperrors.NotFoundf("service center", id)
	}
	if err != nil {
		return model.ServiceCenter{}, err
	}
	var sc model.ServiceCenter
	if err := json.Unmarshal([]byte(rec), &sc); err != nil {
		return model.ServiceCenter{}, err
	}
	return sc, nil
}

func (c *serviceCenters) List(ctx context.Context) ([]model.ServiceCenter, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT record FROM service_centers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make([]model.ServiceCenter, 0)
	for rows.Next() {
		var rec string
		if err := rows.Scan(&rec); err != nil {
			return nil, err
		}
		var sc model.ServiceCenter
		if err := json.Unmarshal([]byte(rec), &sc); err != nil {
			return nil, err
		}
		res = append(res, sc)
	}
	return res, rows.Err()
}

type profiles struct{ db *sql.DB }

func (p *profiles) Insert(ctx context.Context, prof model.Profile) error {
	rec, err := json.Marshal(prof)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO profiles (id, record) VALUES (?, ?)`, prof.ID, string(rec))
	if isUniqueViolation(err) {
		return apperrors.Validationf("profile %s already exists", prof.ID)
	}
	return err
}

func (p *profiles) Get(ctx context.Context, id string) (model.Profile, error) {
	var rec string
	err := p.db.QueryRowContext(ctx, `SELECT record FROM profiles WHERE id = ?`, id).Scan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, apperrors.NotFoundf("profile", id)
	}
	if err != nil {
		return model.Profile{}, err
	}
	var prof model.Profile
	if err := json.Unmarshal([]byte(rec), &prof); err != nil {
		return model.Profile{}, err
	}
	return prof, nil
}
