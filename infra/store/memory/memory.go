// Package memory provides an in-process store.Store backed by mutex-guarded
// maps. It backs tests and small single-node deployments; the sqlite store
// is the durable option.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/opfleet/fleethealth/core/apperrors"
	"github.com/opfleet/fleethealth/core/model"
	"github.com/opfleet/fleethealth/core/store"
)

// Store implements store.Store in memory.
type Store struct {
	vehicles    *vehicleStore
	predictions *predictionStore
	bookings    *bookingStore
	telemetry   *telemetryStore
	rcaReports  *rcaStore
	centers     *centerStore
	profiles    *profileStore
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		vehicles:    &vehicleStore{data: map[string]model.Vehicle{}},
		predictions: &predictionStore{data: map[string]model.Prediction{}},
		bookings:    &bookingStore{data: map[string]model.Booking{}},
		telemetry:   &telemetryStore{data: map[string][]model.Telemetry{}},
		rcaReports:  &rcaStore{data: map[string]model.RCAReport{}},
		centers:     &centerStore{data: map[string]model.ServiceCenter{}},
		profiles:    &profileStore{data: map[string]model.Profile{}},
	}
}

func (s *Store) Vehicles() store.Vehicles                { return s.vehicles }
func (s *Store) Predictions() store.Predictions          { return s.predictions }
func (s *Store) Bookings() store.Bookings                { return s.bookings }
func (s *Store) Telemetry() store.TelemetryRecords       { return s.telemetry }
func (s *Store) RCAReports() store.RCAReports            { return s.rcaReports }
func (s *Store) ServiceCenters() store.ServiceCenters    { return s.centers }
func (s *Store) Profiles() store.Profiles                { return s.profiles }

type vehicleStore struct {
	mu   sync.RWMutex
	data map[string]model.Vehicle
}

func (s *vehicleStore) Insert(_ context.Context, v model.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[v.ID]; ok {
		return apperrors.Validationf("vehicle %s already exists", v.ID)
	}
	for _, existing := range s.data {
		if existing.VIN == v.VIN {
			return apperrors.Validationf("vin %s is already registered", v.VIN)
		}
	}
	v.Version = 1
	s.data[v.ID] = v
	return nil
}

func (s *vehicleStore) Get(_ context.Context, id string) (model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[id]
	if !ok {
		return model.Vehicle{}, apperrors.NotFoundf("vehicle", id)
	}
	return v, nil
}

func (s *vehicleStore) GetByVIN(_ context.Context, vin string) (model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.data {
		if v.VIN == vin {
			return v, nil
		}
	}
	return model.Vehicle{}, apperrors.NotFoundf("vehicle with vin", vin)
}

func (s *vehicleStore) ListByOwner(_ context.Context, ownerID string) ([]model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Vehicle, 0)
	for _, v := range s.data {
		if v.OwnerID == ownerID {
			res = append(res, v)
		}
	}
	sortVehicles(res)
	return res, nil
}

func (s *vehicleStore) ListAll(_ context.Context) ([]model.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Vehicle, 0, len(s.data))
	for _, v := range s.data {
		res = append(res, v)
	}
	sortVehicles(res)
	return res, nil
}

func (s *vehicleStore) Update(_ context.Context, v model.Vehicle) (model.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data[v.ID]
	if !ok {
		return model.Vehicle{}, apperrors.NotFoundf("vehicle", v.ID)
	}
	if cur.Version != v.Version {
		return model.Vehicle{}, apperrors.ConcurrentModificationf("vehicle", v.ID)
	}
	v.Version++
	s.data[v.ID] = v
	return v, nil
}

// Registration order breaks created_at ties so listings stay stable.
func sortVehicles(vs []model.Vehicle) {
	sort.Slice(vs, func(i, j int) bool {
		if !vs[i].CreatedAt.Equal(vs[j].CreatedAt) {
			return vs[i].CreatedAt.After(vs[j].CreatedAt)
		}
		return vs[i].ID < vs[j].ID
	})
}

type predictionStore struct {
	mu   sync.RWMutex
	data map[string]model.Prediction
}

func (s *predictionStore) Insert(_ context.Context, p model.Prediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[p.ID]; ok {
		return apperrors.Validationf("prediction %s already exists", p.ID)
	}
	s.data[p.ID] = p
	return nil
}

func (s *predictionStore) Get(_ context.Context, id string) (model.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data[id]
	if !ok {
		return model.Prediction{}, apperrors.NotFoundf("prediction", id)
	}
	return p, nil
}

func (s *predictionStore) ListByVehicle(_ context.Context, vehicleID string, unresolvedOnly bool) ([]model.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Prediction, 0)
	for _, p := range s.data {
		if p.VehicleID != vehicleID {
			continue
		}
		if unresolvedOnly && p.Resolved {
			continue
		}
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res, nil
}

func (s *predictionStore) Resolve(_ context.Context, vehicleID string, component model.ComponentType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, p := range s.data {
		if p.VehicleID == vehicleID && p.Component == component && !p.Resolved {
			p.Resolved = true
			s.data[id] = p
			n++
		}
	}
	return n, nil
}

type bookingStore struct {
	mu   sync.RWMutex
	data map[string]model.Booking
}

func (s *bookingStore) Insert(_ context.Context, b model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[b.ID]; ok {
		return apperrors.Validationf("booking %s already exists", b.ID)
	}
	b.Version = 1
	s.data[b.ID] = b
	return nil
}

func (s *bookingStore) Get(_ context.Context, id string) (model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[id]
	if !ok {
		return model.Booking{}, apperrors.NotFoundf("booking", id)
	}
	return b, nil
}

func (s *bookingStore) list(match func(model.Booking) bool) []model.Booking {
	res := make([]model.Booking, 0)
	for _, b := range s.data {
		if match(b) {
			res = append(res, b)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID < res[j].ID
	})
	return res
}

func (s *bookingStore) ListByOwner(_ context.Context, ownerID string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(func(b model.Booking) bool { return b.OwnerID == ownerID }), nil
}

func (s *bookingStore) ListByServiceCenter(_ context.Context, centerID string) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list(func(b model.Booking) bool { return b.ServiceCenterID == centerID }), nil
}

func (s *bookingStore) Update(_ context.Context, b model.Booking) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data[b.ID]
	if !ok {
		return model.Booking{}, apperrors.NotFoundf("booking", b.ID)
	}
	if cur.Version != b.Version {
		return model.Booking{}, apperrors.ConcurrentModificationf("booking", b.ID)
	}
	b.Version++
	s.data[b.ID] = b
	return b, nil
}

type telemetryStore struct {
	mu   sync.RWMutex
	data map[string][]model.Telemetry
}

func (s *telemetryStore) Insert(_ context.Context, t model.Telemetry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[t.VehicleID] = append(s.data[t.VehicleID], t)
	return nil
}

func (s *telemetryStore) ListByVehicle(_ context.Context, vehicleID string, limit int) ([]model.Telemetry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.data[vehicleID]
	res := make([]model.Telemetry, len(recs))
	copy(res, recs)
	sort.Slice(res, func(i, j int) bool { return res[i].Timestamp.After(res[j].Timestamp) })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

type rcaStore struct {
	mu   sync.RWMutex
	data map[string]model.RCAReport
}

func (s *rcaStore) Insert(_ context.Context, r model.RCAReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[r.ID]; ok {
		return apperrors.Validationf("rca report %s already exists", r.ID)
	}
	r.Version = 1
	s.data[r.ID] = r
	return nil
}

func (s *rcaStore) Get(_ context.Context, id string) (model.RCAReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.data[id]
	if !ok {
		return model.RCAReport{}, apperrors.NotFoundf("rca report", id)
	}
	return r, nil
}

func (s *rcaStore) ListByBooking(_ context.Context, bookingID string) ([]model.RCAReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.RCAReport, 0)
	for _, r := range s.data {
		if r.BookingID == bookingID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (s *rcaStore) Update(_ context.Context, r model.RCAReport) (model.RCAReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.data[r.ID]
	if !ok {
		return model.RCAReport{}, apperrors.NotFoundf("rca report", r.ID)
	}
	if cur.Version != r.Version {
		return model.RCAReport{}, apperrors.ConcurrentModificationf("rca report", r.ID)
	}
	r.Version++
	s.data[r.ID] = r
	return r, nil
}

type centerStore struct {
	mu   sync.RWMutex
	data map[string]model.ServiceCenter
}

func (s *centerStore) Insert(_ context.Context, c model.ServiceCenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[c.ID]; ok {
		return apperrors.Validationf("service center %s already exists", c.ID)
	}
	c.Version = 1
	s.data[c.ID] = c
	return nil
}

func (s *centerStore) Get(_ context.Context, id string) (model.ServiceCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.data[id]
	if !ok {
		return model.ServiceCenter{}, apperrors.NotFoundf("service center", id)
	}
	return c, nil
}

func (s *centerStore) List(_ context.Context) ([]model.ServiceCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.ServiceCenter, 0, len(s.data))
	for _, c := range s.data {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

type profileStore struct {
	mu   sync.RWMutex
	data map[string]model.Profile
}

func (s *profileStore) Insert(_ context.Context, p model.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[p.ID]; ok {
		return apperrors.Validationf("profile %s already exists", p.ID)
	}
	s.data[p.ID] = p
	return nil
}

func (s *profileStore) Get(_ context.Context, id string) (model.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data[id]
	if !ok {
		return model.Profile{}, apperrors.NotFoundf("profile", id)
	}
	return p, nil
}
