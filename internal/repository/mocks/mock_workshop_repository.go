package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

type MockWorkshopRepository struct {
	mock.Mock
}

func (m *MockWorkshopRepository) Create(ctx context.Context, w *model.Workshop) (*model.Workshop, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workshop), args.Error(1)
}

func (m *MockWorkshopRepository) FindByID(ctx context.Context, id string) (*model.Workshop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workshop), args.Error(1)
}

func (m *MockWorkshopRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Workshop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Workshop), args.Error(1)
}

func (m *MockWorkshopRepository) List(ctx context.Context, status model.WorkshopStatus, pq repository.PageQuery) (*repository.PageResult[model.Workshop], error) {
	args := m.Called(ctx, status, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Workshop]), args.Error(1)
}

// Update echoes the argument back unless the expectation supplies a workshop.
func (m *MockWorkshopRepository) Update(ctx context.Context, w *model.Workshop) (*model.Workshop, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		if err := args.Error(1); err != nil {
			return nil, err
		}
		return w, nil
	}
	return args.Get(0).(*model.Workshop), args.Error(1)
}

func (m *MockWorkshopRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) registration(args mock.Arguments) (*model.Registration, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) list(args mock.Arguments) ([]model.Registration, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) Create(ctx context.Context, r *model.Registration) (*model.Registration, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil && args.Error(1) == nil {
		return r, nil
	}
	return m.registration(args)
}

func (m *MockRegistrationRepository) FindByID(ctx context.Context, id string) (*model.Registration, error) {
	return m.registration(m.Called(ctx, id))
}

func (m *MockRegistrationRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Registration, error) {
	return m.registration(m.Called(ctx, id))
}

func (m *MockRegistrationRepository) FindActive(ctx context.Context, workshopID, userID string) (*model.Registration, error) {
	return m.registration(m.Called(ctx, workshopID, userID))
}

func (m *MockRegistrationRepository) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Registration, error) {
	return m.registration(m.Called(ctx, paymentIntentID))
}

func (m *MockRegistrationRepository) CountActive(ctx context.Context, workshopID string) (int, error) {
	args := m.Called(ctx, workshopID)
	return args.Int(0), args.Error(1)
}

func (m *MockRegistrationRepository) LockSeats(ctx context.Context, workshopID string) error {
	return m.Called(ctx, workshopID).Error(0)
}

func (m *MockRegistrationRepository) ListByWorkshop(ctx context.Context, workshopID string, statuses []model.RegistrationStatus) ([]model.Registration, error) {
	return m.list(m.Called(ctx, workshopID, statuses))
}

func (m *MockRegistrationRepository) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	return m.list(m.Called(ctx, userID))
}

func (m *MockRegistrationRepository) UpdateStatus(ctx context.Context, id string, status model.RegistrationStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockRegistrationRepository) SetPaymentIntent(ctx context.Context, id, paymentIntentID string) error {
	return m.Called(ctx, id, paymentIntentID).Error(0)
}

func (m *MockRegistrationRepository) SetAttendance(ctx context.Context, id string, attendance model.Attendance, checkedInAt *time.Time) error {
	return m.Called(ctx, id, attendance, checkedInAt).Error(0)
}

func (m *MockRegistrationRepository) MarkNoShows(ctx context.Context, workshopID string) (int64, error) {
	args := m.Called(ctx, workshopID)
	return args.Get(0).(int64), args.Error(1)
}

type MockInterestRepository struct {
	mock.Mock
}

func (m *MockInterestRepository) Add(ctx context.Context, workshopID, userID string) error {
	return m.Called(ctx, workshopID, userID).Error(0)
}

func (m *MockInterestRepository) Remove(ctx context.Context, workshopID, userID string) error {
	return m.Called(ctx, workshopID, userID).Error(0)
}

func (m *MockInterestRepository) Summary(ctx context.Context, workshopID, userID string) (*model.InterestSummary, error) {
	args := m.Called(ctx, workshopID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InterestSummary), args.Error(1)
}
