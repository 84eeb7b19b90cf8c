package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clubapi/internal/model"
	"clubapi/internal/repository"
)

// MockTransactor records the claims of each scope and runs fn against Store
// unless the expectation returns an error.
type MockTransactor struct {
	mock.Mock
	Store *MockStore
}

func NewMockTransactor() *MockTransactor {
	return &MockTransactor{Store: NewMockStore()}
}

func (m *MockTransactor) InScope(ctx context.Context, claims model.Claims, fn func(repository.Store) error) error {
	args := m.Called(ctx, claims)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Store)
}

func (m *MockTransactor) InReadScope(ctx context.Context, claims model.Claims, fn func(repository.Store) error) error {
	args := m.Called(ctx, claims)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Store)
}

// AssertAll checks the transactor and every repository mock.
func (m *MockTransactor) AssertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.Store.WorkshopRepo.AssertExpectations(t)
	m.Store.RegistrationRepo.AssertExpectations(t)
	m.Store.InterestRepo.AssertExpectations(t)
	m.Store.RefundRepo.AssertExpectations(t)
	m.Store.InventoryRepo.AssertExpectations(t)
	m.Store.InvitationRepo.AssertExpectations(t)
	m.Store.MemberRepo.AssertExpectations(t)
}

type MockStore struct {
	WorkshopRepo     *MockWorkshopRepository
	RegistrationRepo *MockRegistrationRepository
	InterestRepo     *MockInterestRepository
	RefundRepo       *MockRefundRepository
	InventoryRepo    *MockInventoryRepository
	InvitationRepo   *MockInvitationRepository
	MemberRepo       *MockMemberRepository
}

func NewMockStore() *MockStore {
	return &MockStore{
		WorkshopRepo:     new(MockWorkshopRepository),
		RegistrationRepo: new(MockRegistrationRepository),
		InterestRepo:     new(MockInterestRepository),
		RefundRepo:       new(MockRefundRepository),
		InventoryRepo:    new(MockInventoryRepository),
		InvitationRepo:   new(MockInvitationRepository),
		MemberRepo:       new(MockMemberRepository),
	}
}

func (s *MockStore) Workshops() repository.WorkshopRepository         { return s.WorkshopRepo }
func (s *MockStore) Registrations() repository.RegistrationRepository { return s.RegistrationRepo }
func (s *MockStore) Interests() repository.InterestRepository         { return s.InterestRepo }
func (s *MockStore) Refunds() repository.RefundRepository             { return s.RefundRepo }
func (s *MockStore) Inventory() repository.InventoryRepository        { return s.InventoryRepo }
func (s *MockStore) Invitations() repository.InvitationRepository     { return s.InvitationRepo }
func (s *MockStore) Members() repository.MemberRepository             { return s.MemberRepo }
