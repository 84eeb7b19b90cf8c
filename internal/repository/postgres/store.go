package postgres

import "clubapi/internal/repository"

type store struct {
	q DBTX
}

// NewStore returns repositories that all run their statements on q.
func NewStore(q DBTX) repository.Store {
	return &store{q: q}
}

func (s *store) Workshops() repository.WorkshopRepository {
	return NewWorkshopPostgres(s.q)
}

func (s *store) Registrations() repository.RegistrationRepository {
	return NewRegistrationPostgres(s.q)
}

func (s *store) Interests() repository.InterestRepository {
	return NewInterestPostgres(s.q)
}

func (s *store) Refunds() repository.RefundRepository {
	return NewRefundPostgres(s.q)
}

func (s *store) Inventory() repository.InventoryRepository {
	return NewInventoryPostgres(s.q)
}

func (s *store) Invitations() repository.InvitationRepository {
	return NewInvitationPostgres(s.q)
}

func (s *store) Members() repository.MemberRepository {
	return NewMemberPostgres(s.q)
}
