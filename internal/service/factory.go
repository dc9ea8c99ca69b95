package service

import (
	"github.com/NadavGB86/event-pragmetizer-oss/internal/store"
)

type Services struct {
	stores   *store.Stores
	planning PlanningService
}

// NewServices wires services over the given stores. deps.Sessions is taken
// from stores.
func NewServices(stores *store.Stores, deps PlanningDeps) *Services {
	deps.Sessions = stores.Sessions()
	return &Services{
		stores:   stores,
		planning: NewPlanningService(deps),
	}
}

func (s *Services) Planning() PlanningService {
	return s.planning
}
