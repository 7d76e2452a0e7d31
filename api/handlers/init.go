package handlers

import "github.com/evan-burke/nscheck/services"

type APIHandlers struct {
	DomainCheck *DomainCheckHandler
	History     *HistoryHandler
}

func InitHandlers(s *services.Services) *APIHandlers {
	return &APIHandlers{
		DomainCheck: NewDomainCheckHandler(s),
		History:     NewHistoryHandler(s),
	}
}
