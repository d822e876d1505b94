package rest

import (
	"net/http"

	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/rest/respond"
	"github.com/gorilla/mux"
)

// createContact POST /api/contact
func (s *HTTPServer) createContact(w http.ResponseWriter, r *http.Request) {
	var payload models.ContactCreate
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.svc.Contacts.Create(r.Context(), payload)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, c)
}

// listContacts GET /api/contact
func (s *HTTPServer) listContacts(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paging(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.svc.Contacts.ListAll(r.Context(), skip, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, page)
}

// contactStats GET /api/contact/count
func (s *HTTPServer) contactStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Contacts.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, stats)
}

// getContact GET /api/contact/{id}
func (s *HTTPServer) getContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Contacts.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// updateContactStatus PATCH /api/contact/{id}/status
func (s *HTTPServer) updateContactStatus(w http.ResponseWriter, r *http.Request) {
	var req models.ContactStatusUpdate
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.svc.Contacts.UpdateStatus(r.Context(), mux.Vars(r)["id"], req.Status)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}
