package rest

import (
	"net/http"

	"github.com/dmitrijs2005/taxportal/internal/server/models"
	"github.com/dmitrijs2005/taxportal/internal/server/rest/respond"
	"github.com/gorilla/mux"
)

// listContents GET /api/content
func (s *HTTPServer) listContents(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paging(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.svc.Contents.ListAll(r.Context(), skip, limit, r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, page)
}

// countContents GET /api/content/count
func (s *HTTPServer) countContents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := s.svc.Contents.Count(r.Context(), models.Category(q.Get("category")), models.ContentType(q.Get("type")))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// getContent GET /api/content/item/{id}
func (s *HTTPServer) getContent(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Contents.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// listContentsByCategory GET /api/content/category/{category}
func (s *HTTPServer) listContentsByCategory(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paging(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	category := models.Category(mux.Vars(r)["category"])
	page, err := s.svc.Contents.ListByCategory(r.Context(), category, skip, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, page)
}

// listContentsByFilter GET /api/content/{category}/{type}
func (s *HTTPServer) listContentsByFilter(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paging(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	vars := mux.Vars(r)
	page, err := s.svc.Contents.ListByFilter(r.Context(),
		models.Category(vars["category"]), models.ContentType(vars["type"]),
		skip, limit, r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, page)
}

// createContent POST /api/content
func (s *HTTPServer) createContent(w http.ResponseWriter, r *http.Request) {
	var payload models.ContentCreate
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, err)
		return
	}

	actor := sessionFrom(r.Context()).User.DisplayName()
	c, err := s.svc.Contents.Create(r.Context(), payload, actor)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "content created", "id", c.ID, "by", actor)
	respond.WriteJSON(w, http.StatusCreated, c)
}

// updateContent PUT /api/content/{id}
func (s *HTTPServer) updateContent(w http.ResponseWriter, r *http.Request) {
	var upd models.ContentUpdate
	if err := decodeJSON(r, &upd); err != nil {
		s.writeError(w, r, err)
		return
	}

	c, err := s.svc.Contents.Update(r.Context(), mux.Vars(r)["id"], upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// deleteContent DELETE /api/content/{id}
func (s *HTTPServer) deleteContent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	deleted, err := s.svc.Contents.DeleteByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted {
		respond.WriteError(w, http.StatusNotFound, "content not found")
		return
	}

	s.logger.Info(r.Context(), "content deleted", "id", id, "by", sessionFrom(r.Context()).User.ID)
	w.WriteHeader(http.StatusNoContent)
}
