package rest

import (
	"net/http"

	"github.com/dmitrijs2005/taxportal/internal/server/rest/recovery"
	"github.com/gorilla/mux"
)

// Handler builds the router. Literal routes are registered before the
// parameterised ones that would otherwise shadow them.
func (s *HTTPServer) Handler() http.Handler {
	router := mux.NewRouter()

	router.Use(recovery.Middleware(s.logger))
	router.Use(s.requestLogger)

	router.HandleFunc("/api/health", s.health).Methods(http.MethodGet)

	// content
	router.HandleFunc("/api/content/count", s.countContents).Methods(http.MethodGet)
	router.HandleFunc("/api/content/item/{id}", s.getContent).Methods(http.MethodGet)
	router.HandleFunc("/api/content/category/{category}", s.listContentsByCategory).Methods(http.MethodGet)
	router.HandleFunc("/api/content/{category}/{type}", s.listContentsByFilter).Methods(http.MethodGet)
	router.HandleFunc("/api/content", s.listContents).Methods(http.MethodGet)
	router.HandleFunc("/api/content", s.withAdmin(s.createContent)).Methods(http.MethodPost)
	router.HandleFunc("/api/content/{id}", s.withSession(s.updateContent)).Methods(http.MethodPut)
	router.HandleFunc("/api/content/{id}", s.withSession(s.deleteContent)).Methods(http.MethodDelete)

	// contact
	router.HandleFunc("/api/contact", s.createContact).Methods(http.MethodPost)
	router.HandleFunc("/api/contact", s.withAdmin(s.listContacts)).Methods(http.MethodGet)
	router.HandleFunc("/api/contact/count", s.withAdmin(s.contactStats)).Methods(http.MethodGet)
	router.HandleFunc("/api/contact/{id}", s.withAdmin(s.getContact)).Methods(http.MethodGet)
	router.HandleFunc("/api/contact/{id}/status", s.withAdmin(s.updateContactStatus)).Methods(http.MethodPatch)

	// sessions
	router.HandleFunc("/api/login", s.login).Methods(http.MethodPost)
	router.HandleFunc("/api/me", s.withSession(s.me)).Methods(http.MethodGet)
	router.HandleFunc("/api/logout", s.withSession(s.logout)).Methods(http.MethodPost)

	// uploads
	router.HandleFunc("/api/upload/image", s.withSession(s.uploadImage)).Methods(http.MethodPost)
	router.HandleFunc("/api/upload/images", s.withSession(s.uploadImages)).Methods(http.MethodPost)

	// seo
	router.HandleFunc("/api/seo/sitemap.xml", s.sitemap).Methods(http.MethodGet)
	router.HandleFunc("/api/seo/robots.txt", s.robots).Methods(http.MethodGet)

	return router
}
