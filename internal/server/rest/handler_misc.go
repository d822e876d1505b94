package rest

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/dmitrijs2005/taxportal/internal/server/rest/respond"
	"github.com/dmitrijs2005/taxportal/internal/server/services"
)

// health GET /api/health
func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Store.Ping(r.Context()); err != nil {
		s.logger.Warn(r.Context(), "health check failed", "error", err)
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "disconnected"})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
}

// sitemap GET /api/seo/sitemap.xml
func (s *HTTPServer) sitemap(w http.ResponseWriter, r *http.Request) {
	respond.WriteBody(w, http.StatusOK, "application/xml; charset=utf-8", s.svc.SEO.Sitemap(r.Context()))
}

// robots GET /api/seo/robots.txt
func (s *HTTPServer) robots(w http.ResponseWriter, r *http.Request) {
	respond.WriteBody(w, http.StatusOK, "text/plain; charset=utf-8", []byte(s.svc.SEO.Robots()))
}

// uploadImage POST /api/upload/image, multipart field "file"
func (s *HTTPServer) uploadImage(w http.ResponseWriter, r *http.Request) {
	files, err := s.multipartFiles(w, r, "file", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeAll(files)

	img, err := s.svc.Images.Upload(r.Context(), files[0])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, img)
}

// uploadImages POST /api/upload/images, multipart field "files"
func (s *HTTPServer) uploadImages(w http.ResponseWriter, r *http.Request) {
	files, err := s.multipartFiles(w, r, "files", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer closeAll(files)

	res, err := s.svc.Images.UploadMany(r.Context(), files)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, res)
}

// multipartFiles opens the files of field. limit 0 means any number.
func (s *HTTPServer) multipartFiles(w http.ResponseWriter, r *http.Request, field string, limit int) ([]services.ImageUpload, error) {
	// room for a handful of maximum-size files plus form overhead
	r.Body = http.MaxBytesReader(w, r.Body, 10*s.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		return nil, fmt.Errorf("%w: invalid multipart form: %v", errBadRequest, err)
	}

	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: missing file field %q", errBadRequest, field)
	}
	if limit > 0 && len(headers) > limit {
		headers = headers[:limit]
	}

	files := make([]services.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll(files)
			return nil, fmt.Errorf("%w: %s: %v", errBadRequest, fh.Filename, err)
		}
		files = append(files, services.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return files, nil
}

func closeAll(files []services.ImageUpload) {
	for _, f := range files {
		if c, ok := f.Body.(multipart.File); ok {
			_ = c.Close()
		}
	}
}
