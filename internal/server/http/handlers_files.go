package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cmskeeper/internal/common"
	"github.com/dmitrijs2005/cmskeeper/internal/server/services"
	"github.com/gorilla/mux"
)

const (
	// multipartMemory is how much of a multipart body is held in memory
	// before spilling to temporary files.
	multipartMemory = 8 << 20
	// multipartOverhead allows for the form fields and part headers around
	// the file itself.
	multipartOverhead = 1 << 20
)

func (h *Handler) uploadFile(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.writeError(w, r, common.ErrFileNotSent)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, common.ErrFileNotSent)
		return
	}
	defer file.Close()

	f, err := h.svc.Files.Upload(r.Context(), services.Upload{
		Name:  header.Filename,
		Title: strings.TrimSpace(r.FormValue("title")),
		Mime:  header.Header.Get("Content-Type"),
		Size:  header.Size,
		Body:  file,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) listFiles(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Files.List(r.Context(), opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := h.svc.Files.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) updateFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req fileTitleRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := h.svc.Files.UpdateTitle(r.Context(), id, req.Title)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f, err := h.svc.Files.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// downloadFile redirects a public file path to a presigned storage URL.
func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	year, _ := strconv.Atoi(vars["year"])
	month, _ := strconv.Atoi(vars["month"])
	day, _ := strconv.Atoi(vars["day"])

	target, err := h.svc.Files.DownloadURL(r.Context(),
		fmt.Sprintf("files/%d/%d/%d/%s", year, month, day, vars["fileName"]))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
