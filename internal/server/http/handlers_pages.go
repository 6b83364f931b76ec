package http

import (
	"net/http"

	"github.com/dmitrijs2005/cmskeeper/internal/server/services"
)

func (req pageRequest) input() services.PageInput {
	return services.PageInput{
		Name:            req.Name,
		Content:         req.Content,
		IsPage:          req.IsPage,
		Template:        req.Template,
		Slug:            req.Slug,
		Thumbnail:       req.Thumbnail,
		MetaTitle:       req.MetaTitle,
		MetaDescription: req.MetaDescription,
		Categories:      req.Categories,
	}
}

func (h *Handler) listPagesFiltered(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	opts, err := listOptions(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.svc.Pages.List(r.Context(), opts, publishedOnly)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getPageFiltered(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Pages.Get(r.Context(), id, publishedOnly)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) listPages(w http.ResponseWriter, r *http.Request) {
	h.listPagesFiltered(w, r, true)
}

func (h *Handler) getPage(w http.ResponseWriter, r *http.Request) {
	h.getPageFiltered(w, r, true)
}

func (h *Handler) previewPages(w http.ResponseWriter, r *http.Request) {
	h.listPagesFiltered(w, r, false)
}

func (h *Handler) previewPage(w http.ResponseWriter, r *http.Request) {
	h.getPageFiltered(w, r, false)
}

func (h *Handler) createPage(w http.ResponseWriter, r *http.Request) {
	user, err := principal(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req pageRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Pages.Create(r.Context(), user, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

func (h *Handler) updatePage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req pageRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Pages.Update(r.Context(), id, req.input())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) deletePage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Pages.Delete(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) togglePublished(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page, err := h.svc.Pages.TogglePublished(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
