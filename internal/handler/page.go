package handler

import (
	"net/http"

	"github.com/templui/pixaro/internal/service"
	"github.com/templui/pixaro/internal/ui"
	"github.com/templui/pixaro/internal/ui/pages"
)

type PageHandler struct {
	pageService *service.PageService
}

func NewPageHandler(pageService *service.PageService) *PageHandler {
	return &PageHandler{pageService: pageService}
}

func (h *PageHandler) ShowPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pageService.Page(r.PathValue("page"))
	if err != nil {
		ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
		return
	}

	ui.Render(w, r, pages.Content(pages.ContentView{
		Title:       page.Title,
		Summary:     page.Description,
		Content:     page.Content,
		LastUpdated: page.LastUpdated,
	}))
}
