package handlers

import (
	"log/slog"
	"net/http"

	"github.com/foaademad/event-test/data"
	"github.com/foaademad/event-test/models"
	"github.com/foaademad/event-test/utils"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// PagesHandler serves the static content pages and the contact form.
type PagesHandler struct {
	pages map[string]data.Page
}

func NewPagesHandler(pages map[string]data.Page) *PagesHandler {
	return &PagesHandler{pages: pages}
}

func (h *PagesHandler) GetPage(e *core.RequestEvent) error {
	page, ok := h.pages[e.Request.PathValue("slug")]
	if !ok {
		return apis.NewNotFoundError("Page not found", nil)
	}
	return e.JSON(http.StatusOK, page)
}

// Contact accepts a contact form submission. Messages are only logged.
func (h *PagesHandler) Contact(e *core.RequestEvent) error {
	var req models.ContactRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := validate(req, "Invalid contact details"); err != nil {
		return err
	}

	reference, err := utils.GenerateReference("MSG")
	if err != nil {
		return apis.NewInternalServerError("Failed to send message", nil)
	}

	slog.Info("Contact message received", "reference", reference, "email", models.NormalizeEmail(req.Email))

	return e.JSON(http.StatusAccepted, map[string]any{
		"reference": reference,
		"message":   "Thank you for your message. We will get back to you soon.",
	})
}
