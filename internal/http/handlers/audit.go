package handlers

import (
	"github.com/labstack/echo/v5"

	"github.com/tutorhub/tutorhub-admin/internal/audit"
	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
	"github.com/tutorhub/tutorhub-admin/internal/http/views"
	"github.com/tutorhub/tutorhub-admin/internal/pagination"
)

func (h *Handlers) HandleAudit(c *echo.Context) error {
	store := h.Audit
	if store == nil {
		store = audit.Nop{}
	}
	ctx := c.Request().Context()
	perPage := h.pageSize()

	totalCount, err := store.Count(ctx)
	if err != nil {
		return h.RenderError(c, err)
	}
	page, totalPages, offset := pagination.Paginate(totalCount, pagination.ParsePage(c.QueryParam("page")), perPage)

	entries, err := store.List(ctx, perPage, offset)
	if err != nil {
		return h.RenderError(c, err)
	}

	rows := make([]viewmodels.AuditRow, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, viewmodels.AuditRow{
			When:     entry.CreatedAt.UTC().Format(timestampLayout),
			Action:   string(entry.Action),
			TargetID: entry.TargetID,
			Operator: entry.Operator,
			Outcome:  string(entry.Outcome),
			Success:  entry.Outcome == audit.OutcomeSuccess,
			Detail:   entry.Detail,
		})
	}
	from, to := pagination.ShowingRange(totalCount, offset, len(rows))

	data := viewmodels.AuditViewData{
		Layout:        h.LayoutData(c, "Audit log"),
		Entries:       rows,
		Page:          page,
		TotalPages:    totalPages,
		TotalCount:    totalCount,
		ShowingFrom:   from,
		ShowingTo:     to,
		Pagination:    h.paginationView(page, totalPages, "", views.AuditURL),
		EmptyStateMsg: "No moderation actions recorded yet.",
		Persistent:    h.AuditPersistent,
	}
	return h.RenderComponent(c, views.AuditPage(data))
}
