package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v5"

	"github.com/tutorhub/tutorhub-admin/internal/audit"
	"github.com/tutorhub/tutorhub-admin/internal/http/viewmodels"
	"github.com/tutorhub/tutorhub-admin/internal/http/views"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
	"github.com/tutorhub/tutorhub-admin/internal/moderation"
	"github.com/tutorhub/tutorhub-admin/internal/pagination"
)

const timestampLayout = "2006-01-02 15:04"

// pageState is the pair of list pages the dashboard is showing.
type pageState struct {
	pending int
	reports int
}

func queryPages(c *echo.Context) pageState {
	return pageState{
		pending: pagination.ParsePage(c.QueryParam("pending_page")),
		reports: pagination.ParsePage(c.QueryParam("reports_page")),
	}
}

func formPages(c *echo.Context) pageState {
	return pageState{
		pending: pagination.ParsePage(c.FormValue("pending_page")),
		reports: pagination.ParsePage(c.FormValue("reports_page")),
	}
}

func (p pageState) url() string {
	return views.ModerationURL(p.pending, p.reports)
}

// HandleModeration renders the dashboard. The first visit in a session loads all
// three collections; later visits render the controller's local state.
func (h *Handlers) HandleModeration(c *echo.Context) error {
	ctrl, err := h.controllerFor(c)
	if err != nil {
		return h.RenderError(c, err)
	}
	addVary(c, "HX-Request", "HX-Target")

	if err := ctrl.Mount(c.Request().Context()); err != nil {
		c.Logger().Warn("moderation dashboard load incomplete", "error", err)
	}

	pages := queryPages(c)
	csrf := csrfToken(c)
	if coll, ok := hxSection(c); ok {
		return h.RenderComponent(c, h.sectionFor(ctrl, coll, pages, csrf))
	}

	return h.RenderComponent(c, views.ModerationPage(h.moderationViewData(c, ctrl, pages)))
}

// HandleModerationReload re-fetches one collection, or all of them.
func (h *Handlers) HandleModerationReload(c *echo.Context) error {
	ctrl, err := h.controllerFor(c)
	if err != nil {
		return h.RenderError(c, err)
	}
	pages := formPages(c)

	colls, err := moderation.ParseCollection(c.FormValue("collection"))
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	if len(colls) == 1 {
		err = ctrl.Reload(ctx, colls[0])
	} else {
		err = ctrl.LoadAll(ctx)
	}
	if err != nil {
		c.Logger().Warn("moderation reload failed", "collection", c.FormValue("collection"), "error", err)
	}

	if isHX(c) && len(colls) == 1 {
		return h.RenderComponent(c, h.sectionFor(ctrl, colls[0], pages, csrfToken(c)))
	}
	if err != nil {
		setFlashToast(c, viewmodels.ToastViewData{Category: "error", Title: "Reload incomplete", Description: "Some lists could not be loaded."})
	}
	return c.Redirect(http.StatusSeeOther, pages.url())
}

func (h *Handlers) HandleApproveGig(c *echo.Context) error {
	return h.handleAction(c, moderation.CollectionPending, func(ctx context.Context, ctrl *moderation.Controller) error {
		return ctrl.Approve(ctx, c.Param("id"))
	})
}

func (h *Handlers) HandleBlockUser(c *echo.Context) error {
	return h.handleAction(c, moderation.CollectionReports, func(ctx context.Context, ctrl *moderation.Controller) error {
		return ctrl.Block(ctx, c.Param("id"))
	})
}

// HandleDeleteReview removes a review by id. No list changes, so htmx requests
// only get the toast.
func (h *Handlers) HandleDeleteReview(c *echo.Context) error {
	return h.handleAction(c, "", func(ctx context.Context, ctrl *moderation.Controller) error {
		return ctrl.DeleteReview(ctx, c.FormValue("review_id"))
	})
}

// handleAction runs one moderation action and answers with the refreshed section
// plus a toast (htmx) or a redirect carrying a flash toast.
func (h *Handlers) handleAction(c *echo.Context, section moderation.Collection, action func(context.Context, *moderation.Controller) error) error {
	ctrl, err := h.controllerFor(c)
	if err != nil {
		return h.RenderError(c, err)
	}
	pages := formPages(c)

	collector := &toastCollector{}
	ctx := moderation.WithNotifier(c.Request().Context(), collector)
	err = action(ctx, ctrl)

	toast := collector.toast
	switch {
	case errors.Is(err, moderation.ErrInFlight):
		toast = &viewmodels.ToastViewData{Category: "info", Title: "Already in progress", Description: "That action is still running."}
	case err != nil && toast == nil:
		toast = &viewmodels.ToastViewData{Category: "error", Title: "Invalid request", Description: err.Error()}
	}

	if !isHX(c) {
		if toast != nil {
			setFlashToast(c, *toast)
		}
		return c.Redirect(http.StatusSeeOther, pages.url())
	}

	oob := views.ToastRegion(toast, true)
	if section == "" {
		// Nothing on the page changes; only the out-of-band toast is swapped.
		c.Response().Header().Set("HX-Reswap", "none")
		return h.RenderComponent(c, oob)
	}
	return h.RenderComponent(c, templ.Join(h.sectionFor(ctrl, section, pages, csrfToken(c)), oob))
}

func (h *Handlers) sectionFor(ctrl *moderation.Controller, coll moderation.Collection, pages pageState, csrf string) templ.Component {
	switch coll {
	case moderation.CollectionPending:
		return views.PendingSection(h.pendingView(ctrl, pages), csrf)
	case moderation.CollectionReports:
		return views.ReportsSection(h.reportsView(ctrl, pages), csrf)
	default:
		return views.StatsSection(h.statsView(ctrl), csrf)
	}
}

func (h *Handlers) moderationViewData(c *echo.Context, ctrl *moderation.Controller, pages pageState) viewmodels.ModerationViewData {
	return viewmodels.ModerationViewData{
		Layout:  h.LayoutData(c, "Moderation"),
		Stats:   h.statsView(ctrl),
		Pending: h.pendingView(ctrl, pages),
		Reports: h.reportsView(ctrl, pages),
	}
}

func (h *Handlers) statsView(ctrl *moderation.Controller) viewmodels.StatsView {
	snap := ctrl.Snapshot()
	rows := make([]viewmodels.StatRow, 0, len(snap.Stats))
	for _, key := range snap.Stats.Keys() {
		rows = append(rows, viewmodels.StatRow{Label: views.HumanizeKey(key), Value: snap.Stats.Value(key)})
	}
	return viewmodels.StatsView{
		State: loadStateView(snap.StatsState, moderation.CollectionStats),
		Rows:  rows,
	}
}

func (h *Handlers) pendingView(ctrl *moderation.Controller, pages pageState) viewmodels.PendingGigsView {
	snap := ctrl.Snapshot()
	perPage := h.pageSize()
	total := int64(len(snap.Pending))
	page, totalPages, offset := pagination.Paginate(total, pages.pending, perPage)
	items := pagination.Slice(snap.Pending, page, perPage)

	rows := make([]viewmodels.PendingGigRow, 0, len(items))
	for _, gig := range items {
		id := gig.ID.String()
		rows = append(rows, viewmodels.PendingGigRow{
			ID:            id,
			Title:         gig.Title,
			Subject:       gig.Subject,
			SubmitterName: gig.SubmitterName,
			Submitted:     formatTime(gig.CreatedAt),
			ApproveAction: "/moderation/gigs/" + url.PathEscape(id) + "/approve",
			InFlight:      ctrl.InFlight(audit.ActionApproveGig, id),
		})
	}
	from, to := pagination.ShowingRange(total, offset, len(rows))
	return viewmodels.PendingGigsView{
		State:       loadStateView(snap.PendingState, moderation.CollectionPending),
		Items:       rows,
		Page:        page,
		TotalPages:  totalPages,
		TotalCount:  len(snap.Pending),
		ShowingFrom: from,
		ShowingTo:   to,
		Pagination: h.paginationView(page, totalPages, views.PendingSectionID, func(p int) string {
			return views.ModerationURL(p, pages.reports)
		}),
		OtherPage: pages.reports,
	}
}

func (h *Handlers) reportsView(ctrl *moderation.Controller, pages pageState) viewmodels.AbuseReportsView {
	snap := ctrl.Snapshot()
	perPage := h.pageSize()
	total := int64(len(snap.Reports))
	page, totalPages, offset := pagination.Paginate(total, pages.reports, perPage)
	items := pagination.Slice(snap.Reports, page, perPage)

	rows := make([]viewmodels.AbuseReportRow, 0, len(items))
	for _, report := range items {
		actor := report.ReportedActorID.String()
		row := viewmodels.AbuseReportRow{
			ID:         report.ID.String(),
			Message:    report.Message,
			TargetType: report.TargetType,
			TargetID:   report.TargetID.String(),
			ActorID:    actor,
			Reported:   formatTime(report.CreatedAt),
			CanBlock:   report.CanBlock(),
		}
		if row.CanBlock {
			row.BlockAction = "/moderation/users/" + url.PathEscape(actor) + "/block"
			row.InFlight = ctrl.InFlight(audit.ActionBlockUser, actor)
		}
		rows = append(rows, row)
	}
	from, to := pagination.ShowingRange(total, offset, len(rows))
	return viewmodels.AbuseReportsView{
		State:       loadStateView(snap.ReportsState, moderation.CollectionReports),
		Items:       rows,
		Page:        page,
		TotalPages:  totalPages,
		TotalCount:  len(snap.Reports),
		ShowingFrom: from,
		ShowingTo:   to,
		Pagination: h.paginationView(page, totalPages, views.ReportsSectionID, func(p int) string {
			return views.ModerationURL(pages.pending, p)
		}),
		OtherPage: pages.pending,
	}
}

func loadStateView(state moderation.LoadState, coll moderation.Collection) viewmodels.LoadStateView {
	view := viewmodels.LoadStateView{
		Status:           state.Status.String(),
		Loading:          state.Loading(),
		Failed:           state.Failed(),
		Loaded:           state.Loaded(),
		ReloadCollection: string(coll),
	}
	if state.Failed() {
		view.Error = describeLoadError(state.Err)
	}
	return view
}

// describeLoadError turns a backend failure into operator-facing text without
// exposing URLs or response bodies.
func describeLoadError(err error) string {
	if err == nil {
		return "Could not load this list."
	}
	if errors.Is(err, marketplace.ErrUnauthorized) || errors.Is(err, marketplace.ErrNoToken) {
		return "Your marketplace session has expired. Sign out and sign in again."
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "The marketplace took too long to respond."
	}
	if status := marketplace.StatusCode(err); status > 0 {
		return fmt.Sprintf("The marketplace answered with HTTP %d.", status)
	}
	return "The marketplace could not be reached."
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(timestampLayout)
}
