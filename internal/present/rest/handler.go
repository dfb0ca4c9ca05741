package rest

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/openscholar/paperview"
	"github.com/openscholar/paperview/internal/domain"
	"github.com/openscholar/paperview/internal/present/rest/presenter"
	"github.com/openscholar/paperview/internal/service"
	"github.com/openscholar/paperview/internal/usecase"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type Handler struct {
	papers     *usecase.PaperUsecase
	governance *usecase.GovernanceUsecase
	verifiers  *usecase.VerifierUsecase
	signal     *service.SignalService
	hub        *service.Hub
}

func NewHandler(
	papers *usecase.PaperUsecase,
	governance *usecase.GovernanceUsecase,
	verifiers *usecase.VerifierUsecase,
	signal *service.SignalService,
	hub *service.Hub,
) *Handler {
	return &Handler{
		papers:     papers,
		governance: governance,
		verifiers:  verifiers,
		signal:     signal,
		hub:        hub,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/papers", h.handlePapers)
	e.GET("/v1/papers/buckets", h.handleBuckets)
	e.GET("/v1/papers/pending", h.handlePendingReview)
	e.GET("/v1/papers/:id", h.handlePaper)
	e.GET("/v1/papers/:id/verifications", h.handleVerifications)
	e.GET("/v1/assets/:owner", h.handleOwnedAssets)
	e.GET("/v1/governance/proposals", h.handleProposals)
	e.GET("/v1/governance/proposals/active", h.handleActiveProposals)
	e.GET("/v1/governance/proposals/:id", h.handleProposal)
	e.GET("/v1/governance/stats", h.handleGovernanceStats)
	e.GET("/v1/verifiers/:address", h.handleVerifier)
	e.GET("/v1/balance/:address", h.handleBalance)
	e.POST("/v1/tx/report", h.handleTxReport)
	e.GET("/realtime", h.handleRealtime)
}

// degrade maps a data-layer failure onto the taxonomy: absences are 404,
// exhausted retries are 503 limited to this endpoint.
func degrade(c echo.Context, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return presenter.NotFound(c, "resource not found")
	}
	if errors.Is(err, domain.ErrTransient) {
		return presenter.Unavailable(c, err)
	}
	return presenter.InternalError(c, err)
}

func (h *Handler) handlePapers(c echo.Context) error {
	ctx := c.Request().Context()

	offset, _ := strconv.ParseInt(c.QueryParam("offset"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	views, err := h.papers.ListAssets(ctx, offset, limit)
	if err != nil {
		return degrade(c, err)
	}

	total, err := h.papers.TotalSupply(ctx)
	if err != nil {
		total = int64(len(views))
	}

	return presenter.OK(c, echo.Map{
		"papers": views,
		"total":  total,
		"offset": offset,
	})
}

func (h *Handler) handleBuckets(c echo.Context) error {
	buckets, err := h.papers.Buckets(c.Request().Context())
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, buckets)
}

func (h *Handler) handlePendingReview(c echo.Context) error {
	pending, err := h.papers.PendingReview(c.Request().Context())
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, echo.Map{"pending": pending})
}

func (h *Handler) handlePaper(c echo.Context) error {
	view, err := h.papers.Asset(c.Request().Context(), c.Param("id"))
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, view)
}

func (h *Handler) handleVerifications(c echo.Context) error {
	records, err := h.papers.Verifications(c.Request().Context(), c.Param("id"))
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, echo.Map{"verifications": records})
}

func (h *Handler) handleOwnedAssets(c echo.Context) error {
	owner := c.Param("owner")
	if !paperview.IsHexAddress(owner) {
		return presenter.BadRequestMessage(c, "invalid wallet address")
	}

	views, err := h.papers.OwnedAssets(c.Request().Context(), owner)
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, echo.Map{"assets": views})
}

func (h *Handler) handleProposals(c echo.Context) error {
	views, err := h.governance.ProposalViews(c.Request().Context())
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, echo.Map{"proposals": views})
}

func (h *Handler) handleActiveProposals(c echo.Context) error {
	ids, err := h.governance.ActiveProposalIDs(c.Request().Context())
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, echo.Map{"active": ids})
}

func (h *Handler) handleProposal(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return presenter.BadRequestMessage(c, "invalid proposal id")
	}

	view, err := h.governance.Proposal(c.Request().Context(), id)
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, view)
}

func (h *Handler) handleGovernanceStats(c echo.Context) error {
	stats, err := h.governance.Stats(c.Request().Context())
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, stats)
}

func (h *Handler) handleVerifier(c echo.Context) error {
	address := c.Param("address")
	if !paperview.IsHexAddress(address) {
		return presenter.BadRequestMessage(c, "invalid wallet address")
	}

	profile, err := h.verifiers.Profile(c.Request().Context(), address)
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, profile)
}

func (h *Handler) handleBalance(c echo.Context) error {
	address := c.Param("address")
	if !paperview.IsHexAddress(address) {
		return presenter.BadRequestMessage(c, "invalid wallet address")
	}

	balance, err := h.verifiers.TokenBalance(c.Request().Context(), address)
	if err != nil {
		return degrade(c, err)
	}
	return presenter.OK(c, balance)
}

// handleTxReport receives a transaction-confirmation report from the
// dApp. Successful writes publish invalidations for the keys they
// dirtied; failed writes get their revert reason categorized into a
// human-readable message.
func (h *Handler) handleTxReport(c echo.Context) error {
	ctx := c.Request().Context()

	var report usecase.TxReport
	if err := c.Bind(&report); err != nil {
		return presenter.BadRequest(c, err)
	}
	if report.Operation == "" {
		return presenter.BadRequestMessage(c, "operation is required")
	}

	if !report.Succeeded {
		category, message := domain.CategorizeRevert(report.RevertReason)
		return presenter.OK(c, echo.Map{
			"status":   "failed",
			"category": string(category),
			"message":  message,
		})
	}

	keys, prefixes := usecase.InvalidationTargets(report)
	if len(keys) == 0 && len(prefixes) == 0 {
		return presenter.BadRequestMessage(c, fmt.Sprintf("unknown operation: %s", report.Operation))
	}

	event := service.InvalidationEvent{
		Keys:     keys,
		Prefixes: prefixes,
		TxHash:   report.TxHash,
		Reason:   report.Operation,
	}
	if err := h.signal.Publish(ctx, event); err != nil {
		slog.Error("failed to publish invalidation", slog.String("error", err.Error()))
		return presenter.InternalError(c, errors.Wrap(err, "failed to publish invalidation"))
	}

	return presenter.OK(c, echo.Map{"status": "ok"})
}

// handleRealtime upgrades to a websocket and streams invalidation events
// until the client disconnects.
func (h *Handler) handleRealtime(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	h.hub.Register(conn)
	defer func() {
		h.hub.Unregister(conn)
		conn.Close()
	}()

	// Reads only serve to detect disconnect; clients never send.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
