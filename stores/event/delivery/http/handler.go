package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/settlement/base/ctx"
	"github.com/x-xyz/settlement/base/delivery"
	"github.com/x-xyz/settlement/domain/event"
)

const maxLimit = 100

type handler struct {
	reader event.Reader
}

func New(e *echo.Echo, reader event.Reader) {
	h := &handler{
		reader: reader,
	}

	g := e.Group("/events")
	g.GET("", h.recent)
}

// recent
//
//	@Summary		Recent events
//	@Description	Published engine events, newest first
//	@Tags			event
//	@Produce		json
//	@Param			offset	query	int	false	"offset"
//	@Param			limit	query	int	false	"limit, at most 100"
//	@Success		200
//	@Router			/events [get]
func (h *handler) recent(c echo.Context) error {
	ctx := c.Get("ctx").(ctx.Ctx)

	offset, limit := 0, 20
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid offset")
		}
		offset = n
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return delivery.MakeJsonResp(c, http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	events, err := h.reader.Recent(ctx, offset, limit)
	if err != nil {
		ctx.WithField("err", err).Error("reader.Recent failed")
		return delivery.MakeJsonResp(c, http.StatusInternalServerError, err)
	}
	return delivery.MakeJsonResp(c, http.StatusOK, events)
}
