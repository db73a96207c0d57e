package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jostojic/quotescreen/internal/adapters/deck"
	"github.com/jostojic/quotescreen/internal/adapters/http/dto"
	"github.com/jostojic/quotescreen/internal/app"
	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/layout"
)

// Library is the part of app.Service the quote endpoints use.
type Library interface {
	List(ctx context.Context) app.Listing
	Current(ctx context.Context) (domain.Quote, bool)
	Append(ctx context.Context, q string) (int, error)
	DeleteAt(ctx context.Context, i int) error
	Clear(ctx context.Context) error
	Import(ctx context.Context, batch []string) (app.ImportResult, error)
	Preview(ctx context.Context, i int, opts ...layout.Option) (*layout.Result, error)
}

// QuoteHandler handles the quote list endpoints.
type QuoteHandler struct {
	library Library
}

// NewQuoteHandler creates a new quote handler.
func NewQuoteHandler(library Library) *QuoteHandler {
	return &QuoteHandler{library: library}
}

func toListResponse(l app.Listing) dto.QuoteListResponse {
	return dto.QuoteListResponse{
		Quotes:   l.Quotes,
		Count:    l.Count,
		Capacity: l.Capacity,
		Current:  l.Current,
		State:    l.State.String(),
	}
}

// List handles GET /api/v1/quotes.
//
// @Summary List stored quotes
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteListResponse
// @Router /api/v1/quotes [get]
func (h *QuoteHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, toListResponse(h.library.List(c.Request.Context())))
}

// Add handles POST /api/v1/quotes with a JSON or form body.
//
// @Summary Add a quote
// @Tags quotes
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.AddQuoteRequest true "Quote"
// @Success 201 {object} dto.IndexResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 507 {object} dto.ErrorResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) Add(c *gin.Context) {
	var req dto.AddQuoteRequest
	if !bindRequest(c, &req) {
		return
	}

	idx, err := h.library.Append(c.Request.Context(), req.Quote)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.IndexResponse{Index: idx})
}

// Delete handles DELETE /api/v1/quotes/:index.
//
// @Summary Delete a quote by index
// @Tags quotes
// @Param index path int true "Quote index"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{index} [delete]
func (h *QuoteHandler) Delete(c *gin.Context) {
	idx, ok := indexParam(c)
	if !ok {
		return
	}

	h.deleteAt(c, idx)
}

// DeleteForm handles POST /api/v1/quotes/delete with an index field, the
// way the device's own web form submits it.
//
// @Summary Delete a quote by form index
// @Tags quotes
// @Accept json,x-www-form-urlencoded
// @Param request body dto.DeleteQuoteRequest true "Index"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/delete [post]
func (h *QuoteHandler) DeleteForm(c *gin.Context) {
	var req dto.DeleteQuoteRequest
	if !bindRequest(c, &req) {
		return
	}

	h.deleteAt(c, *req.Index)
}

func (h *QuoteHandler) deleteAt(c *gin.Context, idx int) {
	if err := h.library.DeleteAt(c.Request.Context(), idx); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Clear handles POST /api/v1/quotes/clear. The list is replaced with the
// built-in quotes and returned.
//
// @Summary Reset to the built-in quotes
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteListResponse
// @Router /api/v1/quotes/clear [post]
func (h *QuoteHandler) Clear(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.library.Clear(ctx); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toListResponse(h.library.List(ctx)))
}

// Import handles POST /api/v1/quotes/import. A JSON body carries a quotes
// array; any other body is read as a deck. Nothing is stored unless the
// whole batch fits.
//
// @Summary Import quotes
// @Tags quotes
// @Accept json,plain
// @Produce json
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/quotes/import [post]
func (h *QuoteHandler) Import(c *gin.Context) {
	var batch []string

	if c.ContentType() == gin.MIMEJSON {
		var req dto.ImportQuotesRequest
		if !bindRequest(c, &req) {
			return
		}

		batch = req.Quotes
	} else {
		body, err := c.GetRawData()
		if err != nil {
			dto.AbortWithCode(c, dto.ErrorCodeBadRequest, fmt.Sprintf("%v: %v", dto.ErrRequestBody, err))
			return
		}

		batch, err = deck.Parse(bytes.NewReader(body))
		if err != nil {
			dto.HandleError(c, err)
			return
		}
	}

	res, err := h.library.Import(c.Request.Context(), batch)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImportResponse{Imported: res.Imported, Count: res.Count})
}

// Export handles GET /api/v1/quotes/export and returns the list as a deck.
//
// @Summary Export quotes as a deck
// @Tags quotes
// @Produce plain
// @Success 200 {string} string
// @Router /api/v1/quotes/export [get]
func (h *QuoteHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := deck.Write(&buf, h.library.List(c.Request.Context()).Quotes); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="quotes.deck"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}

// Current handles GET /api/v1/quotes/current.
//
// @Summary The quote on the panel
// @Tags quotes
// @Produce json
// @Success 200 {object} dto.QuoteResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/current [get]
func (h *QuoteHandler) Current(c *gin.Context) {
	q, ok := h.library.Current(c.Request.Context())
	if !ok {
		dto.HandleError(c, domain.NewIndexOutOfRangeError(0, 0))
		return
	}

	c.JSON(http.StatusOK, dto.NewQuoteResponse(q))
}

// Layout handles GET /api/v1/quotes/:index/layout and returns where each
// word of the quote would be drawn.
//
// @Summary Preview the layout of a quote
// @Tags quotes
// @Produce json
// @Param index path int true "Quote index"
// @Param policy query string false "truncate or paginate"
// @Success 200 {object} dto.LayoutResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/quotes/{index}/layout [get]
func (h *QuoteHandler) Layout(c *gin.Context) {
	idx, ok := indexParam(c)
	if !ok {
		return
	}

	var query dto.LayoutQuery
	if err := dto.BindQueryAndValidate(c, &query); err != nil {
		respondBindError(c, err)
		return
	}

	var opts []layout.Option
	if query.Policy != "" {
		policy, err := layout.ParsePolicy(query.Policy)
		if err != nil {
			dto.AbortWithCode(c, dto.ErrorCodeBadRequest, err.Error())
			return
		}

		opts = append(opts, layout.WithPolicy(policy))
	}

	res, err := h.library.Preview(c.Request.Context(), idx, opts...)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewLayoutResponse(idx, res))
}

// RegisterQuoteRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterQuoteRoutes(rg *gin.RouterGroup) {
	quotes := rg.Group("/quotes")
	quotes.GET("", h.List)
	quotes.POST("", h.Add)
	quotes.GET("/current", h.Current)
	quotes.GET("/export", h.Export)
	quotes.POST("/delete", h.DeleteForm)
	quotes.POST("/clear", h.Clear)
	quotes.POST("/import", h.Import)
	quotes.DELETE("/:index", h.Delete)
	quotes.GET("/:index/layout", h.Layout)
}

// indexParam parses the :index path segment. It writes a 400 and returns
// false when the segment is not a non-negative integer.
func indexParam(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Param("index"))

	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		dto.AbortWithCode(c, dto.ErrorCodeBadRequest, fmt.Sprintf("index %q is not a non-negative integer", raw))
		return 0, false
	}

	return idx, true
}
