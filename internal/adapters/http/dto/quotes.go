package dto

import (
	"github.com/jostojic/quotescreen/internal/domain"
	"github.com/jostojic/quotescreen/internal/layout"
	"github.com/jostojic/quotescreen/internal/region"
)

// AddQuoteRequest is the body of POST /quotes. The length limit depends on
// the region geometry and is enforced by the store.
type AddQuoteRequest struct {
	Quote string `json:"quote" form:"quote" validate:"required,notempty,nonul"`
}

// DeleteQuoteRequest is the body of POST /quotes/delete.
type DeleteQuoteRequest struct {
	Index *int `json:"index" form:"index" validate:"required,gte=0"`
}

// ImportQuotesRequest is the JSON form of POST /quotes/import.
type ImportQuotesRequest struct {
	Quotes []string `json:"quotes" validate:"required,min=1,dive,notempty,nonul"`
}

// LayoutQuery selects the overflow policy of a layout preview.
type LayoutQuery struct {
	Policy string `form:"policy" validate:"omitempty,oneof=truncate paginate"`
}

// NetworkRequest is the body of PUT /network.
type NetworkRequest struct {
	SSID     string `json:"ssid"     form:"ssid"     validate:"required,notempty,nonul,maxbytes=31"`
	Password string `json:"password" form:"password" validate:"nonul,maxbytes=31"`
}

// Credentials converts the request to region credentials.
func (r *NetworkRequest) Credentials() region.Credentials {
	return region.Credentials{SSID: r.SSID, Password: r.Password}
}

// Validate applies the rules of the region header itself.
func (r *NetworkRequest) Validate() error {
	return r.Credentials().Validate()
}

// QuoteListResponse is returned by GET /quotes and POST /quotes/clear.
type QuoteListResponse struct {
	Quotes   []string `json:"quotes"`
	Count    int      `json:"count"`
	Capacity int      `json:"capacity"`
	Current  int      `json:"current"`
	State    string   `json:"state"`
}

// QuoteResponse is a single stored quote.
type QuoteResponse struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Body   string `json:"body"`
	Author string `json:"author,omitempty"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		Index:  q.Index,
		Text:   q.Text,
		Body:   q.Body(),
		Author: q.Author(),
	}
}

// IndexResponse reports the index a request produced.
type IndexResponse struct {
	Index int `json:"index"`
}

// ImportResponse reports how many quotes were added.
type ImportResponse struct {
	Imported int `json:"imported"`
	Count    int `json:"count"`
}

// RunResponse is one positioned text run of a layout preview.
type RunResponse struct {
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Text    string `json:"text"`
	Font    string `json:"font"`
	Page    int    `json:"page"`
	Clipped bool   `json:"clipped,omitempty"`
}

// LayoutResponse is returned by GET /quotes/:index/layout.
type LayoutResponse struct {
	Index    int           `json:"index"`
	Runs     []RunResponse `json:"runs"`
	Pages    int           `json:"pages"`
	Overflow bool          `json:"overflow"`
}

// NewLayoutResponse converts a layout result.
func NewLayoutResponse(index int, res *layout.Result) LayoutResponse {
	runs := make([]RunResponse, 0)
	for run := range res.Runs() {
		runs = append(runs, RunResponse{
			X:       run.X,
			Y:       run.Y,
			Text:    run.Text,
			Font:    run.Font.String(),
			Page:    run.Page,
			Clipped: run.Clipped,
		})
	}

	return LayoutResponse{
		Index:    index,
		Runs:     runs,
		Pages:    res.Pages(),
		Overflow: res.Overflow(),
	}
}

// NetworkResponse never includes the password.
type NetworkResponse struct {
	SSID       string `json:"ssid"`
	Configured bool   `json:"configured"`
}
