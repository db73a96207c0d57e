//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/jostojic/quotescreen/internal/adapters/http/dto"
	"github.com/jostojic/quotescreen/internal/quotes"
)

// InitializeScenario registers the step definitions. godog calls it once per
// scenario, so every scenario gets its own world.
func InitializeScenario(sc *godog.ScenarioContext) {
	w := newWorld()

	sc.After(func(ctx context.Context, _ *godog.Scenario, err error) (context.Context, error) {
		w.close()
		return ctx, err
	})

	sc.Step(`^an empty region with room for (\d+) quotes$`, w.anEmptyRegion)
	sc.Step(`^the region holds the quotes:$`, w.theRegionHolds)
	sc.Step(`^the display (?:starts|restarts)$`, w.start)
	sc.Step(`^the panel (is failing|recovers)$`, w.thePanel)
	sc.Step(`^the text area is (\d+) pixels high$`, w.theTextAreaIsHigh)

	sc.Step(`^I add the quote "([^"]*)"$`, w.iAddTheQuote)
	sc.Step(`^I add a quote of (\d+) bytes$`, w.iAddAQuoteOfBytes)
	sc.Step(`^I delete quote (-?\d+)$`, w.iDeleteQuote)
	sc.Step(`^I delete quote (\d+) with the form$`, w.iDeleteQuoteWithTheForm)
	sc.Step(`^I clear the quotes$`, w.post("/api/v1/quotes/clear"))
	sc.Step(`^I import the deck:$`, w.iImportTheDeck)
	sc.Step(`^I request the next quote$`, w.post("/api/v1/display/next"))
	sc.Step(`^I refresh the display$`, w.post("/api/v1/display/refresh"))
	sc.Step(`^(\d+) seconds pass$`, w.secondsPass)
	sc.Step(`^I preview quote (\d+)$`, w.iPreviewQuote)
	sc.Step(`^I save the network "([^"]*)" with password "([^"]*)"$`, w.iSaveTheNetwork)
	sc.Step(`^I request GET "([^"]*)"$`, w.get)

	sc.Step(`^the response status should be (\d+)$`, w.theResponseStatusShouldBe)
	sc.Step(`^the response should contain "(.*)"$`, w.theResponseShouldContain)
	sc.Step(`^the response should not contain "(.*)"$`, w.theResponseShouldNotContain)
	sc.Step(`^the stored quotes should be:$`, w.theStoredQuotesShouldBe)
	sc.Step(`^the stored quotes should be the first (\d+) defaults$`, w.theStoredQuotesShouldBeDefaults)
	sc.Step(`^the current index should be (\d+)$`, w.theCurrentIndexShouldBe)
	sc.Step(`^the region should hold (\d+) quotes$`, w.theRegionShouldHold)
	sc.Step(`^the panel should show "([^"]*)"$`, w.thePanelShouldShow)
	sc.Step(`^the panel should have been refreshed (\d+) times?$`, w.thePanelShouldHaveBeenRefreshed)
	sc.Step(`^every run should lie inside the text area$`, w.everyRunShouldLieInside)
	sc.Step(`^the last run should be "([^"]*)" in the (body|bold) face$`, w.theLastRunShouldBe)
}

func (w *world) anEmptyRegion(capacity int) error {
	return w.useRegion(capacity)
}

func (w *world) theRegionHolds(table *godog.Table) error {
	store := quotes.New(w.geometry, quietLogger())

	for _, row := range table.Rows {
		if _, err := store.Append(row.Cells[0].Value); err != nil {
			return err
		}
	}

	return store.Persist(w.medium)
}

func (w *world) thePanel(state string) error {
	w.panel.setFailing(state == "is failing")
	return nil
}

func (w *world) theTextAreaIsHigh(h int) error {
	w.area.Height = h
	return nil
}

func (w *world) iAddTheQuote(q string) error {
	payload, err := json.Marshal(dto.AddQuoteRequest{Quote: q})
	if err != nil {
		return err
	}

	return w.do(http.MethodPost, "/api/v1/quotes", "application/json", string(payload))
}

func (w *world) iAddAQuoteOfBytes(n int) error {
	return w.iAddTheQuote(strings.Repeat("x", n))
}

func (w *world) iDeleteQuote(i int) error {
	return w.do(http.MethodDelete, fmt.Sprintf("/api/v1/quotes/%d", i), "", "")
}

func (w *world) iDeleteQuoteWithTheForm(i int) error {
	form := url.Values{"index": {fmt.Sprint(i)}}
	return w.do(http.MethodPost, "/api/v1/quotes/delete", "application/x-www-form-urlencoded", form.Encode())
}

func (w *world) iImportTheDeck(deck *godog.DocString) error {
	return w.do(http.MethodPost, "/api/v1/quotes/import", "text/plain", deck.Content)
}

func (w *world) post(path string) func() error {
	return func() error { return w.do(http.MethodPost, path, "", "") }
}

func (w *world) get(path string) error {
	return w.do(http.MethodGet, path, "", "")
}

func (w *world) secondsPass(n int) error {
	w.clock.advance(time.Duration(n) * time.Second)

	// A failed commit is reported by the panel count, not by the step.
	_ = w.svc.Tick(context.Background())

	return nil
}

func (w *world) iPreviewQuote(i int) error {
	return w.get(fmt.Sprintf("/api/v1/quotes/%d/layout", i))
}

func (w *world) iSaveTheNetwork(ssid, password string) error {
	payload, err := json.Marshal(dto.NetworkRequest{SSID: ssid, Password: password})
	if err != nil {
		return err
	}

	return w.do(http.MethodPut, "/api/v1/network", "application/json", string(payload))
}

func (w *world) do(method, path, contentType, body string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, w.server.URL+path, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := w.server.Client().Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	w.status = resp.StatusCode

	w.body, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	return nil
}

func (w *world) theResponseStatusShouldBe(code int) error {
	if w.status != code {
		return fmt.Errorf("expected status %d, got %d. Body: %s", code, w.status, w.body)
	}

	return nil
}

// unquote undoes the \" escapes a step uses to embed JSON.
func unquote(text string) string {
	return strings.ReplaceAll(text, `\"`, `"`)
}

func (w *world) theResponseShouldContain(text string) error {
	text = unquote(text)

	if !strings.Contains(string(w.body), text) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, w.body)
	}

	return nil
}

func (w *world) theResponseShouldNotContain(text string) error {
	text = unquote(text)

	if strings.Contains(string(w.body), text) {
		return fmt.Errorf("response body contains %q.\nBody: %s", text, w.body)
	}

	return nil
}

func (w *world) listing() (dto.QuoteListResponse, error) {
	var list dto.QuoteListResponse

	if err := w.get("/api/v1/quotes"); err != nil {
		return list, err
	}

	if w.status != http.StatusOK {
		return list, fmt.Errorf("listing quotes: status %d", w.status)
	}

	return list, json.Unmarshal(w.body, &list)
}

func (w *world) theStoredQuotesShouldBe(table *godog.Table) error {
	want := make([]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		want = append(want, row.Cells[0].Value)
	}

	return w.expectQuotes(want)
}

func (w *world) theStoredQuotesShouldBeDefaults(n int) error {
	store := quotes.New(w.geometry, quietLogger())
	store.ClearAndLoadDefaults()

	want := store.Snapshot()
	if len(want) < n {
		return fmt.Errorf("only %d defaults fit", len(want))
	}

	return w.expectQuotes(want[:n])
}

func (w *world) expectQuotes(want []string) error {
	list, err := w.listing()
	if err != nil {
		return err
	}

	if !slices.Equal(want, list.Quotes) {
		return fmt.Errorf("expected quotes %q, got %q", want, list.Quotes)
	}

	if list.Count != len(list.Quotes) {
		return fmt.Errorf("count %d does not match %d quotes", list.Count, len(list.Quotes))
	}

	return nil
}

func (w *world) theCurrentIndexShouldBe(i int) error {
	list, err := w.listing()
	if err != nil {
		return err
	}

	if list.Current != i {
		return fmt.Errorf("expected current index %d, got %d", i, list.Current)
	}

	return nil
}

func (w *world) theRegionShouldHold(n int) error {
	store := quotes.New(w.geometry, quietLogger())
	if err := store.Load(w.medium); err != nil {
		return err
	}

	if store.Len() != n {
		return fmt.Errorf("region holds %d quotes, want %d: %q", store.Len(), n, store.Snapshot())
	}

	return nil
}

func (w *world) thePanelShouldShow(text string) error {
	if shown := w.shown.text(); !strings.Contains(shown, text) {
		return fmt.Errorf("panel shows %q, want it to contain %q", shown, text)
	}

	return nil
}

func (w *world) thePanelShouldHaveBeenRefreshed(n int) error {
	if got := w.panel.count(); got != n {
		return fmt.Errorf("panel refreshed %d times, want %d", got, n)
	}

	return nil
}

func (w *world) layoutResponse() (dto.LayoutResponse, error) {
	var res dto.LayoutResponse
	if w.status != http.StatusOK {
		return res, fmt.Errorf("layout preview: status %d: %s", w.status, w.body)
	}

	return res, json.Unmarshal(w.body, &res)
}

func (w *world) everyRunShouldLieInside() error {
	res, err := w.layoutResponse()
	if err != nil {
		return err
	}

	if len(res.Runs) == 0 {
		return fmt.Errorf("layout has no runs")
	}

	for _, run := range res.Runs {
		if run.X < w.area.X || run.Y <= w.area.Y || run.Y > w.area.Bottom() {
			return fmt.Errorf("run %q at (%d,%d) is outside %+v", run.Text, run.X, run.Y, w.area)
		}
	}

	return nil
}

func (w *world) theLastRunShouldBe(text, face string) error {
	res, err := w.layoutResponse()
	if err != nil {
		return err
	}

	if len(res.Runs) == 0 {
		return fmt.Errorf("layout has no runs")
	}

	last := res.Runs[len(res.Runs)-1]
	if last.Text != text || last.Font != face {
		return fmt.Errorf("last run is %q in %s, want %q in %s", last.Text, last.Font, text, face)
	}

	return nil
}

// TestFeatures runs the godog scenarios under test/features.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     os.Getenv("GODOG_TAGS"),
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
