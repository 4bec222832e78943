package httpapi

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/descstream/internal/content"
	"github.com/dusk-indust/descstream/internal/export"
	"github.com/dusk-indust/descstream/internal/generation"
	"github.com/dusk-indust/descstream/internal/status"
)

type fixture struct {
	url  string
	desc *content.Description
	sim  *generation.Simulator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sim := generation.NewSimulator(generation.WithDelay(0))
	t.Cleanup(func() { _ = sim.Close() })
	d, err := content.NewDescription("run-1", content.WithTranslator(sim))
	require.NoError(t, err)
	sim.Attach(d)

	f, err := status.NewFormatter(content.EnUS)
	require.NoError(t, err)
	srv := httptest.NewServer(New(d, WithFormatter(f)).Routes())
	t.Cleanup(srv.Close)
	return &fixture{url: srv.URL, desc: d, sim: sim}
}

func (f *fixture) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(f.url+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *fixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(f.url + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, body := f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

// ---------------------------------------------------------------------------
// POST /events
// ---------------------------------------------------------------------------

func TestEvents_StreamIntoDescription(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/events", `{"start":{"name":"summary","level":1,"display_title":"Summary","locale":"en_US"}}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, f.desc.IsLoading())

	for _, word := range []string{"Hello ", "world "} {
		resp = f.post(t, "/events", `{"chunk":{"block_name":"summary","chunk":"`+word+`","locale":"en_US"}}`)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	resp = f.post(t, "/events", `{"finished":true}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, f.desc.IsLoading())

	resp2, md := f.get(t, "/content/en_US")
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, "text/markdown; charset=utf-8", resp2.Header.Get("Content-Type"))
	assert.Equal(t, "## Summary\n\nHello world\n", md)
}

func TestEvents_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"unknown field", `{"bogus":1}`, http.StatusBadRequest},
		{"empty event", `{}`, http.StatusBadRequest},
		{"chunk without locale content", `{"chunk":{"block_name":"x","chunk":"a","locale":"en_US"}}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.post(t, "/events", tt.body)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestEvents_NormalizesLocale(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/events", `{"start":{"name":"title","display_title":"Titre","locale":"fr-FR"}}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = f.post(t, "/events", `{"chunk":{"block_name":"title","chunk":"Bonjour","locale":"fr_fr"}}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.post(t, "/events", `{"start":{"name":"title","locale":"de_DE"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = f.post(t, "/events", `{"chunk":{"block_name":"title","chunk":"x","locale":"de_DE"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	lcs := f.desc.LocaleContents()
	require.Len(t, lcs, 1)
	assert.Equal(t, content.FrFR, lcs[0].Locale())
	b, ok := f.desc.Block(content.FrFR, "title")
	require.True(t, ok)
	assert.Equal(t, "Bonjour", b.Content())

	resp2, _ := f.get(t, "/content/fr-FR")
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

// ---------------------------------------------------------------------------
// POST /locale
// ---------------------------------------------------------------------------

func TestLocale_TranslatesThroughSimulator(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sim.Generate(context.Background(), content.EnUS, ""))

	resp := f.post(t, "/locale", `{"locale":"fr"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var lr LocaleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lr))
	assert.Equal(t, content.FrFR, lr.Locale)
	require.NotNil(t, lr.Translation)
	assert.Equal(t, "run-1", lr.Translation.RunID)

	f.sim.Wait()

	_, body := f.get(t, "/content/fr-FR?format=json")
	var le export.LocaleExport
	require.NoError(t, json.Unmarshal([]byte(body), &le))
	require.Len(t, le.Blocks, 3)
	assert.Equal(t, "Ceci est un titre ! ", le.Blocks[0].Content)

	// Switching back to the default locale does not translate.
	resp = f.post(t, "/locale", `{"locale":"en_US"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, content.EnUS, f.desc.CurrentLocale())
}

func TestLocale_Force(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sim.Generate(context.Background(), content.EnUS, ""))
	f.post(t, "/locale", `{"locale":"fr_FR"}`)
	f.sim.Wait()

	resp := f.post(t, "/locale", `{"locale":"fr_FR","block":"title","force":true}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	f.sim.Wait()

	b, ok := f.desc.Block(content.FrFR, generation.BlockTitle)
	require.True(t, ok)
	assert.Equal(t, "Ceci est un titre ! ", b.Content())
}

func TestLocale_Errors(t *testing.T) {
	f := newFixture(t)

	resp := f.post(t, "/locale", `{"locale":"de_DE"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// No default locale content yet.
	resp = f.post(t, "/locale", `{"locale":"fr_FR"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ---------------------------------------------------------------------------
// Content, reset, status
// ---------------------------------------------------------------------------

func TestContent_ExportAndReset(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sim.Generate(context.Background(), content.EnUS, ""))

	_, body := f.get(t, "/content")
	var exp export.DescriptionExport
	require.NoError(t, json.Unmarshal([]byte(body), &exp))
	require.Len(t, exp.Locales, 1)
	require.Len(t, exp.Locales[0].Blocks, 3)

	resp := f.post(t, "/reset", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	lc, ok := f.desc.LocaleContent(content.EnUS)
	require.True(t, ok)
	assert.Equal(t, 3, lc.Len())
	assert.Equal(t, "\n\n\n", lc.RenderedContent())
}

func TestContent_MissingLocale(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.get(t, "/content/fr_FR")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.get(t, "/content/xx")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sim.Generate(context.Background(), content.EnUS, ""))

	resp, body := f.get(t, "/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "* en_US: 3/3 blocks filled (default)")

	_, body = f.get(t, "/status?lang=fr")
	assert.Contains(t, body, "fr_FR : pas encore traduit")

	_, body = f.get(t, "/status?format=json")
	var s status.Summary
	require.NoError(t, json.Unmarshal([]byte(body), &s))
	assert.Equal(t, "run-1", s.RunID)
}

func TestDiagram(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.sim.Generate(context.Background(), content.EnUS, ""))

	_, body := f.get(t, "/diagram")
	assert.True(t, strings.HasPrefix(body, "graph TD\n"))
}

// ---------------------------------------------------------------------------
// GET /changes
// ---------------------------------------------------------------------------

func TestChanges_StreamsEvents(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url+"/changes", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.NoError(t, f.desc.AddStartChunk(content.BlockStart{Name: "title", Locale: content.EnUS}))

	reader := bufio.NewReader(resp.Body)
	var name, data string
	for name == "" || data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}

	assert.Equal(t, string(content.ChangeBlockStarted), name)
	var ev content.ChangeEvent
	require.NoError(t, json.Unmarshal([]byte(data), &ev))
	assert.Equal(t, content.ChangeEvent{Kind: content.ChangeBlockStarted, Locale: content.EnUS, Block: "title"}, ev)
}
