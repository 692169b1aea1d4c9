//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/prodcrawl"
	"github.com/fwojciec/prodcrawl/goquery"
	"github.com/fwojciec/prodcrawl/rod"
)

func newLoader(t *testing.T) *rod.Loader {
	t.Helper()
	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	loader := rod.NewLoader(manager, goquery.NewExtractor(),
		rod.WithSettleDelay(200*time.Millisecond),
		rod.WithHandlerTimeout(30*time.Second),
	)
	t.Cleanup(func() { loader.Close() })
	return loader
}

func TestLoader_Exhaust_load_more_reveals_hidden_links(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html><body>
<div id="list">
	<a href="/widget-1">Widget 1</a>
</div>
<button id="more">Load more</button>
<script>
var clicks = 0;
document.getElementById('more').addEventListener('click', function() {
	clicks++;
	if (clicks > 2) { this.style.display = 'none'; return; }
	var a = document.createElement('a');
	a.href = '/widget-' + (clicks + 1);
	a.textContent = 'Widget ' + (clicks + 1);
	document.getElementById('list').appendChild(a);
});
</script>
</body></html>`))
	}))
	defer srv.Close()

	loader := newLoader(t)

	target := prodcrawl.LinkInfo{AnchorText: "Load more"}
	links, err := loader.Exhaust(context.Background(), srv.URL, prodcrawl.TriggerLoadMore, target)
	require.NoError(t, err)

	urls := make([]string, 0, len(links))
	for _, l := range links {
		urls = append(urls, l.RelativePath)
	}
	assert.Contains(t, urls, "/widget-2")
	assert.Contains(t, urls, "/widget-3")
	assert.NotContains(t, urls, "/widget-1", "links present before interaction are not revealed links")
}

func TestLoader_Exhaust_expander_reveals_panel_links(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html><body>
<button id="toggle">Show specifications</button>
<div id="panel"></div>
<script>
document.getElementById('toggle').addEventListener('click', function() {
	document.getElementById('panel').innerHTML = '<a href="/spec-sheet">Spec sheet</a>';
});
</script>
</body></html>`))
	}))
	defer srv.Close()

	loader := newLoader(t)

	target := prodcrawl.LinkInfo{AnchorText: "Show specifications"}
	links, err := loader.Exhaust(context.Background(), srv.URL, prodcrawl.TriggerExpanders, target)
	require.NoError(t, err)

	require.Len(t, links, 1)
	assert.Equal(t, "/spec-sheet", links[0].RelativePath)
}

func TestLoader_ExhaustScroll_stops_when_height_is_stable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html><body><div style="height: 400px">static page</div></body></html>`))
	}))
	defer srv.Close()

	loader := newLoader(t)

	links, err := loader.ExhaustScroll(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestLoader_Exhaust_returns_partial_links_on_timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	defer srv.Close()

	manager, err := rod.NewBrowserManager()
	require.NoError(t, err)
	loader := rod.NewLoader(manager, goquery.NewExtractor(),
		rod.WithHandlerTimeout(500*time.Millisecond),
	)
	t.Cleanup(func() { loader.Close() })

	_, err = loader.Exhaust(context.Background(), srv.URL, prodcrawl.TriggerLoadMore, prodcrawl.LinkInfo{AnchorText: "Load more"})
	require.Error(t, err)
}
