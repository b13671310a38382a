package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/common"
)

const indexPage = `<html><body>
<ul>
  <li><a href="/assets/finance/downloads/pdf/auction/brooklyn.pdf">Brooklyn
      Auction</a></li>
  <li><a href="https://cdn.example.com/Queens.PDF?v=2">Queens</a></li>
  <li><a href="/site/finance/about.page">About</a></li>
  <li><a>no href</a></li>
</ul>
</body></html>`

func testClient() ClientConfig {
	return ClientConfig{UserAgent: "auction-test", Timeout: 5 * time.Second, RetryCount: 2, RetryWait: time.Millisecond}
}

func TestPDFLinks(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(indexPage))
	require.NoError(t, err)
	base, _ := url.Parse("https://www.nyc.gov")

	links := PDFLinks(doc.Selection, base)
	require.Equal(t, []Link{
		{URL: "https://www.nyc.gov/assets/finance/downloads/pdf/auction/brooklyn.pdf", Text: "Brooklyn Auction"},
		{URL: "https://cdn.example.com/Queens.PDF?v=2", Text: "Queens"},
	}, links)
}

func TestDiscover(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(indexPage))
	}))
	defer srv.Close()

	d, err := NewDiscoverer(NewHTTPClient(testClient(), nil), srv.URL+"/auctions.page", "", nil)
	require.NoError(t, err)

	links, err := d.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, srv.URL+"/assets/finance/downloads/pdf/auction/brooklyn.pdf", links[0].URL)
	assert.Equal(t, "auction-test", gotUA)
}

func TestDiscoverIndexFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	d, err := NewDiscoverer(NewHTTPClient(testClient(), nil), srv.URL, "", nil)
	require.NoError(t, err)
	_, err = d.Discover(context.Background())
	require.ErrorContains(t, err, "404")
}

func TestFetch(t *testing.T) {
	var flaky atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 body"))
	})
	mux.HandleFunc("/octet.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("%PDF-1.7 body"))
	})
	mux.HandleFunc("/page.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>moved</html>"))
	})
	mux.HandleFunc("/flaky.pdf", func(w http.ResponseWriter, r *http.Request) {
		if flaky.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dl := NewDownloader(NewHTTPClient(testClient(), nil), nil)
	ctx := context.Background()

	got, err := dl.Fetch(ctx, srv.URL+"/ok.pdf")
	require.NoError(t, err)
	assert.Equal(t, "ok.pdf", got.Filename)
	assert.Equal(t, []byte("%PDF-1.4 body"), got.Body)

	_, err = dl.Fetch(ctx, srv.URL+"/octet.pdf")
	require.NoError(t, err)

	_, err = dl.Fetch(ctx, srv.URL+"/page.pdf")
	assert.Equal(t, string(constants.StatusNotAPDF), common.CodeOf(err))

	_, err = dl.Fetch(ctx, srv.URL+"/missing.pdf")
	assert.Equal(t, string(constants.StatusDownloadFailed), common.CodeOf(err))

	_, err = dl.Fetch(ctx, srv.URL+"/flaky.pdf")
	require.NoError(t, err)
	assert.EqualValues(t, 3, flaky.Load())
}

func TestFetchTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	cfg := testClient()
	cfg.RetryCount = 0
	_, err := NewDownloader(NewHTTPClient(cfg, nil), nil).Fetch(context.Background(), addr+"/gone.pdf")
	require.Error(t, err)
	assert.True(t, constants.AuditStatus(common.CodeOf(err)).IsError())
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "notice.pdf", FilenameFromURL("https://www.nyc.gov/a/b/notice.pdf"))
	assert.Equal(t, "Queens.PDF", FilenameFromURL("https://cdn.example.com/Queens.PDF?v=2"))
	assert.Equal(t, "march 2025.pdf", FilenameFromURL("https://x.org/march%202025.pdf"))
}
