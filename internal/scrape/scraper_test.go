package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const fixtureHTML = `<!DOCTYPE html>
<html>
<head>
  <title>Acme Plumbing - Home</title>
  <meta property="og:title" content="Acme Plumbing">
  <meta property="og:description" content="Trusted residential plumbing across Springfield.">
  <meta name="keywords" content="plumbing, repair, emergency, installation">
  <script type="application/ld+json">{"@type":"LocalBusiness","name":"Acme Plumbing"}</script>
  <script type="application/ld+json">this is not json</script>
</head>
<body>
  <nav><a href="/">Home</a><a href="/services">Services</a><a href="/about">About</a></nav>
  <header>Header chrome</header>
  <main>
    <h1>Acme Plumbing</h1>
    <p>We keep Springfield's water flowing. Our team handles every repair job.</p>
    <ul>
      <li>Drain cleaning service for homes</li>
      <li>Water heater repair and installation</li>
      <li>Just a short li</li>
    </ul>
    <div class="about-us">Family owned since 1985, we are the only certified plumbers downtown.</div>
    <div class="testimonial">Acme fixed our burst pipe in an hour. Wonderful crew!</div>
    <div itemscope itemtype="https://schema.org/LocalBusiness">
      <span itemprop="telephone">(555) 123-4567</span>
    </div>
    <p>Email us at info@acmeplumbing.com or placeholder@example.com</p>
    <p>Call (555) 123-4567 today. Visit 42 Main Street for quotes.</p>
    <p>Open Monday - Friday: 8am - 6pm</p>
    <a href="https://facebook.com/acmeplumbing">Facebook</a>
  </main>
  <footer>Footer chrome</footer>
  <script>console.log("ignored")</script>
</body>
</html>`

func newTestScraper() *Scraper {
	return &Scraper{Timeout: 5 * time.Second, Logger: zerolog.Nop()}
}

func TestScrapeExtractsSignals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(fixtureHTML))
	}))
	defer srv.Close()

	data := newTestScraper().Scrape(context.Background(), srv.URL)

	if data.Title != "Acme Plumbing" {
		t.Fatalf("og:title should win the fallback chain, got %q", data.Title)
	}
	if !strings.Contains(data.Description, "Trusted residential plumbing") {
		t.Fatalf("unexpected description: %q", data.Description)
	}
	if len(data.Keywords) == 0 || data.Keywords[0] != "plumbing" {
		t.Fatalf("meta keywords should lead: %+v", data.Keywords)
	}
	if len(data.Contact.Emails) != 1 || data.Contact.Emails[0] != "info@acmeplumbing.com" {
		t.Fatalf("placeholder email must be rejected: %+v", data.Contact.Emails)
	}
	if len(data.Contact.Phones) == 0 {
		t.Fatalf("expected phone number extraction")
	}
	if len(data.Contact.Addresses) == 0 || !strings.Contains(data.Contact.Addresses[0], "42 Main Street") {
		t.Fatalf("expected street address, got %+v", data.Contact.Addresses)
	}
	if len(data.Contact.SocialLinks) != 1 {
		t.Fatalf("expected one social link, got %+v", data.Contact.SocialLinks)
	}
	if len(data.Business.Services) < 2 {
		t.Fatalf("expected service list items, got %+v", data.Business.Services)
	}
	if len(data.Business.AboutSections) == 0 {
		t.Fatalf("expected about section")
	}
	if len(data.Business.Testimonials) == 0 {
		t.Fatalf("expected testimonial")
	}
	if len(data.Business.Hours) == 0 {
		t.Fatalf("expected opening hours")
	}
	if len(data.Navigation) != 3 {
		t.Fatalf("expected 3 nav items, got %+v", data.Navigation)
	}
	if strings.Contains(data.FullText, "Footer chrome") || strings.Contains(data.FullText, "console.log") {
		t.Fatalf("chrome elements leaked into full text")
	}
	if !strings.Contains(data.MainContent, "water flowing") {
		t.Fatalf("main content missing body copy: %q", data.MainContent)
	}
}

func TestScrapeStructuredDataSkipsInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fixtureHTML))
	}))
	defer srv.Close()

	data := newTestScraper().Scrape(context.Background(), srv.URL)

	foundLdJSON := false
	foundMicrodata := false
	for _, block := range data.StructuredData {
		if block["name"] == "Acme Plumbing" {
			foundLdJSON = true
		}
		if block["telephone"] == "(555) 123-4567" {
			foundMicrodata = true
		}
	}
	if !foundLdJSON {
		t.Fatalf("ld+json block not parsed: %+v", data.StructuredData)
	}
	if !foundMicrodata {
		t.Fatalf("microdata block not parsed: %+v", data.StructuredData)
	}
}

func TestScrapeNeverFailsOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	data := newTestScraper().Scrape(context.Background(), srv.URL)
	if !strings.Contains(data.Description, "Failed to scrape") {
		t.Fatalf("expected failure marker in description, got %q", data.Description)
	}
	if len(data.Business.Services) != 0 {
		t.Fatalf("degraded result must have empty services")
	}
	if data.Business.Services == nil || data.Contact.Emails == nil {
		t.Fatalf("degraded result must keep collections non-nil")
	}
	if data.URL != srv.URL {
		t.Fatalf("degraded result must keep the url")
	}
}

func TestScrapeNeverFailsOnUnreachableHost(t *testing.T) {
	data := newTestScraper().Scrape(context.Background(), "http://127.0.0.1:1/unreachable")
	if !strings.Contains(data.Description, "Failed to scrape") {
		t.Fatalf("expected degraded description, got %q", data.Description)
	}
}

func TestScrapeTimesOutSlowHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	s := &Scraper{Timeout: 50 * time.Millisecond, Logger: zerolog.Nop()}
	start := time.Now()
	data := s.Scrape(context.Background(), srv.URL)
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not enforced")
	}
	if !strings.Contains(data.Description, "Failed to scrape") {
		t.Fatalf("expected degraded result on timeout")
	}
}

func TestTitleFallsBackToTitleTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Plain Title</title></head><body><p>hi</p></body></html>`))
	}))
	defer srv.Close()

	data := newTestScraper().Scrape(context.Background(), srv.URL)
	if data.Title != "Plain Title" {
		t.Fatalf("expected title tag fallback, got %q", data.Title)
	}
}

func TestTitleHardDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>no title anywhere</p></body></html>`))
	}))
	defer srv.Close()

	data := newTestScraper().Scrape(context.Background(), srv.URL)
	if data.Title != defaultTitle {
		t.Fatalf("expected hard default title, got %q", data.Title)
	}
}
