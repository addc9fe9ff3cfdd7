package browser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/rasff/internal/engine"
)

// pagedTable re-renders its body asynchronously when the page size changes,
// the way the results table of the search screen does.
const pagedTable = `<!DOCTYPE html>
<html>
<head><title>Search</title></head>
<body>
	<select class="page-size__select eui-select">
		<option value="25">25</option>
		<option value="100">100</option>
	</select>
	<table class="eui-table eui-table--hoverable eui-table--responsive">
		<thead><tr><th>Date</th><th>Subject</th></tr></thead>
		<tbody></tbody>
	</table>
	<script>
		function render(n) {
			var body = document.querySelector("tbody");
			body.innerHTML = "";
			for (var i = 0; i < n; i++) {
				var tr = document.createElement("tr");
				tr.innerHTML = "<td>19 MAR 2025</td><td>row " + i + "</td>";
				body.appendChild(tr);
			}
		}
		render(25);
		document.querySelector("select").addEventListener("change", function(e) {
			setTimeout(function() { render(parseInt(e.target.value, 10)); }, 200);
		});
	</script>
</body>
</html>`

func requireChrome(t *testing.T) {
	t.Helper()
	if os.Getenv("RASFF_CHROME_TESTS") == "" {
		t.Skip("set RASFF_CHROME_TESTS=1 to run tests that launch Chrome")
	}
}

func TestChromeSession_PageSizeAndSettle(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pagedTable))
	}))
	defer server.Close()

	cfg := Config{Endpoint: server.URL, Headless: true, WaitTimeout: 5 * time.Second}
	ctx := context.Background()

	err := WithSession(ctx, NewChromeOpener(), cfg, func(s Session) error {
		if err := s.Navigate(ctx, cfg.Endpoint); err != nil {
			return err
		}
		if err := s.WaitUntil(ctx, "table.eui-table", 0); err != nil {
			return err
		}
		before, err := s.Snapshot(ctx, "table.eui-table")
		if err != nil {
			return err
		}
		if got := strings.Count(before, "<tr>"); got != 26 {
			t.Errorf("Expected 26 rows before page size change, got %d", got)
		}

		var ok bool
		if err := s.RunScript(ctx, SetSelectValueScript, &ok, Element("select.page-size__select.eui-select"), "100"); err != nil {
			return err
		}
		if !ok {
			t.Error("Expected select value to be applied")
		}

		res, err := Settle(ctx, s, []string{"table.eui-table"}, SettleOptions{
			Baseline: ContentHash(before),
			MaxWait:  3 * time.Second,
			Interval: 50 * time.Millisecond,
		})
		if err != nil {
			return err
		}
		if !res.Settled {
			t.Error("Expected table to settle before the upper bound")
		}
		if got := strings.Count(res.HTML, "<tr>"); got != 101 {
			t.Errorf("Expected 101 rows after page size change, got %d", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
}

func TestChromeSession_WaitUntilTimesOut(t *testing.T) {
	requireChrome(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer server.Close()

	ctx := context.Background()
	err := WithSession(ctx, NewChromeOpener(), Config{Headless: true}, func(s Session) error {
		if err := s.Navigate(ctx, server.URL); err != nil {
			return err
		}
		return s.WaitUntil(ctx, "table.eui-table", 500*time.Millisecond)
	})

	if !errors.Is(err, engine.ErrNavigationTimeout) {
		t.Fatalf("Expected navigation timeout, got %v", err)
	}
}

type countingSession struct {
	Session
	closed int
}

func (c *countingSession) Close() error {
	c.closed++
	return nil
}

type stubOpener struct {
	sess *countingSession
}

func (o *stubOpener) Open(ctx context.Context, cfg Config) (Session, error) {
	return o.sess, nil
}

func TestWithSession_ClosesOnErrorAndPanic(t *testing.T) {
	opener := &stubOpener{sess: &countingSession{}}
	boom := errors.New("boom")

	err := WithSession(context.Background(), opener, Config{}, func(Session) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Expected fn error to propagate, got %v", err)
	}
	if opener.sess.closed != 1 {
		t.Errorf("Expected session closed once after error, got %d", opener.sess.closed)
	}

	func() {
		defer func() { _ = recover() }()
		_ = WithSession(context.Background(), opener, Config{}, func(Session) error { panic("parse blew up") })
	}()
	if opener.sess.closed != 2 {
		t.Errorf("Expected session closed after panic, got %d", opener.sess.closed)
	}
}

func TestConfig_Flags(t *testing.T) {
	flags := Config{Headless: true}.Flags()
	for _, name := range []string{"no-sandbox", "disable-gpu", "disable-dev-shm-usage"} {
		if flags[name] != true {
			t.Errorf("Expected %s to be enabled, got %v", name, flags[name])
		}
	}
	if flags["headless"] != "new" {
		t.Errorf("Expected headless=new, got %v", flags["headless"])
	}
	if got := (Config{}).Flags()["headless"]; got != false {
		t.Errorf("Expected visible browser when Headless is false, got %v", got)
	}
}

func TestConfig_TimeoutDefaults(t *testing.T) {
	if got := (Config{}).waitTimeout(); got != DefaultWaitTimeout {
		t.Errorf("Expected default wait timeout, got %v", got)
	}
	if got := (Config{WaitTimeout: time.Second}).waitTimeout(); got != time.Second {
		t.Errorf("Expected override, got %v", got)
	}
}

func TestConfig_Language(t *testing.T) {
	if got := (Config{}).Flags()["lang"]; got != "en-GB" {
		t.Errorf("Expected default lang en-GB, got %v", got)
	}
	if got := (Config{Language: "es-ES,es"}).Flags()["lang"]; got != "es-ES" {
		t.Errorf("Expected lang es-ES, got %v", got)
	}
}

func TestChromeSession_SendsAcceptLanguage(t *testing.T) {
	requireChrome(t)

	got := make(chan string, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case got <- r.Header.Get("Accept-Language"):
		default:
		}
		w.Write([]byte(`<html><body><table class="eui-table"></table></body></html>`))
	}))
	defer server.Close()

	ctx := context.Background()
	err := WithSession(ctx, NewChromeOpener(), Config{Headless: true}, func(s Session) error {
		return s.Navigate(ctx, server.URL)
	})
	if err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if lang := <-got; lang != DefaultLanguage {
		t.Errorf("Expected Accept-Language %q, got %q", DefaultLanguage, lang)
	}
}
