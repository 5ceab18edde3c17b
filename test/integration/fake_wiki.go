package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// FakeWiki answers the MediaWiki OAuth endpoints and the userinfo API on
// behalf of whichever user is currently set.
type FakeWiki struct {
	*httptest.Server

	mu       sync.Mutex
	username string
}

// NewFakeWiki starts a fake wiki. Request tokens are always "rt" and the
// only verifier it accepts is "v".
func NewFakeWiki() *FakeWiki {
	fw := &FakeWiki{}

	mux := http.NewServeMux()
	mux.HandleFunc("/w/index.php", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		switch r.URL.Query().Get("title") {
		case "Special:OAuth/initiate":
			w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
			_, _ = fmt.Fprint(w, "oauth_token=rt&oauth_token_secret=rs&oauth_callback_confirmed=true")
		case "Special:OAuth/token":
			if !strings.Contains(auth, `oauth_verifier="v"`) || !strings.Contains(auth, `oauth_token="rt"`) {
				http.Error(w, "bad verifier", http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
			_, _ = fmt.Fprint(w, "oauth_token=at&oauth_token_secret=as")
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		name := fw.User()
		if name == "" {
			_, _ = fmt.Fprint(w, `{"query":{"userinfo":{"id":0,"name":"127.0.0.1","anon":""}}}`)
			return
		}
		_, _ = fmt.Fprintf(w, `{"query":{"userinfo":{"id":1,"name":%q}}}`, name)
	})

	fw.Server = httptest.NewServer(mux)
	return fw
}

// SetUser changes the user the wiki reports. An empty name makes the wiki
// report an anonymous user.
func (fw *FakeWiki) SetUser(name string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.username = name
}

// User returns the current wiki user.
func (fw *FakeWiki) User() string {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.username
}
