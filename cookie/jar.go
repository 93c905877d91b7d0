package cookie

import (
	"net/http"
	"sync"
	"time"
)

// HTTPJar is the ambient jar of one request/response cycle.
type HTTPJar struct {
	w       http.ResponseWriter
	r       *http.Request
	pending map[string]*string
}

// NewHTTPJar returns a jar that reads cookies from r and writes Set-Cookie
// headers to w.
func NewHTTPJar(w http.ResponseWriter, r *http.Request) *HTTPJar {
	return &HTTPJar{w: w, r: r}
}

// Get returns the value written earlier in this request, or the inbound
// cookie.
func (j *HTTPJar) Get(name string) (string, bool) {
	if j == nil {
		return "", false
	}
	if v, ok := j.pending[name]; ok {
		if v == nil || *v == "" {
			return "", false
		}
		return *v, true
	}
	return readRequestCookie(j.r, name)
}

// Set emits a Set-Cookie header.
func (j *HTTPJar) Set(name, value string, attrs Attributes) {
	if j == nil || j.w == nil {
		return
	}
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     attrs.Path,
		Expires:  attrs.Expires,
		HttpOnly: attrs.HTTPOnly,
		Secure:   attrs.Secure,
		SameSite: attrs.SameSite,
	})
	j.remember(name, &value)
}

// Delete emits an expiring Set-Cookie header for name. attrs should match
// the ones the cookie was set with so the browser replaces it.
func (j *HTTPJar) Delete(name string, attrs Attributes) {
	if j == nil || j.w == nil {
		return
	}
	path := attrs.Path
	if path == "" {
		path = Path
	}
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: attrs.HTTPOnly,
		Secure:   attrs.Secure,
		SameSite: attrs.SameSite,
	})
	j.remember(name, nil)
}

func (j *HTTPJar) remember(name string, value *string) {
	if j.pending == nil {
		j.pending = make(map[string]*string, 1)
	}
	j.pending[name] = value
}

// RequestJar reads cookies from an inbound request. It has no write side.
type RequestJar struct {
	r *http.Request
}

// FromRequest wraps r.
func FromRequest(r *http.Request) RequestJar {
	return RequestJar{r: r}
}

// Get returns the named cookie from the request.
func (j RequestJar) Get(name string) (string, bool) {
	return readRequestCookie(j.r, name)
}

func readRequestCookie(r *http.Request, name string) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Entry is a cookie held by a [MemoryJar].
type Entry struct {
	Value      string
	Attributes Attributes
}

// Op records one write against a [MemoryJar].
type Op struct {
	Kind  string // "set" or "delete"
	Name  string
	Entry Entry
}

// MemoryJar is an in-process jar. It is safe for concurrent use.
type MemoryJar struct {
	mu      sync.Mutex
	entries map[string]Entry
	ops     []Op
}

// NewMemoryJar returns an empty jar.
func NewMemoryJar() *MemoryJar {
	return &MemoryJar{entries: make(map[string]Entry)}
}

// NewMemoryJarWith returns a jar pre-populated with name=value.
func NewMemoryJarWith(name, value string) *MemoryJar {
	j := NewMemoryJar()
	j.entries[name] = Entry{Value: value}
	return j
}

func (j *MemoryJar) Get(name string) (string, bool) {
	if j == nil {
		return "", false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.entries[name]
	if !ok || e.Value == "" {
		return "", false
	}
	return e.Value, true
}

func (j *MemoryJar) Set(name, value string, attrs Attributes) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	e := Entry{Value: value, Attributes: attrs}
	j.entries[name] = e
	j.ops = append(j.ops, Op{Kind: "set", Name: name, Entry: e})
}

func (j *MemoryJar) Delete(name string, attrs Attributes) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.entries, name)
	j.ops = append(j.ops, Op{Kind: "delete", Name: name, Entry: Entry{Attributes: attrs}})
}

// Lookup returns the full entry for name, attributes included.
func (j *MemoryJar) Lookup(name string) (Entry, bool) {
	if j == nil {
		return Entry{}, false
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	e, ok := j.entries[name]
	return e, ok
}

// Ops returns a copy of the write history.
func (j *MemoryJar) Ops() []Op {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]Op, len(j.ops))
	copy(out, j.ops)
	return out
}
