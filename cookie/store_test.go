package cookie

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStoreSaveWritesSecurityAttributes(t *testing.T) {
	store := NewStore(false)
	jar := NewMemoryJar()
	expires := time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC)

	store.Save(jar, "a.b.c", expires)

	ops := jar.Ops()
	if len(ops) != 1 || ops[0].Kind != "set" {
		t.Fatalf("expected exactly one set, got %+v", ops)
	}
	e, ok := jar.Lookup(Name)
	if !ok {
		t.Fatal("expected auth-token cookie")
	}
	if e.Value != "a.b.c" {
		t.Fatalf("unexpected value %q", e.Value)
	}
	attrs := e.Attributes
	if !attrs.HTTPOnly || attrs.SameSite != http.SameSiteLaxMode || attrs.Path != "/" {
		t.Fatalf("unexpected attributes %+v", attrs)
	}
	if attrs.Secure {
		t.Fatal("expected Secure=false outside production")
	}
	if !attrs.Expires.Equal(expires) {
		t.Fatalf("expected expires %v, got %v", expires, attrs.Expires)
	}

	if !NewStore(true).Attributes(expires).Secure {
		t.Fatal("expected Secure=true in production")
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	store := NewStore(false)
	jar := NewMemoryJar()
	store.Save(jar, "first", time.Now())
	store.Save(jar, "second", time.Now())

	got, ok := store.Read(jar)
	if !ok || got != "second" {
		t.Fatalf("expected last write to win, got %q ok=%v", got, ok)
	}
}

func TestStoreReadAbsentAndEmpty(t *testing.T) {
	store := NewStore(false)
	if _, ok := store.Read(NewMemoryJar()); ok {
		t.Fatal("expected absent cookie")
	}
	if _, ok := store.Read(NewMemoryJarWith(Name, "")); ok {
		t.Fatal("expected empty cookie to read as absent")
	}
	if _, ok := store.Read(nil); ok {
		t.Fatal("expected nil reader to read as absent")
	}
}

func TestStoreClearIdempotent(t *testing.T) {
	store := NewStore(false)
	jar := NewMemoryJarWith(Name, "a.b.c")

	store.Clear(jar)
	store.Clear(jar)

	if _, ok := store.Read(jar); ok {
		t.Fatal("expected cookie removed")
	}
	ops := jar.Ops()
	if len(ops) != 2 || ops[0].Kind != "delete" || ops[0].Name != Name {
		t.Fatalf("unexpected ops %+v", ops)
	}
	if attrs := ops[0].Entry.Attributes; !attrs.HTTPOnly || attrs.SameSite != http.SameSiteLaxMode || attrs.Path != Path {
		t.Fatalf("expected clear to carry session attributes, got %+v", attrs)
	}
}

func TestHTTPJarClearMatchesSetAttributes(t *testing.T) {
	rec := httptest.NewRecorder()
	jar := NewHTTPJar(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	store := NewStore(true)

	store.Save(jar, "x.y.z", time.Now().Add(time.Hour))
	store.Clear(jar)

	cookies := responseCookies(rec)
	if len(cookies) != 2 {
		t.Fatalf("expected two Set-Cookie headers, got %d", len(cookies))
	}
	set, cleared := cookies[0], cookies[1]
	if cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("expected expiring cookie, got %+v", cleared)
	}
	if cleared.Secure != set.Secure || cleared.SameSite != set.SameSite || cleared.HttpOnly != set.HttpOnly || cleared.Path != set.Path {
		t.Fatalf("clearing cookie %+v does not match set cookie %+v", cleared, set)
	}
}

func TestTypedNilJarsAreInert(t *testing.T) {
	store := NewStore(false)
	var httpJar *HTTPJar
	var memJar *MemoryJar

	if !IsNil(httpJar) || !IsNil(memJar) || !IsNil(nil) {
		t.Fatal("expected typed nil jars reported as nil")
	}
	if IsNil(NewMemoryJar()) || IsNil(FromRequest(nil)) {
		t.Fatal("expected live jars reported as non-nil")
	}
	if _, ok := store.Read(httpJar); ok {
		t.Fatal("expected nil HTTPJar to read as absent")
	}
	if _, ok := memJar.Get(Name); ok {
		t.Fatal("expected nil MemoryJar to read as absent")
	}
	store.Save(httpJar, "a.b.c", time.Now())
	store.Clear(memJar)
	httpJar.Delete(Name, store.Attributes(time.Unix(0, 0)))
	memJar.Set(Name, "a.b.c", Attributes{})
}

func TestHTTPJarWritesSetCookieAndReadsOwnWrites(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: Name, Value: "inbound"})
	rec := httptest.NewRecorder()
	jar := NewHTTPJar(rec, req)
	store := NewStore(true)

	if got, _ := store.Read(jar); got != "inbound" {
		t.Fatalf("expected inbound cookie, got %q", got)
	}

	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	store.Save(jar, "x.y.z", expires)
	if got, _ := store.Read(jar); got != "x.y.z" {
		t.Fatalf("expected own write, got %q", got)
	}

	cookies := responseCookies(rec)
	if len(cookies) != 1 {
		t.Fatalf("expected one Set-Cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != Name || c.Value != "x.y.z" || !c.HttpOnly || !c.Secure || c.Path != "/" || c.SameSite != http.SameSiteLaxMode {
		t.Fatalf("unexpected cookie %+v", c)
	}
	if !c.Expires.Equal(expires) {
		t.Fatalf("expected expires %v, got %v", expires, c.Expires)
	}

	store.Clear(jar)
	if _, ok := store.Read(jar); ok {
		t.Fatal("expected cleared cookie to read as absent")
	}
	cookies = responseCookies(rec)
	last := cookies[len(cookies)-1]
	if last.Name != Name || last.MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %+v", last)
	}
}

func TestRequestJarReadOnly(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := FromRequest(req).Get(Name); ok {
		t.Fatal("expected absent cookie")
	}
	req.AddCookie(&http.Cookie{Name: Name, Value: "tok"})
	if got, ok := NewStore(false).Read(FromRequest(req)); !ok || got != "tok" {
		t.Fatalf("expected tok, got %q ok=%v", got, ok)
	}
	if _, ok := FromRequest(nil).Get(Name); ok {
		t.Fatal("expected nil request to read as absent")
	}
}

func responseCookies(rec *httptest.ResponseRecorder) []*http.Cookie {
	return (&http.Response{Header: rec.Header()}).Cookies()
}
