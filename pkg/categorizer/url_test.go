package categorizer

import "testing"

// TestDecompose tests URL component extraction and selector aliases
func TestDecompose(t *testing.T) {
	u, err := Decompose("HTTPS://User@Www.Example.COM:8443/a%20b/c?x=1&y=2#frag")
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}

	tests := []struct {
		selector string
		want     string
	}{
		{"scheme", "https"},
		{"proto", "https"},
		{"protocol", "https"},
		{"host", "www.example.com"},
		{"hostname", "www.example.com"},
		{"domain", "www.example.com"},
		{"path", "/a%20b/c"},
		{"query", "x=1&y=2"},
		{"pathquery", "/a%20b/c?x=1&y=2"},
		{"url", "HTTPS://User@Www.Example.COM:8443/a%20b/c?x=1&y=2#frag"},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			got, ok := u.Component(tt.selector)
			if !ok {
				t.Fatalf("Component(%q) not found", tt.selector)
			}
			if got != tt.want {
				t.Errorf("Component(%q) = %q, want %q", tt.selector, got, tt.want)
			}
		})
	}

	if _, ok := u.Component("fragment"); ok {
		t.Error("Component(\"fragment\") should not resolve")
	}
}

// TestDecompose_MissingComponents tests that absent parts are empty strings
func TestDecompose_MissingComponents(t *testing.T) {
	u, err := Decompose("/relative/path")
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}
	if u.Scheme != "" || u.Hostname != "" || u.Query != "" {
		t.Errorf("Decompose() = %+v", u)
	}
	if u.PathQuery != "/relative/path" {
		t.Errorf("PathQuery = %q", u.PathQuery)
	}
}

// TestDecompose_Lenient tests that text a strict parser rejects is kept verbatim
func TestDecompose_Lenient(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		host      string
		path      string
		query     string
		pathquery string
	}{
		{"malformed escape", "https://example.com/a%zz?q=1", "example.com", "/a%zz", "q=1", "/a%zz?q=1"},
		{"space in path", "https://example.com/a b", "example.com", "/a b", "", "/a b"},
		{"space in host", "http://bad host/x", "bad host", "/x", "", "/x"},
		{"path params", "http://h/p;x=1?q", "h", "/p", "q", "/p?q"},
		{"params on inner segment", "http://h/a;v=1/b", "h", "/a;v=1/b", "", "/a;v=1/b"},
		{"ipv6 with port", "http://[::1]:80/", "::1", "/", "", "/"},
		{"empty query", "http://h/p?", "h", "/p", "", "/p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := Decompose(tt.raw)
			if err != nil {
				t.Fatalf("Decompose(%q) error = %v", tt.raw, err)
			}
			if u.Hostname != tt.host {
				t.Errorf("Hostname = %q, want %q", u.Hostname, tt.host)
			}
			if u.Path != tt.path {
				t.Errorf("Path = %q, want %q", u.Path, tt.path)
			}
			if u.Query != tt.query {
				t.Errorf("Query = %q, want %q", u.Query, tt.query)
			}
			if u.PathQuery != tt.pathquery {
				t.Errorf("PathQuery = %q, want %q", u.PathQuery, tt.pathquery)
			}
			if u.Raw != tt.raw {
				t.Errorf("Raw = %q, want %q", u.Raw, tt.raw)
			}
		})
	}
}

// TestDecompose_UnbalancedIPv6 tests that an unclosed bracket in the authority fails
func TestDecompose_UnbalancedIPv6(t *testing.T) {
	for _, raw := range []string{"http://[::1", "http://::1]/"} {
		if _, err := Decompose(raw); err == nil {
			t.Errorf("Decompose(%q) error = nil, want error", raw)
		}
	}
}
