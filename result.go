package proxipy

import "encoding/json"

// Mapping pairs the proxy to use for plain HTTP and for HTTPS requests.
type Mapping struct {
	HTTP  string `json:"http"`
	HTTPS string `json:"https"`
}

// Result holds either a single mapping (limit 1) or one mapping per proxy.
type Result struct {
	mappings []Mapping
	single   bool
	connType string
}

func newResult(records []string, limit int, connType string) Result {
	mappings := make([]Mapping, len(records))
	for i, r := range records {
		mappings[i] = Mapping{HTTP: r, HTTPS: r}
	}
	return Result{mappings: mappings, single: limit == 1, connType: connType}
}

// Single reports whether the result was requested with limit 1.
func (r Result) Single() bool {
	return r.single
}

// First returns the first mapping, or the zero Mapping for an empty result.
func (r Result) First() Mapping {
	if len(r.mappings) == 0 {
		return Mapping{}
	}
	return r.mappings[0]
}

// ConnType is the connection type the proxies were requested with.
func (r Result) ConnType() string {
	return r.connType
}

// Mappings returns a copy of every mapping in provider order.
func (r Result) Mappings() []Mapping {
	out := make([]Mapping, len(r.mappings))
	copy(out, r.mappings)
	return out
}

// Proxies returns the proxy URLs in provider order.
func (r Result) Proxies() []string {
	out := make([]string, len(r.mappings))
	for i, m := range r.mappings {
		out[i] = m.HTTP
	}
	return out
}

// Len is the number of proxies in the result.
func (r Result) Len() int {
	return len(r.mappings)
}

// MarshalJSON encodes a single result as an object and anything else as an
// array of objects.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.single && len(r.mappings) == 1 {
		return json.Marshal(r.mappings[0])
	}
	if r.mappings == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.mappings)
}
