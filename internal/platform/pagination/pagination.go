// Package pagination provides opaque page tokens and page-size handling for
// list endpoints.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	// DefaultPageSize defines the fallback number of items returned when the client omits pageSize.
	DefaultPageSize = 50
	// MaxPageSize caps the supported pageSize to prevent unbounded responses.
	MaxPageSize = 100
)

var (
	// ErrInvalidPageSize indicates the pageSize query parameter is not a positive integer within bounds.
	ErrInvalidPageSize = errors.New("pagination: invalid pageSize")
	// ErrInvalidPageToken indicates the pageToken query parameter could not be decoded.
	ErrInvalidPageToken = errors.New("pagination: invalid pageToken")
)

// Params carries the client's paging request.
type Params struct {
	PageSize  int
	PageToken string
}

// ParseParams extracts paging parameters from the request query string.
func ParseParams(r *http.Request) (Params, error) {
	params := Params{PageSize: DefaultPageSize}
	if r == nil || r.URL == nil {
		return params, nil
	}
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("pageSize")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return Params{}, fmt.Errorf("%w: %q", ErrInvalidPageSize, raw)
		}
		if size > MaxPageSize {
			size = MaxPageSize
		}
		params.PageSize = size
	}
	params.PageToken = strings.TrimSpace(query.Get("pageToken"))
	return params, nil
}

type cursor struct {
	Offset int `json:"o"`
}

func encodeToken(c cursor) string {
	if c.Offset <= 0 {
		return ""
	}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeToken(token string) (cursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return cursor{}, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return cursor{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	var c cursor
	if err := json.Unmarshal(decoded, &c); err != nil {
		return cursor{}, fmt.Errorf("%w: %v", ErrInvalidPageToken, err)
	}
	if c.Offset < 0 {
		return cursor{}, ErrInvalidPageToken
	}
	return c, nil
}

// Slice pages through an already ordered slice, returning the requested page
// and the token for the next one. An empty next token means the listing is
// exhausted.
func Slice[T any](items []T, params Params) ([]T, string, error) {
	c, err := decodeToken(params.PageToken)
	if err != nil {
		return nil, "", err
	}
	size := params.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	if c.Offset >= len(items) {
		return []T{}, "", nil
	}
	end := c.Offset + size
	if end > len(items) {
		end = len(items)
	}

	page := append([]T(nil), items[c.Offset:end]...)
	next := ""
	if end < len(items) {
		next = encodeToken(cursor{Offset: end})
	}
	return page, next, nil
}
