// Copyright 2023 ArkFunds-Go

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api implements the base client for the arkfunds.io web API, which
// serves ARK Invest ETF and stock data as JSON. Endpoint packages (etf,
// stock) build their queries on top of this package.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/arkfunds/arkfunds-go/db"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
)

type contextKey int

const (
	clientContextKey contextKey = iota
)

// URL is the default base URL of the server. It may be overwritten in tests
// before creating a new client.
var URL = "https://arkfunds.io/api/v2"

// Funds are the ARK ETF symbols recognized by the API.
var Funds = []string{
	"ARKA",
	"ARKB",
	"ARKC",
	"ARKD",
	"ARKF",
	"ARKG",
	"ARKK",
	"ARKQ",
	"ARKVX",
	"ARKW",
	"ARKX",
	"ARKY",
	"ARKZ",
	"IZRL",
	"PRNT",
}

// IsFund checks whether the symbol is a known ARK ETF.
func IsFund(symbol string) bool {
	for _, f := range Funds {
		if symbol == f {
			return true
		}
	}
	return false
}

// symbolRegexp matches a single symbol in a free-form symbols string.
var symbolRegexp = regexp.MustCompile(`[\w\-.=^&]+`)

// ParseSymbols extracts upper-cased symbols from a comma or whitespace
// separated string, e.g. "tsla, coin MSFT" -> [TSLA COIN MSFT].
func ParseSymbols(s string) []string {
	var symbols []string
	for _, m := range symbolRegexp.FindAllString(s, -1) {
		symbols = append(symbols, strings.ToUpper(m))
	}
	return symbols
}

// SplitFunds splits symbols into known ARK ETFs and everything else.
func SplitFunds(symbols []string) (valid, invalid []string) {
	for _, s := range symbols {
		if IsFund(s) {
			valid = append(valid, s)
		} else {
			invalid = append(invalid, s)
		}
	}
	return
}

// CheckFunds verifies that all symbols are known ARK ETFs, and that there is
// at least one.
func CheckFunds(symbols []string) error {
	valid, invalid := SplitFunds(symbols)
	if len(invalid) > 0 {
		return errors.Reason("invalid fund symbols %s; symbols accepted: %s",
			strings.Join(invalid, ", "), strings.Join(Funds, ", "))
	}
	if len(valid) == 0 {
		return errors.Reason("no fund symbols given; symbols accepted: %s",
			strings.Join(Funds, ", "))
	}
	return nil
}

// Client for querying the arkfunds.io API. The API requires no key.
type Client struct {
	baseURL string // the base URL of the server
}

// newClient creates a new client.
func newClient(baseURL string) *Client {
	return &Client{baseURL: baseURL}
}

// GetClient extracts the Client from the context, if any.
func GetClient(ctx context.Context) *Client {
	c, ok := ctx.Value(clientContextKey).(*Client)
	if !ok {
		return nil
	}
	return c
}

// UseClient creates a new client and injects it into the context.
func UseClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, clientContextKey, newClient(URL))
}

// Query is a builder for an API query. Builder methods always create a deep
// copy of the query, leaving the original intact.
type Query struct {
	endpoint string // URL path below the base URL, e.g. "/etf/holdings"
	params   map[string]string
}

// NewQuery creates a new query for the given endpoint.
func NewQuery(endpoint string) *Query {
	return &Query{endpoint: endpoint}
}

// Copy creates a deep copy of the query. It is primarily used in its builder
// methods.
func (q *Query) Copy() *Query {
	q2 := Query{endpoint: q.endpoint}
	if q.params != nil {
		q2.params = make(map[string]string, len(q.params))
		for k, v := range q.params {
			q2.params[k] = v
		}
	}
	return &q2
}

// with sets a single query parameter. An empty value removes the parameter.
func (q *Query) with(key, value string) *Query {
	q2 := q.Copy()
	if value == "" {
		delete(q2.params, key)
		return q2
	}
	if q2.params == nil {
		q2.params = make(map[string]string)
	}
	q2.params[key] = value
	return q2
}

// Symbol sets the symbol query parameter.
func (q *Query) Symbol(symbol string) *Query {
	return q.with("symbol", symbol)
}

// Date sets the date query parameter. A zero date is ignored.
func (q *Query) Date(d db.Date) *Query {
	if d.IsZero() {
		return q.Copy()
	}
	return q.with("date", d.String())
}

// From sets the date_from query parameter. A zero date is ignored.
func (q *Query) From(d db.Date) *Query {
	if d.IsZero() {
		return q.Copy()
	}
	return q.with("date_from", d.String())
}

// To sets the date_to query parameter. A zero date is ignored.
func (q *Query) To(d db.Date) *Query {
	if d.IsZero() {
		return q.Copy()
	}
	return q.with("date_to", d.String())
}

// Period sets the period query parameter.
func (q *Query) Period(period string) *Query {
	return q.with("period", period)
}

// Direction sets the direction query parameter, lower-cased.
func (q *Query) Direction(direction string) *Query {
	return q.with("direction", strings.ToLower(direction))
}

// Limit sets the limit query parameter; 0 = no limit.
func (q *Query) Limit(limit int) *Query {
	if limit <= 0 {
		return q.Copy()
	}
	return q.with("limit", fmt.Sprintf("%d", limit))
}

// Price sets the price query parameter, which asks the stock profile
// endpoint to include the current share price.
func (q *Query) Price(price bool) *Query {
	if !price {
		return q.Copy()
	}
	return q.with("price", "true")
}

// Formatted sets the formatted query parameter.
func (q *Query) Formatted(formatted bool) *Query {
	if !formatted {
		return q.Copy()
	}
	return q.with("formatted", "true")
}

// Path returns the URL path to add to the base URL.
func (q *Query) Path() string {
	return q.endpoint
}

// Values returns the query values for the query. Each call creates a new
// object, so the caller is free to modify it without affecting the query.
func (q *Query) Values() url.Values {
	v := make(url.Values)
	for k, val := range q.params {
		v[k] = []string{val}
	}
	return v
}

// Fetch executes the query using the Client from the context and decodes the
// JSON response into v. The second return value is false when the server has
// no data for the query (HTTP 404), which is not an error: the API responds
// with 404 for unknown symbols.
func (q *Query) Fetch(ctx context.Context, v any) (bool, error) {
	client := GetClient(ctx)
	if client == nil {
		return false, errors.Reason("Query.Fetch: no client in context")
	}
	uri := client.baseURL + q.endpoint
	resp, err := fetch.GetRetry(ctx, uri, q.Values(), nil)
	if resp != nil {
		defer resp.Body.Close()
	}
	// GetRetry returns an error for any non-2xx status, with the response
	// still populated. A 404 means the server has no data for the query.
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.Annotate(err, "Query.Fetch: failed to fetch URL")
	}
	if resp.StatusCode != http.StatusOK {
		return false, errors.Reason("Query.Fetch: unexpected status '%s' for %s",
			resp.Status, uri)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, errors.Annotate(err, "Query.Fetch: failed to read response body")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Annotate(err, "Query.Fetch: failed to parse JSON from %s", uri)
	}
	return true, nil
}
