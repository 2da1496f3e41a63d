package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/looplj/datavault/internal/objects"
	"github.com/looplj/datavault/internal/pkg/httpclient"
	"github.com/looplj/datavault/internal/pkg/xcontext"
)

var ErrMalformedResponse = errors.New("malformed oracle response")

// HTTPOracle calls GET {base_url}/datasets/{id}/access?identity=...
type HTTPOracle struct {
	client *httpclient.HttpClient
	cfg    Config
}

func NewHTTPOracle(client *httpclient.HttpClient, cfg Config) *HTTPOracle {
	return &HTTPOracle{
		client: client,
		cfg:    cfg,
	}
}

func (o *HTTPOracle) GetAccessGrant(ctx context.Context, datasetID objects.DatasetID, identity objects.Identity) ([]Grant, error) {
	ctx, cancel := xcontext.WithOptionalTimeout(ctx, o.cfg.Timeout)
	defer cancel()

	req := &httpclient.Request{
		Method: http.MethodGet,
		URL:    strings.TrimRight(o.cfg.BaseURL, "/") + "/datasets/" + strconv.FormatUint(uint64(datasetID), 10) + "/access",
		Query:  url.Values{"identity": []string{identity.String()}},
	}

	if o.cfg.Token != "" {
		req.Auth = &httpclient.AuthConfig{Type: httpclient.AuthTypeBearer, APIKey: o.cfg.Token}
	}

	resp, err := o.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("query access oracle: %w", err)
	}

	return ParseGrants(resp.Body)
}

// ParseGrants accepts a bare array of grants or an object with a "grants" array.
// Field names of both the snake_case and the camelCase oracle flavours are understood.
func ParseGrants(body []byte) ([]Grant, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		root = root.Get("grants")
	}

	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected grants array", ErrMalformedResponse)
	}

	var (
		grants []Grant
		err    error
	)

	root.ForEach(func(_, item gjson.Result) bool {
		var g Grant

		g, err = parseGrant(item)
		if err != nil {
			return false
		}

		grants = append(grants, g)

		return true
	})

	if err != nil {
		return nil, err
	}

	return grants, nil
}

func parseGrant(item gjson.Result) (Grant, error) {
	if !item.IsObject() {
		return Grant{}, fmt.Errorf("%w: grant is not an object", ErrMalformedResponse)
	}

	dims := firstOf(item, "allowed_dimension_ids", "dimensionRestrictList", "allowed")
	gdpr := firstOf(item, "gdpr_enabled", "isGdprEnabled")

	var g Grant

	g.GDPREnabled = gdpr.Bool()

	for _, d := range dims.Array() {
		if d.Type != gjson.Number || d.Num < 0 || d.Num > math.MaxUint8 || d.Num != math.Trunc(d.Num) {
			return Grant{}, fmt.Errorf("%w: invalid dimension id %s", ErrMalformedResponse, d.Raw)
		}

		g.AllowedDimensionIDs = append(g.AllowedDimensionIDs, objects.DimensionID(d.Uint()))
	}

	return g, nil
}

func firstOf(item gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := item.Get(p); r.Exists() {
			return r
		}
	}

	return gjson.Result{}
}
