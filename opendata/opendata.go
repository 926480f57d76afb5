/*
Package opendata fetches datasets from the Toronto Open Data CKAN API.

A dataset request resolves the resource metadata via package_show and
downloads the resource payload as GeoJSON. Payloads are cached by
resource id and upstream revision.
*/
package opendata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/tallcoleman/toronto-osm-washroom-import/cache"
	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/logging"
)

var log = logging.NewLogger("opendata")

const DefaultBaseURL = "https://ckan0.cf.opendata.inter.prod-toronto.ca"

// Resource is the CKAN resource metadata dictionary with the fields
// the pipeline reads pulled out.
type Resource struct {
	ID           string
	Name         string
	URL          string
	LastModified string
	Raw          map[string]interface{}
}

// A Response pairs the fetched feature table with its resource
// metadata.
type Response struct {
	Features *geojson.FeatureCollection
	Metadata Resource
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Cache   *cache.Cache
}

func NewClient(baseURL string, payloadCache *cache.Cache) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: baseURL, HTTP: http.DefaultClient, Cache: payloadCache}
}

type packageShow struct {
	Success bool `json:"success"`
	Result  struct {
		Resources []map[string]interface{} `json:"resources"`
	} `json:"result"`
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

// ResourceMetadata resolves the metadata dictionary for one resource
// of a dataset.
func (c *Client) ResourceMetadata(dataset, resourceID string) (Resource, error) {
	u := fmt.Sprintf("%s/api/3/action/package_show?id=%s", c.BaseURL, url.QueryEscape(dataset))
	resp, err := c.HTTP.Get(u)
	if err != nil {
		return Resource{}, errors.Wrapf(err, "requesting metadata for %s", dataset)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Resource{}, errors.Errorf("metadata request for %s returned %s", dataset, resp.Status)
	}

	show := packageShow{}
	if err := json.NewDecoder(resp.Body).Decode(&show); err != nil {
		return Resource{}, errors.Wrapf(err, "decoding metadata for %s", dataset)
	}
	for _, raw := range show.Result.Resources {
		if stringField(raw, "id") != resourceID {
			continue
		}
		return Resource{
			ID:           resourceID,
			Name:         stringField(raw, "name"),
			URL:          stringField(raw, "url"),
			LastModified: stringField(raw, "last_modified"),
			Raw:          raw,
		}, nil
	}
	return Resource{}, errors.Errorf("resource %s not found in dataset %s", resourceID, dataset)
}

func (c *Client) payload(meta Resource) ([]byte, error) {
	key := meta.ID + "@" + meta.LastModified
	if c.Cache != nil {
		data, ok, err := c.Cache.Get(key)
		if err != nil {
			return nil, err
		}
		if ok {
			log.Printf("using cached payload for %s", meta.ID)
			return data, nil
		}
	}

	resp, err := c.HTTP.Get(meta.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching resource %s", meta.ID)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("resource %s returned %s", meta.ID, resp.Status)
	}
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading resource %s", meta.ID)
	}

	if c.Cache != nil {
		if err := c.Cache.Put(key, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Dataset fetches one resource of a dataset as a feature collection.
// The literal "None" strings the city uses for nulls are scrubbed to
// absent values, except for the fields listed in keepNone (the
// accessible field uses "None" as a meaningful sentinel).
func (c *Client) Dataset(dataset, resourceID string, keepNone ...string) (*Response, error) {
	meta, err := c.ResourceMetadata(dataset, resourceID)
	if err != nil {
		return nil, err
	}
	data, err := c.payload(meta)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing resource %s", resourceID)
	}
	ScrubNone(fc, keepNone...)
	return &Response{Features: fc, Metadata: meta}, nil
}

// ScrubNone removes properties holding the literal string "None".
func ScrubNone(fc *geojson.FeatureCollection, keep ...string) {
	kept := map[string]bool{}
	for _, k := range keep {
		kept[k] = true
	}
	for _, f := range fc.Features {
		for key, value := range f.Properties {
			if kept[key] {
				continue
			}
			if s, ok := value.(string); ok && s == "None" {
				f.Properties[key] = nil
			}
		}
	}
}
