/*
Package overpass queries the Overpass API for washrooms that are
already mapped, so reviewers can compare the import set against the
current map.
*/
package overpass

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	osm "github.com/omniscale/go-osm"
	"github.com/pkg/errors"

	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
)

const DefaultURL = "http://overpass-api.de/api/interpreter"

const viewURL = "https://www.openstreetmap.org/"

// TorontoWashroomsQuery lists everything currently tagged as a toilet
// within the city boundary.
const TorontoWashroomsQuery = `[out:json][timeout:25];
area["official_name"="City of Toronto"]->.toArea;
(
  nwr["amenity"="toilets"](area.toArea);
  nwr["building"="toilets"](area.toArea);
);
out geom meta;`

type Client struct {
	URL  string
	HTTP *http.Client
}

func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{URL: url, HTTP: http.DefaultClient}
}

type latLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type element struct {
	Type      string   `json:"type"`
	ID        int64    `json:"id"`
	Lat       float64  `json:"lat"`
	Lon       float64  `json:"lon"`
	Center    *latLon  `json:"center"`
	Geometry  []latLon `json:"geometry"`
	Tags      osm.Tags `json:"tags"`
	Version   int32    `json:"version"`
	Timestamp string   `json:"timestamp"`
}

type response struct {
	Elements []element `json:"elements"`
}

// Query posts a raw Overpass query and converts the elements into
// features. Nodes keep their location, ways and relations fall back
// to their center or outline.
func (c *Client) Query(query string) (*geojson.FeatureCollection, error) {
	resp, err := c.HTTP.Post(c.URL, "text/plain", strings.NewReader(query))
	if err != nil {
		return nil, errors.Wrap(err, "querying overpass")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("overpass returned %s", resp.Status)
	}

	data := response{}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decoding overpass response")
	}

	fc := &geojson.FeatureCollection{}
	for _, el := range data.Elements {
		feature, err := featureFromElement(el)
		if err != nil {
			return nil, err
		}
		fc.Features = append(fc.Features, feature)
	}
	return fc, nil
}

func featureFromElement(el element) (geojson.Feature, error) {
	geom := geojson.Geometry{}
	switch {
	case el.Type == "node":
		geom = geojson.Geometry{Type: "Point", Point: &geojson.Point{Long: el.Lon, Lat: el.Lat}}
	case el.Center != nil:
		geom = geojson.Geometry{Type: "Point", Point: &geojson.Point{Long: el.Center.Lon, Lat: el.Center.Lat}}
	case len(el.Geometry) > 0:
		ring := make([]geojson.Point, 0, len(el.Geometry))
		for _, p := range el.Geometry {
			ring = append(ring, geojson.Point{Long: p.Lon, Lat: p.Lat})
		}
		geom = geojson.Geometry{Type: "Polygon", Polygons: []geojson.Polygon{{Rings: [][]geojson.Point{ring}}}}
	default:
		return geojson.Feature{}, errors.Errorf("no coordinates in element %s/%d", el.Type, el.ID)
	}

	props := map[string]interface{}{}
	for k, v := range el.Tags {
		props[k] = v
	}
	props["_type"] = el.Type
	props["_id"] = el.ID
	if el.Version != 0 {
		props["_version"] = el.Version
	}
	if el.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, el.Timestamp); err == nil {
			props["_timestamp"] = t.Format("2006-01-02T15:04:05-07:00")
		}
	}
	props["_url_nwr"] = viewURL + el.Type + "/" + strconv.FormatInt(el.ID, 10)

	return geojson.Feature{Properties: props, Geometry: geom}, nil
}

// Metadata returns the minimal metadata dictionary stored alongside
// the snapshot of currently mapped washrooms.
func Metadata() map[string]interface{} {
	return map[string]interface{}{
		"source":    "Overpass API",
		"retrieved": time.Now().UTC().Format(time.RFC3339),
		"crs":       "EPSG:4326",
	}
}
