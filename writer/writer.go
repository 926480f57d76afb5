/*
Package writer persists the run artifacts: validated source snapshots
under source_data/ and the reviewable import sets under to_import/.

Everything here is a plain side effect over already-final data; no
artifact is written before the whole pipeline has succeeded.
*/
package writer

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/tallcoleman/toronto-osm-washroom-import/changeset"
	"github.com/tallcoleman/toronto-osm-washroom-import/geojson"
	"github.com/tallcoleman/toronto-osm-washroom-import/normalize"
)

type Writer struct {
	Dir string
}

func New(dir string) *Writer {
	return &Writer{Dir: dir}
}

// Collection converts normalized features back to a GeoJSON feature
// collection.
func Collection(features []normalize.Feature) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{}
	for _, f := range features {
		props := map[string]interface{}{}
		for k, v := range f.Tags {
			props[k] = v
		}
		point := f.Point
		fc.Features = append(fc.Features, geojson.Feature{
			Properties: props,
			Geometry:   geojson.Geometry{Type: "Point", Point: &point},
		})
	}
	return fc
}

func (w *Writer) writeGeoJSON(relpath string, fc *geojson.FeatureCollection) error {
	path := filepath.Join(w.Dir, relpath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()
	return geojson.Encode(f, fc)
}

func (w *Writer) writeText(relpath, text string) error {
	path := filepath.Join(w.Dir, relpath)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	return errors.Wrapf(ioutil.WriteFile(path, []byte(text), 0644), "writing %s", path)
}

// SourceData snapshots a validated upstream dataset and its metadata
// dictionary.
func (w *Writer) SourceData(name string, fc *geojson.FeatureCollection, meta interface{}) error {
	if err := w.writeGeoJSON(filepath.Join("source_data", name+".geojson"), fc); err != nil {
		return err
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding metadata for %s", name)
	}
	return w.writeText(filepath.Join("source_data", name+"_meta.json"), string(data)+"\n")
}

// ImportSet writes one normalized feature set below to_import/.
func (w *Writer) ImportSet(relpath string, features []normalize.Feature) error {
	return w.writeGeoJSON(filepath.Join("to_import", relpath), Collection(features))
}

// Changesets writes the per-region directories: the member features,
// both verification queries and the changeset metadata block.
func (w *Writer) Changesets(subdir string, changesets []changeset.Changeset) error {
	for _, c := range changesets {
		dir := filepath.Join("to_import", subdir, c.Name)
		if err := w.ImportSet(filepath.Join(subdir, c.Name, c.Name+"_washrooms.geojson"), c.Features); err != nil {
			return err
		}
		if err := w.writeText(filepath.Join(dir, c.Name+"_toilets_query.txt"), c.WashroomQuery+"\n"); err != nil {
			return err
		}
		if err := w.writeText(filepath.Join(dir, c.Name+"_buildings_query.txt"), c.BuildingQuery+"\n"); err != nil {
			return err
		}
		if err := w.writeText(filepath.Join(dir, c.Name+"_changeset_tags.txt"), c.Tags); err != nil {
			return err
		}
	}
	return nil
}

// Summary writes the run summary text.
func (w *Writer) Summary(text string) error {
	return w.writeText(filepath.Join("to_import", "summary.txt"), text)
}
