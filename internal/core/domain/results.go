package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Property keys that may carry an entity identifier, in lookup order.
const (
	PropSpecies        = "species"
	PropScientificName = "scientificName"
)

// StatusSuccess is the only response status treated as a successful query.
const StatusSuccess = "success"

// ResultSet maps a dataset id to its feature collection.
type ResultSet map[string]*geojson.FeatureCollection

// DatasetIDs returns the dataset ids in sorted order.
func (rs ResultSet) DatasetIDs() []string {
	ids := make([]string, 0, len(rs))
	for id := range rs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FeatureCount is the total number of features across all datasets.
func (rs ResultSet) FeatureCount() int {
	n := 0
	for _, fc := range rs {
		if fc != nil {
			n += len(fc.Features)
		}
	}
	return n
}

// Contains reports whether any feature in the set belongs to name.
func (rs ResultSet) Contains(name string) bool {
	for _, fc := range rs {
		if fc == nil {
			continue
		}
		for _, f := range fc.Features {
			if n, ok := EntityNameOf(f); ok && n == name {
				return true
			}
		}
	}
	return false
}

// EntityNameOf extracts the entity identifier from a feature's properties.
// "species" wins over "scientificName"; empty or non-string values count as absent.
func EntityNameOf(f *geojson.Feature) (string, bool) {
	if f == nil || f.Properties == nil {
		return "", false
	}
	for _, key := range []string{PropSpecies, PropScientificName} {
		if s, ok := f.Properties[key].(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// Summary is the aggregate block of a classification response.
type Summary struct {
	TotalFeatures int `json:"total_features"`
}

// QueryRequest is the body sent to the classification service.
type QueryRequest struct {
	Prompt      string       `json:"prompt"`
	Coordinates *QueryRegion `json:"coordinates"`
}

// QueryResponse is a decoded classification response. Raw keeps the
// original body for error reporting and caching.
type QueryResponse struct {
	Status  string    `json:"status"`
	Data    ResultSet `json:"data"`
	Summary Summary   `json:"summary"`
	Raw     []byte    `json:"-"`
}

type wireResponse struct {
	Status  string                     `json:"status"`
	Data    map[string]json.RawMessage `json:"data"`
	Summary Summary                    `json:"summary"`
}

type wireCollection struct {
	Features []wireFeature `json:"features"`
}

type wireFeature struct {
	ID         interface{}            `json:"id,omitempty"`
	Geometry   json.RawMessage        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// ParseQueryResponse decodes a classification response body. Collections
// are accepted with or without their GeoJSON "type" members, and features
// without a geometry are dropped.
func ParseQueryResponse(body []byte) (*QueryResponse, error) {
	var w wireResponse
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	resp := &QueryResponse{
		Status:  w.Status,
		Summary: w.Summary,
		Raw:     body,
		Data:    make(ResultSet, len(w.Data)),
	}
	if w.Status != StatusSuccess {
		return resp, nil
	}

	for id, raw := range w.Data {
		fc, err := normalizeCollection(raw)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", id, err)
		}
		resp.Data[id] = fc
	}
	return resp, nil
}

func normalizeCollection(raw json.RawMessage) (*geojson.FeatureCollection, error) {
	var wc wireCollection
	if err := json.Unmarshal(raw, &wc); err != nil {
		return nil, err
	}

	fc := geojson.NewFeatureCollection()
	for i, wf := range wc.Features {
		// Features without geometry still carry a species name; they are
		// kept with a nil Geometry and skipped when fitting bounds.
		var geom orb.Geometry
		if len(wf.Geometry) > 0 && string(wf.Geometry) != "null" {
			var g geojson.Geometry
			if err := json.Unmarshal(wf.Geometry, &g); err != nil {
				return nil, fmt.Errorf("feature %d geometry: %w", i, err)
			}
			geom = g.Geometry()
		}
		f := geojson.NewFeature(geom)
		f.ID = wf.ID
		for k, v := range wf.Properties {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc, nil
}
