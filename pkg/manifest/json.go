package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/zenith-dev/zenith/pkg/routepath"
)

// routeRecord is the portable JSON shape of one route.
type routeRecord struct {
	Path       string   `json:"path"`
	Regex      string   `json:"regex"`
	ParamNames []string `json:"paramNames"`
	Score      int      `json:"score"`
	FilePath   string   `json:"filePath,omitempty"`
}

// manifestFile is the portable JSON shape of a manifest. Routes appear
// in resolution order; consumers match top to bottom.
type manifestFile struct {
	Routes      []routeRecord `json:"routes"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

// Encode writes the manifest to w in the portable JSON format.
func (m *Manifest) Encode(w io.Writer) error {
	file := manifestFile{
		Routes:      make([]routeRecord, 0, len(m.Routes)),
		GeneratedAt: m.GeneratedAt,
	}
	for _, r := range m.Routes {
		file.Routes = append(file.Routes, routeRecord{
			Path:       r.Path,
			Regex:      r.Pattern,
			ParamNames: r.ParamNames,
			Score:      r.Score,
			FilePath:   r.FilePath,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("manifest: encoding: %w", err)
	}
	return nil
}

// WriteFile writes the manifest to path in the portable JSON format.
func (m *Manifest) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("manifest: writing %s: %w", path, err)
	}
	if err := m.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Decode reads a manifest from r in the portable JSON format.
//
// Matchers and segments are rebuilt from each route's path; the stored
// score and order are trusted as-is so a manifest ranked elsewhere
// resolves identically here.
func Decode(r io.Reader) (*Manifest, error) {
	var file manifestFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("manifest: decoding: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, ErrNoRoutes
	}

	routes := make([]*CompiledRoute, 0, len(file.Routes))
	for i, rec := range file.Routes {
		segs := routepath.ParseSegments(rec.Path)
		routes = append(routes, &CompiledRoute{
			Path:        rec.Path,
			Segments:    segs,
			ParamNames:  routepath.ParamNames(segs),
			Matcher:     routepath.Compile(segs),
			Score:       rec.Score,
			SourceIndex: i,
			FilePath:    rec.FilePath,
			Pattern:     rec.Regex,
		})
	}

	return &Manifest{
		Routes:      routes,
		GeneratedAt: file.GeneratedAt,
	}, nil
}

// ReadFile reads a manifest from a portable JSON file.
func ReadFile(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: reading %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}
