/*
Copyright © 2019 the Adsorb authors.
This file is part of Adsorb.

Adsorb is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Adsorb is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Adsorb.  If not, see <http://www.gnu.org/licenses/>.
*/

package adsorbate

import (
	"bytes"
	_ "embed"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/adsorb/internal/errs"
)

//go:embed data/adsorbates.toml
var bundledAdsorbates []byte

//go:embed data/materials.toml
var bundledMaterials []byte

// Registry is a name-resolved store of adsorbates and materials.
// Lookups are safe for concurrent use. Extensions must be completed
// before isotherms are created so that identity hashes stay consistent;
// Freeze enforces this.
type Registry struct {
	mu         sync.RWMutex
	adsorbates []*Adsorbate
	byName     map[string]*Adsorbate
	materials  map[string]*Material
	b          Backend
	frozen     bool
}

// NewRegistry returns an empty registry using the Corresponding backend.
func NewRegistry() *Registry {
	return &Registry{
		byName:    make(map[string]*Adsorbate),
		materials: make(map[string]*Material),
		b:         Corresponding{},
	}
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default returns the process-wide registry, loading the bundled
// adsorbate and material databases on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		if err := r.Load(bytes.NewReader(bundledAdsorbates)); err != nil {
			panic(err)
		}
		if err := r.Load(bytes.NewReader(bundledMaterials)); err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}

// Find looks up an adsorbate in the default registry.
func Find(name string) (*Adsorbate, error) { return Default().Find(name) }

// Lookup returns an adsorbate from the default registry, or a bare
// placeholder if the name is unknown.
func Lookup(name string) *Adsorbate { return Default().Lookup(name) }

// LookupMaterial returns a material from the default registry, or a bare
// placeholder if the name is unknown.
func LookupMaterial(name, batch string) *Material { return Default().LookupMaterial(name, batch) }

func (r *Registry) backend() Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.b
}

// UseBackend replaces the backend used by all adsorbates in the
// registry that do not carry their own. A nil backend makes every
// adsorbate use its static property dictionary.
func (r *Registry) UseBackend(b Backend) {
	r.mu.Lock()
	r.b = b
	r.mu.Unlock()
}

// Freeze prevents further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Register adds an adsorbate. Names and aliases must not clash with
// existing entries.
func (r *Registry) Register(a *Adsorbate) error {
	if a == nil || a.Name == "" {
		return errs.Parameter("an adsorbate must have a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return errs.Parameter("registry is frozen; cannot register adsorbate %q", a.Name)
	}
	for _, n := range a.names() {
		if _, ok := r.byName[n]; ok {
			return errs.Parameter("adsorbate name or alias %q already registered", n)
		}
	}
	if a.Properties == nil {
		a.Properties = make(map[string]float64)
	}
	a.registry = r
	r.adsorbates = append(r.adsorbates, a)
	for _, n := range a.names() {
		r.byName[n] = a
	}
	return nil
}

// Find returns the adsorbate with the given name or alias, ignoring case.
func (r *Registry) Find(name string) (*Adsorbate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errs.Parameter("adsorbate %q does not exist in the registry", name)
	}
	return a, nil
}

// Lookup returns the named adsorbate, or a bare entry with no backend
// and no properties when the name is unknown.
func (r *Registry) Lookup(name string) *Adsorbate {
	if a, err := r.Find(name); err == nil {
		return a
	}
	Log.WithFields(logrus.Fields{"adsorbate": name}).Warn("adsorbate not in the registry; thermodynamic properties are unavailable")
	return &Adsorbate{Name: name, Properties: map[string]float64{}, unknown: true}
}

// Names returns the names of all registered adsorbates.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o := make([]string, len(r.adsorbates))
	for i, a := range r.adsorbates {
		o[i] = a.Name
	}
	sort.Strings(o)
	return o
}

type database struct {
	Adsorbate []*Adsorbate `toml:"adsorbate"`
	Material  []*Material  `toml:"material"`
}

// Load reads adsorbates and materials from a TOML document with
// [[adsorbate]] and [[material]] tables.
func (r *Registry) Load(rd io.Reader) error {
	var db database
	if _, err := toml.NewDecoder(rd).Decode(&db); err != nil {
		return errs.Parameter("reading adsorbate database: %v", err)
	}
	for _, a := range db.Adsorbate {
		if err := r.Register(a); err != nil {
			return err
		}
	}
	for _, m := range db.Material {
		if err := r.RegisterMaterial(m); err != nil {
			return err
		}
	}
	return nil
}
