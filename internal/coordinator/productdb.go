package coordinator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PollEntry enables polling of one value once the node is ready.
type PollEntry struct {
	Class     uint8 `json:"class" yaml:"class"`
	Instance  uint8 `json:"instance" yaml:"instance"`
	Index     uint8 `json:"index" yaml:"index"`
	Intensity uint8 `json:"intensity,omitempty" yaml:"intensity,omitempty"`
}

// ConfigEntry is a configuration parameter written once the node is ready.
type ConfigEntry struct {
	Param uint8 `json:"param" yaml:"param"`
	Value int32 `json:"value" yaml:"value"`
	Size  uint8 `json:"size" yaml:"size"`
}

// ProductDefinition describes how to set up a specific product.
type ProductDefinition struct {
	ManufacturerID string        `json:"manufacturer_id" yaml:"manufacturer_id"`
	ProductType    string        `json:"product_type" yaml:"product_type"`
	ProductID      string        `json:"product_id" yaml:"product_id"`
	Name           string        `json:"name,omitempty" yaml:"name,omitempty"`
	Location       string        `json:"location,omitempty" yaml:"location,omitempty"`
	Poll           []PollEntry   `json:"poll,omitempty" yaml:"poll,omitempty"`
	Config         []ConfigEntry `json:"config,omitempty" yaml:"config,omitempty"`
}

// ManufacturerGroup groups products under one manufacturer id.
type ManufacturerGroup struct {
	Name           string              `json:"name" yaml:"name"`
	ManufacturerID string              `json:"manufacturer_id" yaml:"manufacturer_id"`
	Products       []ProductDefinition `json:"products" yaml:"products"`
}

// ProductDB holds product definitions keyed by manufacturer, type and id.
type ProductDB struct {
	defs map[string]*ProductDefinition
}

func productKey(manufacturerID, productType, productID string) string {
	return strings.ToLower(manufacturerID) + "\x00" + strings.ToLower(productType) + "\x00" + strings.ToLower(productID)
}

// NewProductDB creates an empty product database.
func NewProductDB() *ProductDB {
	return &ProductDB{defs: make(map[string]*ProductDefinition)}
}

// Add inserts a product definition.
func (db *ProductDB) Add(def ProductDefinition) {
	cp := def
	db.defs[productKey(def.ManufacturerID, def.ProductType, def.ProductID)] = &cp
}

// Lookup finds a definition. Ids compare case-insensitively ("0x010F" == "0x010f").
func (db *ProductDB) Lookup(manufacturerID, productType, productID string) *ProductDefinition {
	if db == nil {
		return nil
	}
	return db.defs[productKey(manufacturerID, productType, productID)]
}

// Len returns the number of product definitions.
func (db *ProductDB) Len() int {
	if db == nil {
		return 0
	}
	return len(db.defs)
}

// productFile is the structure of files in the products directory.
type productFile struct {
	Products      []ProductDefinition `json:"products,omitempty" yaml:"products,omitempty"`
	Manufacturers []ManufacturerGroup `json:"manufacturers,omitempty" yaml:"manufacturers,omitempty"`
}

// LoadProductDir reads all *.yaml, *.yml and *.json files from dir.
// A missing or empty directory yields an empty database, not an error.
func LoadProductDir(dir string, logger *slog.Logger) (*ProductDB, error) {
	db := NewProductDB()

	var matches []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return db, fmt.Errorf("glob products dir: %w", err)
		}
		matches = append(matches, m...)
	}
	if len(matches) == 0 {
		logger.Info("no product definition files found", "dir", dir)
		return db, nil
	}
	sort.Strings(matches)

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			return db, fmt.Errorf("read %s: %w", path, err)
		}

		var pf productFile
		if filepath.Ext(path) == ".json" {
			err = json.Unmarshal(data, &pf)
		} else {
			err = yaml.Unmarshal(data, &pf)
		}
		if err != nil {
			return db, fmt.Errorf("parse %s: %w", path, err)
		}

		count := len(pf.Products)
		for _, p := range pf.Products {
			db.Add(p)
		}
		for _, mg := range pf.Manufacturers {
			for _, p := range mg.Products {
				if p.ManufacturerID == "" {
					p.ManufacturerID = mg.ManufacturerID
				}
				db.Add(p)
			}
			count += len(mg.Products)
		}
		logger.Info("loaded product file", "path", filepath.Base(path), "products", count)
	}

	logger.Info("product database loaded", "files", len(matches), "products", db.Len())
	return db, nil
}
