// Package catalog is the static brand table. The tracker only ever sees the
// resolved (name, mg) pair.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

var ErrNotFound = errors.New("not in catalog")

type Size struct {
	Label string  `json:"label"`
	Mg    float64 `json:"mg"`
	Ml    float64 `json:"ml"`
}

type Drink struct {
	Name  string `json:"name"`
	Sizes []Size `json:"sizes"`
}

type Brand struct {
	Name   string  `json:"name"`
	Drinks []Drink `json:"drinks"`
}

var brands = []Brand{
	{
		Name: "Starbucks",
		Drinks: []Drink{
			{Name: "Caffè Americano", Sizes: []Size{{"Short", 75, 236}, {"Tall", 150, 354}, {"Grande", 225, 473}, {"Venti", 300, 591}}},
			{Name: "Caffè Latte", Sizes: []Size{{"Short", 75, 236}, {"Tall", 75, 354}, {"Grande", 150, 473}, {"Venti", 150, 591}}},
			{Name: "Cold Brew", Sizes: []Size{{"Tall", 155, 354}, {"Grande", 205, 473}, {"Venti", 310, 709}}},
		},
	},
	{
		Name: "City Cafe (7-Eleven)",
		Drinks: []Drink{
			{Name: "Americano", Sizes: []Size{{"Medium", 200, 360}, {"Large", 270, 480}}},
			{Name: "Latte", Sizes: []Size{{"Medium", 180, 360}, {"Large", 225, 480}}},
		},
	},
	{
		Name: "Louisa",
		Drinks: []Drink{
			{Name: "Americano", Sizes: []Size{{"M", 150, 360}, {"L", 200, 500}}},
			{Name: "Estate Latte", Sizes: []Size{{"M", 100, 360}, {"L", 150, 500}}},
		},
	},
	{
		Name: "Let's Café (FamilyMart)",
		Drinks: []Drink{
			{Name: "Classic Americano", Sizes: []Size{{"Medium", 150, 360}, {"Large", 200, 480}, {"Extra Large", 270, 600}}},
			{Name: "Classic Latte", Sizes: []Size{{"Medium", 120, 360}, {"Large", 160, 480}, {"Extra Large", 200, 600}}},
		},
	},
	{
		Name: "Energy Drinks",
		Drinks: []Drink{
			{Name: "Red Bull", Sizes: []Size{{"250ml", 80, 250}, {"355ml", 114, 355}}},
			{Name: "Monster", Sizes: []Size{{"355ml", 120, 355}}},
		},
	},
}

// Brands returns a copy of the whole table. Callers may modify it freely.
func Brands() []Brand {
	out := make([]Brand, len(brands))
	for i, b := range brands {
		drinks := make([]Drink, len(b.Drinks))
		for j, d := range b.Drinks {
			drinks[j] = Drink{Name: d.Name, Sizes: append([]Size(nil), d.Sizes...)}
		}
		out[i] = Brand{Name: b.Name, Drinks: drinks}
	}
	return out
}

// Resolve finds a size by brand, drink and size label, compared case
// insensitively. The name is "<brand> <drink>".
func Resolve(brand, drink, size string) (name string, mg float64, err error) {
	for _, b := range brands {
		if !same(b.Name, brand) {
			continue
		}
		for _, d := range b.Drinks {
			if !same(d.Name, drink) {
				continue
			}
			for _, s := range d.Sizes {
				if same(s.Label, size) {
					return b.Name + " " + d.Name, s.Mg, nil
				}
			}
			return "", 0, fmt.Errorf("%w: size %q of %s %s", ErrNotFound, size, b.Name, d.Name)
		}
		return "", 0, fmt.Errorf("%w: drink %q at %s", ErrNotFound, drink, b.Name)
	}
	return "", 0, fmt.Errorf("%w: brand %q", ErrNotFound, brand)
}

// same compares with Unicode case folding so "caffè latte" matches "Caffè Latte".
// A Caser holds state, so each call gets its own.
func same(a, b string) bool {
	return cases.Fold().String(strings.TrimSpace(a)) == cases.Fold().String(strings.TrimSpace(b))
}
