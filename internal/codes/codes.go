// Package codes holds the static translation registries between domain
// names and the compact codes the registry service expects. Each category
// is a closed bidirectional table, read-only after initialization.
//
// Both lookup directions are total: an unrecognized name encodes to the
// category's default code and an unrecognized code decodes to a synthesized
// label. The service rejects requests with missing codes, so every outbound
// field must resolve to some valid code; classification data is not identity
// data, which makes the silent fallback acceptable.
package codes

import (
	"fmt"
	"strings"
)

// Category identifies one translation registry.
type Category string

const (
	Relationship Category = "relationship"
	District     Category = "district"
	Municipality Category = "municipality"
)

type registry struct {
	byName      map[string]string
	byCode      map[string]string
	defaultCode string
}

// The upstream service collapses several relationship names onto one code
// (father and mother share the parent code, brother and sister the sibling
// code). The collapse is the service's ground truth and is preserved as is.
var relationships = &registry{
	byName: map[string]string{
		"father":      "1",
		"mother":      "1",
		"brother":     "2",
		"sister":      "2",
		"son":         "3",
		"daughter":    "3",
		"husband":     "4",
		"wife":        "4",
		"grandfather": "5",
		"grandmother": "5",
		"other":       "6",
	},
	byCode: map[string]string{
		"1": "Father",
		"2": "Brother",
		"3": "Son",
		"4": "Husband",
		"5": "Grandfather",
		"6": "Other",
	},
	defaultCode: "6",
}

var districts = &registry{
	byName: map[string]string{
		"jhapa":      "4",
		"morang":     "6",
		"sunsari":    "7",
		"dhankuta":   "9",
		"sindhuli":   "20",
		"kavre":      "24",
		"bhaktapur":  "25",
		"kathmandu":  "26",
		"lalitpur":   "27",
		"makwanpur":  "31",
		"chitwan":    "35",
		"gorkha":     "36",
		"kaski":      "40",
		"palpa":      "57",
		"rupandehi":  "60",
		"dang":       "62",
		"banke":      "65",
		"surkhet":    "70",
		"kailali":    "74",
		"kanchanpur": "75",
	},
	byCode: map[string]string{
		"4":  "Jhapa",
		"6":  "Morang",
		"7":  "Sunsari",
		"9":  "Dhankuta",
		"20": "Sindhuli",
		"24": "Kavre",
		"25": "Bhaktapur",
		"26": "Kathmandu",
		"27": "Lalitpur",
		"31": "Makwanpur",
		"35": "Chitwan",
		"36": "Gorkha",
		"40": "Kaski",
		"57": "Palpa",
		"60": "Rupandehi",
		"62": "Dang",
		"65": "Banke",
		"70": "Surkhet",
		"74": "Kailali",
		"75": "Kanchanpur",
	},
	defaultCode: "26",
}

var municipalities = &registry{
	byName: map[string]string{
		"kathmandu metropolitan":     "1",
		"lalitpur sub-metropolitan":  "2",
		"bhaktapur municipality":     "3",
		"pokhara metropolitan":       "4",
		"bharatpur metropolitan":     "5",
		"biratnagar metropolitan":    "6",
		"birgunj metropolitan":       "7",
		"butwal sub-metropolitan":    "8",
		"dharan sub-metropolitan":    "9",
		"nepalgunj sub-metropolitan": "10",
	},
	byCode: map[string]string{
		"1":  "Kathmandu Metropolitan",
		"2":  "Lalitpur Sub-Metropolitan",
		"3":  "Bhaktapur Municipality",
		"4":  "Pokhara Metropolitan",
		"5":  "Bharatpur Metropolitan",
		"6":  "Biratnagar Metropolitan",
		"7":  "Birgunj Metropolitan",
		"8":  "Butwal Sub-Metropolitan",
		"9":  "Dharan Sub-Metropolitan",
		"10": "Nepalgunj Sub-Metropolitan",
	},
	defaultCode: "1",
}

var registries = map[Category]*registry{
	Relationship: relationships,
	District:     districts,
	Municipality: municipalities,
}

// Encode resolves a domain name to its remote code. Matching is
// case-insensitive and ignores surrounding whitespace. An unrecognized
// name, or an unknown category, yields the category's default code.
func Encode(c Category, name string) string {
	r, ok := registries[c]
	if !ok {
		return ""
	}
	if code, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return code
	}
	return r.defaultCode
}

// Decode resolves a remote code to its display name. An unrecognized code
// yields a synthesized "<category> <code>" label so callers always get a
// printable value.
func Decode(c Category, code string) string {
	if r, ok := registries[c]; ok {
		if name, ok := r.byCode[strings.TrimSpace(code)]; ok {
			return name
		}
	}
	return fmt.Sprintf("%s %s", c, code)
}

// DefaultCode returns the fallback code Encode uses for unrecognized names
// in the given category.
func DefaultCode(c Category) string {
	if r, ok := registries[c]; ok {
		return r.defaultCode
	}
	return ""
}

// Names returns the known domain names of a category in no particular
// order. It is used to populate selector widgets.
func Names(c Category) []string {
	r, ok := registries[c]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}
