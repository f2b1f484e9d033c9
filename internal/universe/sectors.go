// Package universe resolves the fixed set of NSE sectoral indices to a
// deduplicated ticker universe by fetching constituent lists from the
// index provider.
package universe

import "github.com/seenimoa/niftyscan/pkg/models"

// Sectors is the fixed registry of sectoral indices that make up the scan
// universe. The provider's constituent endpoint is keyed by the slug
// (ind_nifty<slug>list.csv). Do not mutate at runtime.
var Sectors = []models.SectorIndex{
	{Name: "Auto", Slug: "auto"},
	{Name: "Bank", Slug: "bank"},
	{Name: "IT", Slug: "it"},
	{Name: "Pharma", Slug: "pharma"},
	{Name: "FMCG", Slug: "fmcg"},
	{Name: "Metal", Slug: "metal"},
	{Name: "Realty", Slug: "realty"},
	{Name: "Energy", Slug: "energy"},
	{Name: "Media", Slug: "media"},
	{Name: "PSU Bank", Slug: "psubank"},
	{Name: "Private Bank", Slug: "privatebank"},
	{Name: "Financial Services", Slug: "financel"},
	{Name: "Healthcare", Slug: "healthcare"},
	{Name: "Consumer Durables", Slug: "consumerdurables"},
	{Name: "Oil and Gas", Slug: "oilandgas"},
}
