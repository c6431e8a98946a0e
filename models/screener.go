package models

import "unicode/utf8"

const (
	CriteriaMinLen = 10
	CriteriaMaxLen = 500
)

type ScreenerRequest struct {
	Criteria string `json:"criteria"`
}

func (r ScreenerRequest) Validate() error {
	var v ValidationError
	n := utf8.RuneCountInString(r.Criteria)
	switch {
	case n < CriteriaMinLen:
		v.Add("criteria", "Criteria must be at least 10 characters")
	case n > CriteriaMaxLen:
		v.Add("criteria", "Criteria must be at most 500 characters")
	}
	return v.OrNil()
}

// ScreenedAsset is one match. Price and Volume are omitted when no
// trustworthy figure exists for the asset.
type ScreenedAsset struct {
	Symbol     string   `json:"symbol"`
	Summary    string   `json:"summary"`
	Price      *float64 `json:"price,omitempty"`
	Volume     *float64 `json:"volume,omitempty"`
	RecentNews string   `json:"recentNews"`
}

type ScreenerResult struct {
	Results []ScreenedAsset `json:"results"`
}
