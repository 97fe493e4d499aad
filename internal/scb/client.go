// Package scb fetches DeSO-level indicator tables from Statistics Sweden's
// PxAPI. It is the upstream collaborator for the analysis core: each
// indicator turns one SCB table into a flat percentage series keyed by
// (area, year).
package scb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/segeodata/deso-cli/internal/fetcher"
)

// Client talks to the SCB PxAPI v2.
type Client struct {
	baseURL string
	lang    string
	fetcher fetcher.Fetcher
}

// NewClient creates a Client for the given API base URL and language
// ("sv" or "en" — affects dimension texts, not codes).
func NewClient(baseURL, lang string, f fetcher.Fetcher) *Client {
	return &Client{baseURL: baseURL, lang: lang, fetcher: f}
}

// VariableSelection picks values for one table variable.
type VariableSelection struct {
	VariableCode string   `json:"variableCode"`
	ValueCodes   []string `json:"valueCodes"`
}

// dataRequest is the POST body for the table data endpoint.
type dataRequest struct {
	Selection []VariableSelection `json:"selection"`
}

// Column describes one output column of a table response. Type is "d"
// for a classification dimension, "t" for time, and "c" for a content
// (measure) column.
type Column struct {
	Code string `json:"code"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// DataRow is one observation: Key holds one code per non-content column
// (in column order), Values one cell per content column. Suppressed cells
// arrive as "..", "." or an empty string.
type DataRow struct {
	Key    []string `json:"key"`
	Values []string `json:"values"`
}

// TableData is a decoded table data response.
type TableData struct {
	Columns []Column  `json:"columns"`
	Data    []DataRow `json:"data"`
}

// TableData fetches data for a table with the given variable selection.
func (c *Client) TableData(ctx context.Context, tableID string, selection []VariableSelection) (*TableData, error) {
	url := fmt.Sprintf("%s/tables/%s/data?lang=%s&outputFormat=json", c.baseURL, tableID, c.lang)

	body, err := c.fetcher.PostJSON(ctx, url, dataRequest{Selection: selection})
	if err != nil {
		return nil, eris.Wrapf(err, "scb: fetch table %s", tableID)
	}
	defer body.Close() //nolint:errcheck

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, eris.Wrapf(err, "scb: read table %s response", tableID)
	}

	var td TableData
	if err := json.Unmarshal(raw, &td); err != nil {
		return nil, eris.Wrapf(err, "scb: decode table %s response", tableID)
	}

	return &td, nil
}

// keyIndex returns the position of the named non-content column within
// row keys, or -1 when the column is absent.
func (t *TableData) keyIndex(code string) int {
	pos := 0
	for _, col := range t.Columns {
		if col.Type == "c" {
			continue
		}
		if col.Code == code {
			return pos
		}
		pos++
	}
	return -1
}

// contentCount returns the number of content (measure) columns.
func (t *TableData) contentCount() int {
	n := 0
	for _, col := range t.Columns {
		if col.Type == "c" {
			n++
		}
	}
	return n
}
