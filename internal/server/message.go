package server

import (
	"encoding/json"
	"fmt"

	"github.com/zeusync/dataconverter/internal/core/converter"
	"github.com/zeusync/dataconverter/internal/core/migrator"
	"github.com/zeusync/dataconverter/internal/core/types"
	"github.com/zeusync/dataconverter/internal/core/types/jsontree"
	"github.com/zeusync/dataconverter/internal/datafix"
	"github.com/zeusync/dataconverter/pkg/encoding"
)

// Request asks for a batch of JSON records of one type to be migrated. To
// defaults to the server's target version.
type Request struct {
	ID      string            `json:"id,omitempty"`
	Type    string            `json:"type"`
	From    string            `json:"from"`
	To      string            `json:"to,omitempty"`
	Records []json.RawMessage `json:"records"`
}

// Response answers one Request. Records and Fingerprints are in request
// order; a record that failed is returned unchanged and listed in Errors.
type Response struct {
	ID           string            `json:"id,omitempty"`
	Job          string            `json:"job,omitempty"`
	From         string            `json:"from,omitempty"`
	To           string            `json:"to,omitempty"`
	Records      []json.RawMessage `json:"records,omitempty"`
	Fingerprints []string          `json:"fingerprints,omitempty"`
	Changed      int               `json:"changed"`
	Failed       int               `json:"failed"`
	Errors       []RecordError     `json:"errors,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type RecordError struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type batch struct {
	typ      string
	from, to converter.Version
	records  []types.MapType
}

func decodeRequest(data []byte, target converter.Version) (Request, batch, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return req, batch{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if req.Type == "" {
		return req, batch{}, fmt.Errorf("%w: type is required", ErrInvalidMessage)
	}

	b := batch{typ: req.Type, to: target}
	var err error
	if b.from, err = datafix.LookupVersion(req.From); err != nil {
		return req, batch{}, fmt.Errorf("%w: from: %w", ErrInvalidMessage, err)
	}
	if req.To != "" {
		if b.to, err = datafix.LookupVersion(req.To); err != nil {
			return req, batch{}, fmt.Errorf("%w: to: %w", ErrInvalidMessage, err)
		}
	}
	if b.to.Less(b.from) {
		return req, batch{}, fmt.Errorf("%w: %s < %s", migrator.ErrBackwards, b.to, b.from)
	}

	b.records = make([]types.MapType, len(req.Records))
	for i, raw := range req.Records {
		if b.records[i], err = jsontree.Parse(raw); err != nil {
			return req, batch{}, fmt.Errorf("%w: record %d: %w", ErrInvalidMessage, i, err)
		}
	}
	return req, b, nil
}

func encodeReport(req Request, report *migrator.Report) (Response, error) {
	resp := Response{
		ID:           req.ID,
		Job:          report.JobID.String(),
		From:         report.From.String(),
		To:           report.To.String(),
		Records:      make([]json.RawMessage, len(report.Results)),
		Fingerprints: make([]string, len(report.Results)),
		Changed:      report.Changed,
		Failed:       report.Failed,
	}
	for i, r := range report.Results {
		value := r.Value
		if _, ok := value.(*jsontree.Map); !ok && value != nil {
			converted, err := types.ConvertMap(jsontree.Util, value)
			if err != nil {
				return Response{}, fmt.Errorf("record %d: %w", i, err)
			}
			value = converted
		}
		data, err := encoding.StableJSON(value)
		if err != nil {
			return Response{}, fmt.Errorf("record %d: %w", i, err)
		}
		resp.Records[i] = data
		resp.Fingerprints[i] = encoding.FormatFingerprint(r.After)
		if r.Err != nil {
			resp.Errors = append(resp.Errors, RecordError{Index: i, Error: r.Err.Error()})
		}
	}
	return resp, nil
}
