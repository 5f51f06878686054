package api

import (
	"time"

	"github.com/bnema/mmwall/internal/application"
)

type variantResponse struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type selectionResponse struct {
	Index       int               `json:"index"`
	URL         string            `json:"url,omitempty"`
	Caption     string            `json:"caption,omitempty"`
	Variants    []variantResponse `json:"variants,omitempty"`
	FromHistory bool              `json:"from_history"`
	Fallback    bool              `json:"fallback"`
	PoolSize    int               `json:"pool_size"`
	At          time.Time         `json:"at"`
}

type windowResponse struct {
	Bucket       int64      `json:"bucket"`
	Cycle        int64      `json:"cycle"`
	ActiveBucket int        `json:"active_bucket"`
	TotalBuckets int        `json:"total_buckets"`
	Start        int        `json:"start"`
	End          int        `json:"end"`
	NextRotation *time.Time `json:"next_rotation,omitempty"`
}

type ledgerEntryResponse struct {
	URL     string    `json:"url"`
	ShownAt time.Time `json:"shown_at"`
	Weight  float64   `json:"weight"`
}

type statusResponse struct {
	Now            time.Time             `json:"now"`
	Method         string                `json:"method"`
	CollectionSize int                   `json:"collection_size"`
	PoolSize       int                   `json:"pool_size"`
	Rotating       bool                  `json:"rotating"`
	Window         windowResponse        `json:"window"`
	Current        selectionResponse     `json:"current"`
	HistoryLength  int                   `json:"history_length"`
	HistoryCursor  int                   `json:"history_cursor"`
	CanStepBack    bool                  `json:"can_step_back"`
	CanStepForward bool                  `json:"can_step_forward"`
	Recent         []ledgerEntryResponse `json:"recent"`
}

type refreshResponse struct {
	Received int  `json:"received"`
	Accepted int  `json:"accepted"`
	Changed  bool `json:"changed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toSelectionResponse(result application.Result) selectionResponse {
	response := selectionResponse{
		Index:       result.Index,
		URL:         result.URL,
		Caption:     result.Caption,
		FromHistory: result.FromHistory,
		Fallback:    result.Fallback,
		PoolSize:    result.PoolSize,
		At:          result.At,
	}
	for _, variant := range result.Variants {
		response.Variants = append(response.Variants, variantResponse{URL: variant.URL, Width: variant.Width, Height: variant.Height})
	}
	return response
}

func toStatusResponse(status application.Status) statusResponse {
	window := windowResponse{
		Bucket:       status.Window.Bucket,
		Cycle:        status.Window.Cycle,
		ActiveBucket: status.Window.ActiveBucket,
		TotalBuckets: status.Window.TotalBuckets,
		Start:        status.Window.Start,
		End:          status.Window.End,
	}
	if !status.NextRotation.IsZero() {
		next := status.NextRotation
		window.NextRotation = &next
	}

	recent := make([]ledgerEntryResponse, 0, len(status.Ledger.Entries))
	for _, entry := range status.Ledger.Entries {
		recent = append(recent, ledgerEntryResponse{URL: entry.URL, ShownAt: entry.ShownAt, Weight: entry.Weight})
	}

	return statusResponse{
		Now:            status.Now,
		Method:         string(status.Method),
		CollectionSize: status.CollectionSize,
		PoolSize:       status.PoolSize,
		Rotating:       status.Rotating,
		Window:         window,
		Current:        toSelectionResponse(status.Current),
		HistoryLength:  len(status.History.Entries),
		HistoryCursor:  status.History.Cursor,
		CanStepBack:    status.History.CanStepBack,
		CanStepForward: status.History.CanStepForward,
		Recent:         recent,
	}
}
