package api

import (
	"context"
	"net/http"
)

// QueryPeriod is the single global window during which students may read
// their grades.
type QueryPeriod struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type periodStatus struct {
	Open bool `json:"open"`
}

type setPeriodRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// SetPeriodResult is the backend's verdict on a period change.
type SetPeriodResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (c *Client) QueryPeriodOpen(ctx context.Context) (bool, error) {
	var status periodStatus
	if err := c.do(ctx, http.MethodGet, "/queryPeriod/isOpen", nil, nil, &status); err != nil {
		return false, err
	}
	return status.Open, nil
}

// CurrentPeriod returns the active query window, or nil when none is set.
// The backend serves the period either bare or wrapped in a data envelope;
// both shapes are accepted.
func (c *Client) CurrentPeriod(ctx context.Context) (*QueryPeriod, error) {
	var payload struct {
		Data      *QueryPeriod `json:"data"`
		StartTime string       `json:"startTime"`
		EndTime   string       `json:"endTime"`
	}
	if err := c.do(ctx, http.MethodGet, "/queryPeriod/current", nil, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Data != nil {
		if payload.Data.StartTime == "" || payload.Data.EndTime == "" {
			return nil, nil
		}
		return payload.Data, nil
	}
	if payload.StartTime == "" || payload.EndTime == "" {
		return nil, nil
	}
	return &QueryPeriod{StartTime: payload.StartTime, EndTime: payload.EndTime}, nil
}

func (c *Client) SetPeriod(ctx context.Context, startDate, endDate string) (*SetPeriodResult, error) {
	var result SetPeriodResult
	err := c.do(ctx, http.MethodPost, "/queryPeriod/set", nil, setPeriodRequest{StartDate: startDate, EndDate: endDate}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
