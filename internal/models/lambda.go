package models

import "fmt"

// LambdaEvent is the input event for Lambda invocation. An empty event
// (e.g. an EventBridge schedule) returns the first page of all members.
type LambdaEvent struct {
	Search     string `json:"search,omitempty"`
	Category   string `json:"category,omitempty"`
	Letter     string `json:"letter,omitempty"`
	Sort       string `json:"sort,omitempty"`
	Elite      bool   `json:"elite,omitempty"`
	Page       int    `json:"page,omitempty"`
	SkipFill   bool   `json:"skip_fill,omitempty"`
	Source     string `json:"source,omitempty"`
	DetailType string `json:"detail-type,omitempty"`
}

// Query converts the event into a directory query applying the same
// mutual-exclusion rules as interactive input.
func (e *LambdaEvent) Query() (Query, error) {
	q := NewQuery()
	if e == nil {
		return q, nil
	}
	order, err := ParseSortOrder(e.Sort)
	if err != nil {
		return q, err
	}
	q = q.WithSort(order).WithSearch(e.Search)
	switch {
	case e.Elite:
		q = q.WithElite(true)
	case e.Category != "":
		q = q.WithCategory(e.Category)
	case e.Letter != "":
		q = q.WithLetter(e.Letter)
	}
	return q.WithPage(e.Page), nil
}

// LambdaResponse is the output from Lambda invocation.
type LambdaResponse struct {
	StatusCode int           `json:"status_code"`
	Message    string        `json:"message"`
	Result     *View[Member] `json:"result,omitempty"`
	Stats      *FetchStats   `json:"stats,omitempty"`
}

// NewSuccessResponse creates a success response.
func NewSuccessResponse(view *View[Member], stats *FetchStats) *LambdaResponse {
	msg := fmt.Sprintf("Directory page %d of %d: %d members", view.Page, view.TotalPages, len(view.Items))
	if view.State != StateComplete {
		msg = fmt.Sprintf("[%s] %s", view.State, msg)
	}
	return &LambdaResponse{
		StatusCode: 200,
		Message:    msg,
		Result:     view,
		Stats:      stats,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(err error) *LambdaResponse {
	return &LambdaResponse{
		StatusCode: 500,
		Message:    err.Error(),
	}
}
