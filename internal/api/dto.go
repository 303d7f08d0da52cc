package api

import (
	"github.com/starford/golinks/internal/linkservice"
	"github.com/starford/golinks/internal/models"
	"github.com/starford/golinks/internal/search"
)

// LinkRequest is the request body for creating or updating a link.
type LinkRequest = models.LinkInput

// Link is the link response type (aliased from the domain layer).
type Link = models.Link

// LinkListResponse is one page of links with navigation URLs for the
// neighbouring pages.
type LinkListResponse struct {
	*linkservice.Results
	State search.State      `json:"state"`
	Links search.Navigation `json:"links"`
}

// SearchOrFindResponse carries either the exact link or a page of
// candidates.
type SearchOrFindResponse struct {
	Link    *Link             `json:"link,omitempty"`
	Results *LinkListResponse `json:"results,omitempty"`
}

// ResolveResponse is the terminal link of an alias chain.
type ResolveResponse struct {
	Link  *Link    `json:"link" validate:"required"`
	Chain []string `json:"chain" validate:"required"`
	Hops  int      `json:"hops" example:"2"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
