package client

import "context"

// Repository defines the data access contract for clients.
//
// The namesearch column stores the accent-folded, lowercased form of the
// name (see pkg/searchtext); writes must keep it in sync so "livre"
// matches "Livré".
type Repository interface {
	ListClients(ctx context.Context, filter Filter, limit, offset int) ([]*Client, int, error)
	GetClient(ctx context.Context, id string) (*Client, error)
	CreateClient(ctx context.Context, c *Client) error
	UpdateClient(ctx context.Context, c *Client) error

	// SoftDelete marks the client as deleted; parcels keep their
	// reference for history purposes.
	SoftDelete(ctx context.Context, id string) error
}
