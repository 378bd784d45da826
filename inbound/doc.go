// Package inbound contains the network-facing callback surface.
//
// The provider redirect lands here; the handler translates the query string
// into a callback request and answers with a redirect, never a page body.
package inbound
