// Package api handles incoming HTTP requests, request validation and
// response formatting for food listings and donation requests. It adapts
// HTTP to the services in internal/service: handlers read the verified
// principal from the request context and pass it explicitly to every
// service call.
package api
