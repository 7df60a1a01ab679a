// Package onboardsdk is the Go client for the tenant onboarding service.
// The request and response types in this package are the service's wire
// contract; the HTTP handlers encode them and the SDKClient decodes them,
// so the two cannot drift apart.
package onboardsdk
